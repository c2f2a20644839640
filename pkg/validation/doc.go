// Package validation lints persisted schema documents.
//
// ValidateDocument runs the kin-openapi loader and validator over a document
// and then checks the x-layout rows against the component schema they
// describe. Problems are returned as a list of issues rather than an error so
// callers can show all of them at once.
package validation
