// Package editor owns the row-oriented form model used while a form is being
// built: an ordered list of rows, each holding an ordered list of fields, plus
// the currently selected field.
//
// Every mutation builds a fresh row slice and installs it in a single
// assignment, so readers either observe the state before or after a change,
// never a partially applied one. Mutations report a Result instead of failing
// silently; NotFound and Refused leave the model untouched.
package editor
