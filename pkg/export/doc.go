// Package export turns a form definition into the persisted schema document.
//
// The document is OpenAPI shaped: one object schema under
// components.schemas whose properties follow field order, a synthetic submit
// path referencing it, and the editor rows embedded under x-layout so the
// importer can restore the exact layout.
package export
