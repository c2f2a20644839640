// Package importer reads persisted schema documents back into form
// definitions.
//
// Three document shapes are recognised, checked in this order: the
// OpenAPI-shaped export (with or without an x-layout row extension), a bare
// JSON object schema, and the native {id, name, fields} definition. When no
// layout is available fields are rebuilt from property schemas with
// InferFieldType. Documents that match none of the shapes, or fail to parse,
// produce an empty form and a *ParseError instead of an error return.
package importer
