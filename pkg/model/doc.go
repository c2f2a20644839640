// Package model defines the form definition consumed by the editor and the
// schema codecs. A Field carries the attributes shared by every element (id,
// type, label, required flag, placeholder, validations) plus a type-specific
// Attrs variant, so the attribute set of a field is decided by its type tag
// instead of by conditionals in the callers. Fields serialise to the flat
// native shape stored in `x-layout.rows` and in legacy `fields[]` documents;
// decoding keeps only the attributes that belong to the decoded type.
package model
