// Package catalog is the palette of field types a form can be built from.
// Each entry carries the defaults copied into new field instances and the
// list of settings the editor exposes for that type.
package catalog
