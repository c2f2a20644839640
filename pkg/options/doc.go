// Package options resolves the selectable options of choice fields from a
// static string, an internal API or an external API. HTTP responses may be
// reshaped with a declarative transform (see package transform).
package options
