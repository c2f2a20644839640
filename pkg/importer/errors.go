package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is reported when no known document shape matches.
	ErrUnsupportedFormat = errors.New("importer: unsupported schema format")
	// ErrNoSchemas is reported for OpenAPI documents without component schemas.
	ErrNoSchemas = errors.New("importer: no schemas found in OpenAPI document")
	// ErrEmptyDocument is reported for blank input.
	ErrEmptyDocument = errors.New("importer: empty document")
	// ErrDuplicateField is reported when two fields share an id.
	ErrDuplicateField = errors.New("importer: duplicate field id")
)

// ParseError describes why a document could not be imported. The result that
// carries it is always the empty form.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Stage == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("importer: %s: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseError(stage string, err error) *ParseError {
	return &ParseError{Stage: stage, Err: err}
}
