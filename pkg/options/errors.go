package options

import (
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Kind classifies option resolution failures.
type Kind string

const (
	KindConfig   Kind = "config"
	KindNetwork  Kind = "network"
	KindStatus   Kind = "status"
	KindDecode   Kind = "decode"
	KindNotArray Kind = "not_array"
)

// Error is returned by the resolver for every failure. Message is suitable
// for showing next to the field.
type Error struct {
	Kind    Kind
	Source  model.OptionSource
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "failed to load options"
	}
	if e.Err != nil {
		return fmt.Sprintf("options: %s: %v", msg, e.Err)
	}
	return "options: " + msg
}

func (e *Error) Unwrap() error { return e.Err }

func failure(kind Kind, source model.OptionSource, url, message string, err error) *Error {
	return &Error{Kind: kind, Source: source, URL: url, Message: message, Err: err}
}

func sourceMessage(source model.OptionSource) string {
	if source == model.OptionSourceExternal {
		return "Failed to load options from external API"
	}
	return "Failed to load options from API"
}
