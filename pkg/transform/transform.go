// Package transform interprets the declarative response transforms attached to
// option sources. A transform selects a sub-object per item, filters items,
// picks value and label paths and caps the result size. It never executes
// user-supplied code.
package transform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/transform/expr"
)

// Spec is the declarative transform. It may be written as YAML or JSON:
//
//	each: attributes
//	filter: active && score >= 10
//	value: id
//	label: "{first} {last}"
//	limit: 20
type Spec struct {
	// Each is a dot path evaluated on every item; the result replaces the
	// item for the remaining steps.
	Each string `yaml:"each" json:"each,omitempty"`
	// Filter drops items for which the expression is false.
	Filter string `yaml:"filter" json:"filter,omitempty"`
	// Value and Label are dot paths. Label may also be a template with
	// {path} placeholders. Empty falls back to the configured field names.
	Value string `yaml:"value" json:"value,omitempty"`
	Label string `yaml:"label" json:"label,omitempty"`
	// Limit caps the number of options; zero means no cap.
	Limit int `yaml:"limit" json:"limit,omitempty"`

	filter *expr.Program
}

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Parse decodes a transform spec. Unknown keys are rejected so typos do not
// silently produce an unfiltered list. Blank input returns nil.
func Parse(source string) (*Spec, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}
	dec := yaml.NewDecoder(strings.NewReader(source))
	dec.KnownFields(true)

	var spec Spec
	if err := dec.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("transform: decode spec: %w", err)
	}
	if spec.Limit < 0 {
		return nil, fmt.Errorf("transform: limit must not be negative, got %d", spec.Limit)
	}
	prog, err := expr.Compile(spec.Filter)
	if err != nil {
		return nil, fmt.Errorf("transform: filter: %w", err)
	}
	spec.filter = prog
	return &spec, nil
}

// Apply maps raw response items to options. valueField and labelField are the
// defaults used when the spec leaves Value or Label empty.
func (s *Spec) Apply(items []any, valueField, labelField string) ([]model.OptionItem, error) {
	if s == nil {
		return Default(items, valueField, labelField), nil
	}
	filter := s.filter
	if filter == nil {
		prog, err := expr.Compile(s.Filter)
		if err != nil {
			return nil, fmt.Errorf("transform: filter: %w", err)
		}
		filter = prog
	}
	valuePath := firstNonEmpty(s.Value, valueField, "value")
	labelPath := firstNonEmpty(s.Label, labelField, "label")

	out := make([]model.OptionItem, 0, len(items))
	for i, item := range items {
		if s.Each != "" {
			selected, ok := expr.Lookup(item, s.Each)
			if !ok {
				return nil, fmt.Errorf("transform: item %d: path %q not found", i, s.Each)
			}
			item = selected
		}
		keep, err := filter.Match(item)
		if err != nil {
			return nil, fmt.Errorf("transform: item %d: %w", i, err)
		}
		if !keep {
			continue
		}
		out = append(out, model.OptionItem{
			Value: pick(item, valuePath),
			Label: render(item, labelPath),
		})
		if s.Limit > 0 && len(out) >= s.Limit {
			break
		}
	}
	return out, nil
}

// Default maps items using the field names, falling back to the item's own
// text when the named field is missing or falsy.
func Default(items []any, valueField, labelField string) []model.OptionItem {
	valueField = firstNonEmpty(valueField, "value")
	labelField = firstNonEmpty(labelField, "label")
	out := make([]model.OptionItem, 0, len(items))
	for _, item := range items {
		out = append(out, model.OptionItem{
			Value: pick(item, valueField),
			Label: pick(item, labelField),
		})
	}
	return out
}

func pick(item any, path string) string {
	if value, ok := expr.Lookup(item, path); ok && !falsy(value) {
		return Text(value)
	}
	return Text(item)
}

func render(item any, label string) string {
	if !strings.Contains(label, "{") {
		return pick(item, label)
	}
	return placeholderPattern.ReplaceAllStringFunc(label, func(match string) string {
		path := strings.TrimSpace(match[1 : len(match)-1])
		value, ok := expr.Lookup(item, path)
		if !ok || value == nil {
			return ""
		}
		return Text(value)
	})
}

// Text renders a decoded JSON value as option text. Objects and arrays are
// rendered as compact JSON.
func Text(value any) string {
	switch value.(type) {
	case map[string]any, []any:
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(value); err != nil {
			return ""
		}
		return strings.TrimSpace(buf.String())
	default:
		return model.ScalarString(value)
	}
}

func falsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case float64:
		return v == 0
	case int:
		return v == 0
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
