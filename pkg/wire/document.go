package wire

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

const (
	// OpenAPIVersion is the version marker written on export.
	OpenAPIVersion = "3.0.1"
	// InfoVersion is the info.version written on export.
	InfoVersion = "1.0"
	// LayoutExtension is the top-level key carrying the row layout.
	LayoutExtension = "x-layout"
	// SubmitTag tags the synthetic submit operation.
	SubmitTag = "Forms"
)

// FormDocument is the exported schema document. Field order follows the
// wire layout: openapi, info, x-layout, paths, components.
type FormDocument struct {
	OpenAPI    string          `json:"openapi"`
	Info       *openapi3.Info  `json:"info"`
	Layout     Layout          `json:"x-layout"`
	Paths      *openapi3.Paths `json:"paths"`
	Components Components      `json:"components"`
}

// Layout is the x-layout extension.
type Layout struct {
	Rows []model.Row `json:"rows"`
}

// Components holds the named object schemas. Export always writes exactly
// one.
type Components struct {
	Schemas map[string]*ObjectSchema `json:"schemas"`
}

// ObjectSchema is the form-level object schema.
type ObjectSchema struct {
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Properties  Properties `json:"properties"`
	Required    []string   `json:"required,omitempty"`
	ReadOnly    bool       `json:"readOnly"`
}

// PropertySchema is one field's schema. Nullable is always written so the
// required flag survives readers that ignore the required array.
type PropertySchema struct {
	Type        string       `json:"type"`
	Title       string       `json:"title"`
	Nullable    bool         `json:"nullable"`
	Description string       `json:"description,omitempty"`
	Format      string       `json:"format,omitempty"`
	MinLength   *uint64      `json:"minLength,omitempty"`
	MaxLength   *uint64      `json:"maxLength,omitempty"`
	Minimum     *float64     `json:"minimum,omitempty"`
	Maximum     *float64     `json:"maximum,omitempty"`
	MultipleOf  *float64     `json:"multipleOf,omitempty"`
	Enum        []string     `json:"enum,omitempty"`
	Items       *ItemsSchema `json:"items,omitempty"`
	UniqueItems bool         `json:"uniqueItems,omitempty"`
	MinItems    *int         `json:"minItems,omitempty"`
	MaxItems    *int         `json:"maxItems,omitempty"`
}

// ItemsSchema describes array elements.
type ItemsSchema struct {
	Type string   `json:"type"`
	Enum []string `json:"enum"`
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SchemaName derives the components.schemas key from a form name: ASCII
// letters and digits are kept, a leading lower-case letter is upper-cased and
// "Schema" is appended.
func SchemaName(formName string) string {
	cleaned := nonAlphanumeric.ReplaceAllString(formName, "")
	if cleaned != "" && cleaned[0] >= 'a' && cleaned[0] <= 'z' {
		cleaned = string(unicode.ToUpper(rune(cleaned[0]))) + cleaned[1:]
	}
	return cleaned + "Schema"
}

// ChooseSchema picks the component schema a reader should use: the one named
// after the document title when present, otherwise the lexicographically
// first name. It returns "" for an empty list.
func ChooseSchema(names []string, title string) string {
	if len(names) == 0 {
		return ""
	}
	if title != "" {
		want := SchemaName(title)
		for _, name := range names {
			if name == want {
				return name
			}
		}
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return sorted[0]
}

// SchemaRef returns the JSON pointer of a named component schema.
func SchemaRef(name string) string {
	return "#/components/schemas/" + name
}

// SubmitPath returns the synthetic submit path for a form id.
func SubmitPath(formID string) string {
	return "/api/Forms/" + strings.TrimSpace(formID)
}

// NewInfo builds the info block for a form.
func NewInfo(formName string) *openapi3.Info {
	return &openapi3.Info{
		Title:       formName,
		Version:     InfoVersion,
		Description: fmt.Sprintf("Form definition for %s", formName),
	}
}

// NewSubmitPaths builds the single synthetic submit operation referencing
// the named schema.
func NewSubmitPaths(formID, formName, schemaName string) *openapi3.Paths {
	body := openapi3.NewRequestBody().
		WithJSONSchemaRef(openapi3.NewSchemaRef(SchemaRef(schemaName), nil))

	op := &openapi3.Operation{
		Tags:        []string{SubmitTag},
		Summary:     fmt.Sprintf("Submit %s form", formName),
		RequestBody: &openapi3.RequestBodyRef{Value: body},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(200, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("Form submitted successfully"),
			}),
			openapi3.WithStatus(400, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("Invalid form data"),
			}),
		),
	}
	return openapi3.NewPaths(openapi3.WithPath(SubmitPath(formID), &openapi3.PathItem{Post: op}))
}
