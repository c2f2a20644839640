package validation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/wire"
)

// Issue represents a validation problem with optional location metadata.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures lint outcomes for the CLI and the HTTP surface.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Options configures document validation.
type Options struct {
	// AllowExternalRefs lets the loader follow $ref values outside the
	// document.
	AllowExternalRefs bool
	// SkipLayout disables the x-layout consistency checks.
	SkipLayout bool
}

// ValidateDocument loads a schema document with kin-openapi, validates it
// against OpenAPI 3, then checks that the x-layout rows agree with the
// chosen component schema.
func ValidateDocument(ctx context.Context, src wire.Source, raw []byte, opts Options) Result {
	result := Result{Valid: true}
	if src == nil {
		src = wire.SourceInline("schema")
	}

	doc, err := wire.NewDocument(src, raw)
	if err != nil {
		return invalid(issueFromError(err))
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: opts.AllowExternalRefs,
	}
	spec, err := loader.LoadFromData(doc.Raw())
	if err != nil {
		return invalid(issueFromError(fmt.Errorf("load document: %w", err)))
	}
	if err := spec.Validate(ctx); err != nil {
		result.Valid = false
		result.Issues = append(result.Issues, issueFromError(err))
	}

	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		result.Valid = false
		result.Issues = append(result.Issues, Issue{Path: "#/components/schemas", Message: "document has no component schemas"})
		return result
	}

	if !opts.SkipLayout {
		issues := layoutIssues(spec)
		if len(issues) > 0 {
			result.Valid = false
			result.Issues = append(result.Issues, issues...)
		}
	}
	return result
}

func invalid(issue Issue) Result {
	return Result{Valid: false, Issues: []Issue{issue}}
}

// layoutIssues reports layout fields without a schema property, duplicated
// field ids and properties missing from a non-empty layout.
func layoutIssues(spec *openapi3.T) []Issue {
	rawLayout, ok := spec.Extensions[wire.LayoutExtension]
	if !ok || rawLayout == nil {
		return nil
	}
	encoded, err := json.Marshal(rawLayout)
	if err != nil {
		return []Issue{{Path: "#/" + wire.LayoutExtension, Message: err.Error()}}
	}
	var layout struct {
		Rows []model.Row `json:"rows"`
	}
	if err := json.Unmarshal(encoded, &layout); err != nil {
		return []Issue{{Path: "#/" + wire.LayoutExtension, Message: fmt.Sprintf("invalid layout: %v", err)}}
	}
	if len(layout.Rows) == 0 {
		return nil
	}

	names := make([]string, 0, len(spec.Components.Schemas))
	for name := range spec.Components.Schemas {
		names = append(names, name)
	}
	title := ""
	if spec.Info != nil {
		title = spec.Info.Title
	}
	chosen := wire.ChooseSchema(names, title)
	var properties openapi3.Schemas
	if ref := spec.Components.Schemas[chosen]; ref != nil && ref.Value != nil {
		properties = ref.Value.Properties
	}

	var issues []Issue
	seen := make(map[string]bool)
	for r, row := range layout.Rows {
		for i, field := range row.Fields {
			path := fmt.Sprintf("#/%s/rows/%d/fields/%d", wire.LayoutExtension, r, i)
			if seen[field.ID] {
				issues = append(issues, Issue{Path: path, Field: field.ID, Message: "duplicate field id in layout"})
				continue
			}
			seen[field.ID] = true
			if _, ok := properties[field.ID]; !ok {
				issues = append(issues, Issue{Path: path, Field: field.ID, Message: fmt.Sprintf("layout field has no property in %s", chosen)})
			}
		}
	}

	missing := make([]string, 0)
	for name := range properties {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	for _, name := range missing {
		issues = append(issues, Issue{
			Path:    "#/components/schemas/" + chosen + "/properties/" + name,
			Field:   name,
			Message: "property is missing from the layout",
		})
	}
	return issues
}

func issueFromError(err error) Issue {
	if err == nil {
		return Issue{Message: "unknown error"}
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		pointer := "#/" + strings.Join(schemaErr.JSONPointer(), "/")
		return Issue{Path: pointer, Field: fieldPathFromPointer(pointer), Message: strings.TrimSpace(schemaErr.Reason)}
	}

	msg := strings.TrimSpace(err.Error())
	path := extractJSONPointer(msg)
	if path != "" {
		msg = strings.Replace(msg, " at "+path, "", 1)
	}
	msg = strings.TrimPrefix(msg, "wire: ")
	msg = strings.TrimSpace(msg)

	return Issue{
		Path:    path,
		Field:   fieldPathFromPointer(path),
		Message: msg,
	}
}

func extractJSONPointer(message string) string {
	if message == "" {
		return ""
	}
	if idx := strings.LastIndex(message, " at "); idx >= 0 {
		candidate := strings.TrimSpace(message[idx+4:])
		if strings.HasPrefix(candidate, "#/") {
			return trimPointer(candidate)
		}
	}
	if idx := strings.LastIndex(message, "#/"); idx >= 0 {
		candidate := strings.TrimSpace(message[idx:])
		if end := strings.IndexAny(candidate, " \n\"'"); end >= 0 {
			candidate = candidate[:end]
		}
		return trimPointer(candidate)
	}
	return ""
}

func trimPointer(pointer string) string {
	if pointer == "" {
		return ""
	}
	trimmed := strings.TrimRight(pointer, ".)];,:")
	return strings.TrimSpace(trimmed)
}

// fieldPathFromPointer turns a JSON pointer into a dotted field path, keeping
// only property names and array markers.
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimSpace(pointer)
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for idx := 0; idx < len(parts); idx++ {
		segment := unescapePointer(parts[idx])
		switch segment {
		case "properties":
			if idx+1 < len(parts) {
				out = append(out, unescapePointer(parts[idx+1]))
				idx++
			}
		case "items":
			out = append(out, "items")
		case "components", "schemas":
			if segment == "schemas" && idx+1 < len(parts) {
				idx++
			}
		default:
			if segment == "" {
				continue
			}
			out = append(out, segment)
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, ".")
}

func unescapePointer(segment string) string {
	segment = strings.ReplaceAll(segment, "~1", "/")
	return strings.ReplaceAll(segment, "~0", "~")
}
