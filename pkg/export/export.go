package export

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/wire"
)

// EnvelopeVersion is written in the downloadable JSON envelope.
const EnvelopeVersion = "1.0.0"

// BackendExport is the payload stored by the backend.
type BackendExport struct {
	Name       string `json:"name"`
	SchemaJSON string `json:"schemaJson"`
}

// Envelope is the human-downloadable export.
type Envelope struct {
	FormDefinition model.Definition `json:"formDefinition"`
	SchemaJSON     string           `json:"schemaJson"`
	ExportDate     string           `json:"exportDate"`
	Version        string           `json:"version"`
	ReadOnly       bool             `json:"readOnly"`
}

// Exporter serialises form definitions into schema documents.
type Exporter struct {
	now    func() time.Time
	logger *slog.Logger
}

// Option customises an Exporter.
type Option func(*Exporter)

// WithClock overrides the time source used for the envelope export date.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New constructs an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Document builds the schema document. rows is embedded as the layout when
// non-nil; otherwise def.Rows is used, and an empty layout when both are nil.
func (e *Exporter) Document(def model.Definition, readOnly bool, rows []model.Row) *wire.FormDocument {
	layout := rows
	if layout == nil {
		layout = def.Rows
	}
	if layout == nil {
		layout = []model.Row{}
	}

	schemaName := wire.SchemaName(def.Name)
	return &wire.FormDocument{
		OpenAPI: wire.OpenAPIVersion,
		Info:    wire.NewInfo(def.Name),
		Layout:  wire.Layout{Rows: layout},
		Paths:   wire.NewSubmitPaths(def.ID, def.Name, schemaName),
		Components: wire.Components{
			Schemas: map[string]*wire.ObjectSchema{
				schemaName: FormSchema(def, readOnly),
			},
		},
	}
}

// ToBackend renders the schema document as indented JSON.
func (e *Exporter) ToBackend(def model.Definition, readOnly bool, rows []model.Row) (BackendExport, error) {
	doc := e.Document(def, readOnly, rows)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return BackendExport{}, fmt.Errorf("export: encode schema for %q: %w", def.Name, err)
	}
	e.logger.Debug("export: schema generated", "form", def.Name, "fields", len(def.Fields), "rows", len(doc.Layout.Rows))
	return BackendExport{Name: def.Name, SchemaJSON: string(data)}, nil
}

// ToJSON renders the downloadable envelope. The embedded schema carries the
// definition's own rows, if any.
func (e *Exporter) ToJSON(def model.Definition, readOnly bool) (string, error) {
	backend, err := e.ToBackend(def, readOnly, nil)
	if err != nil {
		return "", err
	}
	envelope := Envelope{
		FormDefinition: def,
		SchemaJSON:     backend.SchemaJSON,
		ExportDate:     e.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Version:        EnvelopeVersion,
		ReadOnly:       readOnly,
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: encode envelope for %q: %w", def.Name, err)
	}
	return string(data), nil
}

// ToYAML renders the schema document as YAML with the same key order as the
// JSON form.
func (e *Exporter) ToYAML(def model.Definition, readOnly bool, rows []model.Row) ([]byte, error) {
	data, err := json.Marshal(e.Document(def, readOnly, rows))
	if err != nil {
		return nil, fmt.Errorf("export: encode schema for %q: %w", def.Name, err)
	}
	return JSONToYAML(data)
}

// JSONToYAML re-encodes a JSON document as block-style YAML, keeping key
// order.
func JSONToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("export: parse json: %w", err)
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("export: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blockStyle(node *yaml.Node) {
	node.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle
	for _, child := range node.Content {
		blockStyle(child)
	}
}

// Submission is the payload posted when a filled form is stored.
type Submission struct {
	FormDefinitionID int    `json:"formDefinitionId"`
	DataJSON         string `json:"dataJson"`
	WorkPermitID     *int   `json:"workPermitId,omitempty"`
}

// ExportSubmission wraps submitted form data for the backend.
func ExportSubmission(data any, formDefinitionID int, workPermitID *int) (Submission, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return Submission{}, fmt.Errorf("export: encode submission: %w", err)
	}
	return Submission{
		FormDefinitionID: formDefinitionID,
		DataJSON:         string(encoded),
		WorkPermitID:     workPermitID,
	}, nil
}

// TypeSummary counts fields per type.
func TypeSummary(fields []model.Field) map[model.FieldType]int {
	summary := make(map[model.FieldType]int)
	for _, field := range fields {
		summary[model.FieldType(strings.TrimSpace(string(field.Type)))]++
	}
	return summary
}
