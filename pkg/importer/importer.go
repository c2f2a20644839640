package importer

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/wire"
)

// Format identifies the document shape an import was read from.
type Format string

const (
	FormatOpenAPI    Format = "openapi"
	FormatJSONSchema Format = "jsonschema"
	FormatNative     Format = "native"
	FormatUnknown    Format = "unknown"
)

// FormType is the coarse label shown on list cards: openapi, legacy or
// unknown.
func (f Format) FormType() string {
	switch f {
	case FormatOpenAPI:
		return "openapi"
	case FormatJSONSchema, FormatNative:
		return "legacy"
	default:
		return "unknown"
	}
}

// Result is the outcome of an import. Rows is set only when the document
// carried a layout. On failure Err is set and the definition has no fields.
type Result struct {
	Definition model.Definition
	Rows       []model.Row
	Format     Format
	HasLayout  bool
	ReadOnly   bool
	Err        error
}

// Summary is the lightweight parse used by list previews.
type Summary struct {
	FieldCount int    `json:"fieldCount"`
	FormType   string `json:"formType"`
	HasFields  bool   `json:"hasFields"`
}

// Importer reads schema documents back into form definitions.
type Importer struct {
	now      func() time.Time
	logger   *slog.Logger
	sanitize func(string) string
}

// Option customises an Importer.
type Option func(*Importer)

// WithClock overrides the time source used for generated form ids.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) {
		if now != nil {
			im.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) {
		if logger != nil {
			im.logger = logger
		}
	}
}

// WithSanitizer strips markup from imported names, labels and placeholders
// using policy. A nil policy selects bluemonday's strict policy.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(im *Importer) {
		if policy == nil {
			policy = bluemonday.StrictPolicy()
		}
		im.sanitize = func(s string) string {
			if s == "" {
				return s
			}
			return strings.TrimSpace(policy.Sanitize(s))
		}
	}
}

// New constructs an Importer.
func New(opts ...Option) *Importer {
	im := &Importer{
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(im)
		}
	}
	return im
}

// detected is a document after shape detection.
type detected struct {
	format Format
	title  string
	schema *objectSchema
	layout []model.Row
	native *model.Definition
}

type objectSchema struct {
	Type       any             `json:"type"`
	Title      string          `json:"title"`
	Properties json.RawMessage `json:"properties"`
	Required   *[]string       `json:"required"`
	ReadOnly   bool            `json:"readOnly"`
}

func (s *objectSchema) isObject() bool {
	t, _ := s.Type.(string)
	return t == "object" && present(s.Properties)
}

// Import detects the document format and rebuilds the definition. It never
// panics on malformed input; failures return the empty form with Err set.
func (im *Importer) Import(raw []byte, name string) Result {
	doc, err := detect(raw)
	if err != nil {
		im.logger.Warn("importer: document rejected", "form", name, "error", err)
		return im.empty(name, err)
	}

	res := Result{Format: doc.format}
	switch {
	case doc.native != nil:
		res.Definition = *doc.native
		if res.Definition.Name == "" {
			res.Definition.Name = name
		}
	case len(doc.layout) > 0:
		res.Rows = normalizeRows(doc.layout)
		res.HasLayout = true
		res.ReadOnly = doc.schema.ReadOnly
		res.Definition = im.definition(firstNonEmpty(name, doc.title), model.Flatten(res.Rows))
	default:
		fields, err := schemaFields(doc.schema, doc.format)
		if err != nil {
			im.logger.Warn("importer: properties rejected", "form", name, "error", err)
			return im.empty(name, err)
		}
		res.ReadOnly = doc.schema.ReadOnly
		res.Definition = im.definition(firstNonEmpty(name, doc.title), fields)
	}

	if res.Definition.Fields == nil {
		res.Definition.Fields = []model.Field{}
	}
	if hasDuplicateIDs(res.Definition.Fields) {
		err := parseError("fields", ErrDuplicateField)
		im.logger.Warn("importer: document rejected", "form", name, "error", err)
		return im.empty(name, err)
	}
	if res.Definition.ID == "" {
		res.Definition.ID = im.formID()
	}
	if res.Definition.Settings == nil {
		settings := model.DefaultSettings()
		res.Definition.Settings = &settings
	}
	if im.sanitize != nil {
		im.clean(&res)
	}

	im.logger.Debug("importer: document loaded",
		"form", res.Definition.Name,
		"format", res.Format,
		"fields", len(res.Definition.Fields),
		"layout", res.HasLayout,
	)
	return res
}

// Preview counts the fields of a document without rebuilding them.
func (im *Importer) Preview(raw []byte) Summary {
	summary := Summary{FormType: FormatUnknown.FormType()}
	doc, err := detect(raw)
	if err != nil {
		im.logger.Debug("importer: preview failed", "error", err)
		return summary
	}
	summary.FormType = doc.format.FormType()
	if doc.native != nil {
		summary.FieldCount = len(doc.native.Fields)
	} else if present(doc.schema.Properties) {
		entries, err := wire.OrderedObject(doc.schema.Properties)
		if err == nil {
			summary.FieldCount = len(entries)
		}
	}
	summary.HasFields = summary.FieldCount > 0
	return summary
}

// ApplyTo loads an import result into an editor: restored rows replace the
// layout, otherwise the definition is loaded as a single row. Failed imports
// leave the editor untouched.
func ApplyTo(ed *editor.Editor, res Result) editor.Result {
	if res.Err != nil {
		return editor.Invalid
	}
	if res.HasLayout {
		return ed.SetRows(res.Rows)
	}
	return ed.LoadDefinition(res.Definition)
}

func (im *Importer) empty(name string, err error) Result {
	def := im.definition(name, []model.Field{})
	return Result{Definition: def, Format: FormatUnknown, Err: err}
}

func (im *Importer) definition(name string, fields []model.Field) model.Definition {
	settings := model.DefaultSettings()
	return model.Definition{
		ID:       im.formID(),
		Name:     name,
		Fields:   fields,
		Settings: &settings,
	}
}

func (im *Importer) formID() string {
	return fmt.Sprintf("form_%d_loaded", im.now().UnixMilli())
}

func (im *Importer) clean(res *Result) {
	res.Definition.Name = im.sanitize(res.Definition.Name)
	for i := range res.Definition.Fields {
		im.cleanField(&res.Definition.Fields[i])
	}
	for r := range res.Rows {
		for i := range res.Rows[r].Fields {
			im.cleanField(&res.Rows[r].Fields[i])
		}
	}
}

func (im *Importer) cleanField(field *model.Field) {
	field.Label = im.sanitize(field.Label)
	field.Placeholder = im.sanitize(field.Placeholder)
}

// detect applies the format rules in order: OpenAPI with component schemas,
// bare object schema, native fields list.
func detect(raw []byte) (*detected, error) {
	data, err := normalizeInput(raw)
	if err != nil {
		return nil, err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, parseError("decode", err)
	}

	if present(top["openapi"]) && present(top["components"]) {
		var components struct {
			Schemas json.RawMessage `json:"schemas"`
		}
		if err := json.Unmarshal(top["components"], &components); err != nil {
			return nil, parseError("components", err)
		}
		if present(components.Schemas) {
			return detectOpenAPI(top, components.Schemas)
		}
	}

	if present(top["type"]) && present(top["properties"]) {
		var schema objectSchema
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, parseError("schema", err)
		}
		if schema.isObject() {
			return &detected{format: FormatJSONSchema, title: schema.Title, schema: &schema}, nil
		}
	}

	if fields := top["fields"]; len(bytes.TrimSpace(fields)) > 0 && bytes.TrimSpace(fields)[0] == '[' {
		var def model.Definition
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, parseError("fields", err)
		}
		return &detected{format: FormatNative, native: &def}, nil
	}

	return nil, parseError("", ErrUnsupportedFormat)
}

func detectOpenAPI(top map[string]json.RawMessage, schemasRaw json.RawMessage) (*detected, error) {
	entries, err := wire.OrderedObject(schemasRaw)
	if err != nil {
		return nil, parseError("components.schemas", err)
	}
	if len(entries) == 0 {
		return nil, parseError("components.schemas", ErrNoSchemas)
	}

	var info struct {
		Title string `json:"title"`
	}
	if present(top["info"]) {
		_ = json.Unmarshal(top["info"], &info)
	}

	chosen := chooseSchema(entries, info.Title)
	var schema objectSchema
	if err := json.Unmarshal(chosen.Value, &schema); err != nil {
		return nil, parseError("components.schemas."+chosen.Key, err)
	}

	doc := &detected{format: FormatOpenAPI, title: info.Title, schema: &schema}
	if present(top[wire.LayoutExtension]) {
		var layout struct {
			Rows []model.Row `json:"rows"`
		}
		if err := json.Unmarshal(top[wire.LayoutExtension], &layout); err != nil {
			return nil, parseError(wire.LayoutExtension, err)
		}
		doc.layout = layout.Rows
	}
	return doc, nil
}

func chooseSchema(entries []wire.RawEntry, title string) wire.RawEntry {
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Key
	}
	want := wire.ChooseSchema(names, title)
	for _, entry := range entries {
		if entry.Key == want {
			return entry
		}
	}
	return entries[0]
}

// schemaFields infers one field per property in document order. A required
// array decides required-ness when present; otherwise a property is required
// unless it is nullable.
func schemaFields(schema *objectSchema, format Format) ([]model.Field, error) {
	if !present(schema.Properties) {
		return []model.Field{}, nil
	}
	entries, err := wire.OrderedObject(schema.Properties)
	if err != nil {
		return nil, parseError(string(format)+" properties", err)
	}

	var required map[string]bool
	if schema.Required != nil {
		required = make(map[string]bool, len(*schema.Required))
		for _, name := range *schema.Required {
			required[name] = true
		}
	}

	fields := make([]model.Field, 0, len(entries))
	for _, entry := range entries {
		var prop openapi3.Schema
		if err := json.Unmarshal(entry.Value, &prop); err != nil {
			return nil, parseError("property "+entry.Key, err)
		}
		isRequired := !prop.Nullable
		if required != nil {
			isRequired = required[entry.Key]
		}
		fields = append(fields, fieldFromProperty(entry.Key, &prop, isRequired))
	}
	return fields, nil
}

func normalizeInput(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, parseError("", ErrEmptyDocument)
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed, nil
	}
	data, err := yamlToJSON(trimmed)
	if err != nil {
		return nil, parseError("yaml", err)
	}
	return data, nil
}

func normalizeRows(rows []model.Row) []model.Row {
	out := model.CloneRows(rows)
	for i := range out {
		if out[i].Fields == nil {
			out[i].Fields = []model.Field{}
		}
	}
	return out
}

// present reports whether a raw JSON value is set to something truthy.
func present(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

func hasDuplicateIDs(fields []model.Field) bool {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if _, ok := seen[field.ID]; ok {
			return true
		}
		seen[field.ID] = struct{}{}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
