package importer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/export"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

func fixedClock() time.Time { return time.UnixMilli(1700000000000) }

func newTestImporter(opts ...Option) *Importer {
	return New(append([]Option{WithClock(fixedClock)}, opts...)...)
}

func decodeProperty(t *testing.T, raw string) *openapi3.Schema {
	t.Helper()
	var schema openapi3.Schema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		t.Fatalf("decode property %s: %v", raw, err)
	}
	return &schema
}

func TestInferFieldType_Precedence(t *testing.T) {
	cases := []struct {
		name string
		prop string
		want model.FieldType
	}{
		{"format before enum", `{"type":"string","format":"email","enum":["a","b"]}`, model.FieldTypeEmail},
		{"date", `{"type":"string","format":"date"}`, model.FieldTypeDate},
		{"uri", `{"type":"string","format":"uri"}`, model.FieldTypeURL},
		{"array", `{"type":"array","items":{"type":"string","enum":["A","B"]}}`, model.FieldTypeSelect},
		{"boolean", `{"type":"boolean","enum":[true,false]}`, model.FieldTypeCheckbox},
		{"three entries", `{"type":"string","enum":["x","y","z"]}`, model.FieldTypeRadio},
		{"four entries", `{"type":"string","enum":["x","y","z","w"]}`, model.FieldTypeSelect},
		{"empty enum", `{"type":"string","enum":[]}`, model.FieldTypeRadio},
		{"number", `{"type":"number"}`, model.FieldTypeNumber},
		{"integer", `{"type":"integer"}`, model.FieldTypeNumber},
		{"long string stays text", `{"type":"string","maxLength":500}`, model.FieldTypeText},
		{"binary stays text", `{"type":"string","format":"binary"}`, model.FieldTypeText},
		{"untyped", `{}`, model.FieldTypeText},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InferFieldType(decodeProperty(t, tc.prop)); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
	if got := InferFieldType(nil); got != model.FieldTypeText {
		t.Fatalf("expected text for nil schema, got %s", got)
	}
}

func sampleRows() []model.Row {
	name := model.NewField("name", model.FieldTypeText)
	name.Label, name.Required = "Name", true
	name.Attrs = &model.TextAttrs{Min: model.Float(2), Max: model.Float(40)}
	name.Validations = []model.ValidationRule{{Kind: model.ValidationRequired, Message: "Name is required"}}

	qty := model.NewField("qty", model.FieldTypeNumber)
	qty.Label = "Quantity"
	qty.Attrs = &model.NumberAttrs{Min: model.Float(1), Step: model.Float(1)}

	tags := model.NewField("tags", model.FieldTypeMultiSelect)
	tags.Label = "Tags"
	tags.Attrs = &model.ChoiceAttrs{
		Source:        model.OptionConfig{Source: model.OptionSourceStatic, Static: "A,B,C"},
		MaxSelections: model.Int(2),
	}

	notes := model.NewField("notes", model.FieldTypeTextarea)
	notes.Attrs = &model.TextareaAttrs{Rows: model.Int(3)}

	return []model.Row{
		{ID: "row-1", Fields: []model.Field{name, qty}},
		{ID: "row-2", Fields: []model.Field{tags}},
		{ID: "row-3", Fields: []model.Field{notes}},
	}
}

func exportDocument(t *testing.T, rows []model.Row) string {
	t.Helper()
	def := model.Definition{ID: "7", Name: "Order", Fields: model.Flatten(rows)}
	out, err := export.New().ToBackend(def, true, rows)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	return out.SchemaJSON
}

func TestImport_RestoresLayoutVerbatim(t *testing.T) {
	rows := sampleRows()
	res := newTestImporter().Import([]byte(exportDocument(t, rows)), "Order")
	if res.Err != nil {
		t.Fatalf("import: %v", res.Err)
	}
	if res.Format != FormatOpenAPI || !res.HasLayout || !res.ReadOnly {
		t.Fatalf("unexpected result flags: %+v", res)
	}
	if diff := cmp.Diff(rows, res.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.Flatten(rows), res.Definition.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if res.Definition.ID != "form_1700000000000_loaded" || res.Definition.Name != "Order" {
		t.Fatalf("unexpected definition header: %q %q", res.Definition.ID, res.Definition.Name)
	}
	if diff := cmp.Diff(model.DefaultSettings(), *res.Definition.Settings); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func stripLayout(t *testing.T, doc string) []byte {
	t.Helper()
	var raw map[string]any
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	delete(raw, "x-layout")
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}

func TestImport_InfersWithoutLayout(t *testing.T) {
	doc := stripLayout(t, exportDocument(t, sampleRows()))
	res := newTestImporter().Import(doc, "Order")
	if res.Err != nil {
		t.Fatalf("import: %v", res.Err)
	}
	if res.HasLayout || res.Rows != nil {
		t.Fatalf("expected no layout, got %+v", res.Rows)
	}

	name := model.NewField("name", model.FieldTypeText)
	name.Label, name.Required = "Name", true
	name.Attrs = &model.TextAttrs{Min: model.Float(2), Max: model.Float(40)}
	name.Validations = []model.ValidationRule{
		{Kind: model.ValidationMinLength, Value: float64(2)},
		{Kind: model.ValidationMaxLength, Value: float64(40)},
	}

	qty := model.NewField("qty", model.FieldTypeNumber)
	qty.Label = "Quantity"
	qty.Attrs = &model.NumberAttrs{Min: model.Float(1), Step: model.Float(1)}
	qty.Validations = []model.ValidationRule{{Kind: model.ValidationMin, Value: float64(1)}}

	tags := model.NewField("tags", model.FieldTypeSelect)
	tags.Label = "Tags"
	tags.Attrs = &model.ChoiceAttrs{Source: model.OptionConfig{Source: model.OptionSourceStatic, Static: "A,B,C"}}

	notes := model.NewField("notes", model.FieldTypeText)
	notes.Label = "notes"
	notes.Placeholder = "3 rows"

	want := []model.Field{name, qty, tags, notes}
	if diff := cmp.Diff(want, res.Definition.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_ReimportsFractionalLengthBounds(t *testing.T) {
	code := model.NewField("code", model.FieldTypeText)
	code.Label = "Code"
	code.Attrs = &model.TextAttrs{Min: model.Float(2.5), Max: model.Float(-4)}
	notes := model.NewField("notes", model.FieldTypeTextarea)
	notes.Label = "Notes"
	notes.Attrs = &model.TextareaAttrs{Max: model.Float(99.9)}

	doc := stripLayout(t, exportDocument(t, []model.Row{{ID: "row-1", Fields: []model.Field{code, notes}}}))
	res := newTestImporter().Import(doc, "Order")
	if res.Err != nil {
		t.Fatalf("import: %v", res.Err)
	}
	if len(res.Definition.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(res.Definition.Fields))
	}

	wantCode := &model.TextAttrs{Min: model.Float(2)}
	if diff := cmp.Diff(wantCode, res.Definition.Fields[0].Attrs); diff != "" {
		t.Fatalf("code attrs mismatch (-want +got):\n%s", diff)
	}
	wantNotes := &model.TextAttrs{Max: model.Float(99)}
	if diff := cmp.Diff(wantNotes, res.Definition.Fields[1].Attrs); diff != "" {
		t.Fatalf("notes attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_RequiredArrayWinsOverNullable(t *testing.T) {
	doc := `{
	  "openapi": "3.0.1",
	  "info": {"title": "Visit"},
	  "components": {"schemas": {"VisitSchema": {
	    "type": "object",
	    "properties": {
	      "a": {"type": "string", "nullable": true},
	      "b": {"type": "string", "nullable": false}
	    },
	    "required": ["a"]
	  }}}
	}`
	res := newTestImporter().Import([]byte(doc), "Visit")
	if res.Err != nil {
		t.Fatalf("import: %v", res.Err)
	}
	got := map[string]bool{}
	for _, field := range res.Definition.Fields {
		got[field.ID] = field.Required
	}
	if diff := cmp.Diff(map[string]bool{"a": true, "b": false}, got); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_NullableDecidesWithoutRequiredArray(t *testing.T) {
	doc := `{"type":"object","title":"Legacy","properties":{
	  "opt": {"type":"string","nullable":true},
	  "must": {"type":"string"}
	}}`
	res := newTestImporter().Import([]byte(doc), "")
	if res.Err != nil {
		t.Fatalf("import: %v", res.Err)
	}
	if res.Format != FormatJSONSchema || res.Definition.Name != "Legacy" {
		t.Fatalf("unexpected format/name: %s %q", res.Format, res.Definition.Name)
	}
	fields := res.Definition.Fields
	if len(fields) != 2 || fields[0].ID != "opt" || fields[0].Required || !fields[1].Required {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestImport_SchemaChoice(t *testing.T) {
	build := func(title string) string {
		return `{"openapi":"3.0.1","info":{"title":"` + title + `"},"components":{"schemas":{
		  "ZetaSchema": {"type":"object","properties":{"z":{"type":"string"}}},
		  "AlphaSchema": {"type":"object","properties":{"a":{"type":"string"}}}
		}}}`
	}

	res := newTestImporter().Import([]byte(build("Zeta")), "")
	if res.Err != nil || len(res.Definition.Fields) != 1 || res.Definition.Fields[0].ID != "z" {
		t.Fatalf("expected title-matched schema, got %+v (err %v)", res.Definition.Fields, res.Err)
	}

	res = newTestImporter().Import([]byte(build("Other")), "")
	if res.Err != nil || len(res.Definition.Fields) != 1 || res.Definition.Fields[0].ID != "a" {
		t.Fatalf("expected lexicographically first schema, got %+v (err %v)", res.Definition.Fields, res.Err)
	}
}

func TestImport_PropertyOrderFollowsDocument(t *testing.T) {
	doc := `{"type":"object","properties":{"zulu":{},"alpha":{},"mike":{}}}`
	res := newTestImporter().Import([]byte(doc), "Order")
	var ids []string
	for _, field := range res.Definition.Fields {
		ids = append(ids, field.ID)
	}
	if diff := cmp.Diff([]string{"zulu", "alpha", "mike"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_NativeFields(t *testing.T) {
	doc := `{"id":"abc","name":"Native","fields":[{"id":"x","type":"checkbox","label":"X","required":true}]}`
	res := newTestImporter().Import([]byte(doc), "ignored")
	if res.Err != nil {
		t.Fatalf("import: %v", res.Err)
	}
	if res.Format != FormatNative || res.Definition.ID != "abc" || res.Definition.Name != "Native" {
		t.Fatalf("unexpected native result: %+v", res.Definition)
	}
	want := model.NewField("x", model.FieldTypeCheckbox)
	want.Label, want.Required = "X", true
	if diff := cmp.Diff([]model.Field{want}, res.Definition.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if res.Definition.Settings == nil {
		t.Fatalf("expected default settings")
	}
}

func TestImport_FailuresReturnEmptyForm(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		is   error
	}{
		{"malformed json", `{"openapi":`, nil},
		{"plain text", `not a schema`, nil},
		{"blank", "  \n", ErrEmptyDocument},
		{"unsupported", `{"foo":1}`, ErrUnsupportedFormat},
		{"empty schemas", `{"openapi":"3.0.1","components":{"schemas":{}}}`, ErrNoSchemas},
		{"duplicate ids", `{"fields":[{"id":"a","type":"text"},{"id":"a","type":"text"}]}`, ErrDuplicateField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := newTestImporter().Import([]byte(tc.raw), "Broken")
			var parseErr *ParseError
			if !errors.As(res.Err, &parseErr) {
				t.Fatalf("expected *ParseError, got %v", res.Err)
			}
			if tc.is != nil && !errors.Is(res.Err, tc.is) {
				t.Fatalf("expected %v, got %v", tc.is, res.Err)
			}
			if len(res.Definition.Fields) != 0 || res.Definition.Fields == nil {
				t.Fatalf("expected empty non-nil fields, got %#v", res.Definition.Fields)
			}
			if res.HasLayout || res.Rows != nil || res.ReadOnly || res.Format != FormatUnknown {
				t.Fatalf("expected empty result, got %+v", res)
			}
		})
	}
}

func TestImport_EmptyLayoutFallsBackToInference(t *testing.T) {
	doc := `{"openapi":"3.0.1","x-layout":{"rows":[]},"components":{"schemas":{"S":{"type":"object","readOnly":true,"properties":{"when":{"type":"string","format":"date","nullable":false}}}}}}`
	res := newTestImporter().Import([]byte(doc), "S")
	if res.Err != nil {
		t.Fatalf("import: %v", res.Err)
	}
	if res.HasLayout || !res.ReadOnly {
		t.Fatalf("unexpected flags: %+v", res)
	}
	if len(res.Definition.Fields) != 1 || res.Definition.Fields[0].Type != model.FieldTypeDate || !res.Definition.Fields[0].Required {
		t.Fatalf("unexpected fields: %+v", res.Definition.Fields)
	}
}

func TestImport_YAMLKeepsOrder(t *testing.T) {
	rows := sampleRows()
	def := model.Definition{ID: "7", Name: "Order", Fields: model.Flatten(rows)}
	data, err := export.New().ToYAML(def, false, nil)
	if err != nil {
		t.Fatalf("to yaml: %v", err)
	}
	res := newTestImporter().Import(data, "Order")
	if res.Err != nil {
		t.Fatalf("import: %v", res.Err)
	}
	var ids []string
	for _, field := range res.Definition.Fields {
		ids = append(ids, field.ID)
	}
	if diff := cmp.Diff([]string{"name", "qty", "tags", "notes"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_Sanitizer(t *testing.T) {
	doc := `{"type":"object","properties":{"a":{"title":"<b>Name</b><script>x()</script>","description":"<i>hint</i>"}}}`
	res := newTestImporter(WithSanitizer(nil)).Import([]byte(doc), "<em>Form</em>")
	if res.Err != nil {
		t.Fatalf("import: %v", res.Err)
	}
	field := res.Definition.Fields[0]
	if field.Label != "Name" || field.Placeholder != "hint" || res.Definition.Name != "Form" {
		t.Fatalf("expected markup stripped, got %q %q %q", field.Label, field.Placeholder, res.Definition.Name)
	}
}

func TestImport_RecoversValidators(t *testing.T) {
	doc := `{"type":"object","properties":{
	  "mail": {"type":"string","format":"email","minLength":3,"pattern":"^.+@corp$"},
	  "days": {"type":"array","items":{"type":"string","enum":["Mon","Tue"]},"minItems":1,"maxItems":2}
	}}`
	res := newTestImporter().Import([]byte(doc), "V")
	if res.Err != nil {
		t.Fatalf("import: %v", res.Err)
	}
	wantRules := []model.ValidationRule{
		{Kind: model.ValidationMinLength, Value: float64(3)},
		{Kind: model.ValidationPattern, Value: "^.+@corp$"},
		{Kind: model.ValidationEmail},
	}
	if diff := cmp.Diff(wantRules, res.Definition.Fields[0].Validations); diff != "" {
		t.Fatalf("validators mismatch (-want +got):\n%s", diff)
	}
	wantAttrs := &model.ChoiceAttrs{
		Source:        model.OptionConfig{Source: model.OptionSourceStatic, Static: "Mon,Tue"},
		MinSelections: model.Int(1),
		MaxSelections: model.Int(2),
	}
	if diff := cmp.Diff(wantAttrs, res.Definition.Fields[1].Attrs); diff != "" {
		t.Fatalf("choice attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestStaticOptions(t *testing.T) {
	if got := staticOptions([]string{"A", "B"}); got != "A,B" {
		t.Fatalf("expected comma form, got %q", got)
	}
	got := staticOptions([]string{"a, b", "c"})
	if !strings.HasPrefix(got, "[") {
		t.Fatalf("expected JSON form for values with commas, got %q", got)
	}
}

func TestPreview(t *testing.T) {
	im := newTestImporter()
	cases := []struct {
		name string
		raw  string
		want Summary
	}{
		{"openapi", exportDocument(t, sampleRows()), Summary{FieldCount: 4, FormType: "openapi", HasFields: true}},
		{"bare schema", `{"type":"object","properties":{"a":{},"b":{}}}`, Summary{FieldCount: 2, FormType: "legacy", HasFields: true}},
		{"native", `{"fields":[]}`, Summary{FieldCount: 0, FormType: "legacy", HasFields: false}},
		{"garbage", `{`, Summary{FormType: "unknown"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, im.Preview([]byte(tc.raw))); diff != "" {
				t.Fatalf("summary mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyTo(t *testing.T) {
	rows := sampleRows()
	res := newTestImporter().Import([]byte(exportDocument(t, rows)), "Order")

	ed := editor.New()
	if got := ApplyTo(ed, res); got != editor.Applied {
		t.Fatalf("expected applied, got %s", got)
	}
	if diff := cmp.Diff(rows, ed.RowsSnapshot()); diff != "" {
		t.Fatalf("editor rows mismatch (-want +got):\n%s", diff)
	}

	before := ed.RowsSnapshot()
	failed := newTestImporter().Import([]byte("{"), "x")
	if got := ApplyTo(ed, failed); got != editor.Invalid {
		t.Fatalf("expected invalid for failed import, got %s", got)
	}
	if diff := cmp.Diff(before, ed.RowsSnapshot()); diff != "" {
		t.Fatalf("editor changed after failed import (-want +got):\n%s", diff)
	}

	inferred := newTestImporter().Import(stripLayout(t, exportDocument(t, rows)), "Order")
	if got := ApplyTo(ed, inferred); got != editor.Applied {
		t.Fatalf("expected applied, got %s", got)
	}
	if ids := ed.RowIDs(); len(ids) != 1 {
		t.Fatalf("expected a single row, got %v", ids)
	}
	if len(ed.Fields()) != 4 {
		t.Fatalf("expected four fields, got %d", len(ed.Fields()))
	}
}
