package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
	selectAsked  []string
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.selectAsked = append(s.selectAsked, cfg.Message)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) consumed(t *testing.T) {
	t.Helper()
	if s.inputPos != len(s.inputs) || s.selectPos != len(s.selectIdx) ||
		s.confirmPos != len(s.confirm) || s.textPos != len(s.textAreas) {
		t.Fatalf("prompts not consumed as expected: %+v", s)
	}
}

func fixedClock() time.Time { return time.UnixMilli(1700000000000) }

func rowIDs() func() string {
	n := 0
	return func() string {
		n++
		return "row-" + string(rune('0'+n))
	}
}

func TestRun_AddEmailField(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Contact", "Work email", "you@example.com"},
		selectIdx: []int{0, 3, 5},
		confirm:   []bool{true},
	}
	s := New(
		WithPromptDriver(driver),
		WithClock(fixedClock),
		WithEditor(editor.New(editor.WithRowIDGenerator(rowIDs()))),
	)

	def, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	driver.consumed(t)

	if def.ID != "form_1700000000000" || def.Name != "Contact" {
		t.Fatalf("unexpected definition header %q %q", def.ID, def.Name)
	}
	if len(def.Fields) != 1 {
		t.Fatalf("expected one field, got %d", len(def.Fields))
	}
	got := def.Fields[0]
	if got.Type != model.FieldTypeEmail || got.Label != "Work email" || got.Placeholder != "you@example.com" || !got.Required {
		t.Fatalf("unexpected field %+v", got)
	}
	if want := []string{"Row 1: Work email [email]"}; !cmp.Equal(want, driver.infoMessages) {
		t.Fatalf("info mismatch (-want +got):\n%s", cmp.Diff(want, driver.infoMessages))
	}
}

func TestRun_ChoiceFieldWithAPISource(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{
			"Order",
			"Size", "Pick one",
			"/api/lists/sizes", "data", "value", "label",
		},
		// add row, add field, Dropdown, second row, api source, GET, finish
		selectIdx: []int{4, 0, 4, 1, 1, 0, 5},
		confirm:   []bool{false},
		textAreas: []string{""},
	}
	s := New(
		WithPromptDriver(driver),
		WithClock(fixedClock),
		WithEditor(editor.New(editor.WithRowIDGenerator(rowIDs()))),
	)

	def, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	driver.consumed(t)

	if len(def.Rows) != 2 || len(def.Rows[0].Fields) != 0 || len(def.Rows[1].Fields) != 1 {
		t.Fatalf("unexpected layout %+v", def.Rows)
	}
	field := def.Rows[1].Fields[0]
	attrs, ok := field.Attrs.(*model.ChoiceAttrs)
	if !ok {
		t.Fatalf("expected choice attrs, got %T", field.Attrs)
	}
	if attrs.Source.Source != model.OptionSourceAPI {
		t.Fatalf("expected api source, got %q", attrs.Source.Source)
	}
	if attrs.Source.API == nil || attrs.Source.API.URL != "/api/lists/sizes" || attrs.Source.API.DataPath != "data" {
		t.Fatalf("unexpected api config %+v", attrs.Source.API)
	}
	wantAsked := []string{"What next?", "What next?", "Field type", "Add to row", "Option Source", "HTTP Method", "What next?"}
	if diff := cmp.Diff(wantAsked, driver.selectAsked); diff != "" {
		t.Fatalf("select prompts mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_MoveAndDelete(t *testing.T) {
	ed := editor.New(editor.WithRowIDGenerator(rowIDs()))
	a := model.NewField("a", model.FieldTypeText)
	a.Label = "A"
	b := model.NewField("b", model.FieldTypeDate)
	b.Label = "B"
	if res := ed.SetRows([]model.Row{{ID: "r1", Fields: []model.Field{a, b}}, {ID: "r2", Fields: []model.Field{}}}); res != editor.Applied {
		t.Fatalf("set rows: %s", res)
	}

	driver := &stubDriver{
		inputs: []string{"Layout"},
		// move, field A, row 2, delete, field B, finish
		selectIdx: []int{2, 0, 1, 3, 0, 5},
	}
	def, err := New(WithPromptDriver(driver), WithEditor(ed)).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	driver.consumed(t)

	want := []string{
		"Row 1: B [date]\nRow 2: A [text]",
		"Row 1: (empty)\nRow 2: A [text]",
	}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if len(def.Fields) != 1 || def.Fields[0].ID != "a" {
		t.Fatalf("unexpected fields %+v", def.Fields)
	}
}

func TestRun_EditWithoutFields(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Empty"},
		selectIdx: []int{1, 5},
	}
	if _, err := New(WithPromptDriver(driver)).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(driver.infoMessages) != 2 || driver.infoMessages[0] != "The form has no fields yet." {
		t.Fatalf("unexpected info %q", driver.infoMessages)
	}
}

func TestRun_InvalidNumberIsReported(t *testing.T) {
	ed := editor.New(editor.WithRowIDGenerator(rowIDs()))
	area := model.NewField("notes", model.FieldTypeTextarea)
	area.Label = "Notes"
	ed.AddField(area, ed.RowIDs()[0], editor.Append)

	driver := &stubDriver{
		// name, label, placeholder, rows
		inputs:    []string{"Notes", "Notes", "", "lots"},
		selectIdx: []int{1, 0, 5},
		confirm:   []bool{false},
	}
	def, err := New(WithPromptDriver(driver), WithEditor(ed)).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	driver.consumed(t)
	if driver.infoMessages[0] != `Rows: "lots" is not a number` {
		t.Fatalf("unexpected info %q", driver.infoMessages)
	}
	if _, ok := def.Fields[0].Attrs.(*model.TextareaAttrs); !ok {
		t.Fatalf("expected textarea attrs, got %T", def.Fields[0].Attrs)
	}
}

func TestRun_Aborted(t *testing.T) {
	driver := &abortDriver{}
	_, err := New(WithPromptDriver(driver)).Run(context.Background())
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

type abortDriver struct{ stubDriver }

func (a *abortDriver) Input(context.Context, InputConfig) (string, error) { return "", ErrAborted }

func TestVisible(t *testing.T) {
	cases := []struct {
		key    string
		source string
		want   bool
	}{
		{key: "staticOptions", source: "static", want: true},
		{key: "staticOptions", source: "api", want: false},
		{key: "apiConfig.url", source: "static", want: false},
		{key: "apiConfig.url", source: "external", want: true},
		{key: "label", source: "api", want: true},
	}
	for _, tc := range cases {
		if got := Visible(tc.key, map[string]any{"optionSource": tc.source}); got != tc.want {
			t.Fatalf("Visible(%q, %q) = %v, want %v", tc.key, tc.source, got, tc.want)
		}
	}
}
