// Package tui runs an interactive form-building session in the terminal. The
// session drives the editor through the catalog's setting descriptors, so
// every field type is configured with the same prompts the palette declares.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/catalog"
	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/transform/expr"
)

const (
	ActionAddField    = "Add field"
	ActionEditField   = "Edit field"
	ActionMoveField   = "Move field"
	ActionDeleteField = "Delete field"
	ActionAddRow      = "Add row"
	ActionFinish      = "Finish"
)

var actions = []string{ActionAddField, ActionEditField, ActionMoveField, ActionDeleteField, ActionAddRow, ActionFinish}

// Session holds one interactive build.
type Session struct {
	driver  PromptDriver
	catalog *catalog.Registry
	editor  *editor.Editor
	logger  *slog.Logger
	now     func() time.Time
}

// Option customises a Session.
type Option func(*Session)

// WithPromptDriver replaces the survey driver, typically with a scripted one
// in tests.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithCatalog sets the field types offered when adding a field.
func WithCatalog(reg *catalog.Registry) Option {
	return func(s *Session) {
		if reg != nil {
			s.catalog = reg
		}
	}
}

// WithEditor starts the session from an existing editor state.
func WithEditor(ed *editor.Editor) Option {
	return func(s *Session) {
		if ed != nil {
			s.editor = ed
		}
	}
}

// WithLogger sets the logger for the session and the editor it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for the form id.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a session with the survey driver, the builtin catalog and a
// fresh editor unless overridden.
func New(opts ...Option) *Session {
	s := &Session{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	if s.catalog == nil {
		s.catalog = catalog.New()
	}
	if s.editor == nil {
		s.editor = editor.New(editor.WithLogger(s.logger))
	}
	return s
}

// Editor exposes the state being built.
func (s *Session) Editor() *editor.Editor { return s.editor }

// Run prompts for a form name, then loops over editing actions until the user
// finishes. The definition carries the final rows.
func (s *Session) Run(ctx context.Context) (model.Definition, error) {
	name, err := s.driver.Input(ctx, InputConfig{
		Message:   "Form name",
		Validator: required("form name"),
	})
	if err != nil {
		return model.Definition{}, err
	}
	name = strings.TrimSpace(name)

	for {
		if err := ctx.Err(); err != nil {
			return model.Definition{}, err
		}
		idx, err := s.driver.Select(ctx, SelectConfig{Message: "What next?", Options: actions})
		if err != nil {
			return model.Definition{}, err
		}
		if idx < 0 || idx >= len(actions) {
			continue
		}

		action := actions[idx]
		s.logger.Debug("tui: action", "action", action)
		switch action {
		case ActionAddField:
			err = s.addField(ctx)
		case ActionEditField:
			err = s.editField(ctx)
		case ActionMoveField:
			err = s.moveField(ctx)
		case ActionDeleteField:
			err = s.deleteField(ctx)
		case ActionAddRow:
			s.editor.AddRow()
		case ActionFinish:
			id := fmt.Sprintf("form_%d", s.now().UnixMilli())
			return s.editor.CurrentDefinition(id, name), nil
		}
		if err != nil {
			return model.Definition{}, err
		}
		if err := s.driver.Info(ctx, Summary(s.editor.RowsSnapshot())); err != nil {
			return model.Definition{}, err
		}
	}
}

func (s *Session) addField(ctx context.Context) error {
	defs := s.catalog.List()
	labels := make([]string, len(defs))
	for i, def := range defs {
		labels[i] = def.Label
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Field type", Options: labels, PageSize: len(labels)})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(defs) {
		return nil
	}
	field, err := s.catalog.CreateField(defs[idx].Type)
	if err != nil {
		return err
	}

	rowID, err := s.pickRow(ctx, "Add to row")
	if err != nil {
		return err
	}
	if res := s.editor.AddField(field, rowID, editor.Append); !res.OK() {
		return s.driver.Info(ctx, "could not add field: "+res.String())
	}
	s.editor.SetSelectedField(field.ID)
	return s.configure(ctx, field.ID)
}

func (s *Session) editField(ctx context.Context) error {
	id, ok, err := s.pickField(ctx, "Edit which field?")
	if err != nil || !ok {
		return err
	}
	s.editor.SetSelectedField(id)
	return s.configure(ctx, id)
}

func (s *Session) moveField(ctx context.Context) error {
	id, ok, err := s.pickField(ctx, "Move which field?")
	if err != nil || !ok {
		return err
	}
	source := rowOf(s.editor.RowsSnapshot(), id)
	target, err := s.pickRow(ctx, "Move to row")
	if err != nil {
		return err
	}
	if res := s.editor.MoveField(id, source, target, editor.Append); !res.OK() {
		return s.driver.Info(ctx, "could not move field: "+res.String())
	}
	return nil
}

func (s *Session) deleteField(ctx context.Context) error {
	id, ok, err := s.pickField(ctx, "Delete which field?")
	if err != nil || !ok {
		return err
	}
	s.editor.DeleteField(id)
	return nil
}

// pickRow skips the prompt when there is a single row.
func (s *Session) pickRow(ctx context.Context, message string) (string, error) {
	rows := s.editor.RowsSnapshot()
	if len(rows) == 1 {
		return rows[0].ID, nil
	}
	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = fmt.Sprintf("Row %d (%d fields)", i+1, len(row.Fields))
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: len(rows) - 1})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(rows) {
		return rows[len(rows)-1].ID, nil
	}
	return rows[idx].ID, nil
}

func (s *Session) pickField(ctx context.Context, message string) (string, bool, error) {
	fields := s.editor.Fields()
	if len(fields) == 0 {
		return "", false, s.driver.Info(ctx, "The form has no fields yet.")
	}
	labels := make([]string, len(fields))
	for i, field := range fields {
		labels[i] = fmt.Sprintf("%s (%s)", field.Label, field.Type)
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: message, Options: labels})
	if err != nil {
		return "", false, err
	}
	if idx < 0 || idx >= len(fields) {
		return "", false, nil
	}
	return fields[idx].ID, true, nil
}

// configure walks the type's settings, asking only those visible for the
// field's current values.
func (s *Session) configure(ctx context.Context, fieldID string) error {
	field, ok := s.editor.Field(fieldID)
	if !ok {
		return nil
	}
	def, ok := s.catalog.Get(field.Type)
	if !ok {
		return nil
	}
	for _, setting := range def.Settings {
		field, ok = s.editor.Field(fieldID)
		if !ok {
			return nil
		}
		values, err := field.ToMap()
		if err != nil {
			return err
		}
		if !Visible(setting.Key, values) {
			continue
		}
		current, _ := expr.Lookup(values, setting.Key)
		value, err := s.ask(ctx, setting, current)
		if err != nil {
			return err
		}
		if res := s.editor.UpdateFieldPath(fieldID, setting.Key, value); !res.OK() {
			if err := s.driver.Info(ctx, fmt.Sprintf("%s was not changed (%s)", setting.Label, res)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) ask(ctx context.Context, setting catalog.SettingDescriptor, current any) (any, error) {
	switch setting.InputKind {
	case catalog.InputCheckbox:
		on, _ := current.(bool)
		return s.driver.Confirm(ctx, ConfirmConfig{Message: setting.Label, Default: on})
	case catalog.InputNumber:
		raw, err := s.driver.Input(ctx, InputConfig{
			Message:   setting.Label,
			Default:   model.ScalarString(current),
			Validator: number,
		})
		if err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return current, s.driver.Info(ctx, fmt.Sprintf("%s: %q is not a number", setting.Label, raw))
		}
		return n, nil
	case catalog.InputSelect:
		labels := make([]string, len(setting.Options))
		def := 0
		for i, opt := range setting.Options {
			labels[i] = opt.Label
			if opt.Value == model.ScalarString(current) {
				def = i
			}
		}
		idx, err := s.driver.Select(ctx, SelectConfig{Message: setting.Label, Options: labels, DefaultIndex: def})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(setting.Options) {
			return current, nil
		}
		return setting.Options[idx].Value, nil
	case catalog.InputTextarea:
		return s.driver.TextArea(ctx, TextAreaConfig{Message: setting.Label, Default: model.ScalarString(current)})
	default:
		return s.driver.Input(ctx, InputConfig{Message: setting.Label, Default: model.ScalarString(current)})
	}
}

// Visible reports whether a setting applies given the field's current values:
// static options only for the static source, API settings only for the API
// sources.
func Visible(key string, values map[string]any) bool {
	source, _ := values["optionSource"].(string)
	switch {
	case key == "staticOptions":
		return source == "" || source == string(model.OptionSourceStatic)
	case strings.HasPrefix(key, "apiConfig."):
		return source == string(model.OptionSourceAPI) || source == string(model.OptionSourceExternal)
	default:
		return true
	}
}

// Summary renders the layout as one line per row.
func Summary(rows []model.Row) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Row %d:", i+1)
		if len(row.Fields) == 0 {
			b.WriteString(" (empty)")
			continue
		}
		for j, field := range row.Fields {
			if j > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, " %s [%s]", field.Label, field.Type)
		}
	}
	return b.String()
}

func rowOf(rows []model.Row, fieldID string) string {
	for _, row := range rows {
		for _, field := range row.Fields {
			if field.ID == fieldID {
				return row.ID
			}
		}
	}
	return ""
}

func required(what string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func number(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return fmt.Errorf("%q is not a number", value)
	}
	return nil
}
