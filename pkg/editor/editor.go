package editor

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Append inserts at the end of the target row.
const Append = -1

// Editor is the mutable form model for one editing session. It is safe for
// concurrent use; construct one per session with New.
type Editor struct {
	mu       sync.RWMutex
	rows     []model.Row
	selected string

	newRowID func() string
	logger   *slog.Logger
}

// Option customises an Editor.
type Option func(*Editor)

// WithRowIDGenerator overrides how row ids are generated.
func WithRowIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		if fn != nil {
			e.newRowID = fn
		}
	}
}

// WithLogger sets the logger used for mutation traces.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New returns an editor holding a single empty row.
func New(opts ...Option) *Editor {
	e := &Editor{
		newRowID: uuid.NewString,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.rows = []model.Row{e.emptyRow()}
	return e
}

func (e *Editor) emptyRow() model.Row {
	return model.Row{ID: e.newRowID(), Fields: []model.Field{}}
}

// AddField inserts field into the row rowID at index. Append or any index
// outside the row appends.
func (e *Editor) AddField(field model.Field, rowID string, index int) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(field.ID) == "" {
		return Invalid
	}
	if _, _, found := locate(e.rows, field.ID); found {
		e.logger.Debug("editor: duplicate field id", "field", field.ID)
		return Invalid
	}
	target := rowIndex(e.rows, rowID)
	if target < 0 {
		e.logger.Debug("editor: add to unknown row", "row", rowID)
		return NotFound
	}

	next := model.CloneRows(e.rows)
	next[target].Fields = insertAt(next[target].Fields, field.Clone(), index)
	e.rows = next
	e.logger.Debug("editor: field added", "field", field.ID, "row", rowID)
	return Applied
}

// DeleteField removes the field from whichever row holds it and clears the
// selection when it pointed at that field.
func (e *Editor) DeleteField(fieldID string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, f, found := locate(e.rows, fieldID)
	if !found {
		return NotFound
	}
	next := model.CloneRows(e.rows)
	next[r].Fields = removeAt(next[r].Fields, f)
	e.rows = next
	if e.selected == fieldID {
		e.selected = ""
	}
	e.logger.Debug("editor: field deleted", "field", fieldID)
	return Applied
}

// MoveField moves a field out of sourceRowID into targetRowID at index. The
// index is interpreted after the field has been removed, so moving within one
// row reorders it. Nothing changes unless both the field in the source row and
// the target row exist.
func (e *Editor) MoveField(fieldID, sourceRowID, targetRowID string, index int) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	src := rowIndex(e.rows, sourceRowID)
	dst := rowIndex(e.rows, targetRowID)
	if src < 0 || dst < 0 {
		return NotFound
	}
	pos := fieldIndex(e.rows[src].Fields, fieldID)
	if pos < 0 {
		return NotFound
	}

	next := model.CloneRows(e.rows)
	field := next[src].Fields[pos]
	next[src].Fields = removeAt(next[src].Fields, pos)
	next[dst].Fields = insertAt(next[dst].Fields, field, index)
	e.rows = next
	e.logger.Debug("editor: field moved", "field", fieldID, "from", sourceRowID, "to", targetRowID, "index", index)
	return Applied
}

// AddRow appends an empty row and returns its id.
func (e *Editor) AddRow() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	row := e.emptyRow()
	next := model.CloneRows(e.rows)
	e.rows = append(next, row)
	return row.ID
}

// DeleteRow removes a row and its fields. The last remaining row is never
// removed.
func (e *Editor) DeleteRow(rowID string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := rowIndex(e.rows, rowID)
	if idx < 0 {
		return NotFound
	}
	if len(e.rows) <= 1 {
		return Refused
	}
	if e.selected != "" && fieldIndex(e.rows[idx].Fields, e.selected) >= 0 {
		e.selected = ""
	}
	next := make([]model.Row, 0, len(e.rows)-1)
	for i, row := range e.rows {
		if i != idx {
			next = append(next, row.Clone())
		}
	}
	e.rows = next
	return Applied
}

// SetSelectedField sets the selection pointer without checking that the id
// exists. SelectedField treats a dangling pointer as no selection.
func (e *Editor) SetSelectedField(fieldID string) {
	e.mu.Lock()
	e.selected = fieldID
	e.mu.Unlock()
}

// SelectedID returns the raw selection pointer.
func (e *Editor) SelectedID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selected
}

// SelectedField returns the selected field when the pointer resolves.
func (e *Editor) SelectedField() (model.Field, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.selected == "" {
		return model.Field{}, false
	}
	r, f, found := locate(e.rows, e.selected)
	if !found {
		return model.Field{}, false
	}
	return e.rows[r].Fields[f].Clone(), true
}

// Field returns the field with the given id.
func (e *Editor) Field(fieldID string) (model.Field, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, f, found := locate(e.rows, fieldID)
	if !found {
		return model.Field{}, false
	}
	return e.rows[r].Fields[f].Clone(), true
}

// Fields flattens all rows into one ordered list.
func (e *Editor) Fields() []model.Field {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fields := model.Flatten(e.rows)
	for i := range fields {
		fields[i] = fields[i].Clone()
	}
	return fields
}

// RowsSnapshot returns a copy of the rows safe to hand to the exporter.
func (e *Editor) RowsSnapshot() []model.Row {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return snapshot(e.rows)
}

func snapshot(rows []model.Row) []model.Row {
	out := make([]model.Row, len(rows))
	for i, row := range rows {
		fields := make([]model.Field, len(row.Fields))
		for j, field := range row.Fields {
			fields[j] = field.Clone()
		}
		out[i] = model.Row{ID: row.ID, Fields: fields}
	}
	return out
}

// RowIDs lists row ids in order.
func (e *Editor) RowIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, len(e.rows))
	for i, row := range e.rows {
		ids[i] = row.ID
	}
	return ids
}

// LoadDefinition replaces all rows with a single row holding def.Fields in
// order and clears the selection.
func (e *Editor) LoadDefinition(def model.Definition) Result {
	if hasDuplicateIDs(def.Fields) {
		return Invalid
	}
	fields := make([]model.Field, len(def.Fields))
	for i, field := range def.Fields {
		fields[i] = field.Clone()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	row := e.emptyRow()
	row.Fields = fields
	e.rows = []model.Row{row}
	e.selected = ""
	e.logger.Debug("editor: definition loaded", "form", def.Name, "fields", len(fields))
	return Applied
}

// SetRows installs an explicit row layout and clears the selection. An empty
// layout installs one empty row; rows without an id get a generated one.
func (e *Editor) SetRows(rows []model.Row) Result {
	if hasDuplicateIDs(model.Flatten(rows)) {
		return Invalid
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if len(rows) == 0 {
		e.rows = []model.Row{e.emptyRow()}
		e.selected = ""
		return Applied
	}
	next := make([]model.Row, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		id := row.ID
		if _, dup := seen[id]; id == "" || dup {
			id = e.newRowID()
		}
		seen[id] = struct{}{}
		fields := make([]model.Field, len(row.Fields))
		for j, field := range row.Fields {
			fields[j] = field.Clone()
		}
		next[i] = model.Row{ID: id, Fields: fields}
	}
	e.rows = next
	e.selected = ""
	e.logger.Debug("editor: rows installed", "rows", len(next))
	return Applied
}

// Clear resets to a single empty row.
func (e *Editor) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = []model.Row{e.emptyRow()}
	e.selected = ""
}

// CurrentDefinition assembles a definition from the current rows. The rows
// are attached so the exporter can embed them as layout; fields and rows are
// read from the same state.
func (e *Editor) CurrentDefinition(id, name string) model.Definition {
	e.mu.RLock()
	rows := snapshot(e.rows)
	fields := snapshot(e.rows)
	e.mu.RUnlock()

	settings := model.DefaultSettings()
	return model.Definition{
		ID:       id,
		Name:     name,
		Fields:   model.Flatten(fields),
		Settings: &settings,
		Rows:     rows,
	}
}

func rowIndex(rows []model.Row, rowID string) int {
	for i, row := range rows {
		if row.ID == rowID {
			return i
		}
	}
	return -1
}

func fieldIndex(fields []model.Field, fieldID string) int {
	for i, field := range fields {
		if field.ID == fieldID {
			return i
		}
	}
	return -1
}

func locate(rows []model.Row, fieldID string) (int, int, bool) {
	for r, row := range rows {
		if f := fieldIndex(row.Fields, fieldID); f >= 0 {
			return r, f, true
		}
	}
	return -1, -1, false
}

func insertAt(fields []model.Field, field model.Field, index int) []model.Field {
	if index < 0 || index >= len(fields) {
		return append(fields, field)
	}
	out := make([]model.Field, 0, len(fields)+1)
	out = append(out, fields[:index]...)
	out = append(out, field)
	return append(out, fields[index:]...)
}

func removeAt(fields []model.Field, index int) []model.Field {
	out := make([]model.Field, 0, len(fields)-1)
	out = append(out, fields[:index]...)
	return append(out, fields[index+1:]...)
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
