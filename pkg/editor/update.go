package editor

import (
	"reflect"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// UpdateField sets a top-level attribute of the field using its flat JSON
// key ("label", "required", "min", "staticOptions", ...). Keys the field's
// type does not carry and values that do not decode for it yield Invalid.
// Changing "type" re-keys the attribute variant and drops attributes foreign
// to the new type.
func (e *Editor) UpdateField(fieldID, key string, value any) Result {
	key = strings.TrimSpace(key)
	if key == "" {
		return Invalid
	}
	return e.patch(fieldID, []string{key}, value, func(values map[string]any) bool {
		values[key] = value
		return true
	})
}

// UpdateFieldPath sets a nested attribute addressed by a dotted key such as
// "apiConfig.url". Missing intermediate objects are created.
func (e *Editor) UpdateFieldPath(fieldID, path string, value any) Result {
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			return Invalid
		}
	}
	if len(segments) == 1 {
		return e.UpdateField(fieldID, segments[0], value)
	}
	return e.patch(fieldID, segments, value, func(values map[string]any) bool {
		current := values
		for _, segment := range segments[:len(segments)-1] {
			child, ok := current[segment].(map[string]any)
			if !ok {
				child = map[string]any{}
				current[segment] = child
			}
			current = child
		}
		current[segments[len(segments)-1]] = value
		return true
	})
}

// patch applies a change to the field's flat map and decodes it back. The
// change must survive the round trip: a key the type does not carry, or a
// non-zero value that decodes to nothing, is Invalid.
func (e *Editor) patch(fieldID string, segments []string, value any, apply func(map[string]any) bool) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, f, found := locate(e.rows, fieldID)
	if !found {
		return NotFound
	}
	values, err := e.rows[r].Fields[f].ToMap()
	if err != nil {
		return Invalid
	}
	if !apply(values) {
		return Invalid
	}
	updated, err := model.FieldFromMap(values)
	if err != nil {
		e.logger.Debug("editor: rejected field update", "field", fieldID, "error", err)
		return Invalid
	}
	if strings.TrimSpace(updated.ID) == "" {
		return Invalid
	}
	if !updated.Type.AcceptsKey(segments[0]) {
		e.logger.Debug("editor: key not carried by type", "field", fieldID, "key", segments[0], "type", updated.Type)
		return Invalid
	}
	if !isZero(value) {
		encoded, err := updated.ToMap()
		if err != nil {
			return Invalid
		}
		if _, ok := lookup(encoded, segments); !ok {
			e.logger.Debug("editor: update dropped on decode", "field", fieldID, "path", strings.Join(segments, "."))
			return Invalid
		}
	}
	if updated.ID != fieldID {
		if _, _, clash := locate(e.rows, updated.ID); clash {
			return Invalid
		}
		if e.selected == fieldID {
			e.selected = updated.ID
		}
	}

	next := model.CloneRows(e.rows)
	next[r].Fields[f] = updated
	e.rows = next
	return Applied
}

func lookup(values map[string]any, segments []string) (any, bool) {
	var current any = values
	for _, segment := range segments {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// isZero reports values that omitempty encoding leaves out.
func isZero(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return v.IsZero()
}
