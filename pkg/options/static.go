package options

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/transform"
)

// ParseStatic parses a static option string. A value that decodes as a JSON
// array is read item by item (raw values or {value,label} objects); anything
// else is split on commas, trimmed, and empty entries are dropped.
func ParseStatic(raw string) []model.OptionItem {
	if strings.TrimSpace(raw) == "" {
		return []model.OptionItem{}
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		if items, ok := decoded.([]any); ok {
			out := make([]model.OptionItem, 0, len(items))
			for _, item := range items {
				out = append(out, staticItem(item))
			}
			return out
		}
	}

	parts := strings.Split(raw, ",")
	out := make([]model.OptionItem, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, model.OptionItem{Value: part, Label: part})
	}
	return out
}

func staticItem(item any) model.OptionItem {
	obj, ok := item.(map[string]any)
	if !ok {
		text := transform.Text(item)
		return model.OptionItem{Value: text, Label: text}
	}
	value := transform.Text(obj)
	label := value
	if v, ok := obj["value"]; ok && !isFalsy(v) {
		value = transform.Text(v)
	}
	if l, ok := obj["label"]; ok && !isFalsy(l) {
		label = transform.Text(l)
	}
	return model.OptionItem{Value: value, Label: label}
}

// FormatStatic renders options as the JSON array form accepted by
// ParseStatic.
func FormatStatic(items []model.OptionItem) string {
	if len(items) == 0 {
		return ""
	}
	data, err := json.Marshal(items)
	if err != nil {
		return ""
	}
	return string(data)
}

func isFalsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case float64:
		return v == 0
	}
	return false
}
