package model

import (
	"slices"

	json "github.com/goccy/go-json"
)

// fieldWire is the flat JSON shape of a field. Attributes are optional so a
// field only emits what its variant carries.
type fieldWire struct {
	ID               string           `json:"id"`
	Type             FieldType        `json:"type"`
	Label            string           `json:"label"`
	Required         bool             `json:"required"`
	Placeholder      string           `json:"placeholder,omitempty"`
	InputType        string           `json:"inputType,omitempty"`
	Min              *float64         `json:"min,omitempty"`
	Max              *float64         `json:"max,omitempty"`
	Step             *float64         `json:"step,omitempty"`
	Rows             *int             `json:"rows,omitempty"`
	Accept           string           `json:"accept,omitempty"`
	OptionSource     OptionSource     `json:"optionSource,omitempty"`
	StaticOptions    string           `json:"staticOptions,omitempty"`
	APIConfig        *APIConfig       `json:"apiConfig,omitempty"`
	Options          []OptionItem     `json:"options,omitempty"`
	AllowMultiple    bool             `json:"allowMultiple,omitempty"`
	MinSelections    *int             `json:"minSelections,omitempty"`
	MaxSelections    *int             `json:"maxSelections,omitempty"`
	ButtonText       string           `json:"buttonText,omitempty"`
	ShowCancelButton bool             `json:"showCancelButton,omitempty"`
	Alignment        string           `json:"alignment,omitempty"`
	Validations      []ValidationRule `json:"validations,omitempty"`
}

// MarshalJSON emits the flat native field shape.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.toWire())
}

// UnmarshalJSON decodes the flat native shape, keeping only the attributes
// valid for the decoded type.
func (f *Field) UnmarshalJSON(data []byte) error {
	var w fieldWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*f = fromWire(w)
	return nil
}

func (f Field) toWire() fieldWire {
	w := fieldWire{
		ID:          f.ID,
		Type:        f.Type,
		Label:       f.Label,
		Required:    f.Required,
		Placeholder: f.Placeholder,
		Validations: f.Validations,
	}
	switch attrs := f.Attrs.(type) {
	case *TextAttrs:
		w.InputType = attrs.InputType
		w.Min, w.Max = attrs.Min, attrs.Max
	case *TextareaAttrs:
		w.Rows = attrs.Rows
		w.Min, w.Max = attrs.Min, attrs.Max
	case *NumberAttrs:
		w.Min, w.Max, w.Step = attrs.Min, attrs.Max, attrs.Step
	case *ChoiceAttrs:
		w.OptionSource = attrs.Source.Source
		w.StaticOptions = attrs.Source.Static
		w.APIConfig = attrs.Source.API
		w.Options = attrs.Inline
		w.AllowMultiple = attrs.AllowMultiple
		w.MinSelections, w.MaxSelections = attrs.MinSelections, attrs.MaxSelections
	case *FileAttrs:
		w.Accept = attrs.Accept
	case *ButtonAttrs:
		w.ButtonText = attrs.ButtonText
		w.ShowCancelButton = attrs.ShowCancelButton
		w.Alignment = attrs.Alignment
	case *CheckboxAttrs, *DateAttrs, *GenericAttrs, nil:
	}
	return w
}

func fromWire(w fieldWire) Field {
	f := Field{
		ID:          w.ID,
		Type:        w.Type,
		Label:       w.Label,
		Required:    w.Required,
		Placeholder: w.Placeholder,
		Validations: w.Validations,
	}
	attrs := AttrsFor(w.Type)
	switch a := attrs.(type) {
	case *TextAttrs:
		a.InputType = w.InputType
		a.Min, a.Max = w.Min, w.Max
	case *TextareaAttrs:
		a.Rows = w.Rows
		a.Min, a.Max = w.Min, w.Max
	case *NumberAttrs:
		a.Min, a.Max, a.Step = w.Min, w.Max, w.Step
	case *ChoiceAttrs:
		a.Source = OptionConfig{Source: w.OptionSource, Static: w.StaticOptions, API: w.APIConfig}
		a.Inline = w.Options
		a.AllowMultiple = w.AllowMultiple
		a.MinSelections, a.MaxSelections = w.MinSelections, w.MaxSelections
	case *FileAttrs:
		a.Accept = w.Accept
	case *ButtonAttrs:
		a.ButtonText = w.ButtonText
		a.ShowCancelButton = w.ShowCancelButton
		a.Alignment = w.Alignment
	}
	f.Attrs = attrs
	return f
}

var (
	baseKeys   = []string{"id", "type", "label", "required", "placeholder", "validations"}
	textKeys   = []string{"inputType", "min", "max"}
	areaKeys   = []string{"rows", "min", "max"}
	numberKeys = []string{"min", "max", "step"}
	choiceKeys = []string{"optionSource", "staticOptions", "apiConfig", "options", "allowMultiple", "minSelections", "maxSelections"}
	fileKeys   = []string{"accept"}
	buttonKeys = []string{"buttonText", "showCancelButton", "alignment"}
)

// AcceptsKey reports whether key is part of the flat shape for this type.
// Keys outside it are dropped on decode.
func (t FieldType) AcceptsKey(key string) bool {
	if slices.Contains(baseKeys, key) {
		return true
	}
	var keys []string
	switch AttrsFor(t).(type) {
	case *TextAttrs:
		keys = textKeys
	case *TextareaAttrs:
		keys = areaKeys
	case *NumberAttrs:
		keys = numberKeys
	case *ChoiceAttrs:
		keys = choiceKeys
	case *FileAttrs:
		keys = fileKeys
	case *ButtonAttrs:
		keys = buttonKeys
	}
	return slices.Contains(keys, key)
}

// ToMap renders the field as a generic JSON object. The editor uses it to
// apply key and dotted-path patches.
func (f Field) ToMap() (map[string]any, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FieldFromMap decodes a generic JSON object back into a Field.
func FieldFromMap(values map[string]any) (Field, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return Field{}, err
	}
	var f Field
	if err := json.Unmarshal(data, &f); err != nil {
		return Field{}, err
	}
	return f, nil
}
