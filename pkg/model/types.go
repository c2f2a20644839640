package model

// FieldType is the tag identifying a field's editor kind. It matches the keys
// registered in the field catalog.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeEmail       FieldType = "email"
	FieldTypePassword    FieldType = "password"
	FieldTypeTel         FieldType = "tel"
	FieldTypeURL         FieldType = "url"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeNumber      FieldType = "number"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multiselect"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeDate        FieldType = "date"
	FieldTypeFile        FieldType = "file"
	FieldTypeButton      FieldType = "button"
)

// IsTextFamily reports whether the type renders as a single-line text input.
func (t FieldType) IsTextFamily() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypePassword, FieldTypeTel, FieldTypeURL:
		return true
	default:
		return false
	}
}

// IsChoice reports whether the type selects from a list of options.
func (t FieldType) IsChoice() bool {
	switch t {
	case FieldTypeSelect, FieldTypeMultiSelect, FieldTypeRadio:
		return true
	default:
		return false
	}
}

// ValidationKind enumerates the validation rule identifiers.
type ValidationKind string

const (
	ValidationRequired  ValidationKind = "required"
	ValidationMin       ValidationKind = "min"
	ValidationMax       ValidationKind = "max"
	ValidationMinLength ValidationKind = "minLength"
	ValidationMaxLength ValidationKind = "maxLength"
	ValidationPattern   ValidationKind = "pattern"
	ValidationEmail     ValidationKind = "email"
)

// ValidationRule is a single constraint attached to a field. Value holds the
// threshold (numbers), the expression (pattern) or nothing (required/email).
type ValidationRule struct {
	Kind    ValidationKind `json:"type"`
	Value   any            `json:"value,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Field is one data-entry element of a form.
type Field struct {
	ID          string
	Type        FieldType
	Label       string
	Required    bool
	Placeholder string
	Validations []ValidationRule
	Attrs       Attrs
}

// NewField returns a field of the given type with an empty attribute variant.
func NewField(id string, fieldType FieldType) Field {
	return Field{
		ID:    id,
		Type:  fieldType,
		Attrs: AttrsFor(fieldType),
	}
}

// RequiredRule returns the first `required` validation entry. Later duplicates
// are ignored when pairing the required flag with its message.
func (f Field) RequiredRule() (ValidationRule, bool) {
	for _, rule := range f.Validations {
		if rule.Kind == ValidationRequired {
			return rule, true
		}
	}
	return ValidationRule{}, false
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	cloned := f
	if len(f.Validations) > 0 {
		cloned.Validations = append([]ValidationRule(nil), f.Validations...)
	}
	if f.Attrs != nil {
		cloned.Attrs = f.Attrs.clone()
	} else {
		cloned.Attrs = AttrsFor(f.Type)
	}
	return cloned
}

// Row is an ordered group of fields rendered together.
type Row struct {
	ID     string  `json:"id"`
	Fields []Field `json:"fields"`
}

// Clone returns a new row wrapper with a new field slice. Fields are copied by
// value, so later edits to the source row do not leak into the clone.
func (r Row) Clone() Row {
	fields := make([]Field, len(r.Fields))
	copy(fields, r.Fields)
	return Row{ID: r.ID, Fields: fields}
}

// CloneRows clones every row in order.
func CloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out
}

// Flatten returns all fields in row order.
func Flatten(rows []Row) []Field {
	total := 0
	for _, row := range rows {
		total += len(row.Fields)
	}
	out := make([]Field, 0, total)
	for _, row := range rows {
		out = append(out, row.Fields...)
	}
	return out
}

// Settings holds form-level presentation options.
type Settings struct {
	SubmitButtonText string `json:"submitButtonText,omitempty"`
	ShowResetButton  bool   `json:"showResetButton"`
	ResetButtonText  string `json:"resetButtonText,omitempty"`
	Layout           string `json:"layout,omitempty"`
}

// DefaultSettings mirrors the settings attached to freshly loaded forms.
func DefaultSettings() Settings {
	return Settings{
		SubmitButtonText: "Submit",
		ShowResetButton:  true,
		ResetButtonText:  "Reset",
		Layout:           "vertical",
	}
}

// Definition is the persisted form: a flat, ordered field list plus settings.
// Rows is optional and only carries an editor layout when the caller attached
// one before export.
type Definition struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Fields   []Field   `json:"fields"`
	Settings *Settings `json:"settings,omitempty"`
	Rows     []Row     `json:"rows,omitempty"`
}
