package model

// Attrs is the type-specific attribute set of a field. The concrete variant is
// chosen by the field type via AttrsFor; callers switch over the variants
// instead of checking whether an attribute applies to a type.
type Attrs interface {
	clone() Attrs
}

// TextAttrs belongs to text, email, password, tel and url fields. Min and Max
// are length bounds.
type TextAttrs struct {
	InputType string
	Min       *float64
	Max       *float64
}

// TextareaAttrs belongs to textarea fields. Min and Max are length bounds.
type TextareaAttrs struct {
	Rows *int
	Min  *float64
	Max  *float64
}

// NumberAttrs belongs to number fields. Min and Max are value bounds.
type NumberAttrs struct {
	Min  *float64
	Max  *float64
	Step *float64
}

// ChoiceAttrs belongs to select, multiselect and radio fields.
type ChoiceAttrs struct {
	Source        OptionConfig
	Inline        []OptionItem
	AllowMultiple bool
	MinSelections *int
	MaxSelections *int
}

// CheckboxAttrs belongs to checkbox fields.
type CheckboxAttrs struct{}

// DateAttrs belongs to date fields.
type DateAttrs struct{}

// FileAttrs belongs to file fields; Accept is a MIME pattern such as "image/*".
type FileAttrs struct {
	Accept string
}

// ButtonAttrs belongs to button fields.
type ButtonAttrs struct {
	ButtonText       string
	ShowCancelButton bool
	Alignment        string
}

// GenericAttrs is used for type tags outside the built-in set.
type GenericAttrs struct{}

// AttrsFor returns the empty variant for a field type.
func AttrsFor(t FieldType) Attrs {
	switch {
	case t.IsTextFamily():
		return &TextAttrs{}
	case t.IsChoice():
		return &ChoiceAttrs{}
	}
	switch t {
	case FieldTypeTextarea:
		return &TextareaAttrs{}
	case FieldTypeNumber:
		return &NumberAttrs{}
	case FieldTypeCheckbox:
		return &CheckboxAttrs{}
	case FieldTypeDate:
		return &DateAttrs{}
	case FieldTypeFile:
		return &FileAttrs{}
	case FieldTypeButton:
		return &ButtonAttrs{}
	default:
		return &GenericAttrs{}
	}
}

func (a *TextAttrs) clone() Attrs {
	out := *a
	out.Min = cloneFloat(a.Min)
	out.Max = cloneFloat(a.Max)
	return &out
}

func (a *TextareaAttrs) clone() Attrs {
	out := *a
	out.Rows = cloneInt(a.Rows)
	out.Min = cloneFloat(a.Min)
	out.Max = cloneFloat(a.Max)
	return &out
}

func (a *NumberAttrs) clone() Attrs {
	out := *a
	out.Min = cloneFloat(a.Min)
	out.Max = cloneFloat(a.Max)
	out.Step = cloneFloat(a.Step)
	return &out
}

func (a *ChoiceAttrs) clone() Attrs {
	out := *a
	out.Source = a.Source.Clone()
	if a.Inline != nil {
		out.Inline = append([]OptionItem(nil), a.Inline...)
	}
	out.MinSelections = cloneInt(a.MinSelections)
	out.MaxSelections = cloneInt(a.MaxSelections)
	return &out
}

func (a *CheckboxAttrs) clone() Attrs { return &CheckboxAttrs{} }
func (a *DateAttrs) clone() Attrs     { return &DateAttrs{} }
func (a *FileAttrs) clone() Attrs     { out := *a; return &out }
func (a *ButtonAttrs) clone() Attrs   { out := *a; return &out }
func (a *GenericAttrs) clone() Attrs  { return &GenericAttrs{} }

// Float returns a pointer to v; convenient for building attribute literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
