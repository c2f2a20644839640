package export

import (
	"fmt"
	"math"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/options"
	"github.com/goliatone/go-formbuilder/pkg/wire"
)

// FormSchema builds the object schema for a definition. Properties follow
// field order; required is left nil when no field is required so it is
// omitted from the output.
func FormSchema(def model.Definition, readOnly bool) *wire.ObjectSchema {
	schema := &wire.ObjectSchema{
		Type:        "object",
		Title:       def.Name,
		Description: fmt.Sprintf("Schema for %s form", def.Name),
		Properties:  make(wire.Properties, 0, len(def.Fields)),
		ReadOnly:    readOnly,
	}
	for _, field := range def.Fields {
		schema.Properties = append(schema.Properties, wire.Property{Name: field.ID, Schema: FieldSchema(field)})
		if field.Required {
			schema.Required = append(schema.Required, field.ID)
		}
	}
	return schema
}

// SchemaType maps a field type to its JSON schema type.
func SchemaType(t model.FieldType) string {
	switch t {
	case model.FieldTypeNumber:
		return "number"
	case model.FieldTypeMultiSelect:
		return "array"
	case model.FieldTypeCheckbox:
		return "boolean"
	default:
		return "string"
	}
}

// FieldSchema builds one property schema. min and max mean length bounds on
// text fields and value bounds on number fields.
func FieldSchema(field model.Field) *wire.PropertySchema {
	schema := &wire.PropertySchema{
		Type:     SchemaType(field.Type),
		Title:    field.Label,
		Nullable: !field.Required,
	}

	switch attrs := field.Attrs.(type) {
	case *model.TextAttrs:
		schema.Description = field.Placeholder
		schema.MinLength, schema.MaxLength = lengthBound(attrs.Min), lengthBound(attrs.Max)
		switch field.Type {
		case model.FieldTypeEmail:
			schema.Format = "email"
		case model.FieldTypeURL:
			schema.Format = "uri"
		}
	case *model.TextareaAttrs:
		schema.Description = field.Placeholder
		if attrs.Rows != nil && *attrs.Rows > 0 {
			schema.Description = fmt.Sprintf("%d rows", *attrs.Rows)
		}
		schema.MinLength, schema.MaxLength = lengthBound(attrs.Min), lengthBound(attrs.Max)
	case *model.NumberAttrs:
		schema.Minimum, schema.Maximum, schema.MultipleOf = attrs.Min, attrs.Max, attrs.Step
	case *model.ChoiceAttrs:
		choiceSchema(schema, field.Type, attrs)
	case *model.DateAttrs:
		schema.Format = "date"
	case *model.FileAttrs:
		schema.Format = "binary"
		if attrs.Accept != "" {
			schema.Description = "Accepted types: " + attrs.Accept
		}
	}
	return schema
}

// lengthBound turns a length bound into the non-negative integer the
// minLength and maxLength keywords require. Fractions are truncated and
// negative bounds are dropped.
func lengthBound(v *float64) *uint64 {
	if v == nil || *v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	out := uint64(math.Trunc(*v))
	return &out
}

// choiceSchema writes enum for select and multiselect. A radio that allows
// several answers only carries the values under items.
func choiceSchema(schema *wire.PropertySchema, fieldType model.FieldType, attrs *model.ChoiceAttrs) {
	values := EnumValues(attrs.Source)
	multiple := fieldType == model.FieldTypeMultiSelect ||
		(fieldType == model.FieldTypeRadio && attrs.AllowMultiple)

	if len(values) > 0 && (fieldType != model.FieldTypeRadio || !multiple) {
		schema.Enum = values
	}
	if !multiple {
		return
	}

	schema.Type = "array"
	if values == nil {
		values = []string{}
	}
	schema.Items = &wire.ItemsSchema{Type: "string", Enum: values}
	schema.UniqueItems = true
	if fieldType == model.FieldTypeRadio {
		if attrs.MinSelections != nil && *attrs.MinSelections > 0 {
			schema.MinItems = attrs.MinSelections
		}
		if attrs.MaxSelections != nil && *attrs.MaxSelections > 0 {
			schema.MaxItems = attrs.MaxSelections
		}
	}
}

// EnumValues lists the option values known at export time. Only static
// sources contribute; api and external sources resolve at render time.
func EnumValues(cfg model.OptionConfig) []string {
	if cfg.Source != model.OptionSourceStatic || cfg.Static == "" {
		return nil
	}
	items := options.ParseStatic(cfg.Static)
	values := make([]string, 0, len(items))
	for _, item := range items {
		values = append(values, item.Value)
	}
	return values
}
