package importer

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/options"
)

// radioEnumLimit is the largest enum still rendered as radio buttons.
const radioEnumLimit = 3

// InferFieldType picks a field type for a property schema. Rules are checked
// in order and the first match wins: format (email, date, uri), array,
// boolean, enum size, numeric type, then text.
func InferFieldType(prop *openapi3.Schema) model.FieldType {
	if prop == nil {
		return model.FieldTypeText
	}
	switch prop.Format {
	case "email":
		return model.FieldTypeEmail
	case "date":
		return model.FieldTypeDate
	case "uri":
		return model.FieldTypeURL
	}
	switch {
	case hasType(prop.Type, openapi3.TypeArray):
		return model.FieldTypeSelect
	case hasType(prop.Type, openapi3.TypeBoolean):
		return model.FieldTypeCheckbox
	case prop.Enum != nil && len(prop.Enum) <= radioEnumLimit:
		return model.FieldTypeRadio
	case prop.Enum != nil:
		return model.FieldTypeSelect
	case hasType(prop.Type, openapi3.TypeNumber), hasType(prop.Type, openapi3.TypeInteger):
		return model.FieldTypeNumber
	default:
		return model.FieldTypeText
	}
}

func hasType(types *openapi3.Types, want string) bool {
	if types == nil {
		return false
	}
	for _, t := range types.Slice() {
		if t == want {
			return true
		}
	}
	return false
}

// fieldFromProperty rebuilds a field from one property schema.
func fieldFromProperty(key string, prop *openapi3.Schema, required bool) model.Field {
	field := model.NewField(key, InferFieldType(prop))
	field.Required = required
	field.Label = key
	if prop == nil {
		return field
	}
	if strings.TrimSpace(prop.Title) != "" {
		field.Label = prop.Title
	}
	field.Placeholder = prop.Description

	switch attrs := field.Attrs.(type) {
	case *model.TextAttrs:
		attrs.Min, attrs.Max = lengthBounds(prop)
	case *model.NumberAttrs:
		attrs.Min = copyFloat(prop.Min)
		attrs.Max = copyFloat(prop.Max)
		attrs.Step = copyFloat(prop.MultipleOf)
	case *model.ChoiceAttrs:
		if values := enumValues(prop); len(values) > 0 {
			attrs.Source = model.OptionConfig{Source: model.OptionSourceStatic, Static: staticOptions(values)}
		}
		if hasType(prop.Type, openapi3.TypeArray) {
			if prop.MinItems > 0 {
				attrs.MinSelections = model.Int(int(prop.MinItems))
			}
			if prop.MaxItems != nil {
				attrs.MaxSelections = model.Int(int(*prop.MaxItems))
			}
		}
	}

	field.Validations = validators(prop)
	return field
}

func lengthBounds(prop *openapi3.Schema) (*float64, *float64) {
	var minLen, maxLen *float64
	if prop.MinLength > 0 {
		minLen = model.Float(float64(prop.MinLength))
	}
	if prop.MaxLength != nil {
		maxLen = model.Float(float64(*prop.MaxLength))
	}
	return minLen, maxLen
}

// enumValues reads choices from enum, or from items.enum for arrays.
func enumValues(prop *openapi3.Schema) []string {
	raw := prop.Enum
	if len(raw) == 0 && prop.Items != nil && prop.Items.Value != nil {
		raw = prop.Items.Value.Enum
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		values = append(values, model.ScalarString(v))
	}
	return values
}

// staticOptions writes values in the comma form when it parses back to the
// same list, and as a JSON array otherwise.
func staticOptions(values []string) string {
	plain := true
	for _, v := range values {
		if v == "" || v != strings.TrimSpace(v) || strings.Contains(v, ",") {
			plain = false
			break
		}
	}
	if plain && !strings.HasPrefix(values[0], "[") {
		return strings.Join(values, ",")
	}
	items := make([]model.OptionItem, len(values))
	for i, v := range values {
		items[i] = model.OptionItem{Value: v, Label: v}
	}
	return options.FormatStatic(items)
}

// validators mirrors the export mapping in reverse.
func validators(prop *openapi3.Schema) []model.ValidationRule {
	var rules []model.ValidationRule
	if prop.MinLength > 0 {
		rules = append(rules, model.ValidationRule{Kind: model.ValidationMinLength, Value: float64(prop.MinLength)})
	}
	if prop.MaxLength != nil {
		rules = append(rules, model.ValidationRule{Kind: model.ValidationMaxLength, Value: float64(*prop.MaxLength)})
	}
	if prop.Min != nil {
		rules = append(rules, model.ValidationRule{Kind: model.ValidationMin, Value: *prop.Min})
	}
	if prop.Max != nil {
		rules = append(rules, model.ValidationRule{Kind: model.ValidationMax, Value: *prop.Max})
	}
	if prop.Pattern != "" {
		rules = append(rules, model.ValidationRule{Kind: model.ValidationPattern, Value: prop.Pattern})
	}
	if prop.Format == "email" {
		rules = append(rules, model.ValidationRule{Kind: model.ValidationEmail})
	}
	return rules
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return model.Float(*v)
}
