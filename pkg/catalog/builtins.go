package catalog

import "github.com/goliatone/go-formbuilder/pkg/model"

const defaultStaticOptions = "Option 1, Option 2, Option 3, Option 4"

var methodOptions = []model.OptionItem{
	{Label: "GET", Value: "GET"},
	{Label: "POST", Value: "POST"},
	{Label: "PUT", Value: "PUT"},
	{Label: "DELETE", Value: "DELETE"},
}

var sourceOptions = []model.OptionItem{
	{Label: "Static Options", Value: string(model.OptionSourceStatic)},
	{Label: "Internal API", Value: string(model.OptionSourceAPI)},
	{Label: "External API", Value: string(model.OptionSourceExternal)},
}

func defaultAPIConfig() *model.APIConfig {
	return &model.APIConfig{
		Method:     "GET",
		Headers:    map[string]string{},
		Params:     map[string]any{},
		ValueField: "value",
		LabelField: "label",
	}
}

func baseSettings(placeholder bool) []SettingDescriptor {
	settings := []SettingDescriptor{{Key: "label", Label: "Label", InputKind: InputText}}
	if placeholder {
		settings = append(settings, SettingDescriptor{Key: "placeholder", Label: "Placeholder", InputKind: InputText})
	}
	return append(settings, SettingDescriptor{Key: "required", Label: "Required", InputKind: InputCheckbox})
}

func optionSettings() []SettingDescriptor {
	return []SettingDescriptor{
		{Key: "optionSource", Label: "Option Source", InputKind: InputSelect, Options: sourceOptions},
		{Key: "staticOptions", Label: "Static Options (comma-separated)", InputKind: InputText},
		{Key: "apiConfig.url", Label: "API URL", InputKind: InputText},
		{Key: "apiConfig.method", Label: "HTTP Method", InputKind: InputSelect, Options: methodOptions},
		{Key: "apiConfig.dataPath", Label: "Data Path (JSON path)", InputKind: InputText},
		{Key: "apiConfig.valueField", Label: "Value Field", InputKind: InputText},
		{Key: "apiConfig.labelField", Label: "Label Field", InputKind: InputText},
		{Key: "apiConfig.transformFunction", Label: "Transform", InputKind: InputTextarea},
	}
}

func choiceDefaults(fieldType model.FieldType, label, placeholder string) model.Field {
	field := model.NewField("", fieldType)
	field.Label = label
	field.Placeholder = placeholder
	field.Attrs = &model.ChoiceAttrs{
		Source: model.OptionConfig{
			Source: model.OptionSourceStatic,
			Static: defaultStaticOptions,
			API:    defaultAPIConfig(),
		},
	}
	return field
}

func builtinDefinitions() []FieldTypeDefinition {
	text := model.NewField("", model.FieldTypeText)
	text.Label, text.Placeholder = "Text Input", "Enter text"
	text.Attrs = &model.TextAttrs{InputType: "text"}

	textarea := model.NewField("", model.FieldTypeTextarea)
	textarea.Label, textarea.Placeholder = "Text Area", "Enter text"
	textarea.Attrs = &model.TextareaAttrs{Rows: model.Int(3)}

	number := model.NewField("", model.FieldTypeNumber)
	number.Label, number.Placeholder = "Number Input", "Enter number"
	number.Attrs = &model.NumberAttrs{Min: model.Float(0), Max: model.Float(100), Step: model.Float(1)}

	email := model.NewField("", model.FieldTypeEmail)
	email.Label, email.Placeholder = "Email Input", "Enter email"
	email.Attrs = &model.TextAttrs{InputType: "email"}

	selectField := choiceDefaults(model.FieldTypeSelect, "Dropdown", "Select an option")

	multiselect := choiceDefaults(model.FieldTypeMultiSelect, "Multi Select", "Choose options")
	multiselect.Attrs.(*model.ChoiceAttrs).MaxSelections = model.Int(5)

	radio := choiceDefaults(model.FieldTypeRadio, "Radio Buttons", "")
	radioAttrs := radio.Attrs.(*model.ChoiceAttrs)
	radioAttrs.MinSelections = model.Int(1)
	radioAttrs.MaxSelections = model.Int(3)

	checkbox := model.NewField("", model.FieldTypeCheckbox)
	checkbox.Label = "Checkbox"

	date := model.NewField("", model.FieldTypeDate)
	date.Label, date.Placeholder = "Date Input", "Select date"

	file := model.NewField("", model.FieldTypeFile)
	file.Label = "File Upload"
	file.Attrs = &model.FileAttrs{Accept: "*/*"}

	button := model.NewField("", model.FieldTypeButton)
	button.Label = "Button"
	button.Attrs = &model.ButtonAttrs{ButtonText: "Click me", Alignment: "left"}

	return []FieldTypeDefinition{
		{
			Type: model.FieldTypeText, Label: "Text Input", Icon: "input", Defaults: text,
			Settings: append(baseSettings(true), SettingDescriptor{
				Key: "inputType", Label: "Input Type", InputKind: InputSelect,
				Options: []model.OptionItem{
					{Label: "Text", Value: "text"},
					{Label: "Password", Value: "password"},
					{Label: "Tel", Value: "tel"},
					{Label: "URL", Value: "url"},
				},
			}),
		},
		{
			Type: model.FieldTypeTextarea, Label: "Text Area", Icon: "subject", Defaults: textarea,
			Settings: append(baseSettings(true), SettingDescriptor{Key: "rows", Label: "Rows", InputKind: InputNumber}),
		},
		{
			Type: model.FieldTypeNumber, Label: "Number Input", Icon: "pin", Defaults: number,
			Settings: append(baseSettings(true),
				SettingDescriptor{Key: "min", Label: "Min Value", InputKind: InputNumber},
				SettingDescriptor{Key: "max", Label: "Max Value", InputKind: InputNumber},
				SettingDescriptor{Key: "step", Label: "Step", InputKind: InputNumber},
			),
		},
		{
			Type: model.FieldTypeEmail, Label: "Email Input", Icon: "email", Defaults: email,
			Settings: baseSettings(true),
		},
		{
			Type: model.FieldTypeSelect, Label: "Dropdown", Icon: "arrow_drop_down", Defaults: selectField,
			Settings: append(baseSettings(true), optionSettings()...),
		},
		{
			Type: model.FieldTypeMultiSelect, Label: "Multi Select", Icon: "checklist", Defaults: multiselect,
			Settings: append(append(baseSettings(true),
				SettingDescriptor{Key: "maxSelections", Label: "Max Selections", InputKind: InputNumber}),
				optionSettings()...),
		},
		{
			Type: model.FieldTypeRadio, Label: "Radio Buttons", Icon: "radio_button_checked", Defaults: radio,
			Settings: append(append(baseSettings(false),
				SettingDescriptor{Key: "allowMultiple", Label: "Allow Multiple Selections", InputKind: InputCheckbox},
				SettingDescriptor{Key: "minSelections", Label: "Min Selections", InputKind: InputNumber},
				SettingDescriptor{Key: "maxSelections", Label: "Max Selections", InputKind: InputNumber}),
				optionSettings()...),
		},
		{
			Type: model.FieldTypeCheckbox, Label: "Checkbox", Icon: "check_box", Defaults: checkbox,
			Settings: baseSettings(false),
		},
		{
			Type: model.FieldTypeDate, Label: "Date Input", Icon: "calendar_today", Defaults: date,
			Settings: baseSettings(true),
		},
		{
			Type: model.FieldTypeFile, Label: "File Upload", Icon: "attach_file", Defaults: file,
			Settings: append(baseSettings(false), SettingDescriptor{Key: "accept", Label: "Accept", InputKind: InputText}),
		},
		{
			Type: model.FieldTypeButton, Label: "Button", Icon: "smart_button", Defaults: button,
			Settings: []SettingDescriptor{
				{Key: "label", Label: "Label", InputKind: InputText},
				{Key: "buttonText", Label: "Button Text", InputKind: InputText},
				{Key: "showCancelButton", Label: "Show Cancel Button", InputKind: InputCheckbox},
				{
					Key: "alignment", Label: "Alignment", InputKind: InputSelect,
					Options: []model.OptionItem{
						{Label: "Left", Value: "left"},
						{Label: "Center", Value: "center"},
						{Label: "Right", Value: "right"},
					},
				},
			},
		},
	}
}
