package model

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// OptionSource selects where a choice field reads its options from.
type OptionSource string

const (
	OptionSourceStatic   OptionSource = "static"
	OptionSourceAPI      OptionSource = "api"
	OptionSourceExternal OptionSource = "external"
)

// OptionItem is one selectable choice.
type OptionItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// UnmarshalJSON accepts either an object with value/label or a bare scalar,
// which legacy documents store when options were recovered from an enum.
func (o *OptionItem) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		value := ScalarString(raw["value"])
		label := ScalarString(raw["label"])
		if label == "" {
			label = value
		}
		o.Value, o.Label = value, label
		return nil
	}
	var scalar any
	if err := json.Unmarshal(data, &scalar); err != nil {
		return err
	}
	text := ScalarString(scalar)
	o.Value, o.Label = text, text
	return nil
}

// ScalarString renders JSON scalars the way option values are displayed:
// strings unchanged, integral numbers without a fraction, nil as "".
func ScalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// APIConfig describes how to fetch options from an HTTP endpoint.
type APIConfig struct {
	URL        string            `json:"url"`
	Method     string            `json:"method,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Params     map[string]any    `json:"params,omitempty"`
	DataPath   string            `json:"dataPath,omitempty"`
	ValueField string            `json:"valueField,omitempty"`
	LabelField string            `json:"labelField,omitempty"`
	// Transform holds a declarative transform spec (YAML or JSON). The wire
	// key is kept from older documents.
	Transform string `json:"transformFunction,omitempty"`
}

// Clone returns a deep copy of the config.
func (c *APIConfig) Clone() *APIConfig {
	if c == nil {
		return nil
	}
	out := *c
	if c.Headers != nil {
		out.Headers = make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			out.Headers[k] = v
		}
	}
	if c.Params != nil {
		out.Params = make(map[string]any, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}

// OptionConfig is the option configuration carried by choice fields.
type OptionConfig struct {
	Source OptionSource
	Static string
	API    *APIConfig
}

// Clone returns a deep copy of the config.
func (c OptionConfig) Clone() OptionConfig {
	return OptionConfig{Source: c.Source, Static: c.Static, API: c.API.Clone()}
}
