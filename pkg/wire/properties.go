package wire

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// Property is one named entry of an object schema's properties.
type Property struct {
	Name   string
	Schema *PropertySchema
}

// Properties is an insertion-ordered property map. It marshals as a JSON
// object whose keys keep field order.
type Properties []Property

// Get returns the schema stored under name.
func (p Properties) Get(name string) (*PropertySchema, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Schema, true
		}
	}
	return nil, false
}

// Names lists the property keys in order.
func (p Properties) Names() []string {
	out := make([]string, len(p))
	for i, prop := range p {
		out[i] = prop.Name
	}
	return out
}

// MarshalJSON writes the properties as an ordered JSON object.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(prop.Schema)
		if err != nil {
			return nil, fmt.Errorf("wire: property %q: %w", prop.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping document key order.
func (p *Properties) UnmarshalJSON(data []byte) error {
	entries, err := OrderedObject(data)
	if err != nil {
		return err
	}
	out := make(Properties, 0, len(entries))
	for _, entry := range entries {
		var schema PropertySchema
		if err := json.Unmarshal(entry.Value, &schema); err != nil {
			return fmt.Errorf("wire: property %q: %w", entry.Key, err)
		}
		out = append(out, Property{Name: entry.Key, Schema: &schema})
	}
	*p = out
	return nil
}

// RawEntry is one key of a JSON object with its undecoded value.
type RawEntry struct {
	Key   string
	Value []byte
}

// ErrNotObject is returned by OrderedObject for non-object input.
var ErrNotObject = errors.New("wire: value is not a JSON object")

// OrderedObject splits a JSON object into its entries in document order.
// Duplicate keys keep their first position and last value.
func OrderedObject(data []byte) ([]RawEntry, error) {
	dec := stdjson.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("wire: read object: %w", err)
	}
	if delim, ok := tok.(stdjson.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	var entries []RawEntry
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("wire: read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("wire: unexpected token %v", tok)
		}
		var raw stdjson.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("wire: read value of %q: %w", key, err)
		}
		value := append([]byte(nil), raw...)
		if pos, dup := index[key]; dup {
			entries[pos].Value = value
			continue
		}
		index[key] = len(entries)
		entries = append(entries, RawEntry{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("wire: close object: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("wire: trailing data after object")
	}
	return entries, nil
}
