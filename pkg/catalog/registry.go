package catalog

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ErrUnknownFieldType is matched by errors returned from CreateField when the
// type tag is not registered.
var ErrUnknownFieldType = errors.New("catalog: unknown field type")

// UnknownTypeError reports the offending type tag.
type UnknownTypeError struct {
	Type model.FieldType
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("catalog: unknown field type %q", e.Type)
}

// Is lets errors.Is match ErrUnknownFieldType.
func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownFieldType
}

// InputKind is the editor control used for a setting.
type InputKind string

const (
	InputText     InputKind = "text"
	InputNumber   InputKind = "number"
	InputCheckbox InputKind = "checkbox"
	InputSelect   InputKind = "select"
	InputTextarea InputKind = "textarea"
)

// SettingDescriptor declares one user-editable setting. Key may be a dotted
// path such as "apiConfig.url".
type SettingDescriptor struct {
	Key       string             `json:"key"`
	Label     string             `json:"label"`
	InputKind InputKind          `json:"type"`
	Options   []model.OptionItem `json:"options,omitempty"`
}

// FieldTypeDefinition is an immutable palette entry.
type FieldTypeDefinition struct {
	Type     model.FieldType     `json:"type"`
	Label    string              `json:"label"`
	Icon     string              `json:"icon"`
	Defaults model.Field         `json:"defaultConfig"`
	Settings []SettingDescriptor `json:"settingsConfig"`
}

// Registry holds the field types offered by the palette. Lookups are safe for
// concurrent use; definitions are copied on the way in and out.
type Registry struct {
	mu      sync.RWMutex
	order   []model.FieldType
	entries map[model.FieldType]FieldTypeDefinition

	now    func() time.Time
	randMu sync.Mutex
	rand   *rand.Rand
}

// Option customises a Registry.
type Option func(*Registry)

// WithClock overrides the time source used for generated ids.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRand overrides the random source used for generated ids.
func WithRand(src rand.Source) Option {
	return func(r *Registry) {
		if src != nil {
			r.rand = rand.New(src)
		}
	}
}

// WithoutBuiltins starts from an empty palette.
func WithoutBuiltins() Option {
	return func(r *Registry) {
		r.order = nil
		r.entries = make(map[model.FieldType]FieldTypeDefinition)
	}
}

// New constructs a Registry with the built-in field types registered.
func New(opts ...Option) *Registry {
	reg := &Registry{
		entries: make(map[model.FieldType]FieldTypeDefinition),
		now:     time.Now,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, def := range builtinDefinitions() {
		reg.Register(def)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(reg)
		}
	}
	return reg
}

// Register adds or replaces a definition. Replacing keeps the original
// position in List.
func (r *Registry) Register(def FieldTypeDefinition) {
	if r == nil {
		return
	}
	key := model.FieldType(strings.TrimSpace(string(def.Type)))
	if key == "" {
		return
	}
	def.Type = key
	def = cloneDefinition(def)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[key]; !exists {
		r.order = append(r.order, key)
	}
	r.entries[key] = def
}

// List returns the definitions in registration order.
func (r *Registry) List() []FieldTypeDefinition {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FieldTypeDefinition, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, cloneDefinition(r.entries[key]))
	}
	return out
}

// Get returns the definition registered for the type tag.
func (r *Registry) Get(fieldType model.FieldType) (FieldTypeDefinition, bool) {
	if r == nil {
		return FieldTypeDefinition{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.entries[fieldType]
	if !ok {
		return FieldTypeDefinition{}, false
	}
	return cloneDefinition(def), true
}

// CreateField builds a new field instance from the type's defaults with a
// freshly generated id of the form {type}_{unixMillis}_{n}, n in [0,1000).
// Ids are traceable and unlikely to collide within one session; they are not
// unique across independently created forms.
func (r *Registry) CreateField(fieldType model.FieldType) (model.Field, error) {
	def, ok := r.Get(fieldType)
	if !ok {
		return model.Field{}, &UnknownTypeError{Type: fieldType}
	}
	field := def.Defaults.Clone()
	field.ID = r.generateID(fieldType)
	field.Type = def.Type
	return field, nil
}

// AppliesTo reports whether the type declares a setting with the given key.
func (r *Registry) AppliesTo(fieldType model.FieldType, key string) bool {
	def, ok := r.Get(fieldType)
	if !ok {
		return false
	}
	for _, setting := range def.Settings {
		if setting.Key == key {
			return true
		}
	}
	return false
}

func (r *Registry) generateID(fieldType model.FieldType) string {
	r.randMu.Lock()
	n := r.rand.Intn(1000)
	r.randMu.Unlock()
	return fmt.Sprintf("%s_%d_%d", fieldType, r.now().UnixMilli(), n)
}

func cloneDefinition(def FieldTypeDefinition) FieldTypeDefinition {
	out := def
	out.Defaults = def.Defaults.Clone()
	if def.Settings != nil {
		out.Settings = make([]SettingDescriptor, len(def.Settings))
		for i, setting := range def.Settings {
			setting.Options = append([]model.OptionItem(nil), setting.Options...)
			out.Settings[i] = setting
		}
	}
	return out
}
