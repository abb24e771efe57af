// Package registry holds the content type and template registries.
//
// Registries are explicit values: the CLI builds one per run and tests build
// their own, so nothing is shared through package state. A type registered
// with Extends contributes form fields, post-save hooks, and serialized
// blocks to every form and record of the base type. Registering against
// types.CapabilityContent extends all types.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/categories/internal/form"
	"github.com/mesh-intelligence/categories/internal/serial"
	"github.com/mesh-intelligence/categories/pkg/types"
)

// Registry errors.
var (
	ErrUnknownType = errors.New("unknown content type")
	ErrInvalidType = errors.New("invalid content type registration")
)

// DefaultIcon is reported for types that do not compute their own icon.
const DefaultIcon = "page"

// Type is a registered content type.
type Type interface {
	// Name is the content type name stored in Content.ContentType.
	Name() string
	// Title is the human readable type name.
	Title() string
	// NewForm builds the type's base form.
	NewForm(cupboard types.Cupboard, opts form.Options) (*form.Form, error)
}

// FormExtender is implemented by extensions that add fields to the forms of
// the types they extend.
type FormExtender interface {
	ExtendForm(cupboard types.Cupboard, f *form.Form) error
}

// SaveExtender is implemented by extensions that persist extra data after
// the forms of the types they extend are saved.
type SaveExtender interface {
	ExtendSave(cupboard types.Cupboard, f *form.Form) error
}

// Iconer is implemented by types whose icon depends on the instance.
type Iconer interface {
	Icon(cupboard types.Cupboard, c *types.Content) (string, error)
}

// Indexer is implemented by types that opt in or out of search indexing.
// Types that do not implement it are indexed.
type Indexer interface {
	AddToIndex() bool
}

// SerializerProvider is implemented by types with their own serializer.
// Other types use serial.BaseSerializer.
type SerializerProvider interface {
	Serializer() serial.Serializer
}

// ExtensionSerializerProvider is implemented by extensions that add a block
// to the records of the types they extend.
type ExtensionSerializerProvider interface {
	ExtensionSerializer() serial.Serializer
}

// RegisterOption configures a Register call.
type RegisterOption func(*registration)

type registration struct {
	extends []string
}

// Extends registers the type as an extension of base.
func Extends(base string) RegisterOption {
	return func(r *registration) {
		if base != "" {
			r.extends = append(r.extends, base)
		}
	}
}

// Option configures a Types registry.
type Option func(*Types)

// WithLogger sets the logger used to report registrations and extensions.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Types) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Types is a content type registry.
type Types struct {
	mu         sync.RWMutex
	types      map[string]Type
	order      []string
	extensions map[string][]Type
	logger     *zap.Logger
}

var _ serial.Serializers = (*Types)(nil)

// NewTypes returns an empty registry.
func NewTypes(opts ...Option) *Types {
	r := &Types{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	r.Reset()
	return r
}

// Register adds t to the registry. With Extends options t is also recorded
// as an extension of each base. Registrations are additive; registering the
// same extension twice for a base records it once.
func (r *Types) Register(t Type, opts ...RegisterOption) error {
	if t == nil || t.Name() == "" {
		return ErrInvalidType
	}
	var reg registration
	for _, opt := range opts {
		opt(&reg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, ok := r.types[name]; !ok {
		r.order = append(r.order, name)
	}
	r.types[name] = t
	for _, base := range reg.extends {
		if containsType(r.extensions[base], name) {
			continue
		}
		r.extensions[base] = append(r.extensions[base], t)
		r.logger.Debug("registered extension",
			zap.String("type", name),
			zap.String("extends", base))
	}
	return nil
}

// Lookup returns the type registered under name.
func (r *Types) Lookup(name string) (Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownType)
	}
	return t, nil
}

// Types returns the registered types in registration order.
func (r *Types) Types() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Type, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.types[name])
	}
	return result
}

// Extensions returns the extensions that apply to the type called name:
// those registered for name followed by those registered for the content
// capability. Each extension appears once.
func (r *Types) Extensions(name string) []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Type
	for _, base := range []string{name, types.CapabilityContent} {
		for _, ext := range r.extensions[base] {
			if !containsType(result, ext.Name()) {
				result = append(result, ext)
			}
		}
	}
	return result
}

// Reset removes every registration.
func (r *Types) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = make(map[string]Type)
	r.order = nil
	r.extensions = make(map[string][]Type)
}

// NewForm builds the form for the type called name and applies its
// extensions. Light forms are returned without extensions.
func (r *Types) NewForm(cupboard types.Cupboard, name string, opts form.Options) (*form.Form, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	f, err := t.NewForm(cupboard, opts)
	if err != nil {
		return nil, fmt.Errorf("building %s form: %w", name, err)
	}
	if opts.Light {
		return f, nil
	}

	for _, ext := range r.Extensions(name) {
		if fe, ok := ext.(FormExtender); ok {
			if err := fe.ExtendForm(cupboard, f); err != nil {
				return nil, fmt.Errorf("extending %s form with %s: %w", name, ext.Name(), err)
			}
		}
		if se, ok := ext.(SaveExtender); ok {
			if err := se.ExtendSave(cupboard, f); err != nil {
				return nil, fmt.Errorf("extending %s save with %s: %w", name, ext.Name(), err)
			}
		}
		r.logger.Debug("applied extension",
			zap.String("type", name),
			zap.String("extension", ext.Name()))
	}
	return f, nil
}

// SerializerFor returns the serializer for records of the type called name:
// the type's own serializer, or serial.BaseSerializer, followed by the
// blocks its extensions contribute.
func (r *Types) SerializerFor(name string) (serial.Serializer, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	var primary serial.Serializer = serial.BaseSerializer{}
	if sp, ok := t.(SerializerProvider); ok {
		primary = sp.Serializer()
	}
	var extras []serial.Serializer
	for _, ext := range r.Extensions(name) {
		if ep, ok := ext.(ExtensionSerializerProvider); ok {
			extras = append(extras, ep.ExtensionSerializer())
		}
	}
	if len(extras) == 0 {
		return primary, nil
	}
	return serial.Compose(primary, extras...), nil
}

// Icon returns the icon of c as reported by its type.
func (r *Types) Icon(cupboard types.Cupboard, c *types.Content) (string, error) {
	t, err := r.Lookup(c.ContentType)
	if err != nil {
		return "", err
	}
	if ic, ok := t.(Iconer); ok {
		return ic.Icon(cupboard, c)
	}
	return DefaultIcon, nil
}

// AddToIndex reports whether content of the type called name is indexed.
func (r *Types) AddToIndex(name string) (bool, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return false, err
	}
	if ix, ok := t.(Indexer); ok {
		return ix.AddToIndex(), nil
	}
	return true, nil
}

func containsType(list []Type, name string) bool {
	return slices.ContainsFunc(list, func(t Type) bool { return t.Name() == name })
}
