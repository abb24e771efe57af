// Package form builds and saves content forms. A form holds typed fields,
// validates submitted data against them, and saves in two steps: the
// primary save that stores the instance, followed by an ordered chain of
// post-save hooks that write relational data for the stored instance.
package form

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/categories/pkg/types"
)

// Form errors.
var (
	ErrNotBound      = errors.New("form has no submitted data")
	ErrNotValid      = errors.New("form data is not valid")
	ErrRequiredField = errors.New("field is required")
	ErrInvalidChoice = errors.New("value is not one of the available choices")
)

// Standard content field names every content form carries.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldState       = "state"
)

// Data holds submitted values keyed by field name. Single valued fields use
// the first value.
type Data map[string][]string

// Get returns the first value for name or "".
func (d Data) Get(name string) string {
	if vs := d[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Options configure form construction.
type Options struct {
	// Parent is the node a new instance is placed below.
	Parent *types.Node
	// Slug names the node of a new instance. Empty slugs are derived from
	// the title.
	Slug string
	// Instance is the content being edited; nil for a new instance.
	Instance *types.Content
	// Data is the submitted data; nil leaves the form unbound.
	Data Data
	// Light requests the reduced form variant. Extensions do not apply to
	// light forms.
	Light bool
}

// SaveFunc stores instance. It runs as the primary save step.
type SaveFunc func(f *Form, instance *types.Content) error

// Hook runs after the primary save with the stored instance.
type Hook func(f *Form, instance *types.Content) error

// Form is a set of fields for one content type together with its save
// routine.
type Form struct {
	// Type is the content type name the form builds instances of.
	Type string
	// Options are the construction options.
	Options Options
	// AdvancedFields names fields the UI groups separately.
	AdvancedFields []string

	fields  []*Field
	cleaned Data
	errs    map[string]error
	save    SaveFunc
	hooks   []Hook
	pending *types.Content
}

// New returns an empty form for typeName. save is the primary save step.
func New(typeName string, opts Options, save SaveFunc) *Form {
	return &Form{
		Type:    typeName,
		Options: opts,
		save:    save,
	}
}

// Light reports whether the form is the reduced variant.
func (f *Form) Light() bool {
	return f.Options.Light
}

// Bound reports whether the form carries submitted data.
func (f *Form) Bound() bool {
	return f.Options.Data != nil
}

// AddField adds field to the form, replacing any field of the same name.
func (f *Form) AddField(field *Field) {
	for i, existing := range f.fields {
		if existing.Name == field.Name {
			f.fields[i] = field
			return
		}
	}
	f.fields = append(f.fields, field)
}

// Field returns the field called name, or nil.
func (f *Form) Field(name string) *Field {
	for _, field := range f.fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

// HasField reports whether the form has a field called name.
func (f *Form) HasField(name string) bool {
	return f.Field(name) != nil
}

// Fields returns the fields in the order they were added.
func (f *Form) Fields() []*Field {
	return slices.Clone(f.fields)
}

// AddAdvanced marks the named fields as advanced.
func (f *Form) AddAdvanced(names ...string) {
	for _, name := range names {
		if !slices.Contains(f.AdvancedFields, name) {
			f.AdvancedFields = append(f.AdvancedFields, name)
		}
	}
}

// AddPostSaveHook appends h to the chain run after the primary save.
func (f *Form) AddPostSaveHook(h Hook) {
	f.hooks = append(f.hooks, h)
}

// PostSaveHooks returns the number of hooks in the chain.
func (f *Form) PostSaveHooks() int {
	return len(f.hooks)
}

// Validate cleans the submitted data against the fields. It returns
// ErrNotBound for an unbound form and an error wrapping ErrNotValid when
// any field rejects its value; Errors then reports the failures per field.
func (f *Form) Validate() error {
	if !f.Bound() {
		return ErrNotBound
	}
	f.cleaned = make(Data, len(f.fields))
	f.errs = make(map[string]error)
	var errs []error
	for _, field := range f.fields {
		values, err := field.Clean(f.Options.Data[field.Name])
		if err != nil {
			f.errs[field.Name] = err
			errs = append(errs, fmt.Errorf("%s: %w", field.Name, err))
			continue
		}
		f.cleaned[field.Name] = values
	}
	if len(errs) > 0 {
		f.cleaned = nil
		return fmt.Errorf("%w: %w", ErrNotValid, errors.Join(errs...))
	}
	return nil
}

// Errors returns the validation failures of the last Validate call.
func (f *Form) Errors() map[string]error {
	return f.errs
}

// Cleaned returns the cleaned values of the named field.
func (f *Form) Cleaned(name string) []string {
	return f.cleaned[name]
}

// CleanedValue returns the first cleaned value of the named field.
func (f *Form) CleanedValue(name string) string {
	return f.cleaned.Get(name)
}

// Save validates the form if needed and builds the instance from the
// cleaned data. With commit the instance is stored and the post-save hooks
// run. Without commit nothing is written: the instance is returned and the
// hooks stay pending until a later Save(true) or SaveRelations.
func (f *Form) Save(commit bool) (*types.Content, error) {
	if f.cleaned == nil {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}

	instance := f.pending
	if instance == nil {
		instance = f.Options.Instance
	}
	if instance == nil {
		instance = &types.Content{ContentType: f.Type}
	}
	f.apply(instance)

	if !commit {
		f.pending = instance
		return instance, nil
	}

	if f.save != nil {
		if err := f.save(f, instance); err != nil {
			return nil, err
		}
	}
	// Later saves update the stored instance.
	f.Options.Instance = instance
	f.pending = instance
	if err := f.SaveRelations(); err != nil {
		return nil, err
	}
	return instance, nil
}

// SaveRelations runs the post-save hook chain for the pending instance,
// which the caller must have stored. It is a no-op when nothing is pending.
// The instance stays pending until every hook succeeds, so a failed chain
// can be run again.
func (f *Form) SaveRelations() error {
	instance := f.pending
	if instance == nil {
		return nil
	}
	if instance.ContentID == "" {
		return types.ErrInvalidID
	}
	for _, h := range f.hooks {
		if err := h(f, instance); err != nil {
			return err
		}
	}
	f.pending = nil
	return nil
}

// apply copies the standard content fields from the cleaned data.
func (f *Form) apply(instance *types.Content) {
	if f.HasField(FieldTitle) {
		instance.Title = f.CleanedValue(FieldTitle)
	}
	if f.HasField(FieldDescription) {
		instance.Description = f.CleanedValue(FieldDescription)
	}
	if f.HasField(FieldState) {
		if state := f.CleanedValue(FieldState); state != "" {
			instance.State = state
		}
	}
}
