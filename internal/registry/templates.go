package registry

import (
	"errors"
	"sync"
)

// ErrInvalidTemplate is returned when a template registration lacks a type
// or path.
var ErrInvalidTemplate = errors.New("invalid template registration")

// Template associates a rendering template with a content type.
type Template struct {
	Path    string
	Label   string
	Default bool
}

// Templates is a template registry keyed by content type name.
type Templates struct {
	mu     sync.RWMutex
	byType map[string][]Template
}

// NewTemplates returns an empty template registry.
func NewTemplates() *Templates {
	t := &Templates{}
	t.Reset()
	return t
}

// Register associates the template at path with the type called typeName.
// Registering a path again replaces its label and default flag. A new
// default clears the previous one.
func (t *Templates) Register(typeName, path, label string, isDefault bool) error {
	if typeName == "" || path == "" {
		return ErrInvalidTemplate
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	list := t.byType[typeName]
	if isDefault {
		for i := range list {
			list[i].Default = false
		}
	}
	tmpl := Template{Path: path, Label: label, Default: isDefault}
	for i := range list {
		if list[i].Path == path {
			list[i] = tmpl
			t.byType[typeName] = list
			return nil
		}
	}
	t.byType[typeName] = append(list, tmpl)
	return nil
}

// Lookup returns the templates registered for typeName in registration
// order.
func (t *Templates) Lookup(typeName string) []Template {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Template(nil), t.byType[typeName]...)
}

// Default returns the default template for typeName. Without an explicit
// default the first registered template is used.
func (t *Templates) Default(typeName string) (Template, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	list := t.byType[typeName]
	for _, tmpl := range list {
		if tmpl.Default {
			return tmpl, true
		}
	}
	if len(list) > 0 {
		return list[0], true
	}
	return Template{}, false
}

// Reset removes every registration.
func (t *Templates) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byType = make(map[string][]Template)
}
