// Package app wires the content store, the type and template registries,
// and the logger for one run of the CLI.
package app

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mesh-intelligence/categories/internal/category"
	"github.com/mesh-intelligence/categories/internal/form"
	"github.com/mesh-intelligence/categories/internal/page"
	"github.com/mesh-intelligence/categories/internal/registry"
	"github.com/mesh-intelligence/categories/internal/serial"
	"github.com/mesh-intelligence/categories/internal/tree"
	"github.com/mesh-intelligence/categories/pkg/sqlite"
	"github.com/mesh-intelligence/categories/pkg/types"
)

// Config selects the store and the registrations of a run.
type Config struct {
	Store types.Config
	// Extends lists the base types the category type extends. Use
	// types.CapabilityContent to extend every type.
	Extends []string
	// LightForms builds every form as the light variant.
	LightForms bool
}

// App is an attached store with its registries.
type App struct {
	Cupboard   types.Cupboard
	Types      *registry.Types
	Templates  *registry.Templates
	Logger     *zap.Logger
	lightForms bool
}

// NewLogger builds the production logger at level. verbose lowers the
// level to debug.
func NewLogger(level string, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// NewRegistries registers the page and category types and their templates.
// The category type extends each base in extends.
func NewRegistries(extends []string, logger *zap.Logger) (*registry.Types, *registry.Templates, error) {
	typeReg := registry.NewTypes(registry.WithLogger(logger))
	if err := typeReg.Register(page.Type{}); err != nil {
		return nil, nil, err
	}
	opts := make([]registry.RegisterOption, 0, len(extends))
	for _, base := range extends {
		opts = append(opts, registry.Extends(base))
	}
	if err := typeReg.Register(category.Type{}, opts...); err != nil {
		return nil, nil, err
	}

	templates := registry.NewTemplates()
	if err := templates.Register(page.TypeName, page.Template, page.TemplateLabel, true); err != nil {
		return nil, nil, err
	}
	if err := category.RegisterTemplates(templates); err != nil {
		return nil, nil, err
	}
	return typeReg, templates, nil
}

// Open attaches the store and builds the registries. The caller must Close
// the app.
func Open(cfg Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	typeReg, templates, err := NewRegistries(cfg.Extends, logger)
	if err != nil {
		return nil, fmt.Errorf("registering types: %w", err)
	}
	cupboard := sqlite.NewBackend(sqlite.WithLogger(logger))
	if err := cupboard.Attach(cfg.Store); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	return &App{
		Cupboard:   cupboard,
		Types:      typeReg,
		Templates:  templates,
		Logger:     logger,
		lightForms: cfg.LightForms,
	}, nil
}

// Close detaches the store.
func (a *App) Close() error {
	return a.Cupboard.Detach()
}

// NewForm builds the form for typeName. Light forms are forced when the app
// was opened with LightForms.
func (a *App) NewForm(typeName string, opts form.Options) (*form.Form, error) {
	if a.lightForms {
		opts.Light = true
	}
	return a.Types.NewForm(a.Cupboard, typeName, opts)
}

// Create saves a new instance of typeName below the node at parentPath from
// the submitted data.
func (a *App) Create(typeName, parentPath, slug string, data form.Data) (*types.Content, error) {
	parent, err := tree.Lookup(a.Cupboard, parentPath)
	if err != nil {
		return nil, err
	}
	f, err := a.NewForm(typeName, form.Options{Parent: parent, Slug: slug, Data: data})
	if err != nil {
		return nil, err
	}
	return f.Save(true)
}

// Export writes the subtree below basePath to w.
func (a *App) Export(w io.Writer, basePath string) error {
	base, err := tree.Lookup(a.Cupboard, basePath)
	if err != nil {
		return err
	}
	return serial.NewExporter(a.Cupboard, a.Types, serial.WithLogger(a.Logger)).Export(w, base)
}

// Import reads a document from r into the subtree below basePath.
func (a *App) Import(r io.Reader, basePath string) (serial.Result, error) {
	base, err := tree.Lookup(a.Cupboard, basePath)
	if err != nil {
		return serial.Result{}, err
	}
	return serial.NewImporter(a.Cupboard, a.Types, serial.WithLogger(a.Logger)).Import(r, base)
}
