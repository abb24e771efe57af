// Package sqlite exposes the SQLite content store to programs outside this
// module while keeping the implementation internal.
package sqlite

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/categories/internal/sqlite"
	"github.com/mesh-intelligence/categories/pkg/types"
)

// Option configures a backend.
type Option = sqlite.Option

// WithLogger sets the logger used for attach, detach, and load events.
func WithLogger(logger *zap.Logger) Option {
	return sqlite.WithLogger(logger)
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".categories-db",
//	})
//	defer backend.Detach()
func NewBackend(opts ...Option) types.Cupboard {
	return sqlite.NewBackend(opts...)
}
