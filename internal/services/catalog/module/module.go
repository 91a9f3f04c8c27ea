// Package module implements the catalog service module
package module

import (
	"context"

	"curator/internal/modkit"
	"curator/internal/modkit/httpkit"
	"curator/internal/services/catalog/domain"
	"curator/internal/services/catalog/repo"
)

// Ports exposed by the catalog module
type Ports struct {
	Catalog domain.Catalog
	Storage repo.Storage
}

// Module implements the catalog service module
type Module struct {
	deps    modkit.Deps
	ports   Ports
	backend string
}

// New binds the catalog to the sql backend in deps, or to memory when none is open.
// A configured fixture is seeded either way.
func New(ctx context.Context, deps modkit.Deps) (*Module, error) {
	opts := FromConfig(deps.Cfg)

	var (
		st      repo.Storage
		backend = "memory"
	)
	if q, dialect, ok := deps.SQL(); ok {
		if opts.Migrate {
			if err := repo.Migrate(ctx, q, dialect); err != nil {
				return nil, err
			}
		}
		st = repo.NewSQL().Bind(q)
		backend = string(dialect)
	}

	var fx repo.Fixture
	if opts.Fixture != "" {
		var err error
		if fx, err = repo.ReadFixtureFile(opts.Fixture); err != nil {
			return nil, err
		}
	}
	if st == nil {
		st = repo.NewMemoryFrom(fx)
	} else if len(fx.Entities) > 0 {
		if err := repo.Seed(ctx, st, fx); err != nil {
			return nil, err
		}
	}

	deps.Log.Info().Str("backend", backend).Int("seeded", len(fx.Entities)).Msg("catalog ready")
	return &Module{deps: deps, ports: Ports{Catalog: st, Storage: st}, backend: backend}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "catalog" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Catalog returns the bound catalog
func (m *Module) Catalog() domain.Catalog { return m.ports.Catalog }

// Backend names the storage the catalog is bound to
func (m *Module) Backend() string { return m.backend }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
