// Package module implements the maintenance service module
package module

import (
	"context"

	"curator/internal/modkit"
	"curator/internal/modkit/httpkit"
	catalog "curator/internal/services/catalog/domain"
	"curator/internal/services/maintenance/domain"
	"curator/internal/services/maintenance/repo"
	"curator/internal/services/maintenance/service"
)

// Ports exposed by the maintenance module
type Ports struct {
	// Runner is nil when the module was built without a processor
	Runner domain.RunnerPort
	Ledger domain.Ledger
}

// Module implements the maintenance service module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New wires the ledger to the sql backend in deps (memory otherwise) and, when deps has
// clickhouse, the outcome archive. proc may be nil for read-only use.
func New(ctx context.Context, deps modkit.Deps, cat catalog.Catalog, proc domain.Processor) (*Module, error) {
	opts := FromConfig(deps.Cfg)

	var ledger domain.Ledger = repo.NewMemory()
	if q, dialect, ok := deps.SQL(); ok {
		if opts.Migrate {
			if err := repo.Migrate(ctx, q, dialect); err != nil {
				return nil, err
			}
		}
		ledger = repo.NewSQL().Bind(q)
	}

	var archive domain.Archive
	if deps.CH != nil && opts.Archive {
		a := repo.NewCHArchive(deps.CH)
		if err := a.Ensure(ctx); err != nil {
			return nil, err
		}
		archive = a
	}

	m := &Module{deps: deps, opts: opts, ports: Ports{Ledger: ledger}}
	if proc != nil {
		m.ports.Runner = service.New(cat, proc, ledger, archive, service.Config{ReportFailures: opts.ReportFailures})
	}
	return m, nil
}

// Run applies configured defaults to req and runs it
func (m *Module) Run(ctx context.Context, req domain.Request) (domain.Report, error) {
	if m.ports.Runner == nil {
		panic("maintenance module built without a processor")
	}
	return m.ports.Runner.Run(ctx, m.opts.Apply(req))
}

// Ledger returns the bound run ledger
func (m *Module) Ledger() domain.Ledger { return m.ports.Ledger }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "maintenance" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
