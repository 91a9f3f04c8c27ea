package cli

import (
	"context"

	"curator/internal/modkit"
	"curator/internal/modkit/module"
	"curator/internal/platform/config"
	"curator/internal/platform/logger"
	"curator/internal/platform/store"
	catmod "curator/internal/services/catalog/module"
	"curator/internal/services/maintenance/domain"
	maintmod "curator/internal/services/maintenance/module"
)

// app is the opened store plus the modules every command builds on
type app struct {
	cfg     config.Conf
	st      *store.Store
	deps    modkit.Deps
	catalog *catmod.Module
}

// openApp opens the configured store and binds the catalog to it
func openApp(ctx context.Context, g *Globals) (*app, error) {
	cfg := config.New()
	l := logger.Get()

	sc, err := store.FromConfig(cfg, g.Store)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, sc, store.WithLogger(*l))
	if err != nil {
		return nil, err
	}

	deps := modkit.FromStore(*l, cfg, st)
	cat, err := catmod.New(ctx, deps)
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	module.Register(cat.Name(), cat.Ports())
	return &app{cfg: cfg, st: st, deps: deps, catalog: cat}, nil
}

// maintenance wires the run ledger; proc may be nil for read-only commands
func (a *app) maintenance(ctx context.Context, proc domain.Processor) (*maintmod.Module, error) {
	m, err := maintmod.New(ctx, a.deps, a.catalog.Catalog(), proc)
	if err != nil {
		return nil, err
	}
	module.Register(m.Name(), m.Ports())
	return m, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.st.Close(ctx); err != nil {
		logger.Get().Error().Err(err).Msg("failed to close store")
	}
}
