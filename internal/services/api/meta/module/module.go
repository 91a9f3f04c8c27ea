// Package module mounts the meta endpoints at the root of the status api
package module

import (
	"net/http"
	"time"

	modkit "curator/internal/modkit"
	"curator/internal/modkit/httpkit"
	metahttp "curator/internal/services/api/meta/http"
)

// Module implements modkit.Module
type Module struct {
	name      string
	mws       []func(http.Handler) http.Handler
	register  func(httpkit.Router)
	startedAt time.Time
}

// New builds the meta module; deps supply the backends checked by /readyz
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("meta")}, opts...)...)
	m := &Module{name: b.Name, mws: b.Mw, startedAt: time.Now()}

	backends := map[string]any{}
	if deps.PG != nil {
		backends["pg"] = deps.PG
	}
	if deps.Lite != nil {
		backends["sqlite"] = deps.Lite
	}
	if deps.CH != nil {
		backends["clickhouse"] = deps.CH
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		metahttp.Register(r, metahttp.Deps{StartedAt: m.startedAt, Backends: backends})
		external(r)
	}
	return m
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Group(func(g httpkit.Router) {
		if len(m.mws) > 0 {
			g.Use(m.mws...)
		}
		m.register(g)
	})
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return nil }
