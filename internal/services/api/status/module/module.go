// Package module mounts the versioned status endpoints
package module

import (
	"net/http"

	modkit "curator/internal/modkit"
	"curator/internal/modkit/httpkit"
	statushttp "curator/internal/services/api/status/http"
	catalog "curator/internal/services/catalog/domain"
	"curator/internal/services/maintenance/domain"
)

// Ports exposes nothing; the module only reads other modules' ports
type Ports struct{}

// Module implements modkit.Module
type Module struct {
	name     string
	version  string
	mws      []func(http.Handler) http.Handler
	register func(httpkit.Router)
}

// New builds the status module over a catalog and a run ledger
func New(cat catalog.Catalog, ledger domain.Ledger, opts ...modkit.Option) *Module {
	if cat == nil || ledger == nil {
		panic("status module requires a catalog and a ledger")
	}
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("status"),
		modkit.WithPrefix("v1"),
	}, opts...)...)

	mws := append([]func(http.Handler) http.Handler{httpkit.Auth(b.Token)}, b.Mw...)
	external := b.Register
	return &Module{
		name:    b.Name,
		version: b.Prefix,
		mws:     mws,
		register: func(r httpkit.Router) {
			statushttp.Register(b.Subrouter(r), statushttp.Deps{Catalog: cat, Ledger: ledger})
			external(r)
		},
	}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountAPI(r, m.version, m.mws, m.register)
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return Ports{} }
