// Package module implements the browse service module
package module

import (
	"curator/internal/adapters/remote/catalogapi"
	"curator/internal/modkit"
	"curator/internal/modkit/httpkit"
	"curator/internal/services/browse/service"
	catalog "curator/internal/services/catalog/domain"
)

// Module implements the browse service module
type Module struct {
	deps modkit.Deps
	svc  *service.Service
}

// New wires the remote listing client to the catalog; base overrides CURATOR_REMOTE_BASE_URL when set
func New(deps modkit.Deps, cat catalog.EntityRepo, base string) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if base != "" {
		opts.BaseURL = base
	}
	client, err := catalogapi.NewClient(catalogapi.Options{
		BaseURL: opts.BaseURL,
		Token:   opts.Token,
		Timeout: opts.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return &Module{deps: deps, svc: service.New(client, cat, opts.ScanOptions())}, nil
}

// Service returns the browser
func (m *Module) Service() *service.Service { return m.svc }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "browse" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.svc }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
