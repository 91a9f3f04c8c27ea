// Package module defines the contract curator's service modules share and the process-wide port registry
package module

import (
	"sync"

	phttp "curator/internal/platform/net/http"
)

// Module is what every service module exposes. Modules without routes mount nothing.
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}

var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register publishes the port set of the module called name, replacing any earlier one
func Register(name string, ports any) {
	mu.Lock()
	reg[name] = ports
	mu.Unlock()
}

// PortsAs returns the port set registered under name as a T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := reg[name]
	mu.RUnlock()
	out, ok2 := v.(T)
	return out, ok && ok2
}

// Names lists the registered modules in no particular order
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(reg))
	for n := range reg {
		out = append(out, n)
	}
	return out
}

// Reset empties the registry; tests only
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}

// MountAll registers each module's ports and mounts its routes on r, in order
func MountAll(r phttp.Router, mods ...Module) {
	for _, m := range mods {
		Register(m.Name(), m.Ports())
		m.MountRoutes(r)
	}
}
