// Package http serves liveness, readiness and build info
package http

import (
	"context"
	"net/http"
	"time"

	"curator/internal/core/version"
	"curator/internal/modkit/httpkit"
)

// Pinger is satisfied by store backends that can report readiness
type Pinger interface {
	Ping(context.Context) error
}

// Deps are the handler dependencies; a nil backend is reported as skipped
type Deps struct {
	StartedAt time.Time
	Backends  map[string]any
	Now       func() time.Time
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes on r
func Register(r httpkit.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handlers{deps: d}
	httpkit.Get(r, "/healthz", h.health)
	httpkit.Get(r, "/readyz", h.ready)
	httpkit.Get(r, "/version", h.version)
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Started string `json:"started"`
	Uptime  int64  `json:"uptime_seconds"`
}

// ReadyCheck is one backend check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok fail
	Checks []ReadyCheck `json:"checks"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(h.deps.Now().Sub(h.deps.StartedAt) / time.Second),
	}, nil
}

func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	out := ReadyResponse{Status: "ok"}
	for _, name := range []string{"pg", "sqlite", "clickhouse"} {
		c := ReadyCheck{Name: name, Status: "skipped"}
		if p, ok := h.deps.Backends[name].(Pinger); ok && p != nil {
			c.Status = "ok"
			if err := p.Ping(ctx); err != nil {
				c.Status, c.Error = "fail", err.Error()
				out.Status = "fail"
			}
		}
		out.Checks = append(out.Checks, c)
	}
	if out.Status != "ok" {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: out}, nil
	}
	return out, nil
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}
