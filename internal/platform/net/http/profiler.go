package http

import (
	stdhttp "net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// MountProfiler serves pprof under prefix (default "/debug") when enabled, behind mws
func MountProfiler(r Router, prefix string, enabled bool, mws ...func(stdhttp.Handler) stdhttp.Handler) {
	if !enabled {
		return
	}
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = "/debug"
	}
	h := stdhttp.StripPrefix(prefix, chimw.Profiler())
	r.Group(func(g Router) {
		g.Use(mws...)
		g.Handle(prefix, h)
		g.Handle(prefix+"/*", h)
	})
}
