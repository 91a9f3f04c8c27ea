package httpkit

import (
	"net/http"
	"strings"
)

// MountUnder mounts a subrouter at prefix, applies mw to it, then calls mount
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		sub.Use(mw...)
		mount(sub)
	})
}

// MountAPI mounts under /{version}; an empty version groups the routes at the root
//
//	httpkit.MountAPI(r, "v1", mws, status.Register)
func MountAPI(r Router, version string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	v := strings.Trim(version, "/")
	if v == "" {
		r.Group(func(g Router) {
			g.Use(mw...)
			mount(g)
		})
		return
	}
	MountUnder(r, "/"+v, mw, mount)
}
