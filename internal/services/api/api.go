// Package api composes the read-only status api
package api

import (
	"time"

	"curator/internal/modkit"
	"curator/internal/modkit/httpkit"
	"curator/internal/modkit/module"
	"curator/internal/platform/config"
	phttp "curator/internal/platform/net/http"
	metamod "curator/internal/services/api/meta/module"
	statusmod "curator/internal/services/api/status/module"
	catalog "curator/internal/services/catalog/domain"
	"curator/internal/services/maintenance/domain"
)

// Options are the api options, read from CURATOR_API_*
type Options struct {
	CORSOrigins    []string
	Token          string
	Timeout        time.Duration
	SlowRequest    time.Duration
	EnableProfiler bool
}

// FromConfig reads CORS_ORIGINS, TOKEN, TIMEOUT, SLOW_REQUEST and PROFILER
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CURATOR_API_")
	return Options{
		CORSOrigins:    c.MayCSV("CORS_ORIGINS", nil),
		Token:          c.MayString("TOKEN", ""),
		Timeout:        c.MayDuration("TIMEOUT", 30*time.Second),
		SlowRequest:    c.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
		EnableProfiler: c.MayBool("PROFILER", false),
	}
}

// Mount installs the middleware stack and every api module on r
func Mount(r phttp.Router, deps modkit.Deps, cat catalog.Catalog, ledger domain.Ledger, opt Options) {
	r.Use(httpkit.CommonStack(httpkit.StackOptions{
		CORSOrigins: opt.CORSOrigins,
		Timeout:     opt.Timeout,
		SlowRequest: opt.SlowRequest,
	})...)

	module.MountAll(r,
		metamod.New(deps),
		statusmod.New(cat, ledger, modkit.WithToken(opt.Token)),
	)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler, httpkit.Auth(opt.Token))
}
