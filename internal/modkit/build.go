package modkit

import (
	"net/http"
	"strings"

	phttp "curator/internal/platform/net/http"
)

// Option configures an api module at construction
type Option func(*buildCfg)

type buildCfg struct {
	name      string
	prefix    string
	mw        []func(http.Handler) http.Handler
	token     string
	subrouter func(phttp.Router) phttp.Router
	register  func(phttp.Router)
}

// WithName sets the name the module registers its ports under
func WithName(name string) Option {
	return func(c *buildCfg) { c.name = name }
}

// WithPrefix sets the path segment the module mounts under, e.g. "v1"; slashes are trimmed
func WithPrefix(prefix string) Option {
	return func(c *buildCfg) { c.prefix = strings.Trim(prefix, "/") }
}

// WithMiddlewares appends per module middleware, applied after auth
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(c *buildCfg) { c.mw = append(c.mw, mw...) }
}

// WithToken requires a bearer token on the module's routes; empty leaves them open
func WithToken(token string) Option {
	return func(c *buildCfg) { c.token = token }
}

// WithSubrouter wraps the router the module's own handlers are registered on
func WithSubrouter(fn func(phttp.Router) phttp.Router) Option {
	return func(c *buildCfg) { c.subrouter = fn }
}

// WithRegister adds routes next to the module's own, under the same prefix and middleware
func WithRegister(fn func(phttp.Router)) Option {
	return func(c *buildCfg) { c.register = fn }
}

// Built is the resolved option set; hooks are never nil
type Built struct {
	Name      string
	Prefix    string
	Mw        []func(http.Handler) http.Handler
	Token     string
	Subrouter func(phttp.Router) phttp.Router
	Register  func(phttp.Router)
}

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	b := Built{
		Name:      c.name,
		Prefix:    c.prefix,
		Mw:        append([]func(http.Handler) http.Handler(nil), c.mw...),
		Token:     c.token,
		Subrouter: c.subrouter,
		Register:  c.register,
	}
	if b.Subrouter == nil {
		b.Subrouter = func(r phttp.Router) phttp.Router { return r }
	}
	if b.Register == nil {
		b.Register = func(phttp.Router) {}
	}
	return b
}
