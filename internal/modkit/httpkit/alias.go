// Package httpkit re-exports the platform http helpers modules mount routes with,
// so services never import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "curator/internal/platform/net/http"
)

type (
	// Envelope is the transport envelope type
	Envelope = phttp.Envelope

	// Page describes a slice of a longer list
	Page = phttp.Page

	// Response is the return-style handler result
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Error returns a response that maps err to status and envelope
func Error(err error) Response { return phttp.Error(err) }

// List returns a 200 response with items and their page
func List(items any, p Page) Response { return phttp.List(items, p) }

// Get mounts a GET handler that takes no query parameters
func Get(r Router, path string, h func(*http.Request) (any, error)) { phttp.Get(r, path, h) }

// GetQuery mounts a GET handler whose query string binds into T
func GetQuery[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	phttp.GetQuery(r, path, h)
}
