package http

import "net/http"

// Get mounts a handler without query binding
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, NoQueryHandler(h))
}

// GetQuery mounts a handler whose query string binds into T
func GetQuery[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Get(path, QueryHandler(h))
}
