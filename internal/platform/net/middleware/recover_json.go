package middleware

import (
	"net/http"
	"runtime/debug"

	perr "curator/internal/platform/errors"
	"curator/internal/platform/logger"
	pnet "curator/internal/platform/net"
)

// RecoverJSON turns a panic into a JSON 500 and logs the stack with the request id
func RecoverJSON(write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				reqID := pnet.RequestID(r.Context())
				logger.C(r.Context()).Error().
					Interface("panic", v).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				if reqID != "" {
					w.Header().Set("X-Request-ID", reqID)
				}
				status, body := pnet.Error(perr.PanicErrf("panic recovered"), reqID)
				write(w, status, body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
