package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perr "curator/internal/platform/errors"
	pnet "curator/internal/platform/net"
)

// BearerToken rejects requests whose Authorization header does not carry token.
// An empty token disables the check.
func BearerToken(token string, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte(token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := bearer(r.Header.Get("Authorization"))
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				status, body := pnet.Error(perr.Unauthorizedf("invalid bearer token"), pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(h string) (string, bool) {
	s := strings.TrimSpace(h)
	const prefix = "bearer"
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(s[len(prefix):])
	return raw, raw != ""
}
