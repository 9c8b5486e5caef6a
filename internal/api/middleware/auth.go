// internal/api/middleware/auth.go
package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/adiptan/trading-journal/internal/api/response"
	"github.com/adiptan/trading-journal/internal/core"
)

// APIKeyAuth returns middleware that checks the journal's API key, sent as
// X-API-Key or as an Authorization bearer token. An empty apiKey disables
// the check.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := requestKey(r)
			if provided == "" {
				response.Fail(w, core.WrapError(core.ErrUnauthorized, errors.New("missing API key")))
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				response.Fail(w, core.WrapError(core.ErrUnauthorized, errors.New("invalid API key")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
