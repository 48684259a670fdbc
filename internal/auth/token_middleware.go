package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/metrics"
)

// UnauthorizedMessage is the flat error string returned on a rejected credential.
const UnauthorizedMessage = "Unauthorized request"

// BearerTokenMiddleware gates requests on a single shared secret presented as
// "Authorization: Bearer <token>".
type BearerTokenMiddleware struct {
	secret []byte
	log    logger.Logger
}

// NewBearerTokenMiddleware creates a new BearerTokenMiddleware for secret.
func NewBearerTokenMiddleware(secret string, log logger.Logger) *BearerTokenMiddleware {
	return &BearerTokenMiddleware{secret: []byte(secret), log: log}
}

// Authenticate is an http.Handler middleware that checks the bearer token.
// WHEN the token matches: passes the request through unchanged.
// WHEN missing/malformed/mismatched: returns 401 with {"error": "Unauthorized request"}
// and nothing downstream runs.
func (m *BearerTokenMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok || !m.matches(token) {
			metrics.UnauthorizedTotal.Inc()
			m.log.Info("unauthorized request",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.String("remote_ip", r.RemoteAddr),
			)
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *BearerTokenMiddleware) matches(token string) bool {
	if len(m.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), m.secret) == 1
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// writeUnauthorized writes a 401 JSON response with {"error": "Unauthorized request"}.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": UnauthorizedMessage})
}
