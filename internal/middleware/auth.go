package middleware

import (
	"net/http"

	"github.com/securemov/ana-chat/backend/pkg/utils"
)

// Authorizer decides whether an access code is valid.
type Authorizer interface {
	Authorized(code string) bool
}

// RequireJoinCode rejects requests whose X-Join-Code header (or "code" query
// parameter, for WebSocket and EventSource clients) is not accepted.
func RequireJoinCode(auth Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.Authorized(JoinCode(r)) {
				utils.RespondError(w, http.StatusUnauthorized, "invalid join code")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// JoinCode extracts the access code from a request.
func JoinCode(r *http.Request) string {
	if code := r.Header.Get(JoinCodeHeader); code != "" {
		return code
	}
	return r.URL.Query().Get("code")
}
