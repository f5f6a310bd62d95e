package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/scidesk/internal/core"
)

// Verifier turns a bearer token into the user it was issued for.
type Verifier interface {
	Verify(token string) (core.User, error)
}

// Authenticate returns middleware that requires a valid bearer token and
// stores the authenticated user in the request context.
func Authenticate(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				slog.Warn("auth: missing bearer token",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				deny(w, http.StatusUnauthorized, core.MapError(core.ErrUnauthorized))
				return
			}

			u, err := v.Verify(token)
			if err != nil {
				slog.Warn("auth: invalid token",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				deny(w, http.StatusUnauthorized, core.MapError(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(core.ContextWithUser(r.Context(), u)))
		})
	}
}

// RequireRole rejects authenticated users whose role is not listed.
// It must run after Authenticate.
func RequireRole(roles ...core.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := core.UserFromContext(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, core.MapError(core.ErrUnauthorized))
				return
			}
			for _, role := range roles {
				if u.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			slog.Warn("auth: role not allowed",
				"path", r.URL.Path,
				"user_id", u.ID,
				"role", u.Role,
			)
			deny(w, http.StatusForbidden, core.MapError(core.ErrForbidden))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}

func deny(w http.ResponseWriter, status int, msg core.UserMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   msg.Message,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}
