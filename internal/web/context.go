package web

import (
	"net/http"

	"github.com/JonMunkholm/scidesk/internal/core"
)

// currentUser returns the user stored by the Authenticate middleware.
func currentUser(r *http.Request) (core.User, error) {
	u, ok := core.UserFromContext(r.Context())
	if !ok {
		return core.User{}, core.ErrUnauthorized
	}
	return u, nil
}

// clientIP returns the address resolved by TrustedRealIP.
func clientIP(r *http.Request) string {
	if ip := core.IPAddressFromContext(r.Context()); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
