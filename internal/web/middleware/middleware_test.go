package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/scidesk/internal/core"
)

type fakeVerifier map[string]core.User

func (f fakeVerifier) Verify(token string) (core.User, error) {
	u, ok := f[token]
	if !ok {
		return core.User{}, errors.New("unauthorized: unknown token")
	}
	return u, nil
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	verifier := fakeVerifier{
		"admin-token": {ID: 1, Role: core.RoleAdmin},
		"user-token":  {ID: 2, Role: core.RoleUser},
	}

	var seen core.User
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = core.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Authenticate(verifier)(RequireRole(core.RoleAdmin)(final))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic admin-token", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer user-token", http.StatusForbidden},
		{"admin", "bearer admin-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
	if seen.ID != 1 {
		t.Errorf("user in context = %+v, want admin", seen)
	}
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{"untrusted ignores header", nil, "203.0.113.9:5000", map[string]string{"X-Real-IP": "10.0.0.1"}, "203.0.113.9"},
		{"trusted real ip", []string{"10.0.0.0/8"}, "10.1.2.3:5000", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"trusted forwarded for", []string{"10.1.2.3"}, "10.1.2.3:5000", map[string]string{"X-Forwarded-For": "198.51.100.8, 10.1.2.3"}, "198.51.100.8"},
		{"invalid header kept out", []string{"10.0.0.0/8"}, "10.1.2.3:5000", map[string]string{"X-Real-IP": "garbage"}, "10.1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = core.IPAddressFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("client ip = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogger_CapturesStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot || rec.Body.String() != "short and stout" {
		t.Errorf("response = %d %q", rec.Code, rec.Body.String())
	}
}
