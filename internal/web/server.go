// Package web provides the HTTP API of the research activity backend.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/JonMunkholm/scidesk/internal/config"
	"github.com/JonMunkholm/scidesk/internal/core"
	appmw "github.com/JonMunkholm/scidesk/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server of the application.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	verifier appmw.Verifier
	metrics  http.Handler
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance. A nil metrics handler leaves
// /metrics unrouted.
func NewServer(service *core.Service, cfg *config.Config, verifier appmw.Verifier, metrics http.Handler) *Server {
	s := &Server{
		service:  service,
		cfg:      cfg,
		verifier: verifier,
		metrics:  metrics,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes. Bulk routes (imports, exports,
// notifications, documents) get the batch deadline instead of the request one.
func (s *Server) setupRoutes() {
	short := timeout(s.cfg.Server.RequestTimeout)
	bulk := timeout(s.bulkTimeout())

	s.router.With(short).Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.With(short).Handle("/metrics", s.metrics)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.With(short).Post("/signup", s.handleSignup)

		r.Group(func(r chi.Router) {
			r.Use(appmw.Authenticate(s.verifier))

			r.With(short).Get("/me", s.handleMe)

			// Own records
			r.Route("/forms", func(r chi.Router) {
				r.Use(appmw.RequireRole(core.RoleUser, core.RoleCoordinator))
				r.Use(short)
				r.Get("/", s.handleAllForms)
				r.Get("/{kind}", s.handleListForms)
				r.Post("/{kind}", s.handleCreateForm)
				r.Put("/{kind}/{id}", s.handleUpdateForm)
				r.Delete("/{kind}/{id}", s.handleDeleteForm)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(appmw.RequireRole(core.RoleAdmin))

				r.Group(func(r chi.Router) {
					r.Use(short)
					r.Get("/users", s.handleListUsers)
					r.Delete("/users/{id}", s.handleDeleteUser)

					r.Get("/base-information", s.handleBaseInformation)
					r.Delete("/base-information/{id}", s.handleDeleteBaseInformation)

					r.Get("/forms/{kind}/template", s.handleFormTemplate)
				})

				r.Group(func(r chi.Router) {
					r.Use(bulk)
					r.Post("/base-information/import", s.handleImportBaseInformation)
					r.Get("/forms/export", s.handleExportForms)

					r.Post("/notifications/semester-activity", s.handleNotify(s.service.NotifySemesterActivity))
					r.Post("/notifications/thesis", s.handleNotify(s.service.NotifyThesis))
					r.Post("/notifications/organization", s.handleNotify(s.service.NotifyOrganization))

					r.Post("/documents/faz", s.handleFAZ)
					r.Post("/documents/verbal-process", s.handleVerbalProcess)
				})
			})
		})
	})
}

// bulkResponseSlack is the time left to write a bulk response after the batch deadline.
const bulkResponseSlack = 30 * time.Second

// bulkTimeout bounds a bulk request: the service's batch timeout plus time to
// respond, never less than the regular request timeout.
func (s *Server) bulkTimeout() time.Duration {
	return max(s.service.BatchTimeout()+bulkResponseSlack, s.cfg.Server.RequestTimeout)
}

// timeout returns chi's Timeout middleware, or a pass-through for d <= 0.
func timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.Timeout(d)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.writeTimeout(),
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// writeTimeout keeps the connection write deadline past the bulk route deadline.
func (s *Server) writeTimeout() time.Duration {
	if s.cfg.Server.WriteTimeout <= 0 {
		return 0
	}
	return max(s.cfg.Server.WriteTimeout, s.bulkTimeout())
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	limiter := s.service.Limiter()
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Batches: batchStats{
			Active:    limiter.ActiveCount(),
			Available: limiter.Available(),
			Max:       limiter.MaxConcurrent(),
		},
	})
}

type healthResponse struct {
	Status  string     `json:"status"`
	Batches batchStats `json:"batches"`
}

// batchStats reports bulk operation slots.
type batchStats struct {
	Active    int `json:"active"`
	Available int `json:"available"`
	Max       int `json:"max"`
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// API only: nothing may be loaded from responses
				w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every window.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(rl.window)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists || time.Since(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: time.Now()}
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by client IP.
// TrustedRealIP has already rewritten RemoteAddr for trusted proxies.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondErrorJSON(w, core.MapError(errRateLimited), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
