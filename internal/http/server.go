// Package http exposes the expense API surface: auth, expense CRUD and the
// dashboard, all JSON over stdlib net/http.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintracker/internal/auth"
	"fintracker/internal/cache"
	"fintracker/internal/core"
	applog "fintracker/internal/log"
	"fintracker/internal/services"
)

const (
	dashboardCacheSize = 100
	dashboardCacheTTL  = 5 * time.Minute
)

type Server struct {
	http.Server
	service      *services.ExpenseService
	authProvider auth.Provider
	origins      map[string]bool
	limiter      *rateLimiter
	logger       *applog.Logger

	// Dashboard summaries are cached per user and invalidated on any
	// mutation for that user.
	dashCache *cache.LRUCache[core.DashboardSummary]

	// now is the dashboard reference clock, replaceable in tests.
	now func() time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.ExpenseService, provider auth.Provider, allowedOrigins []string, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		service:      svc,
		authProvider: provider,
		origins:      origins,
		limiter:      newRateLimiter(),
		logger:       logger.WithComponent(applog.ComponentHTTP),
		dashCache:    cache.NewLRUCache[core.DashboardSummary](dashboardCacheSize, dashboardCacheTTL),
		now:          time.Now,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /auth/login", s.wrap(s.handleLogin))
	mux.HandleFunc("GET /auth/verify", s.wrap(s.handleVerify))
	mux.HandleFunc("GET /categories", s.wrap(s.handleCategories))

	mux.HandleFunc("GET /expenses", s.wrap(s.requireAuth(s.handleListExpenses)))
	mux.HandleFunc("POST /expenses", s.wrap(s.requireAuth(s.handleCreateExpense)))
	mux.HandleFunc("PUT /expenses/{id}", s.wrap(s.requireAuth(s.handleUpdateExpense)))
	mux.HandleFunc("DELETE /expenses/{id}", s.wrap(s.requireAuth(s.handleDeleteExpense)))
	mux.HandleFunc("GET /dashboard", s.wrap(s.requireAuth(s.handleDashboard)))

	// CORS preflight for every route.
	mux.HandleFunc("OPTIONS /", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	return s
}

// wrap applies request ID, logging, CORS, security headers and mutation
// rate limiting around a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()
		ip := clientIP(r)

		reqLogger := s.logger.With(applog.FieldRequestID, requestID)
		ctx := applog.IntoContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		reqLogger.InfoContext(ctx, "Request started",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, ip)

		s.applyCORS(w, r)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if isMutation(r.Method) && !s.limiter.allow(ip) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded", applog.FieldClientIP, ip)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		reqLogger.InfoContext(ctx, "Request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.status,
			applog.FieldDuration, time.Since(start).Milliseconds())
	}
}

func (s *Server) applyCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" || !s.origins[origin] {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Vary", "Origin")
}

// requireAuth verifies the bearer token and stores the identity in the
// request context. When the request names a userId, it must match the
// token identity; expenses are never visible across users.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}
		identity, err := s.authProvider.Verify(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next(w, r.WithContext(withIdentity(r.Context(), identity)))
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Shutdown stops the rate limiter cleanup and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) invalidateDashboard(userID string) {
	s.dashCache.Delete(userID)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
