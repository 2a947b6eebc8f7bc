package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/linserv/actions-dashboard/internal/security"
)

// requireAuth protects mutating routes with HTTP basic auth against the
// configured username and bcrypt hash. No username configured means open.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || !security.CheckPassword(s.PasswordHash, pass) {
			w.Header().Set("WWW-Authenticate", `Basic realm="dashboard"`)
			s.err(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger := s.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
