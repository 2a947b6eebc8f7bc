package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/linserv/actions-dashboard/internal/model"
	"github.com/linserv/actions-dashboard/internal/reporting"
	"github.com/linserv/actions-dashboard/internal/rules"
	"github.com/linserv/actions-dashboard/internal/storage"
)

// Store is the minimal contract the API needs.
type Store interface {
	ListSnapshots(limit, offset int) ([]storage.SnapshotRow, error)
	LoadSnapshot(id string) (model.Snapshot, error)
	LoadLatestSnapshot() (model.Snapshot, error)
	ListRecords(snapshotID, category string) ([]storage.RecordRow, error)

	ListMutes(activeOnly bool) ([]storage.Mute, error)
	CreateMute(repo, workflow, reason string, expires time.Time) (int64, error)
	RevokeMute(id int64) error
}

type Server struct {
	DB             Store
	Logger         *slog.Logger
	AllowedOrigins []string

	// Username and PasswordHash guard the mutating routes. An empty Username
	// leaves them open.
	Username     string
	PasswordHash string
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	withCORS := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if origin := s.pickCORSOrigin(r); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS, POST")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			h(w, r)
		}
	}

	// Dashboard page
	mux.HandleFunc("GET /{$}", withCORS(s.handleDashboard))

	// Health
	mux.HandleFunc("GET /api/v1/health", withCORS(s.handleHealth))

	// Snapshots
	mux.HandleFunc("GET /api/v1/snapshots", withCORS(s.handleListSnapshots))
	mux.HandleFunc("GET /api/v1/snapshots/latest", withCORS(s.handleGetLatest))
	mux.HandleFunc("GET /api/v1/snapshots/{id}", withCORS(s.handleGetSnapshot))
	mux.HandleFunc("GET /api/v1/snapshots/{id}/records", withCORS(s.handleListRecords))

	// Rules inventory
	mux.HandleFunc("GET /api/v1/rules", withCORS(s.handleRules))
	mux.HandleFunc("GET /api/v1/categories", withCORS(s.handleCategories))

	// Mutes
	mux.HandleFunc("GET /api/v1/mutes", withCORS(s.handleListMutes))
	mux.HandleFunc("POST /api/v1/mutes", withCORS(s.requireAuth(s.handleCreateMute)))
	mux.HandleFunc("POST /api/v1/mutes/{id}/revoke", withCORS(s.requireAuth(s.handleRevokeMute)))

	// Fallback 404
	mux.HandleFunc("/", withCORS(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	return s.logRequests(mux)
}

func (s *Server) pickCORSOrigin(r *http.Request) string {
	if len(s.AllowedOrigins) == 0 {
		return "*"
	}
	origin := r.Header.Get("Origin")
	for _, ao := range s.AllowedOrigins {
		if ao == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(origin, ao) {
			return origin
		}
	}
	// Not allowed -> no CORS header
	return ""
}

// handleDashboard serves the rendered HTML of the latest snapshot, with
// active mutes applied.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.DB.LoadLatestSnapshot()
	if err != nil {
		http.Error(w, "no snapshots yet; run `dashboard generate` first", http.StatusNotFound)
		return
	}
	if ms, err := s.DB.ListMutes(true); err == nil {
		rules.ApplyMutes(snap.Records, ms)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	reporting.RenderHTML(w, &snap)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := clamp(parseInt(q.Get("limit"), 20), 1, 200)
	offset := parseInt(q.Get("offset"), 0)

	rows, err := s.DB.ListSnapshots(limit, offset)
	if err != nil {
		s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": rows, "limit": limit, "offset": offset,
	})
}

// GET /api/v1/snapshots/latest
func (s *Server) handleGetLatest(w http.ResponseWriter, r *http.Request) {
	snap, err := s.DB.LoadLatestSnapshot()
	if err != nil {
		s.err(w, http.StatusNotFound, "no snapshots")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.DB.LoadSnapshot(r.PathValue("id"))
	if err != nil {
		s.err(w, http.StatusNotFound, "snapshot not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	items, err := s.DB.ListRecords(id, category)
	if err != nil {
		s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot_id": id, "category": category, "items": items,
	})
}

// GET /api/v1/rules (IDs + summaries; no auth needed for read-only)
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	type R struct {
		ID       string `json:"id"`
		Summary  string `json:"summary"`
		Priority int    `json:"priority"`
		Category string `json:"category"`
	}
	var out []R
	for _, rr := range rules.List() {
		out = append(out, R{ID: rr.ID, Summary: rr.Summary, Priority: rr.Priority, Category: rr.Category.ID})
	}
	// stable order already guaranteed by rules.List()
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "count": len(out)})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": rules.Categories()})
}

func (s *Server) err(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
