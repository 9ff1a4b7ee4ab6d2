// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the wordslide backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     zerolog access log).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints (optional auth): mounted under /game (routes_game.go),
//     plus the live websocket channel (ws.go).
//   - Daily word lists: mounted under /daily (routes_daily.go).
//   - Auth + profile endpoints: /auth/*, /stats/me (auth.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every player, signed in or not, gets a progress namespace: "u:<id>" for
//     accounts, "a:<anon cookie>" for guests.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordslide/apps/go-server/internal/daily"
	"github.com/robalobadob/wordslide/apps/go-server/internal/game"
	"github.com/robalobadob/wordslide/apps/go-server/internal/store"
	"github.com/robalobadob/wordslide/apps/go-server/internal/words"
)

// Deps are the collaborators a Server is built from.
type Deps struct {
	DB         *sql.DB // users table; may be nil to disable accounts
	KV         store.KV
	Dictionary *words.Dictionary
	Source     daily.Source // level words for new games; may be nil
	Days       *daily.Store // admin-published lists; may be nil
	Rules      game.Rules
	AdminToken string // PUT /daily/{date} is disabled when empty
	SessionTTL time.Duration
}

// Server bundles the router, the live game sessions and their dependencies.
type Server struct {
	r     *chi.Mux
	deps  Deps
	games *sessions
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.KV == nil {
		d.KV = store.NewMemory()
	}
	if d.SessionTTL <= 0 {
		d.SessionTTL = 2 * time.Hour
	}
	s := &Server{r: chi.NewRouter(), deps: d, games: newSessions(d.SessionTTL)}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("req_id", chimw.GetReqID(r.Context())).
			Int("status", status).
			Int("size", size).
			Dur("duration", dur).
			Msg("request")
	}))
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(corsFromEnv)     // credentials-friendly CORS

	// The websocket outlives any request timeout.
	s.r.With(s.withOptionalAuth()).Get("/game/{id}/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"wordslide-go","endpoints":["/health","POST /game/new","/game/{id}/*","/daily/*","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "games": s.games.count()})
		})

		// Debug: dictionary counts per word length
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			total, byLen := s.deps.Dictionary.Stats()
			_ = json.NewEncoder(w).Encode(map[string]any{
				"total":    total,
				"byLength": byLen,
				"lengths":  s.deps.Dictionary.Lengths(),
				"fallback": s.deps.Dictionary.UsingFallback(),
			})
		})

		// Game endpoints: OPTIONAL AUTH (guests can play)
		s.mountGame(r.With(s.withOptionalAuth()))

		// Daily word lists
		s.mountDaily(r)

		// Auth + profile/stats
		s.mountAuthRoutes(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := getEnv("CLIENT_ORIGIN", "http://localhost:5173")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Token")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- small util --------------------------------

// writeError writes {"error": code} with status.
func writeError(w http.ResponseWriter, status int, code string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
