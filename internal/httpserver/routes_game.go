// apps/go-server/internal/httpserver/routes_game.go
//
// HTTP routes for playing a game.
//   - POST /game/new          → start a session, returns {gameId, snapshot}
//   - GET  /game/{id}         → current snapshot
//   - POST /game/{id}/select  → {row, col}
//   - POST /game/{id}/move    → {row, position, spacing}
//   - POST /game/{id}/submit  → adjudicate the selected column
//   - POST /game/{id}/reset   → reshuffle the current level
//   - POST /game/{id}/restart → start over from level 1
//   - POST /game/{id}/next    → advance once the level is complete
//
// Every action answers with the resulting snapshot so clients never hold
// game state of their own. The same actions are accepted over the
// websocket (ws.go).

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordslide/apps/go-server/internal/game"
	"github.com/robalobadob/wordslide/apps/go-server/internal/progress"
)

var errUnknownAction = errors.New("unknown action")

// mountGame registers the /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Get("/game/{id}", s.handleGetGame)
	for _, name := range []string{"select", "move", "submit", "reset", "restart", "next"} {
		r.Post("/game/{id}/"+name, s.handleAction(name))
	}
}

// newGameReq is the optional body of POST /game/new.
type newGameReq struct {
	Lives *int `json:"lives"` // overrides the server's lives setting
}

type newGameRes struct {
	GameID   string        `json:"gameId"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// action is one player input, over HTTP or the websocket.
type action struct {
	Type     string  `json:"type"`
	Row      int     `json:"row"`
	Col      int     `json:"col"`
	Position float64 `json:"position"`
	Spacing  float64 `json:"spacing"`
}

// reply is the answer to an action.
type reply struct {
	Outcome  *game.Outcome `json:"outcome,omitempty"`
	Changed  bool          `json:"changed,omitempty"` // select / move moved the selection
	Snapshot game.Snapshot `json:"snapshot"`
}

// newGame builds and starts a game whose progress lives under player.
func (s *Server) newGame(ctx context.Context, player string, rules game.Rules) *game.Game {
	g := game.New(game.Deps{
		Dictionary: s.deps.Dictionary,
		Source:     s.deps.Source,
		Progress:   progress.New(s.deps.KV, player),
	}, rules)
	g.Start(ctx)
	s.games.put(g, player)
	log.Info().Str("game", g.ID).Str("player", player).Int("live", s.games.count()).Msg("game created")
	return g
}

// handleNewGame creates a game for the calling player.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req) // body is optional

	rules := s.deps.Rules
	if req.Lives != nil {
		if *req.Lives < 0 {
			writeError(w, http.StatusBadRequest, "lives must not be negative")
			return
		}
		rules.Lives = *req.Lives
	}

	s.games.sweep()
	g := s.newGame(r.Context(), s.playerID(w, r), rules)
	_ = json.NewEncoder(w).Encode(newGameRes{GameID: g.ID, Snapshot: g.Snapshot()})
}

// handleGetGame returns the snapshot of a game owned by the caller.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.games.get(chi.URLParam(r, "id"), s.playerID(w, r))
	if !ok {
		writeError(w, http.StatusNotFound, "game_not_found")
		return
	}
	_ = json.NewEncoder(w).Encode(reply{Snapshot: g.Snapshot()})
}

// handleAction returns a handler applying the named action.
func (s *Server) handleAction(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := s.games.get(chi.URLParam(r, "id"), s.playerID(w, r))
		if !ok {
			writeError(w, http.StatusNotFound, "game_not_found")
			return
		}
		var a action
		if name == "select" || name == "move" {
			if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
				writeError(w, http.StatusBadRequest, "bad_json")
				return
			}
		}
		a.Type = name
		res, err := apply(r.Context(), g, a)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

// apply runs a against g.
func apply(ctx context.Context, g *game.Game, a action) (reply, error) {
	var res reply
	var o game.Outcome
	switch a.Type {
	case "select":
		res.Changed = g.Select(a.Row, a.Col)
	case "move":
		res.Changed = g.Move(a.Row, a.Position, a.Spacing)
	case "submit":
		o = g.Submit(ctx)
	case "reset":
		o = g.ResetLevel(ctx)
	case "restart":
		o = g.Restart(ctx)
	case "next":
		o = g.NextLevel(ctx)
	case "snapshot":
	default:
		return reply{}, errUnknownAction
	}
	if o.Kind != "" {
		res.Outcome = &o
		log.Debug().Str("game", g.ID).Str("action", a.Type).Str("outcome", string(o.Kind)).Str("word", o.Word).Msg("action")
	}
	res.Snapshot = g.Snapshot()
	return res, nil
}
