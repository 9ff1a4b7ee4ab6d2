// apps/go-server/internal/httpserver/ws.go
//
// Live input channel for one game: GET /game/{id}/ws.
//
// The client streams actions ({"type":"move","row":0,"position":42,"spacing":48},
// {"type":"submit"}, ...) and receives one reply per action. The first
// message from the server is the current snapshot. A ping is sent every
// pingPeriod; a client that stops answering is dropped after pongWait.

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordslide/apps/go-server/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == getEnv("CLIENT_ORIGIN", "http://localhost:5173")
	},
}

// wsError is sent for an action the server could not parse or apply.
type wsError struct {
	Error string `json:"error"`
}

// handleWS upgrades the request and pumps actions for the game.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, ok := s.games.get(id, s.playerID(w, r))
	if !ok {
		writeError(w, http.StatusNotFound, "game_not_found")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("game", id).Msg("websocket upgrade")
		return
	}
	log.Info().Str("game", id).Msg("websocket connected")

	out := make(chan any, 16)
	done := make(chan struct{})
	go writePump(conn, out, done)
	readPump(context.Background(), conn, g, out)
	close(out)
	<-done
	log.Info().Str("game", id).Msg("websocket disconnected")
}

// readPump applies incoming actions until the connection fails.
func readPump(ctx context.Context, conn *websocket.Conn, g *game.Game, out chan<- any) {
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Warn().Err(err).Msg("set read deadline")
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	out <- reply{Snapshot: g.Snapshot()}
	for {
		var a action
		if err := conn.ReadJSON(&a); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("game", g.ID).Msg("websocket read")
			}
			return
		}
		res, err := apply(ctx, g, a)
		if err != nil {
			out <- wsError{Error: err.Error()}
			continue
		}
		out <- res
	}
}

// writePump sends replies and keepalive pings; it closes conn on exit.
func writePump(conn *websocket.Conn, out <-chan any, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
		close(done)
	}()
	for {
		select {
		case msg, ok := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Msg("websocket write")
				_ = conn.Close()
				drain(out)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Msg("websocket ping")
				_ = conn.Close()
				drain(out)
				return
			}
		}
	}
}

// drain discards replies until the reader closes out, so it never blocks
// on a dead connection.
func drain(out <-chan any) {
	for range out {
	}
}
