package httpserver

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordslide/apps/go-server/internal/game"
)

// session is a live game and the player that owns it.
type session struct {
	game   *game.Game
	player string
	seen   time.Time
}

// sessions holds live games in memory, keyed by game ID. Idle games are
// dropped on the next sweep; their progress is already persisted.
type sessions struct {
	mu   sync.Mutex
	byID map[string]*session
	ttl  time.Duration
	now  func() time.Time
}

func newSessions(ttl time.Duration) *sessions {
	return &sessions{byID: make(map[string]*session), ttl: ttl, now: time.Now}
}

func (s *sessions) put(g *game.Game, player string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[g.ID] = &session{game: g, player: player, seen: s.now()}
}

// get returns the game id if player owns it, refreshing its idle timer.
func (s *sessions) get(id, player string) (*game.Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok || sess.player != player {
		return nil, false
	}
	sess.seen = s.now()
	return sess.game, true
}

// sweep drops sessions idle for longer than the TTL and returns how many.
func (s *sessions) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.byID {
		if sess.seen.Before(cutoff) {
			delete(s.byID, id)
			n++
		}
	}
	if n > 0 {
		log.Debug().Int("dropped", n).Int("live", len(s.byID)).Msg("swept idle games")
	}
	return n
}

func (s *sessions) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
