// apps/go-server/internal/game/types.go
//
// Type definitions for the level/session state machine.
// Defines:
//   - State: where a session is in its lifecycle.
//   - OutcomeKind / Outcome: the result of a player action.
//   - Rules: scoring and lives configuration.
//   - Snapshot: the read-only view handed to the presentation layer.
//   - Dictionary / Progress: the collaborators a Game is constructed with.

package game

import (
	"context"

	"github.com/robalobadob/wordslide/apps/go-server/internal/grid"
	"github.com/robalobadob/wordslide/apps/go-server/internal/progress"
)

// State is the coarse lifecycle state of a session.
//
//	loading → playing → (level_complete | game_over) → playing
type State string

const (
	StateLoading       State = "loading"
	StatePlaying       State = "playing"
	StateLevelComplete State = "level_complete"
	StateGameOver      State = "game_over"
)

// OutcomeKind classifies the result of an action.
type OutcomeKind string

const (
	OutcomeNoSelection   OutcomeKind = "no_selection"   // nothing selected to submit
	OutcomeAccepted      OutcomeKind = "accepted"       // word recorded, play continues
	OutcomeRejected      OutcomeKind = "rejected"       // invalid word or not in play
	OutcomeLevelComplete OutcomeKind = "level_complete" // every level word found
	OutcomeNextLevel     OutcomeKind = "next_level"     // a new level was generated
	OutcomeGameOver      OutcomeKind = "game_over"      // lives ran out
	OutcomeRefused       OutcomeKind = "refused"        // progression / reset not allowed
	OutcomeReset         OutcomeKind = "reset"          // level reshuffled or game restarted
)

// Outcome describes what an action did. Invalid input is reported here,
// never as an error.
type Outcome struct {
	Kind      OutcomeKind `json:"kind"`
	Word      string      `json:"word,omitempty"`
	Reason    string      `json:"reason,omitempty"`
	LevelWord bool        `json:"levelWord,omitempty"` // word is in the level word set
	New       bool        `json:"new,omitempty"`       // first time this word was recorded
	Points    int         `json:"points,omitempty"`
	State     State       `json:"state"`
}

// Rules configures scoring and the optional lives mechanic.
type Rules struct {
	Reward     int // coins per accepted submission, flat
	Lives      int // starting lives; 0 disables lives and game over
	WordCount  int // words per generated level
	WordLength int // letters per generated word
}

// DefaultRules: flat reward, no lives, five 5-letter words per level.
func DefaultRules() Rules {
	return Rules{Reward: 10, Lives: 0, WordCount: 5, WordLength: 5}
}

// DefaultWords is the level used when neither the word source nor the
// dictionary can supply one.
var DefaultWords = []string{"CRANE", "PLATE", "GRAPE", "STONE", "FLAME"}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	ID              string        `json:"id"`
	State           State         `json:"state"`
	Grid            grid.Snapshot `json:"grid"`
	Level           int           `json:"level"`
	Lives           int           `json:"lives"`
	LivesEnabled    bool          `json:"livesEnabled"`
	Coins           int           `json:"coins"`
	Score           int           `json:"score"` // words found this session
	HighScore       int           `json:"highScore"`
	Tries           int           `json:"tries"`
	Required        int           `json:"required"` // level words needed to progress
	WordLength      int           `json:"wordLength"`
	LevelWordsFound []string      `json:"levelWordsFound"`
	OtherWordsFound []string      `json:"otherWordsFound"`
}

// Dictionary is what the state machine needs from internal/words.
type Dictionary interface {
	Load(ctx context.Context)
	IsValidWord(s string) bool
	RandomWords(count, n int) ([]string, bool)
}

// Progress is what the state machine needs from internal/progress.
type Progress interface {
	LoadFoundWords(ctx context.Context, levelID string) progress.FoundWords
	SaveFoundWords(ctx context.Context, levelID string, rec progress.FoundWords) error
	ClearFoundWords(ctx context.Context, levelID string) error
	HighScore(ctx context.Context) int
	SaveHighScore(ctx context.Context, score int) (bool, error)
	Tries(ctx context.Context, levelID string) int
	SaveTries(ctx context.Context, levelID string, tries int) error
}
