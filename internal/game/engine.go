// apps/go-server/internal/game/engine.go
//
// Level/session state machine for one player.
// Responsibilities:
//   - Build levels: target words from the word source, falling back to a
//     random dictionary pick and finally to DefaultWords.
//   - Adjudicate submissions: length and dictionary checks, level/other
//     classification, flat reward, consumption of the selected letters.
//   - Drive transitions: level complete when every level word is found,
//     next level when the grid runs out of letters, game over when lives
//     (if enabled) reach zero.
//   - Persist found words, tries and high score through Progress.
//
// All exported methods lock the game, so a session can be shared between
// HTTP handlers and a websocket reader.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordslide/apps/go-server/internal/daily"
	"github.com/robalobadob/wordslide/apps/go-server/internal/grid"
	"github.com/robalobadob/wordslide/apps/go-server/internal/progress"
)

// Deps are the collaborators of a Game. Source may be nil.
type Deps struct {
	Dictionary Dictionary
	Source     daily.Source
	Progress   Progress
	Rand       *rand.Rand // nil: randomly seeded
}

// Game holds the state of a single session.
type Game struct {
	ID string

	mu       sync.Mutex
	dict     Dictionary
	source   daily.Source
	progress Progress
	rng      *rand.Rand
	rules    Rules

	state   State
	grid    *grid.Grid
	words   []string // level word set, uppercase
	levelID string
	wordLen int
	found   progress.FoundWords
	played  map[string]bool // level IDs handed out this session

	lives     int
	coins     int
	level     int
	score     int // words found this session
	highScore int
	tries     int
}

// New constructs a session in the loading state. Call Start before play.
func New(deps Deps, rules Rules) *Game {
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if rules.WordCount <= 0 {
		rules.WordCount = len(DefaultWords)
	}
	if rules.WordLength <= 0 {
		rules.WordLength = 5
	}
	return &Game{
		ID:       uuid.NewString(),
		dict:     deps.Dictionary,
		source:   deps.Source,
		progress: deps.Progress,
		rng:      rng,
		rules:    rules,
		state:    StateLoading,
		played:   map[string]bool{},
	}
}

// Start loads the dictionary and the first level. It is a no-op once the
// game has left the loading state.
func (g *Game) Start(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateLoading {
		return
	}
	g.dict.Load(ctx)
	g.highScore = g.progress.HighScore(ctx)
	g.lives = g.rules.Lives
	g.level = 1
	g.beginLevel(ctx, g.pickWords(ctx, true))
}

// State returns the current lifecycle state.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Submit adjudicates the currently selected column as a word.
func (g *Game) Submit(ctx context.Context) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StatePlaying {
		return Outcome{Kind: OutcomeRejected, Reason: "game is not in play", State: g.state}
	}
	w := g.grid.Candidate()
	if w == "" {
		return Outcome{Kind: OutcomeNoSelection, Reason: "no letters selected", State: g.state}
	}
	if n := utf8.RuneCountInString(w); n != g.wordLen {
		return g.reject(w, fmt.Sprintf("words must be %d letters", g.wordLen))
	}
	if !g.dict.IsValidWord(w) {
		return g.reject(w, "not in the word list")
	}
	return g.accept(ctx, w)
}

func (g *Game) reject(w, reason string) Outcome {
	o := Outcome{Kind: OutcomeRejected, Word: w, Reason: reason}
	if g.rules.Lives > 0 {
		g.lives--
		if g.lives <= 0 {
			g.lives = 0
			g.state = StateGameOver
			o.Kind = OutcomeGameOver
			log.Info().Str("game", g.ID).Int("level", g.level).Int("score", g.score).Msg("game over")
		}
	}
	o.State = g.state
	return o
}

func (g *Game) accept(ctx context.Context, w string) Outcome {
	isLevel := g.isLevelWord(w)
	list := &g.found.OtherWords
	if isLevel {
		list = &g.found.LevelWords
	}
	isNew := !containsWord(*list, w)
	if isNew {
		*list = append(*list, w)
		g.saveFound(ctx)
	}

	g.score++
	g.coins += g.rules.Reward
	g.saveHighScore(ctx)
	g.grid.Consume()

	o := Outcome{Kind: OutcomeAccepted, Word: w, LevelWord: isLevel, New: isNew, Points: g.rules.Reward}
	switch {
	case len(g.found.LevelWords) >= g.required():
		g.state = StateLevelComplete
		g.saveFound(ctx)
		o.Kind = OutcomeLevelComplete
		log.Info().Str("game", g.ID).Int("level", g.level).Msg("level complete")
	case g.grid.IsEmpty():
		g.advance(ctx)
		o.Kind = OutcomeNextLevel
	}
	o.State = g.state
	return o
}

// NextLevel moves on to a new level. It is refused until every level word
// of the current level has been found.
func (g *Game) NextLevel(ctx context.Context) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case g.state == StateLoading:
		return Outcome{Kind: OutcomeRefused, Reason: "game has not started", State: g.state}
	case g.state == StateGameOver:
		return Outcome{Kind: OutcomeRefused, Reason: "game over, restart to play again", State: g.state}
	}
	if have, need := len(g.found.LevelWords), g.required(); have < need {
		return Outcome{
			Kind:   OutcomeRefused,
			Reason: fmt.Sprintf("find %d more level words to continue", need-have),
			State:  g.state,
		}
	}
	g.advance(ctx)
	return Outcome{Kind: OutcomeNextLevel, State: g.state}
}

// ResetLevel reshuffles the current level's words, keeps its found words and
// counts the retry.
func (g *Game) ResetLevel(ctx context.Context) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case StateLoading:
		return Outcome{Kind: OutcomeRefused, Reason: "game has not started", State: g.state}
	case StateGameOver:
		return Outcome{Kind: OutcomeRefused, Reason: "game over, restart to play again", State: g.state}
	}
	g.tries = g.progress.Tries(ctx, g.levelID) + 1
	if err := g.progress.SaveTries(ctx, g.levelID, g.tries); err != nil {
		log.Warn().Err(err).Str("game", g.ID).Msg("save tries")
	}
	g.grid = grid.New(g.words, g.rng)
	g.found = g.progress.LoadFoundWords(ctx, g.levelID)
	g.settle()
	return Outcome{Kind: OutcomeReset, State: g.state}
}

// Restart begins a new session: lives, coins, level and counters reset and
// the fresh level starts with no found words and no tries.
func (g *Game) Restart(ctx context.Context) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateLoading {
		return Outcome{Kind: OutcomeRefused, Reason: "game has not started", State: g.state}
	}
	g.lives = g.rules.Lives
	g.coins = 0
	g.level = 1
	g.score = 0
	g.played = map[string]bool{}
	g.beginLevel(ctx, g.pickWords(ctx, false))
	g.found = progress.FoundWords{}
	if err := g.progress.ClearFoundWords(ctx, g.levelID); err != nil {
		log.Warn().Err(err).Str("game", g.ID).Msg("clear found words")
	}
	g.tries = 0
	if err := g.progress.SaveTries(ctx, g.levelID, 0); err != nil {
		log.Warn().Err(err).Str("game", g.ID).Msg("clear tries")
	}
	g.state = StatePlaying
	return Outcome{Kind: OutcomeReset, State: g.state}
}

// Select points row at col; indexes are clamped.
func (g *Game) Select(row, col int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.grid == nil {
		return false
	}
	return g.grid.Select(row, col)
}

// Move selects the column nearest a continuous drag position.
func (g *Game) Move(row int, position, spacing float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.grid == nil {
		return false
	}
	return g.grid.Move(row, position, spacing)
}

// Snapshot returns a copy of the session for rendering.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := Snapshot{
		ID:              g.ID,
		State:           g.state,
		Level:           g.level,
		Lives:           g.lives,
		LivesEnabled:    g.rules.Lives > 0,
		Coins:           g.coins,
		Score:           g.score,
		HighScore:       g.highScore,
		Tries:           g.tries,
		Required:        g.required(),
		WordLength:      g.wordLen,
		LevelWordsFound: append([]string{}, g.found.LevelWords...),
		OtherWordsFound: append([]string{}, g.found.OtherWords...),
	}
	if g.grid != nil {
		s.Grid = g.grid.Snapshot()
	}
	return s
}

// required is the number of level words needed to complete the level.
func (g *Game) required() int { return len(g.words) }

func (g *Game) isLevelWord(w string) bool {
	for _, x := range g.words {
		if strings.EqualFold(x, w) {
			return true
		}
	}
	return false
}

// advance generates the next level, keeping lives, coins and score.
func (g *Game) advance(ctx context.Context) {
	g.level++
	g.beginLevel(ctx, g.pickWords(ctx, true))
}

// beginLevel installs words as the level word set, builds its grid and
// restores any progress recorded for it. A level whose stored record
// already holds every level word opens as complete.
func (g *Game) beginLevel(ctx context.Context, words []string) {
	g.words = words
	g.levelID = progress.LevelID(words)
	g.wordLen = 0
	for _, w := range words {
		if n := utf8.RuneCountInString(w); n > g.wordLen {
			g.wordLen = n
		}
	}
	g.grid = grid.New(words, g.rng)
	g.found = g.progress.LoadFoundWords(ctx, g.levelID)
	g.tries = g.progress.Tries(ctx, g.levelID)
	g.played[g.levelID] = true
	g.settle()
	log.Info().
		Str("game", g.ID).
		Int("level", g.level).
		Int("words", len(words)).
		Int("restored", len(g.found.LevelWords)+len(g.found.OtherWords)).
		Str("state", string(g.state)).
		Msg("level started")
}

// settle sets playing or level_complete from the found level words.
func (g *Game) settle() {
	if len(g.found.LevelWords) >= g.required() {
		g.state = StateLevelComplete
		return
	}
	g.state = StatePlaying
}

// randomDraws bounds how often pickWords redraws a level already played.
const randomDraws = 8

// pickWords asks the word source for the day's words and falls back to a
// random dictionary draw, then to DefaultWords. Word sets already handed
// out this session are skipped, and so are sets the player has completed
// when skipDone is set.
func (g *Game) pickWords(ctx context.Context, skipDone bool) []string {
	if g.source != nil {
		words, err := g.source.FetchWordsForToday(ctx)
		switch {
		case errors.Is(err, daily.ErrNoWords):
			log.Debug().Str("game", g.ID).Msg("no daily words, generating level")
		case err != nil:
			log.Warn().Err(err).Str("game", g.ID).Msg("word source failed, generating level")
		default:
			words = normalizeWords(words)
			if reason := g.unusable(words); reason != "" {
				log.Warn().Str("game", g.ID).Str("reason", reason).Msg("daily words unusable, generating level")
			} else if g.used(ctx, words, skipDone) {
				log.Debug().Str("game", g.ID).Msg("daily words already played, generating level")
			} else {
				return words
			}
		}
	}
	var drawn []string
	for range randomDraws {
		words, ok := g.dict.RandomWords(g.rules.WordCount, g.rules.WordLength)
		if !ok {
			break
		}
		drawn = words
		if !g.used(ctx, words, skipDone) {
			return words
		}
	}
	if drawn != nil {
		return drawn
	}
	log.Warn().Str("game", g.ID).Msg("dictionary too small, using default words")
	return append([]string(nil), DefaultWords...)
}

// used reports whether words were handed out this session or, with
// skipDone, already completed in stored progress.
func (g *Game) used(ctx context.Context, words []string, skipDone bool) bool {
	id := progress.LevelID(words)
	if g.played[id] {
		return true
	}
	return skipDone && len(g.progress.LoadFoundWords(ctx, id).LevelWords) >= len(words)
}

// unusable explains why words cannot form a winnable level ("" if they can).
func (g *Game) unusable(words []string) string {
	if len(words) == 0 {
		return "empty list"
	}
	n := utf8.RuneCountInString(words[0])
	for _, w := range words {
		if utf8.RuneCountInString(w) != n {
			return "mixed word lengths"
		}
		if !g.dict.IsValidWord(w) {
			return "word not in dictionary: " + w
		}
	}
	return ""
}

func (g *Game) saveFound(ctx context.Context) {
	if err := g.progress.SaveFoundWords(ctx, g.levelID, g.found); err != nil {
		log.Warn().Err(err).Str("game", g.ID).Msg("save found words")
	}
}

func (g *Game) saveHighScore(ctx context.Context) {
	if g.score <= g.highScore {
		return
	}
	g.highScore = g.score
	if _, err := g.progress.SaveHighScore(ctx, g.score); err != nil {
		log.Warn().Err(err).Str("game", g.ID).Msg("save high score")
	}
}

func normalizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToUpper(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func containsWord(list []string, w string) bool {
	for _, x := range list {
		if strings.EqualFold(x, w) {
			return true
		}
	}
	return false
}
