package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/robalobadob/wordslide/apps/go-server/internal/daily"
	"github.com/robalobadob/wordslide/apps/go-server/internal/grid"
	"github.com/robalobadob/wordslide/apps/go-server/internal/progress"
	"github.com/robalobadob/wordslide/apps/go-server/internal/store"
	"github.com/robalobadob/wordslide/apps/go-server/internal/words"
)

const testVocabulary = `crane
plate
grape
stone
flame
slate
brick
cloud
dream
ghost
heart
axed
cat
dog
cot
dag`

var levelA = []string{"CRANE", "PLATE", "GRAPE", "STONE", "FLAME"}

type stubSource struct {
	words []string
	err   error
	calls int
}

func (s *stubSource) FetchWordsForToday(ctx context.Context) ([]string, error) {
	s.calls++
	return append([]string(nil), s.words...), s.err
}

func newDict(vocab string) *words.Dictionary {
	return words.New(words.StaticSource(vocab), rand.New(rand.NewPCG(1, 1)))
}

func newGame(t *testing.T, src daily.Source, rules Rules, p *progress.Adapter) *Game {
	t.Helper()
	if p == nil {
		p = progress.New(store.NewMemory(), "tester")
	}
	g := New(Deps{
		Dictionary: newDict(testVocabulary),
		Source:     src,
		Progress:   p,
		Rand:       rand.New(rand.NewPCG(7, 9)),
	}, rules)
	g.Start(context.Background())
	return g
}

// selectWord points every row at a cell holding the word's letter.
func selectWord(t *testing.T, g *Game, w string) {
	t.Helper()
	for r, ch := range []rune(w) {
		found := false
		for c := 0; c < g.grid.Width(); c++ {
			if g.grid.Cell(r, c) == ch {
				g.Select(r, c)
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("letter %q of %s is not in row %d", ch, w, r)
		}
	}
	if got := g.grid.Candidate(); got != w {
		t.Fatalf("selected %q, want %q", got, w)
	}
}

func submit(t *testing.T, g *Game, w string) Outcome {
	t.Helper()
	selectWord(t, g, w)
	return g.Submit(context.Background())
}

func TestStartBuildsFirstLevel(t *testing.T) {
	src := &stubSource{words: []string{"crane", "plate", "grape", "stone", "flame"}}
	g := newGame(t, src, DefaultRules(), nil)

	s := g.Snapshot()
	if s.State != StatePlaying || s.Level != 1 || s.Required != 5 || s.WordLength != 5 {
		t.Fatalf("unexpected snapshot %+v", s)
	}
	if s.Grid.Width != 5 || s.Grid.Height != 5 {
		t.Fatalf("expected 5x5 grid, got %dx%d", s.Grid.Height, s.Grid.Width)
	}
	if s.LivesEnabled {
		t.Fatal("default rules have no lives")
	}
	if progress.LevelID(g.words) != progress.LevelID(levelA) {
		t.Fatalf("level words %v, want %v", g.words, levelA)
	}

	g.Start(context.Background())
	if src.calls != 1 {
		t.Fatalf("second Start should be a no-op, source called %d times", src.calls)
	}
}

func TestFindingAllLevelWordsCompletesLevel(t *testing.T) {
	ctx := context.Background()
	p := progress.New(store.NewMemory(), "tester")
	g := newGame(t, &stubSource{words: levelA}, DefaultRules(), p)

	for i, w := range levelA {
		o := submit(t, g, w)
		if !o.LevelWord || !o.New || o.Points != 10 {
			t.Fatalf("%s: unexpected outcome %+v", w, o)
		}
		if i < len(levelA)-1 && o.Kind != OutcomeAccepted {
			t.Fatalf("%s: expected accepted, got %s", w, o.Kind)
		}
		if i == len(levelA)-1 && (o.Kind != OutcomeLevelComplete || o.State != StateLevelComplete) {
			t.Fatalf("last word should complete the level, got %+v", o)
		}
	}

	s := g.Snapshot()
	if s.Coins != 50 || s.Score != 5 || len(s.LevelWordsFound) != 5 {
		t.Fatalf("unexpected totals %+v", s)
	}
	rec := p.LoadFoundWords(ctx, progress.LevelID(levelA))
	if len(rec.LevelWords) != 5 {
		t.Fatalf("expected persisted level words, got %+v", rec)
	}

	if o := g.Submit(ctx); o.Kind != OutcomeRejected {
		t.Fatalf("submitting after completion should be rejected, got %+v", o)
	}

	if o := g.NextLevel(ctx); o.Kind != OutcomeNextLevel || o.State != StatePlaying {
		t.Fatalf("expected next level, got %+v", o)
	}
	s = g.Snapshot()
	if s.Level != 2 || s.Coins != 50 || s.Score != 5 {
		t.Fatalf("next level should keep coins and score: %+v", s)
	}
	if progress.LevelID(g.words) == progress.LevelID(levelA) {
		t.Fatal("next level should not replay the same daily words")
	}
}

func TestWrongLengthIsRejectedEvenIfInDictionary(t *testing.T) {
	g := newGame(t, &stubSource{words: levelA}, DefaultRules(), nil)
	g.grid = grid.FromRows([][]rune{{'A'}, {'X'}, {'E'}, {'D'}})

	o := g.Submit(context.Background())
	if o.Kind != OutcomeRejected || o.Word != "AXED" || !strings.Contains(o.Reason, "5 letters") {
		t.Fatalf("expected wrong-length rejection, got %+v", o)
	}
	s := g.Snapshot()
	if s.Coins != 0 || s.Score != 0 || s.State != StatePlaying {
		t.Fatalf("rejection must not change the session: %+v", s)
	}
	if g.grid.Candidate() != "AXED" {
		t.Fatal("rejection must not consume letters")
	}
}

func TestUnknownWordIsRejected(t *testing.T) {
	g := newGame(t, &stubSource{words: levelA}, DefaultRules(), nil)
	g.grid = grid.FromRows([][]rune{{'Z'}, {'Z'}, {'Z'}, {'Z'}, {'Z'}})

	o := g.Submit(context.Background())
	if o.Kind != OutcomeRejected || !strings.Contains(o.Reason, "word list") {
		t.Fatalf("expected dictionary rejection, got %+v", o)
	}
}

func TestEmptySelection(t *testing.T) {
	g := newGame(t, &stubSource{words: levelA}, DefaultRules(), nil)
	g.grid = grid.FromRows(nil)

	if o := g.Submit(context.Background()); o.Kind != OutcomeNoSelection {
		t.Fatalf("expected no_selection, got %+v", o)
	}
}

func TestFallbackWordsWhenSourceHasNone(t *testing.T) {
	src := &stubSource{err: daily.ErrNoWords}
	g := newGame(t, src, DefaultRules(), nil)

	if len(g.words) != 5 {
		t.Fatalf("expected 5 fallback words, got %v", g.words)
	}
	seen := map[string]bool{}
	for _, w := range g.words {
		if len(w) != 5 || !g.dict.IsValidWord(w) || seen[w] {
			t.Fatalf("bad fallback level %v", g.words)
		}
		seen[w] = true
	}
}

func TestFallbackToDefaultWordsWhenDictionaryTooSmall(t *testing.T) {
	g := New(Deps{
		Dictionary: newDict("crane\nplate\naxed"),
		Source:     &stubSource{err: errors.New("network down")},
		Progress:   progress.New(store.NewMemory(), ""),
		Rand:       rand.New(rand.NewPCG(1, 2)),
	}, DefaultRules())
	g.Start(context.Background())

	if progress.LevelID(g.words) != progress.LevelID(DefaultWords) {
		t.Fatalf("expected default words, got %v", g.words)
	}
	if g.State() != StatePlaying {
		t.Fatalf("game should still be playable, state %s", g.State())
	}
}

func TestUnusableDailyWordsFallBack(t *testing.T) {
	src := &stubSource{words: []string{"QWXYZ", "CRANE", "PLATE", "GRAPE", "STONE"}}
	g := newGame(t, src, DefaultRules(), nil)

	for _, w := range g.words {
		if w == "QWXYZ" {
			t.Fatalf("unknown daily word should not be used: %v", g.words)
		}
	}
}

func TestEmptyGridAdvancesToNextLevel(t *testing.T) {
	src := &stubSource{words: []string{"cat", "dog"}}
	g := newGame(t, src, DefaultRules(), nil)

	if o := submit(t, g, "COT"); o.Kind != OutcomeAccepted || o.LevelWord {
		t.Fatalf("COT should be an accepted other word, got %+v", o)
	}
	o := submit(t, g, "DAG")
	if o.Kind != OutcomeNextLevel || o.State != StatePlaying {
		t.Fatalf("empty grid should start the next level, got %+v", o)
	}
	s := g.Snapshot()
	if s.Level != 2 || s.Coins != 20 || s.Score != 2 {
		t.Fatalf("next level should keep coins and score: %+v", s)
	}
	if s.Grid.Height != 5 || len(s.LevelWordsFound) != 0 || len(s.OtherWordsFound) != 0 {
		t.Fatalf("expected a fresh 5-letter level, got %+v", s)
	}
}

func TestWordClassificationAndDuplicates(t *testing.T) {
	ctx := context.Background()
	g := newGame(t, &stubSource{words: levelA}, DefaultRules(), nil)

	o := submit(t, g, "SLATE")
	if o.Kind != OutcomeAccepted || o.LevelWord || !o.New {
		t.Fatalf("SLATE should be a new other word, got %+v", o)
	}
	g.ResetLevel(ctx)
	o = submit(t, g, "SLATE")
	if o.Kind != OutcomeAccepted || o.New {
		t.Fatalf("second SLATE should be accepted but not new, got %+v", o)
	}
	o = submit(t, g, "CRANE")
	if !o.LevelWord || !o.New {
		t.Fatalf("CRANE should be a new level word, got %+v", o)
	}

	s := g.Snapshot()
	if len(s.OtherWordsFound) != 1 || s.OtherWordsFound[0] != "SLATE" {
		t.Fatalf("other words %v", s.OtherWordsFound)
	}
	if len(s.LevelWordsFound) != 1 || s.LevelWordsFound[0] != "CRANE" {
		t.Fatalf("level words %v", s.LevelWordsFound)
	}
	if s.Score != 3 || s.Coins != 30 {
		t.Fatalf("every accepted submission scores: %+v", s)
	}
}

func TestResetRestoresProgressForSameWordSetOnly(t *testing.T) {
	ctx := context.Background()
	p := progress.New(store.NewMemory(), "tester")
	g := newGame(t, &stubSource{words: levelA}, DefaultRules(), p)
	submit(t, g, "CRANE")

	if o := g.ResetLevel(ctx); o.Kind != OutcomeReset {
		t.Fatalf("expected reset, got %+v", o)
	}
	s := g.Snapshot()
	if len(s.LevelWordsFound) != 1 || s.LevelWordsFound[0] != "CRANE" {
		t.Fatalf("reset should keep found words, got %v", s.LevelWordsFound)
	}
	if s.Tries != 1 || s.Grid.Width != 5 || s.Grid.Height != 5 {
		t.Fatalf("reset should count a try and rebuild the grid: %+v", s)
	}

	other := newGame(t, &stubSource{words: []string{"BRICK", "CLOUD", "DREAM", "GHOST", "HEART"}}, DefaultRules(), p)
	if got := other.Snapshot().LevelWordsFound; len(got) != 0 {
		t.Fatalf("a different word set must not inherit progress, got %v", got)
	}

	again := newGame(t, &stubSource{words: []string{"flame", "stone", "grape", "plate", "crane"}}, DefaultRules(), p)
	if got := again.Snapshot().LevelWordsFound; len(got) != 1 || got[0] != "CRANE" {
		t.Fatalf("same word set should restore progress, got %v", got)
	}
	if again.Snapshot().Tries != 1 {
		t.Fatal("tries should be restored for the same word set")
	}
}

func TestProgressGate(t *testing.T) {
	ctx := context.Background()
	g := newGame(t, &stubSource{words: levelA}, DefaultRules(), nil)

	if o := g.NextLevel(ctx); o.Kind != OutcomeRefused || !strings.Contains(o.Reason, "5 more") {
		t.Fatalf("expected refusal, got %+v", o)
	}
	for _, w := range levelA[:4] {
		submit(t, g, w)
	}
	if o := g.NextLevel(ctx); o.Kind != OutcomeRefused || !strings.Contains(o.Reason, "1 more") {
		t.Fatalf("expected refusal with one word missing, got %+v", o)
	}
	if s := g.Snapshot(); s.Level != 1 || s.State != StatePlaying {
		t.Fatalf("refusal must not change the level: %+v", s)
	}
}

func TestLivesVariantEndsInGameOver(t *testing.T) {
	ctx := context.Background()
	rules := DefaultRules()
	rules.Lives = 2
	g := newGame(t, &stubSource{words: levelA}, rules, nil)
	g.grid = grid.FromRows([][]rune{{'Z'}, {'Z'}, {'Z'}, {'Z'}, {'Z'}})

	if o := g.Submit(ctx); o.Kind != OutcomeRejected || g.Snapshot().Lives != 1 {
		t.Fatalf("first miss should cost a life, got %+v", o)
	}
	if o := g.Submit(ctx); o.Kind != OutcomeGameOver || o.State != StateGameOver {
		t.Fatalf("second miss should end the game, got %+v", o)
	}
	if o := g.Submit(ctx); o.Kind != OutcomeRejected || g.Snapshot().Lives != 0 {
		t.Fatalf("no play after game over, got %+v", o)
	}
	if o := g.NextLevel(ctx); o.Kind != OutcomeRefused {
		t.Fatalf("next level after game over should be refused, got %+v", o)
	}
	if o := g.ResetLevel(ctx); o.Kind != OutcomeRefused {
		t.Fatalf("reset after game over should be refused, got %+v", o)
	}

	if o := g.Restart(ctx); o.Kind != OutcomeReset || o.State != StatePlaying {
		t.Fatalf("restart should resume play, got %+v", o)
	}
	if s := g.Snapshot(); s.Lives != 2 || s.Level != 1 || !s.LivesEnabled {
		t.Fatalf("restart should restore lives: %+v", s)
	}
}

func TestRestartClearsSession(t *testing.T) {
	ctx := context.Background()
	p := progress.New(store.NewMemory(), "tester")
	g := newGame(t, &stubSource{words: levelA}, DefaultRules(), p)
	submit(t, g, "CRANE")
	submit(t, g, "PLATE")
	g.ResetLevel(ctx)
	g.ResetLevel(ctx)

	g.Restart(ctx)
	s := g.Snapshot()
	if s.Coins != 0 || s.Score != 0 || s.Level != 1 || s.Tries != 0 || len(s.LevelWordsFound) != 0 {
		t.Fatalf("restart should reset the session: %+v", s)
	}
	if s.HighScore != 2 {
		t.Fatalf("high score should survive a restart, got %d", s.HighScore)
	}
	if rec := p.LoadFoundWords(ctx, progress.LevelID(levelA)); len(rec.LevelWords) != 0 {
		t.Fatalf("restart should clear stored progress, got %+v", rec)
	}
}

// finishLevel submits every level word of the current level.
func finishLevel(t *testing.T, g *Game) {
	t.Helper()
	for _, w := range append([]string(nil), g.words...) {
		submit(t, g, w)
	}
	if g.State() != StateLevelComplete {
		t.Fatalf("level %v should be complete, state %s", g.words, g.State())
	}
}

func TestLevelsAreNotRepeatedWithinASession(t *testing.T) {
	ctx := context.Background()
	g := newGame(t, &stubSource{words: levelA}, DefaultRules(), nil)

	seen := map[string]bool{}
	for level := 1; level <= 3; level++ {
		id := progress.LevelID(g.words)
		if seen[id] {
			t.Fatalf("level %d repeats %v", level, g.words)
		}
		seen[id] = true
		s := g.Snapshot()
		if s.Level != level || s.State != StatePlaying || len(s.LevelWordsFound) != 0 {
			t.Fatalf("level %d should start fresh: %+v", level, s)
		}
		if o := g.NextLevel(ctx); o.Kind != OutcomeRefused {
			t.Fatalf("level %d should not be skippable, got %+v", level, o)
		}
		finishLevel(t, g)
		if o := g.NextLevel(ctx); o.Kind != OutcomeNextLevel {
			t.Fatalf("level %d: expected next level, got %+v", level, o)
		}
	}
}

func TestNewGameSkipsCompletedDailyWords(t *testing.T) {
	p := progress.New(store.NewMemory(), "tester")
	first := newGame(t, &stubSource{words: levelA}, DefaultRules(), p)
	finishLevel(t, first)

	next := newGame(t, &stubSource{words: levelA}, DefaultRules(), p)
	s := next.Snapshot()
	if progress.LevelID(next.words) == progress.LevelID(levelA) {
		t.Fatal("a completed word set should not be handed out again")
	}
	if s.State != StatePlaying || len(s.LevelWordsFound) != 0 {
		t.Fatalf("expected a fresh level, got %+v", s)
	}
}

func TestCompletedFallbackLevelOpensComplete(t *testing.T) {
	ctx := context.Background()
	p := progress.New(store.NewMemory(), "tester")
	done := progress.FoundWords{LevelWords: append([]string(nil), DefaultWords...)}
	if err := p.SaveFoundWords(ctx, progress.LevelID(DefaultWords), done); err != nil {
		t.Fatalf("save: %v", err)
	}
	g := New(Deps{
		Dictionary: newDict("crane\nplate\naxed"),
		Source:     &stubSource{err: daily.ErrNoWords},
		Progress:   p,
		Rand:       rand.New(rand.NewPCG(1, 2)),
	}, DefaultRules())
	g.Start(ctx)

	if g.State() != StateLevelComplete {
		t.Fatalf("a fully found level should open complete, state %s", g.State())
	}
	if o := g.NextLevel(ctx); o.Kind != OutcomeNextLevel {
		t.Fatalf("expected next level, got %+v", o)
	}
}

func TestHighScorePersistsAcrossGames(t *testing.T) {
	p := progress.New(store.NewMemory(), "tester")
	g := newGame(t, &stubSource{words: levelA}, DefaultRules(), p)
	submit(t, g, "CRANE")
	submit(t, g, "SLATE")

	next := newGame(t, &stubSource{words: levelA}, DefaultRules(), p)
	if hs := next.Snapshot().HighScore; hs != 2 {
		t.Fatalf("expected stored high score 2, got %d", hs)
	}
}

func TestActionsBeforeStart(t *testing.T) {
	ctx := context.Background()
	g := New(Deps{
		Dictionary: newDict(testVocabulary),
		Progress:   progress.New(store.NewMemory(), ""),
	}, DefaultRules())

	if g.State() != StateLoading {
		t.Fatalf("new game should be loading, got %s", g.State())
	}
	if o := g.Submit(ctx); o.Kind != OutcomeRejected {
		t.Fatalf("submit before start: %+v", o)
	}
	if g.Select(0, 0) || g.Move(0, 1, 1) {
		t.Fatal("selection before start should be a no-op")
	}
	for _, o := range []Outcome{g.NextLevel(ctx), g.ResetLevel(ctx), g.Restart(ctx)} {
		if o.Kind != OutcomeRefused {
			t.Fatalf("expected refusal before start, got %+v", o)
		}
	}
	if s := g.Snapshot(); s.Grid.Height != 0 {
		t.Fatal("no grid before start")
	}

	// nil source: levels come from the dictionary
	g.Start(ctx)
	if g.State() != StatePlaying || len(g.words) != 5 {
		t.Fatalf("expected a generated level, got %v", g.words)
	}
}

func TestMoveAndSelectDelegateToGrid(t *testing.T) {
	g := newGame(t, &stubSource{words: levelA}, DefaultRules(), nil)

	g.Select(0, 0)
	if !g.Move(0, 31, 10) {
		t.Fatal("move should change the selection")
	}
	if s := g.Snapshot(); s.Grid.Selection[0] != 3 {
		t.Fatalf("expected column 3, got %d", s.Grid.Selection[0])
	}
	if g.Select(0, 3) {
		t.Fatal("selecting the current column reports no change")
	}
}

func TestConcurrentActions(t *testing.T) {
	g := newGame(t, &stubSource{words: levelA}, DefaultRules(), nil)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g.Move(i%5, float64(i), 7)
			g.Snapshot()
			if i%10 == 0 {
				g.Submit(context.Background())
			}
		}(i)
	}
	wg.Wait()
}
