package daily

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/robalobadob/wordslide/apps/go-server/assets"
	"github.com/robalobadob/wordslide/apps/go-server/internal/store"
)

var day = time.Date(2026, 10, 19, 23, 30, 0, 0, time.FixedZone("X", -3*3600))

func fixedClock() time.Time { return day }

type lister []string

func (l lister) WordsOfLength(n int) []string {
	var out []string
	for _, w := range l {
		if len(w) == n {
			out = append(out, w)
		}
	}
	return out
}

type stubSource struct {
	words []string
	err   error
	calls int
}

func (s *stubSource) FetchWordsForToday(ctx context.Context) ([]string, error) {
	s.calls++
	return s.words, s.err
}

func TestDateKeyUsesUTC(t *testing.T) {
	if got := DateKey(day); got != "2026-10-20" {
		t.Fatalf("expected UTC date 2026-10-20, got %s", got)
	}
}

func TestWordIndexDeterministic(t *testing.T) {
	a := WordIndex("2026-10-19", "salt", 100)
	b := WordIndex("2026-10-19", "salt", 100)
	if a != b || a < 0 || a >= 100 {
		t.Fatalf("unexpected indexes %d, %d", a, b)
	}
	if WordIndex("x", "salt", 0) != 0 {
		t.Fatal("empty range should yield 0")
	}
}

func TestPickerPicksDistinctStableWords(t *testing.T) {
	words := lister{"CRANE", "PLATE", "GRAPE", "STONE", "FLAME", "BRICK", "AXED"}
	p := Picker{Words: words, Salt: "s", Count: 5, Length: 5, Now: fixedClock}

	first, err := p.FetchWordsForToday(context.Background())
	if err != nil || len(first) != 5 {
		t.Fatalf("expected 5 words, got %v (%v)", first, err)
	}
	seen := map[string]bool{}
	for _, w := range first {
		if seen[w] || len(w) != 5 {
			t.Fatalf("bad pick %v", first)
		}
		seen[w] = true
	}
	again, _ := p.FetchWordsForToday(context.Background())
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("picker is not deterministic: %v vs %v", first, again)
		}
	}

	p.Count = 7
	if _, err := p.FetchWordsForToday(context.Background()); !errors.Is(err, ErrNoWords) {
		t.Fatalf("expected ErrNoWords for a small bucket, got %v", err)
	}
}

func TestChainReturnsFirstAvailable(t *testing.T) {
	none := &stubSource{err: ErrNoWords}
	broken := &stubSource{err: errors.New("boom")}
	empty := &stubSource{}
	good := &stubSource{words: []string{"CRANE"}}
	later := &stubSource{words: []string{"PLATE"}}

	got, err := Chain{none, broken, empty, good, later}.FetchWordsForToday(context.Background())
	if err != nil || len(got) != 1 || got[0] != "CRANE" {
		t.Fatalf("got %v, %v", got, err)
	}
	if later.calls != 0 {
		t.Fatal("chain should stop at the first source with words")
	}
	if _, err := (Chain{none, broken}).FetchWordsForToday(context.Background()); !errors.Is(err, ErrNoWords) {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}
}

func TestRemote(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/days/2026-10-20.json":
			_, _ = w.Write([]byte(`["crane"," plate ","grape","stone","flame"]`))
		case "/null/2026-10-20.json":
			_, _ = w.Write([]byte(`null`))
		case "/broken/2026-10-20.json":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	ctx := context.Background()
	got, err := Remote{BaseURL: ts.URL + "/days/", Now: fixedClock}.FetchWordsForToday(ctx)
	if err != nil || len(got) != 5 || got[1] != "PLATE" {
		t.Fatalf("got %v, %v", got, err)
	}
	if _, err := (Remote{BaseURL: ts.URL + "/missing", Now: fixedClock}).FetchWordsForToday(ctx); !errors.Is(err, ErrNoWords) {
		t.Fatalf("404 should be ErrNoWords, got %v", err)
	}
	if _, err := (Remote{BaseURL: ts.URL + "/null", Now: fixedClock}).FetchWordsForToday(ctx); !errors.Is(err, ErrNoWords) {
		t.Fatalf("null should be ErrNoWords, got %v", err)
	}
	_, err = Remote{BaseURL: ts.URL + "/broken", Now: fixedClock}.FetchWordsForToday(ctx)
	if err == nil || errors.Is(err, ErrNoWords) {
		t.Fatalf("server error should be a real error, got %v", err)
	}
}

func TestStorePutGet(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()
	ctx := context.Background()
	if err := store.Migrate(ctx, db, assets.Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s := NewStore(db, fixedClock)
	if _, err := s.FetchWordsForToday(ctx); !errors.Is(err, ErrNoWords) {
		t.Fatalf("expected ErrNoWords before publishing, got %v", err)
	}
	if err := s.Put(ctx, "2026-10-20", []string{"crane", "plate"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "2026-10-20", []string{"stone", "flame"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := s.FetchWordsForToday(ctx)
	if err != nil || len(got) != 2 || got[0] != "STONE" {
		t.Fatalf("got %v, %v", got, err)
	}
	if err := s.Put(ctx, "2026-10-21", []string{"  "}); err == nil {
		t.Fatal("expected error for an empty list")
	}
}
