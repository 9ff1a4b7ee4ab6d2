// apps/go-server/internal/words/words.go
//
// Dictionary for the slide puzzle.
//
// Responsibilities:
//   - Load a newline-delimited word list once from a Source.
//   - Normalize entries (trim, uppercase, letters only) and index them by length.
//   - Answer membership / length-bucket queries and pick random words.
//
// Initialization behavior (Load):
//   - The Source is fetched exactly once (sync.Once).
//   - If the fetch fails or yields no usable words, the embedded
//     fallback.txt vocabulary is indexed instead, so the game stays
//     playable offline. Load never returns an error.
//
// Concurrency:
//   - Queries take a read lock; random picks take the write lock because
//     they advance the shared random source.

package words

import (
	"context"
	_ "embed"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

//go:embed fallback.txt
var embeddedFallback string

// Dictionary indexes words by length.
type Dictionary struct {
	src Source

	loadOnce sync.Once
	mu       sync.RWMutex
	byLen    map[int][]string            // insertion ordered buckets
	set      map[int]map[string]struct{} // same words, for lookups
	rng      *rand.Rand
	fallback bool
}

// New returns an unloaded dictionary reading from src.
// rng may be nil, in which case a randomly seeded source is used.
func New(src Source, rng *rand.Rand) *Dictionary {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Dictionary{
		src:   src,
		byLen: make(map[int][]string),
		set:   make(map[int]map[string]struct{}),
		rng:   rng,
	}
}

// Load fetches and indexes the word list. Calling it again is a no-op.
func (d *Dictionary) Load(ctx context.Context) {
	d.loadOnce.Do(func() {
		var list []string
		fallback := false
		if d.src != nil {
			text, err := d.src.FetchWordList(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("dictionary fetch failed; using built-in words")
			} else {
				list = Normalize(text)
			}
		}
		if len(list) == 0 {
			list = Normalize(embeddedFallback)
			fallback = true
		}

		d.mu.Lock()
		d.fallback = fallback
		for _, w := range list {
			d.add(w)
		}
		d.mu.Unlock()

		total, _ := d.Stats()
		log.Info().Int("words", total).Bool("fallback", fallback).Msg("dictionary loaded")
	})
}

// add indexes w; caller holds d.mu.
func (d *Dictionary) add(w string) {
	n := len(w)
	bucket, ok := d.set[n]
	if !ok {
		bucket = make(map[string]struct{})
		d.set[n] = bucket
	}
	if _, dup := bucket[w]; dup {
		return
	}
	bucket[w] = struct{}{}
	d.byLen[n] = append(d.byLen[n], w)
}

// WordsOfLength returns a copy of the words of length n (empty if none).
func (d *Dictionary) WordsOfLength(n int) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.byLen[n]))
	copy(out, d.byLen[n])
	return out
}

// IsValidWord reports whether s is in the dictionary, ignoring case and
// surrounding whitespace.
func (d *Dictionary) IsValidWord(s string) bool {
	w := strings.ToUpper(strings.TrimSpace(s))
	if w == "" {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.set[len(w)][w]
	return ok
}

// RandomWord picks a word of length n uniformly.
// ok is false when the bucket is empty.
func (d *Dictionary) RandomWord(n int) (word string, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	bucket := d.byLen[n]
	if len(bucket) == 0 {
		return "", false
	}
	return bucket[d.rng.IntN(len(bucket))], true
}

// RandomWords draws count distinct words of length n uniformly without
// replacement. ok is false when the bucket holds fewer than count words.
func (d *Dictionary) RandomWords(count, n int) (picked []string, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	bucket := d.byLen[n]
	if count <= 0 || len(bucket) < count {
		return nil, false
	}
	// Partial Fisher–Yates over a copy of the index range.
	idx := make([]int, len(bucket))
	for i := range idx {
		idx[i] = i
	}
	picked = make([]string, 0, count)
	for i := 0; i < count; i++ {
		j := i + d.rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		picked = append(picked, bucket[idx[i]])
	}
	return picked, true
}

// Stats returns the total word count and the per-length counts.
func (d *Dictionary) Stats() (total int, byLength map[int]int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	byLength = make(map[int]int, len(d.byLen))
	for n, b := range d.byLen {
		byLength[n] = len(b)
		total += len(b)
	}
	return total, byLength
}

// UsingFallback reports whether Load fell back to the built-in vocabulary.
func (d *Dictionary) UsingFallback() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fallback
}

// Lengths returns the indexed word lengths in ascending order.
func (d *Dictionary) Lengths() []int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]int, 0, len(d.byLen))
	for n := range d.byLen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Normalize splits a newline-delimited list into uppercase words.
// Blank lines, '#' comments and entries with non-letters are dropped.
func Normalize(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		w := strings.ToUpper(strings.TrimSpace(line))
		if w == "" || strings.HasPrefix(w, "#") || !isAlpha(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
