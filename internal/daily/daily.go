// Package daily supplies the target words for a day.
//
// A Source answers "which words should today's level use". Sources:
//   - Store:  lists published into the daily_words table, keyed by date.
//   - Remote: a JSON array fetched from <base>/<date>.json.
//   - Picker: a deterministic pick from the dictionary, HMAC(salt, date).
//   - Chain:  the first of several sources that has words.
//
// Date keys are YYYY-MM-DD in UTC so every player shares the same day.
package daily

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNoWords means the source has no list for the current date key.
var ErrNoWords = errors.New("daily: no words for date")

// Source yields the words for the current day.
type Source interface {
	FetchWordsForToday(ctx context.Context) ([]string, error)
}

// Clock returns the current time; time.Now in production.
type Clock func() time.Time

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a key using
// HMAC(salt, key) % n.
func WordIndex(key, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(key))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// WordLister is the slice of the dictionary the Picker needs.
type WordLister interface {
	WordsOfLength(n int) []string
}

// Picker derives a day's words from the dictionary. Every server with the
// same salt and word list picks the same words for the same date.
type Picker struct {
	Words  WordLister
	Salt   string
	Count  int
	Length int
	Now    Clock
}

func (p Picker) FetchWordsForToday(ctx context.Context) ([]string, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return p.WordsFor(DateKey(now()))
}

// WordsFor picks Count distinct words of Length for the date key.
func (p Picker) WordsFor(date string) ([]string, error) {
	bucket := p.Words.WordsOfLength(p.Length)
	if p.Count <= 0 || len(bucket) < p.Count {
		return nil, ErrNoWords
	}
	used := make(map[int]bool, p.Count)
	out := make([]string, 0, p.Count)
	for i := 0; i < p.Count; i++ {
		idx := WordIndex(date+"#"+strconv.Itoa(i), p.Salt, len(bucket))
		for used[idx] {
			idx = (idx + 1) % len(bucket)
		}
		used[idx] = true
		out = append(out, bucket[idx])
	}
	return out, nil
}

// Chain asks each source in order and returns the first non-empty list.
// Errors other than ErrNoWords are logged and skipped.
type Chain []Source

func (c Chain) FetchWordsForToday(ctx context.Context) ([]string, error) {
	for _, s := range c {
		words, err := s.FetchWordsForToday(ctx)
		if err != nil {
			if !errors.Is(err, ErrNoWords) {
				log.Warn().Err(err).Msg("daily source failed")
			}
			continue
		}
		if len(words) > 0 {
			return words, nil
		}
	}
	return nil, ErrNoWords
}

// clean uppercases and trims words, dropping blanks.
func clean(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToUpper(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
