// Package progress persists a player's found words, retry counts and high
// score on top of a store.KV.
//
// Keys are namespaced by the game prefix and the player:
//
//	wordslide:<player>:found:<levelID>
//	wordslide:<player>:tries:<levelID>
//	wordslide:<player>:highscore
//
// Reads never fail: missing or malformed records load as empty values.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordslide/apps/go-server/internal/store"
)

// Prefix namespaces every key this package writes.
const Prefix = "wordslide"

// FoundWords is the per-level record of accepted words.
// The two lists are disjoint, uppercase and free of duplicates.
type FoundWords struct {
	LevelWords []string `json:"levelWords"`
	OtherWords []string `json:"otherWords"`
}

// LevelID is the canonical identity of a level word set: the words trimmed,
// uppercased, sorted and joined with commas.
func LevelID(words []string) string {
	norm := make([]string, 0, len(words))
	for _, w := range words {
		norm = append(norm, strings.ToUpper(strings.TrimSpace(w)))
	}
	sort.Strings(norm)
	return strings.Join(norm, ",")
}

// Adapter reads and writes one player's records.
type Adapter struct {
	kv     store.KV
	player string
}

// New returns an adapter for player ("" is allowed and means a shared
// namespace, e.g. single-player tools).
func New(kv store.KV, player string) *Adapter {
	return &Adapter{kv: kv, player: player}
}

func (a *Adapter) key(parts ...string) string {
	return Prefix + ":" + a.player + ":" + strings.Join(parts, ":")
}

// LoadFoundWords returns the record for levelID. A bare JSON array is read
// as level words; anything unreadable is treated as no progress.
func (a *Adapter) LoadFoundWords(ctx context.Context, levelID string) FoundWords {
	b, err := a.kv.Get(ctx, a.key("found", levelID))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("level", levelID).Msg("load found words")
		}
		return FoundWords{}
	}
	return decodeFound(b, levelID)
}

func decodeFound(b []byte, levelID string) FoundWords {
	var raw json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		log.Debug().Err(err).Str("level", levelID).Msg("malformed found-words record")
		return FoundWords{}
	}

	var legacy []string
	if err := json.Unmarshal(raw, &legacy); err == nil {
		return normalize(FoundWords{LevelWords: legacy})
	}
	var rec FoundWords
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Debug().Err(err).Str("level", levelID).Msg("unexpected found-words shape")
		return FoundWords{}
	}
	return normalize(rec)
}

// normalize uppercases, drops blanks and duplicates, and keeps a word only
// in LevelWords when both lists carry it.
func normalize(f FoundWords) FoundWords {
	seen := make(map[string]bool)
	out := FoundWords{LevelWords: []string{}, OtherWords: []string{}}
	for _, w := range f.LevelWords {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w != "" && !seen[w] {
			seen[w] = true
			out.LevelWords = append(out.LevelWords, w)
		}
	}
	for _, w := range f.OtherWords {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w != "" && !seen[w] {
			seen[w] = true
			out.OtherWords = append(out.OtherWords, w)
		}
	}
	return out
}

// SaveFoundWords writes the record for levelID.
func (a *Adapter) SaveFoundWords(ctx context.Context, levelID string, rec FoundWords) error {
	rec = normalize(rec)
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := a.kv.Set(ctx, a.key("found", levelID), b); err != nil {
		return fmt.Errorf("save found words: %w", err)
	}
	return nil
}

// ClearFoundWords forgets the record for levelID.
func (a *Adapter) ClearFoundWords(ctx context.Context, levelID string) error {
	return a.kv.Delete(ctx, a.key("found", levelID))
}

// HighScore returns the stored high score (0 when absent or unreadable).
func (a *Adapter) HighScore(ctx context.Context) int {
	return a.loadInt(ctx, a.key("highscore"))
}

// SaveHighScore stores score only when it strictly exceeds the stored
// value, and reports whether it did.
func (a *Adapter) SaveHighScore(ctx context.Context, score int) (bool, error) {
	if score <= a.HighScore(ctx) {
		return false, nil
	}
	if err := a.kv.Set(ctx, a.key("highscore"), []byte(strconv.Itoa(score))); err != nil {
		return false, fmt.Errorf("save high score: %w", err)
	}
	return true, nil
}

// Tries returns how many times levelID has been reset.
func (a *Adapter) Tries(ctx context.Context, levelID string) int {
	return a.loadInt(ctx, a.key("tries", levelID))
}

// SaveTries stores the reset counter for levelID.
func (a *Adapter) SaveTries(ctx context.Context, levelID string, tries int) error {
	if err := a.kv.Set(ctx, a.key("tries", levelID), []byte(strconv.Itoa(tries))); err != nil {
		return fmt.Errorf("save tries: %w", err)
	}
	return nil
}

func (a *Adapter) loadInt(ctx context.Context, key string) int {
	b, err := a.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("load counter")
		}
		return 0
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil || n < 0 {
		log.Debug().Str("key", key).Msg("malformed counter")
		return 0
	}
	return n
}
