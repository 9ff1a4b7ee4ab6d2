package daily

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Store keeps published day lists in the daily_words table.
type Store struct {
	db  *sql.DB
	now Clock
}

// NewStore wraps db; now may be nil for time.Now.
func NewStore(db *sql.DB, now Clock) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{db: db, now: now}
}

// Put publishes words for date, replacing any earlier list.
func (s *Store) Put(ctx context.Context, date string, words []string) error {
	words = clean(words)
	if len(words) == 0 {
		return errors.New("daily: empty word list")
	}
	b, err := json.Marshal(words)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO daily_words (date, words) VALUES (?, ?)
        ON CONFLICT(date) DO UPDATE SET words=excluded.words`,
		date, string(b),
	)
	return err
}

// Get returns the list for date or ErrNoWords.
func (s *Store) Get(ctx context.Context, date string) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT words FROM daily_words WHERE date=?`, date).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoWords
	}
	if err != nil {
		return nil, err
	}
	var words []string
	if err := json.Unmarshal([]byte(raw), &words); err != nil {
		return nil, fmt.Errorf("daily: bad list for %s: %w", date, err)
	}
	if words = clean(words); len(words) == 0 {
		return nil, ErrNoWords
	}
	return words, nil
}

func (s *Store) FetchWordsForToday(ctx context.Context) ([]string, error) {
	return s.Get(ctx, DateKey(s.now()))
}
