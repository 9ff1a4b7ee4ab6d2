package daily

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Remote fetches <BaseURL>/<date>.json, a JSON array of words.
// A 404 or an empty array means no words for the day.
type Remote struct {
	BaseURL string
	Client  *http.Client
	Now     Clock
}

func (r Remote) FetchWordsForToday(ctx context.Context) ([]string, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	c := r.Client
	if c == nil {
		c = &http.Client{Timeout: 10 * time.Second}
	}

	url := strings.TrimRight(r.BaseURL, "/") + "/" + DateKey(now()) + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch daily words: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, ErrNoWords
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch daily words: status %d", res.StatusCode)
	}

	var words []string
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&words); err != nil {
		return nil, fmt.Errorf("decode daily words: %w", err)
	}
	if words = clean(words); len(words) == 0 {
		return nil, ErrNoWords
	}
	return words, nil
}
