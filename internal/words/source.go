package words

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Source supplies the raw newline-delimited word list.
type Source interface {
	FetchWordList(ctx context.Context) (string, error)
}

// FileSource reads the list from a local file.
type FileSource string

func (p FileSource) FetchWordList(ctx context.Context) (string, error) {
	b, err := os.ReadFile(string(p))
	if err != nil {
		return "", fmt.Errorf("read word file %s: %w", string(p), err)
	}
	return string(b), nil
}

// StaticSource serves a list already in memory (the embedded asset, tests).
type StaticSource string

func (s StaticSource) FetchWordList(ctx context.Context) (string, error) {
	if s == "" {
		return "", errors.New("static word list is empty")
	}
	return string(s), nil
}

// HTTPSource downloads the list with a GET request.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// maxListBytes bounds the download; real lists are a few MB at most.
const maxListBytes = 16 << 20

func (h HTTPSource) FetchWordList(ctx context.Context) (string, error) {
	c := h.Client
	if c == nil {
		c = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return "", err
	}
	res, err := c.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch word list: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch word list: status %d", res.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(res.Body, maxListBytes))
	if err != nil {
		return "", fmt.Errorf("read word list: %w", err)
	}
	return string(b), nil
}

// MultiSource tries each source in order and returns the first success.
type MultiSource []Source

func (m MultiSource) FetchWordList(ctx context.Context) (string, error) {
	var errs []error
	for _, s := range m {
		text, err := s.FetchWordList(ctx)
		if err == nil {
			return text, nil
		}
		log.Debug().Err(err).Msg("word source failed, trying next")
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", errors.New("no word sources configured")
	}
	return "", errors.Join(errs...)
}
