// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the daily word lists.
//   - GET /daily/today  → {date, available, count, wordLength}; the words
//     themselves are never exposed.
//   - PUT /daily/{date} → publish the list for a date (X-Admin-Token).
//
// New games draw their level words from the same source chain, so a list
// published here becomes the first level of every game started that day.

package httpserver

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordslide/apps/go-server/internal/daily"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/today", s.handleDailyToday)
		r.Put("/{date}", s.handleDailyPut)
	})
}

// todayRes is returned by /daily/today.
type todayRes struct {
	Date       string `json:"date"`
	Available  bool   `json:"available"`
	Count      int    `json:"count"`
	WordLength int    `json:"wordLength"`
}

// handleDailyToday reports whether level words are available for today.
func (s *Server) handleDailyToday(w http.ResponseWriter, r *http.Request) {
	res := todayRes{Date: daily.DateKey(time.Now())}
	if s.deps.Source != nil {
		list, err := s.deps.Source.FetchWordsForToday(r.Context())
		switch {
		case errors.Is(err, daily.ErrNoWords):
		case err != nil:
			log.Warn().Err(err).Msg("daily source")
		case len(list) > 0:
			res.Available = true
			res.Count = len(list)
			res.WordLength = utf8.RuneCountInString(list[0])
		}
	}
	_ = json.NewEncoder(w).Encode(res)
}

// putDailyReq is the body of PUT /daily/{date}.
type putDailyReq struct {
	Words []string `json:"words"`
}

// handleDailyPut publishes a date's level words. Every word must be in the
// dictionary and all must share one length.
func (s *Server) handleDailyPut(w http.ResponseWriter, r *http.Request) {
	if s.deps.Days == nil || s.deps.AdminToken == "" {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	tok := r.Header.Get("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(tok), []byte(s.deps.AdminToken)) != 1 {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	var req putDailyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	for i, wd := range req.Words {
		req.Words[i] = strings.TrimSpace(wd)
	}
	if len(req.Words) == 0 {
		writeError(w, http.StatusBadRequest, "words required")
		return
	}
	n := utf8.RuneCountInString(req.Words[0])
	for _, wd := range req.Words {
		if utf8.RuneCountInString(wd) != n {
			writeError(w, http.StatusBadRequest, "words must share one length")
			return
		}
		if !s.deps.Dictionary.IsValidWord(wd) {
			writeError(w, http.StatusBadRequest, "not in the word list: "+wd)
			return
		}
	}
	if err := s.deps.Days.Put(r.Context(), date, req.Words); err != nil {
		log.Error().Err(err).Str("date", date).Msg("publish daily words")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Info().Str("date", date).Int("words", len(req.Words)).Msg("daily words published")
	_ = json.NewEncoder(w).Encode(map[string]any{"date": date, "count": len(req.Words)})
}
