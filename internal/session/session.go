package session

import (
	"context"
	"errors"
	"sync"

	"github.com/goodtune/kdict/internal/lookup"
	"github.com/goodtune/kdict/internal/metrics"
	"github.com/goodtune/kdict/internal/storage"
	"github.com/goodtune/kdict/internal/usage"
	"github.com/rs/zerolog"
)

// ErrEmptyQuery is returned when the query is blank after trimming
var ErrEmptyQuery = errors.New("empty query")

// Outcome describes what a search did
type Outcome struct {
	Kind lookup.Kind `json:"-"`
	Term string      `json:"term"`

	// Entry is set for a successful lookup
	Entry *lookup.WordEntry `json:"entry,omitempty"`

	// RedirectURL is set for a translation handoff
	RedirectURL string `json:"redirect_url,omitempty"`

	// Stale is true when a newer search started before this one finished;
	// the entry was recorded but not displayed.
	Stale bool `json:"stale"`

	// Recorded is the usage state after recording the lookup
	Recorded *usage.Recorded `json:"recorded,omitempty"`

	// PersistErr is a non-fatal statistics write failure
	PersistErr error `json:"-"`
}

// Session owns one user's interaction state: the statistics tracker, the
// request sequence and the entry currently on display.
type Session struct {
	lookup    *lookup.Service
	tracker   *usage.Tracker
	redirects *lookup.Redirects
	opener    lookup.Opener
	seq       lookup.Sequencer

	current lookup.WordEntry
	mu      sync.RWMutex

	logger zerolog.Logger
}

// New creates a session showing the default entry
func New(svc *lookup.Service, tracker *usage.Tracker, redirects *lookup.Redirects, opener lookup.Opener, logger zerolog.Logger) *Session {
	if opener == nil {
		opener = lookup.NopOpener{}
	}

	return &Session{
		lookup:    svc,
		tracker:   tracker,
		redirects: redirects,
		opener:    opener,
		current:   lookup.DefaultEntry(),
		logger:    logger.With().Str("component", "session").Logger(),
	}
}

// Tracker returns the session's statistics
func (s *Session) Tracker() *usage.Tracker {
	return s.tracker
}

// Redirects returns the link builder
func (s *Session) Redirects() *lookup.Redirects {
	return s.redirects
}

// Current returns the entry on display
func (s *Session) Current() lookup.WordEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Search handles one user query. Non-English input is handed to the
// translation tool without calling the dictionary. A found word is recorded
// in the statistics and, unless superseded, becomes the current entry.
//
// The returned error is lookup.ErrNotFound or ErrEmptyQuery; statistics
// write failures are reported in Outcome.PersistErr instead.
func (s *Session) Search(ctx context.Context, input string) (Outcome, error) {
	q := lookup.Normalize(input)
	out := Outcome{Kind: q.Kind, Term: q.Term}

	if q.Term == "" {
		return out, ErrEmptyQuery
	}

	if q.Kind == lookup.KindTranslate {
		out.RedirectURL = s.redirects.TranslateURL(q.Term)
		metrics.TranslateRedirects.Inc()

		if err := s.opener.Open(out.RedirectURL); err != nil {
			s.logger.Warn().Err(err).Str("url", out.RedirectURL).Msg("Failed to open translation tool")
		}
		return out, nil
	}

	seq := s.seq.Next()

	entry, err := s.lookup.Lookup(ctx, q.Term)
	if err != nil {
		return out, err
	}
	out.Entry = &entry

	rec, err := s.tracker.RecordQuery(ctx, q.Term)
	if err != nil && !errors.Is(err, usage.ErrEmptyWord) {
		out.PersistErr = err
	}
	out.Recorded = &rec

	s.mu.Lock()
	if s.seq.IsLatest(seq) {
		s.current = entry.Clone()
	} else {
		out.Stale = true
	}
	s.mu.Unlock()

	if out.Stale {
		metrics.StaleResponses.Inc()
		s.logger.Debug().Str("term", q.Term).Uint64("seq", seq).Msg("Discarded superseded lookup")
	}

	return out, nil
}

// SearchFromText looks up a word picked out of rendered text, dropping any
// punctuation around it
func (s *Session) SearchFromText(ctx context.Context, token string) (Outcome, error) {
	return s.Search(ctx, lookup.StripToLetters(token))
}

// Open hands a URL to the session's opener
func (s *Session) Open(url string) error {
	return s.opener.Open(url)
}

// SignIn binds the statistics to the user's remote store and loads the
// recent history for the chart window
func (s *Session) SignIn(ctx context.Context, userID string, remote storage.UsageStore, seriesDays int) error {
	if err := s.tracker.SignIn(ctx, userID, remote); err != nil {
		return err
	}
	return s.tracker.Refresh(ctx, seriesDays)
}

// SignOut returns to signed-out statistics
func (s *Session) SignOut() error {
	return s.tracker.SignOut()
}

// Close flushes the local snapshot
func (s *Session) Close() error {
	return s.tracker.Flush()
}
