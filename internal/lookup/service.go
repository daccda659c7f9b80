package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/goodtune/kdict/internal/dictionary"
	"github.com/goodtune/kdict/internal/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// ErrNotFound is what every failed lookup looks like to the caller. The
// underlying transport failure, if any, is only logged.
var ErrNotFound = errors.New("word not found")

// Service resolves terms to WordEntry values
type Service struct {
	fetcher dictionary.Fetcher
	cache   *lru.Cache[string, WordEntry]
	logger  zerolog.Logger
}

// NewService creates a lookup service. cacheSize <= 0 disables caching.
func NewService(fetcher dictionary.Fetcher, cacheSize int, logger zerolog.Logger) (*Service, error) {
	s := &Service{
		fetcher: fetcher,
		logger:  logger.With().Str("component", "lookup").Logger(),
	}

	if cacheSize > 0 {
		cache, err := lru.New[string, WordEntry](cacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}

	return s, nil
}

// Lookup fetches and shapes the entry for term. It returns ErrNotFound for
// a missing word and for any transport failure.
func (s *Service) Lookup(ctx context.Context, term string) (WordEntry, error) {
	if term == "" {
		return WordEntry{}, ErrNotFound
	}

	if s.cache != nil {
		if entry, ok := s.cache.Get(term); ok {
			metrics.LookupCacheHits.Inc()
			metrics.LookupsTotal.WithLabelValues("found").Inc()
			return entry.Clone(), nil
		}
		metrics.LookupCacheMisses.Inc()
	}

	start := time.Now()
	result, err := s.fetcher.FetchEntry(ctx, term)
	metrics.LookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var te *dictionary.TransportError
		switch {
		case errors.Is(err, dictionary.ErrNotFound):
			s.logger.Debug().Str("term", term).Msg("Word not found")
			metrics.LookupsTotal.WithLabelValues("not_found").Inc()
		case errors.As(err, &te):
			s.logger.Warn().
				Err(te.Err).
				Str("term", term).
				Int("status", te.StatusCode).
				Msg("Dictionary transport failure")
			metrics.LookupsTotal.WithLabelValues("transport_error").Inc()
		default:
			s.logger.Warn().Err(err).Str("term", term).Msg("Dictionary lookup failed")
			metrics.LookupsTotal.WithLabelValues("transport_error").Inc()
		}
		return WordEntry{}, ErrNotFound
	}

	entry := BuildEntry(term, result)
	metrics.LookupsTotal.WithLabelValues("found").Inc()

	if s.cache != nil {
		s.cache.Add(term, entry.Clone())
	}

	return entry, nil
}
