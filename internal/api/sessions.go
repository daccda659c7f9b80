package api

import (
	"context"
	"sync"

	"github.com/goodtune/kdict/internal/lookup"
	"github.com/goodtune/kdict/internal/metrics"
	"github.com/goodtune/kdict/internal/session"
	"github.com/goodtune/kdict/internal/storage"
	"github.com/goodtune/kdict/internal/usage"
	"github.com/rs/zerolog"
)

// SessionManager holds one session per signed-in user. Sessions share the
// lookup service and its cache; each has its own tracker bound to the
// user's remote statistics.
type SessionManager struct {
	lookup     *lookup.Service
	redirects  *lookup.Redirects
	remote     storage.UsageStore
	usage      usage.Config
	seriesDays int

	sessions map[string]*session.Session
	mu       sync.Mutex

	logger zerolog.Logger
}

// NewSessionManager creates an empty manager.
func NewSessionManager(svc *lookup.Service, redirects *lookup.Redirects, remote storage.UsageStore, usageCfg usage.Config, seriesDays int, logger zerolog.Logger) *SessionManager {
	return &SessionManager{
		lookup:     svc,
		redirects:  redirects,
		remote:     remote,
		usage:      usageCfg,
		seriesDays: seriesDays,
		sessions:   make(map[string]*session.Session),
		logger:     logger.With().Str("component", "sessions").Logger(),
	}
}

// Get returns the user's session, signing a new one in on first use. A
// seeding failure is logged; the session still works on live counters.
func (m *SessionManager) Get(ctx context.Context, userID string) *session.Session {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if ok {
		return s
	}

	// seeding talks to Redis, keep it outside the lock
	tracker := usage.NewTracker(m.usage, m.logger)
	s = session.New(m.lookup, tracker, m.redirects, lookup.NopOpener{}, m.logger)

	if err := s.SignIn(ctx, userID, m.remote, m.seriesDays); err != nil {
		m.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to seed session from remote")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// a concurrent request for the same user may have won
	if existing, ok := m.sessions[userID]; ok {
		return existing
	}
	m.sessions[userID] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))

	return s
}

// Drop forgets the user's session.
func (m *SessionManager) Drop(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
