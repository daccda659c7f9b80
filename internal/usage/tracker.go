package usage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goodtune/kdict/internal/metrics"
	"github.com/goodtune/kdict/internal/storage"
	"github.com/rs/zerolog"
)

// DefaultRemoteTimeout bounds each call to the remote store
const DefaultRemoteTimeout = 5 * time.Second

// Tracker holds one user's query statistics for a session: the words seen
// on each date, a per-day count, and the all-time frequency of each word.
//
// Every mutation updates memory first. When signed in, the same query is
// then written once to the remote store; when signed out and a snapshot
// store is attached, the whole snapshot is rewritten.
type Tracker struct {
	clock         Clock
	location      *time.Location
	remoteTimeout time.Duration

	remote    storage.UsageStore
	userID    string
	snapshots storage.SnapshotStore

	days      map[string]*dayRecord
	freq      map[string]int64
	seen      map[string]int // word -> first-seen rank, breaks TopN ties
	nextRank  int
	persistMu sync.Mutex

	logger zerolog.Logger
	mu     sync.RWMutex
}

// Config holds tracker configuration
type Config struct {
	Clock         Clock
	Location      *time.Location
	RemoteTimeout time.Duration
}

// NewTracker creates an empty, signed-out tracker
func NewTracker(config Config, logger zerolog.Logger) *Tracker {
	if config.Clock == nil {
		config.Clock = RealClock{}
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.RemoteTimeout <= 0 {
		config.RemoteTimeout = DefaultRemoteTimeout
	}

	return &Tracker{
		clock:         config.Clock,
		location:      config.Location,
		remoteTimeout: config.RemoteTimeout,
		days:          make(map[string]*dayRecord),
		freq:          make(map[string]int64),
		seen:          make(map[string]int),
		logger:        logger.With().Str("component", "usage-tracker").Logger(),
	}
}

// Today returns the current calendar date in the tracker's location
func (t *Tracker) Today() string {
	return t.clock.Now().In(t.location).Format(DateLayout)
}

// UseSnapshots attaches a local snapshot store and loads its content. The
// store is only written while signed out.
func (t *Tracker) UseSnapshots(store storage.SnapshotStore) error {
	snapshot, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	t.mu.Lock()
	t.snapshots = store
	t.restoreLocked(snapshot)
	t.mu.Unlock()

	t.logger.Debug().
		Int("days", len(snapshot.DailyWordCounts)).
		Int("words", len(snapshot.WordSearchCounts)).
		Msg("Loaded local snapshot")

	return nil
}

// SignedIn reports whether a remote store is bound
func (t *Tracker) SignedIn() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.remote != nil
}

// RecordQuery records a successful lookup of word today
func (t *Tracker) RecordQuery(ctx context.Context, word string) (Recorded, error) {
	return t.RecordQueryOn(ctx, word, t.Today())
}

// RecordQueryOn records a successful lookup of word on date. The day count
// only grows the first time word is seen that day; the word's all-time
// frequency always grows by one. Words are case-sensitive as typed.
//
// A failed remote write is returned as *RemoteWriteError; memory keeps the
// update either way.
func (t *Tracker) RecordQueryOn(ctx context.Context, word, date string) (Recorded, error) {
	if word == "" {
		return Recorded{}, ErrEmptyWord
	}

	t.mu.Lock()
	day, ok := t.days[date]
	if !ok {
		day = newDayRecord()
		t.days[date] = day
	}
	isNew := day.add(word)
	t.bumpLocked(word, 1)

	rec := Recorded{
		Date:      date,
		NewToday:  isNew,
		DayCount:  day.count,
		WordCount: t.freq[word],
	}
	remote, userID := t.remote, t.userID
	t.mu.Unlock()

	metrics.QueriesRecorded.WithLabelValues("memory").Inc()

	t.logger.Debug().
		Str("word", word).
		Str("date", date).
		Bool("new_today", isNew).
		Int64("day_count", rec.DayCount).
		Msg("Query recorded")

	if remote == nil {
		return rec, t.persistSnapshot()
	}

	rctx, cancel := context.WithTimeout(ctx, t.remoteTimeout)
	defer cancel()

	res, err := remote.RecordQuery(rctx, userID, date, word)
	if err != nil {
		metrics.RemoteWriteErrors.WithLabelValues("record_query").Inc()
		t.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("word", word).
			Str("date", date).
			Msg("Failed to record query remotely")
		return rec, &RemoteWriteError{Op: "record_query", Err: err}
	}

	metrics.QueriesRecorded.WithLabelValues("remote").Inc()

	if res.DayCount != rec.DayCount {
		// another process wrote to the same day; the remote count wins at
		// the next merge
		t.logger.Debug().
			Int64("local", rec.DayCount).
			Int64("remote", res.DayCount).
			Str("date", date).
			Msg("Day count diverged from remote")
	}

	return rec, nil
}

// bumpLocked must be called with t.mu held
func (t *Tracker) bumpLocked(word string, by int64) {
	if _, ok := t.seen[word]; !ok {
		t.seen[word] = t.nextRank
		t.nextRank++
	}
	t.freq[word] += by
}

// TopN returns the n most frequent words, most frequent first. Ties go to
// the word seen first.
func (t *Tracker) TopN(n int) []storage.WordCount {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n <= 0 {
		return []storage.WordCount{}
	}

	words := make([]storage.WordCount, 0, len(t.freq))
	for word, count := range t.freq {
		words = append(words, storage.WordCount{Word: word, Count: count})
	}

	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return t.seen[words[i].Word] < t.seen[words[j].Word]
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}

// Frequency returns the all-time count of word
func (t *Tracker) Frequency(word string) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.freq[word]
}

// DailySeries returns the last n dates that have a record, oldest first.
// Gaps between recorded dates are skipped, so n records may span more than
// n calendar days.
func (t *Tracker) DailySeries(n int) []DayCount {
	if n <= 0 {
		return []DayCount{}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	dates := make([]string, 0, len(t.days))
	for date := range t.days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	series := make([]DayCount, 0, n)
	for _, date := range lastN(dates, n) {
		series = append(series, DayCount{Date: date, Count: t.days[date].count})
	}
	return series
}

// lastN returns the tail of sorted, at most n long
func lastN(sorted []string, n int) []string {
	if len(sorted) > n {
		return sorted[len(sorted)-n:]
	}
	return sorted
}

// Day returns the in-memory record for date
func (t *Tracker) Day(date string) (storage.DailyRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	day, ok := t.days[date]
	if !ok {
		return storage.DailyRecord{Date: date, Words: []string{}}, false
	}
	return storage.DailyRecord{Date: date, Words: day.list(), Count: day.count}, true
}

// MergeRemote replaces the in-memory view of record.Date with the remote
// copy. There is no field-level reconciliation.
func (t *Tracker) MergeRemote(record storage.DailyRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mergeLocked(record)
}

func (t *Tracker) mergeLocked(record storage.DailyRecord) {
	day := newDayRecord()
	for _, w := range record.Words {
		if _, ok := day.words[w]; ok {
			continue
		}
		day.words[w] = struct{}{}
		day.order = append(day.order, w)
	}
	day.count = record.Count
	t.days[record.Date] = day
}

// MergeFrequencies replaces the all-time frequency table. Known words keep
// their tie-break rank; new words are ranked after them in the order given,
// which the remote store returns as first-seen order.
func (t *Tracker) MergeFrequencies(counts []storage.WordCount) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mergeFrequenciesLocked(counts)
}

func (t *Tracker) mergeFrequenciesLocked(counts []storage.WordCount) {
	t.freq = make(map[string]int64, len(counts))
	for _, wc := range counts {
		if _, ok := t.seen[wc.Word]; !ok {
			t.seen[wc.Word] = t.nextRank
			t.nextRank++
		}
		t.freq[wc.Word] = wc.Count
	}
}

// DayWords returns the words queried on date. Today always comes from
// memory. Past dates come from the remote store when signed in, and the
// result is merged into memory. On a remote failure the in-memory view is
// returned along with the error.
func (t *Tracker) DayWords(ctx context.Context, date string) ([]string, error) {
	t.mu.RLock()
	remote, userID := t.remote, t.userID
	t.mu.RUnlock()

	if date == t.Today() || remote == nil {
		record, _ := t.Day(date)
		return record.Words, nil
	}

	rctx, cancel := context.WithTimeout(ctx, t.remoteTimeout)
	defer cancel()

	record, err := remote.GetDailyRecord(rctx, userID, date)
	if errors.Is(err, storage.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		t.logger.Warn().Err(err).Str("date", date).Msg("Failed to read history from remote")
		local, _ := t.Day(date)
		return local.Words, fmt.Errorf("failed to read %s from remote: %w", date, err)
	}

	t.MergeRemote(*record)
	return append([]string(nil), record.Words...), nil
}

// SignIn binds the tracker to userID's remote statistics. Signed-out
// statistics are dropped from memory (they stay in the snapshot store) and
// today's record and the all-time frequencies are seeded from the remote
// copy. The binding holds even if seeding fails.
func (t *Tracker) SignIn(ctx context.Context, userID string, remote storage.UsageStore) error {
	t.mu.Lock()
	t.remote = remote
	t.userID = userID
	t.resetLocked()
	t.mu.Unlock()

	t.logger.Info().Str("user_id", userID).Msg("Signed in to remote statistics")

	rctx, cancel := context.WithTimeout(ctx, t.remoteTimeout)
	defer cancel()

	today := t.Today()

	record, err := remote.GetDailyRecord(rctx, userID, today)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("failed to seed today's record: %w", err)
	default:
		t.MergeRemote(*record)
	}

	counts, err := remote.GetWordCounts(rctx, userID)
	if err != nil {
		return fmt.Errorf("failed to seed word counts: %w", err)
	}
	t.MergeFrequencies(counts)

	return nil
}

// SignOut unbinds the remote store. If a snapshot store is attached the
// signed-out statistics are reloaded from it.
func (t *Tracker) SignOut() error {
	t.mu.Lock()
	userID := t.userID
	t.remote = nil
	t.userID = ""
	snapshots := t.snapshots
	if snapshots == nil {
		t.resetLocked()
	}
	t.mu.Unlock()

	t.logger.Info().Str("user_id", userID).Msg("Signed out of remote statistics")

	if snapshots == nil {
		return nil
	}
	return t.UseSnapshots(snapshots)
}

// Refresh merges the remote records of the last days recorded dates and the
// remote frequency table into memory.
func (t *Tracker) Refresh(ctx context.Context, days int) error {
	t.mu.RLock()
	remote, userID := t.remote, t.userID
	t.mu.RUnlock()

	if remote == nil {
		return ErrNotSignedIn
	}
	if days <= 0 {
		return nil
	}

	rctx, cancel := context.WithTimeout(ctx, t.remoteTimeout)
	defer cancel()

	dates, err := remote.ListDates(rctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list remote dates: %w", err)
	}

	records, err := remote.ListDailyRecords(rctx, userID, lastN(dates, days))
	if err != nil {
		return fmt.Errorf("failed to list remote records: %w", err)
	}

	counts, err := remote.GetWordCounts(rctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read remote word counts: %w", err)
	}

	t.mu.Lock()
	for _, record := range records {
		t.mergeLocked(record)
	}
	t.mergeFrequenciesLocked(counts)
	t.mu.Unlock()

	t.logger.Debug().Int("days", days).Int("records", len(records)).Msg("Refreshed from remote")
	return nil
}

// Flush writes the local snapshot when signed out
func (t *Tracker) Flush() error {
	return t.persistSnapshot()
}

func (t *Tracker) persistSnapshot() error {
	t.persistMu.Lock()
	defer t.persistMu.Unlock()

	t.mu.RLock()
	store := t.snapshots
	if store == nil || t.remote != nil {
		t.mu.RUnlock()
		return nil
	}
	snapshot := t.snapshotLocked()
	t.mu.RUnlock()

	if err := store.Save(snapshot); err != nil {
		metrics.SnapshotWriteErrors.Inc()
		t.logger.Error().Err(err).Msg("Failed to write local snapshot")
		return fmt.Errorf("failed to write local snapshot: %w", err)
	}

	return nil
}

func (t *Tracker) resetLocked() {
	t.days = make(map[string]*dayRecord)
	t.freq = make(map[string]int64)
	t.seen = make(map[string]int)
	t.nextRank = 0
}
