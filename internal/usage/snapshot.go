package usage

import (
	"sort"

	"github.com/goodtune/kdict/internal/storage"
)

// Snapshot returns a copy of the statistics in the local persistence shape
func (t *Tracker) Snapshot() *storage.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

// snapshotLocked writes the frequency table in first-seen order so the
// TopN tie-break survives a restore.
func (t *Tracker) snapshotLocked() *storage.Snapshot {
	snapshot := storage.NewSnapshot()

	for date, day := range t.days {
		snapshot.DailyWordCounts[date] = day.list()
	}

	words := make([]string, 0, len(t.freq))
	for word := range t.freq {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool { return t.seen[words[i]] < t.seen[words[j]] })

	for _, word := range words {
		snapshot.WordSearchCounts = append(snapshot.WordSearchCounts, storage.WordCount{Word: word, Count: t.freq[word]})
	}

	return snapshot
}

// restoreLocked replaces the statistics with snapshot. A day's count is the
// number of distinct words stored for it. Words rank in the order the
// snapshot lists them.
func (t *Tracker) restoreLocked(snapshot *storage.Snapshot) {
	t.resetLocked()
	if snapshot == nil {
		return
	}

	for date, words := range snapshot.DailyWordCounts {
		day := newDayRecord()
		for _, w := range words {
			day.add(w)
		}
		t.days[date] = day
	}

	for _, wc := range snapshot.WordSearchCounts {
		t.bumpLocked(wc.Word, wc.Count)
	}
}
