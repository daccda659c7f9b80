package usage

import (
	"errors"
	"fmt"
)

// DateLayout is the calendar date format used for every day key
const DateLayout = "2006-01-02"

var (
	// ErrEmptyWord is returned when asked to record an empty query
	ErrEmptyWord = errors.New("usage: empty word")

	// ErrNotSignedIn is returned by operations that need the remote store
	ErrNotSignedIn = errors.New("usage: not signed in")
)

// DayCount is one point of the daily query series
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Recorded is the in-memory state after a query was recorded
type Recorded struct {
	Date      string `json:"date"`
	NewToday  bool   `json:"new_today"`
	DayCount  int64  `json:"day_count"`
	WordCount int64  `json:"word_count"`
}

// RemoteWriteError reports a failed durable write. The in-memory statistics
// were updated regardless.
type RemoteWriteError struct {
	Op  string
	Err error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("usage: remote %s failed: %v", e.Op, e.Err)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}

// dayRecord is the in-memory view of one date. order keeps first-seen order
// of the words; count is authoritative and may differ from len(words) after
// a remote merge.
type dayRecord struct {
	words map[string]struct{}
	order []string
	count int64
}

func newDayRecord() *dayRecord {
	return &dayRecord{words: make(map[string]struct{})}
}

// add inserts word and reports whether it was new to the day
func (d *dayRecord) add(word string) bool {
	if _, ok := d.words[word]; ok {
		return false
	}
	d.words[word] = struct{}{}
	d.order = append(d.order, word)
	d.count++
	return true
}

func (d *dayRecord) list() []string {
	return append([]string(nil), d.order...)
}
