package storage

import "time"

// DailyRecord is the stored copy of one user's queries on one calendar date.
type DailyRecord struct {
	Date  string   `json:"date"`
	Words []string `json:"words"`
	Count int64    `json:"count"`
}

// QueryResult reports the state of the durable counters after RecordQuery.
type QueryResult struct {
	NewToday  bool  `json:"new_today"`
	DayCount  int64 `json:"day_count"`
	WordCount int64 `json:"word_count"`
}

// WordCount pairs a word with its all-time query count.
type WordCount struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

// User is an account that owns a set of statistics.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Snapshot is the signed-out copy of the statistics, kept as two named
// slots: the words queried on each date, and the all-time count per word
// in the order each word was first queried.
type Snapshot struct {
	DailyWordCounts  map[string][]string `json:"dailyWordCounts"`
	WordSearchCounts WordCounts          `json:"wordSearchCounts"`
}

// NewSnapshot returns an empty snapshot with both slots allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		DailyWordCounts:  make(map[string][]string),
		WordSearchCounts: WordCounts{},
	}
}
