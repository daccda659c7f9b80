package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record is missing from storage.
	ErrNotFound = errors.New("storage: record not found")

	// ErrAlreadyExists is returned when a unique key is already taken.
	ErrAlreadyExists = errors.New("storage: record already exists")
)

// Store represents the root storage interface.
type Store interface {
	Close() error
	Usage() UsageStore
	Users() UserStore
}

// UsageStore is the durable per-user copy of query statistics.
//
// RecordQuery must be a single atomic read-modify-write on the backend: the
// same user may be active in two processes at once and neither may lose an
// increment.
type UsageStore interface {
	RecordQuery(ctx context.Context, userID, date, word string) (*QueryResult, error)
	GetDailyRecord(ctx context.Context, userID, date string) (*DailyRecord, error)
	ListDailyRecords(ctx context.Context, userID string, dates []string) ([]DailyRecord, error)
	ListDates(ctx context.Context, userID string) ([]string, error)
	// GetWordCounts returns every word's all-time count in first-seen order.
	GetWordCounts(ctx context.Context, userID string) ([]WordCount, error)
}

// UserStore manages accounts that own usage statistics.
type UserStore interface {
	Create(ctx context.Context, user User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateLastLogin(ctx context.Context, id string, loginTime time.Time) error
}

// SnapshotStore persists the signed-out statistics on the local machine.
type SnapshotStore interface {
	Load() (*Snapshot, error)
	Save(snapshot *Snapshot) error
}
