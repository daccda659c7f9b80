package bolt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goodtune/kdict/internal/storage"
	"go.etcd.io/bbolt"
)

const (
	bucketSnapshot = "snapshot"

	// KeyDailyWordCounts holds date → words queried that day
	KeyDailyWordCounts = "dailyWordCounts"
	// KeyWordSearchCounts holds word → all-time query count
	KeyWordSearchCounts = "wordSearchCounts"
)

// Store implements storage.SnapshotStore using bbolt.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed snapshot store.
func Open(path string) (*Store, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return storage.EnsureDir(dir)
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketSnapshot)); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucketSnapshot, err)
		}
		return nil
	})
}

// Close closes the underlying store database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// Load reads both slots. A missing key is an empty slot.
func (s *Store) Load() (*storage.Snapshot, error) {
	snapshot := storage.NewSnapshot()

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSnapshot))
		if bucket == nil {
			return fmt.Errorf("snapshot bucket missing")
		}

		if data := bucket.Get([]byte(KeyDailyWordCounts)); len(data) > 0 {
			if err := unmarshal(data, &snapshot.DailyWordCounts); err != nil {
				return fmt.Errorf("%s: %w", KeyDailyWordCounts, err)
			}
		}
		if data := bucket.Get([]byte(KeyWordSearchCounts)); len(data) > 0 {
			if err := unmarshal(data, &snapshot.WordSearchCounts); err != nil {
				return fmt.Errorf("%s: %w", KeyWordSearchCounts, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if snapshot.DailyWordCounts == nil {
		snapshot.DailyWordCounts = make(map[string][]string)
	}
	if snapshot.WordSearchCounts == nil {
		snapshot.WordSearchCounts = storage.WordCounts{}
	}

	return snapshot, nil
}

// Save rewrites both slots in one transaction.
func (s *Store) Save(snapshot *storage.Snapshot) error {
	if snapshot == nil {
		snapshot = storage.NewSnapshot()
	}

	daily, err := marshal(snapshot.DailyWordCounts)
	if err != nil {
		return err
	}
	counts, err := marshal(snapshot.WordSearchCounts)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSnapshot))
		if bucket == nil {
			return fmt.Errorf("snapshot bucket missing")
		}
		if err := bucket.Put([]byte(KeyDailyWordCounts), daily); err != nil {
			return err
		}
		return bucket.Put([]byte(KeyWordSearchCounts), counts)
	})
}

func marshal(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return data, nil
}

func unmarshal(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
