package redis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goodtune/kdict/internal/storage"
)

func dailyWordsKey(userID, date string) string {
	return fmt.Sprintf("kdict:user:%s:daily:%s:words", userID, date)
}

func dailyKey(userID, date string) string {
	return fmt.Sprintf("kdict:user:%s:daily:%s", userID, date)
}

func dailyIndexKey(userID string) string {
	return fmt.Sprintf("kdict:user:%s:daily:index", userID)
}

func allTimeKey(userID string) string {
	return fmt.Sprintf("kdict:user:%s:alltime", userID)
}

func firstSeenKey(userID string) string {
	return fmt.Sprintf("kdict:user:%s:firstseen", userID)
}

func firstSeenSeqKey(userID string) string {
	return fmt.Sprintf("kdict:user:%s:firstseen:seq", userID)
}

func accountKey(userID string) string {
	return fmt.Sprintf("kdict:account:%s", userID)
}

func accountEmailKey(email string) string {
	return fmt.Sprintf("kdict:account:email:%s", strings.ToLower(email))
}

// parseDailyRecord converts a day hash and its word set to a DailyRecord.
// Redis sets are unordered, so words come back sorted.
func parseDailyRecord(data map[string]string, words []string) (*storage.DailyRecord, error) {
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	count, err := strconv.ParseInt(data["count"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse count: %w", err)
	}

	sorted := append([]string(nil), words...)
	sort.Strings(sorted)

	return &storage.DailyRecord{
		Date:  data["date"],
		Words: sorted,
		Count: count,
	}, nil
}

// parseUser converts a Redis hash to User
func parseUser(data map[string]string) (*storage.User, error) {
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	createdAt, err := time.Parse(time.RFC3339Nano, data["created_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	user := &storage.User{
		ID:           data["id"],
		Email:        data["email"],
		PasswordHash: data["password_hash"],
		CreatedAt:    createdAt,
	}

	if v, ok := data["last_login"]; ok && v != "" {
		lastLogin, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_login: %w", err)
		}
		user.LastLogin = &lastLogin
	}

	return user, nil
}

// toInt64 converts a Lua script reply element
func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected script reply type %T", v)
	}
}
