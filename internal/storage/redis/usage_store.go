package redis

import (
	"context"
	"fmt"
	"sort"

	"github.com/goodtune/kdict/internal/storage"
	"github.com/redis/go-redis/v9"
)

type usageStore struct {
	client      *redis.Client
	recordQuery *redis.Script
}

// RecordQuery atomically records one query of word by userID on date
func (s *usageStore) RecordQuery(ctx context.Context, userID, date, word string) (*storage.QueryResult, error) {
	keys := []string{
		dailyWordsKey(userID, date),
		dailyKey(userID, date),
		dailyIndexKey(userID),
		allTimeKey(userID),
		firstSeenKey(userID),
		firstSeenSeqKey(userID),
	}

	reply, err := s.recordQuery.Run(ctx, s.client, keys, date, word).Slice()
	if err != nil {
		return nil, err
	}
	if len(reply) != 3 {
		return nil, fmt.Errorf("unexpected record query reply length %d", len(reply))
	}

	added, err := toInt64(reply[0])
	if err != nil {
		return nil, err
	}
	dayCount, err := toInt64(reply[1])
	if err != nil {
		return nil, err
	}
	wordCount, err := toInt64(reply[2])
	if err != nil {
		return nil, err
	}

	return &storage.QueryResult{
		NewToday:  added == 1,
		DayCount:  dayCount,
		WordCount: wordCount,
	}, nil
}

// GetDailyRecord retrieves one user's record for a specific date
func (s *usageStore) GetDailyRecord(ctx context.Context, userID, date string) (*storage.DailyRecord, error) {
	pipe := s.client.Pipeline()
	dayCmd := pipe.HGetAll(ctx, dailyKey(userID, date))
	wordsCmd := pipe.SMembers(ctx, dailyWordsKey(userID, date))

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	data, err := dayCmd.Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	words, err := wordsCmd.Result()
	if err != nil {
		return nil, err
	}

	return parseDailyRecord(data, words)
}

// ListDailyRecords returns the records that exist for the given dates, in
// the order the dates were given. Missing dates are skipped.
func (s *usageStore) ListDailyRecords(ctx context.Context, userID string, dates []string) ([]storage.DailyRecord, error) {
	if len(dates) == 0 {
		return []storage.DailyRecord{}, nil
	}

	// Use pipeline for batch retrieval
	pipe := s.client.Pipeline()
	dayCmds := make([]*redis.MapStringStringCmd, len(dates))
	wordCmds := make([]*redis.StringSliceCmd, len(dates))

	for i, date := range dates {
		dayCmds[i] = pipe.HGetAll(ctx, dailyKey(userID, date))
		wordCmds[i] = pipe.SMembers(ctx, dailyWordsKey(userID, date))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	records := make([]storage.DailyRecord, 0, len(dates))
	for i := range dates {
		data, err := dayCmds[i].Result()
		if err != nil || len(data) == 0 {
			continue
		}
		words, err := wordCmds[i].Result()
		if err != nil {
			continue
		}

		record, err := parseDailyRecord(data, words)
		if err == nil {
			records = append(records, *record)
		}
	}

	return records, nil
}

// ListDates returns every date the user has a record for, oldest first
func (s *usageStore) ListDates(ctx context.Context, userID string) ([]string, error) {
	dates, err := s.client.SMembers(ctx, dailyIndexKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	sort.Strings(dates)
	return dates, nil
}

// GetWordCounts returns the all-time frequency table in the order each word
// was first queried. Words with no first-seen entry follow in lexical order.
func (s *usageStore) GetWordCounts(ctx context.Context, userID string) ([]storage.WordCount, error) {
	pipe := s.client.Pipeline()
	orderCmd := pipe.ZRange(ctx, firstSeenKey(userID), 0, -1)
	countsCmd := pipe.ZRangeWithScores(ctx, allTimeKey(userID), 0, -1)

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	members, err := countsCmd.Result()
	if err != nil {
		return nil, err
	}
	order, err := orderCmd.Result()
	if err != nil {
		return nil, err
	}

	freq := make(map[string]int64, len(members))
	for _, m := range members {
		word, ok := m.Member.(string)
		if !ok {
			continue
		}
		freq[word] = int64(m.Score)
	}

	counts := make([]storage.WordCount, 0, len(freq))
	for _, word := range order {
		count, ok := freq[word]
		if !ok {
			continue
		}
		counts = append(counts, storage.WordCount{Word: word, Count: count})
		delete(freq, word)
	}

	rest := make([]string, 0, len(freq))
	for word := range freq {
		rest = append(rest, word)
	}
	sort.Strings(rest)
	for _, word := range rest {
		counts = append(counts, storage.WordCount{Word: word, Count: freq[word]})
	}

	return counts, nil
}
