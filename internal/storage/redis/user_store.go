package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goodtune/kdict/internal/storage"
	"github.com/redis/go-redis/v9"
)

type userStore struct {
	client *redis.Client
	create *redis.Script
}

// Create stores a new account, failing with storage.ErrAlreadyExists when
// the email or id is taken
func (s *userStore) Create(ctx context.Context, user storage.User) error {
	if user.ID == "" || user.Email == "" {
		return fmt.Errorf("user id and email are required")
	}

	keys := []string{accountKey(user.ID), accountEmailKey(user.Email)}
	args := []interface{}{
		user.ID,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	created, err := s.create.Run(ctx, s.client, keys, args...).Int64()
	if err != nil {
		return err
	}
	if created == 0 {
		return storage.ErrAlreadyExists
	}

	return nil
}

// Get retrieves an account by id
func (s *userStore) Get(ctx context.Context, id string) (*storage.User, error) {
	data, err := s.client.HGetAll(ctx, accountKey(id)).Result()
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	return parseUser(data)
}

// GetByEmail retrieves an account by email address, case-insensitively
func (s *userStore) GetByEmail(ctx context.Context, email string) (*storage.User, error) {
	id, err := s.client.Get(ctx, accountEmailKey(email)).Result()
	if err == redis.Nil {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// UpdateLastLogin records a successful sign-in
func (s *userStore) UpdateLastLogin(ctx context.Context, id string, loginTime time.Time) error {
	key := accountKey(id)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return storage.ErrNotFound
	}

	return s.client.HSet(ctx, key, "last_login", loginTime.UTC().Format(time.RFC3339Nano)).Err()
}
