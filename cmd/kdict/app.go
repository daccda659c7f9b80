package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/goodtune/kdict/internal/auth"
	"github.com/goodtune/kdict/internal/config"
	"github.com/goodtune/kdict/internal/dictionary"
	"github.com/goodtune/kdict/internal/lookup"
	"github.com/goodtune/kdict/internal/session"
	"github.com/goodtune/kdict/internal/storage"
	"github.com/goodtune/kdict/internal/storage/bolt"
	"github.com/goodtune/kdict/internal/storage/redis"
	"github.com/goodtune/kdict/internal/usage"
)

// app is everything one CLI invocation needs
type app struct {
	session   *session.Session
	snapshots *bolt.Store
	remote    storage.Store
	account   *auth.Account
}

// newApp builds a session on the local snapshot, then signs in to the
// remote statistics when --email was given.
func newApp(ctx context.Context) (*app, error) {
	provider := dictionary.NewProvider(cfg.Dictionary, logger)
	svc, err := lookup.NewService(provider, cfg.Dictionary.CacheSize, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup service: %w", err)
	}

	var opener lookup.Opener = lookup.NopOpener{}
	if cfg.Redirects.OpenBrowser {
		opener = lookup.BrowserOpener{}
	}

	tracker := usage.NewTracker(trackerConfig(cfg.Usage), logger)

	snapshots, err := bolt.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local statistics: %w", err)
	}
	if err := tracker.UseSnapshots(snapshots); err != nil {
		_ = snapshots.Close()
		return nil, fmt.Errorf("failed to load local statistics: %w", err)
	}

	a := &app{
		session:   session.New(svc, tracker, lookup.NewRedirects(cfg.Redirects), opener, logger),
		snapshots: snapshots,
	}

	if email == "" {
		return a, nil
	}

	store, err := openRemote(cfg.Storage)
	if err != nil {
		_ = snapshots.Close()
		return nil, err
	}
	a.remote = store

	account, _, err := newAuthService(store).SignIn(ctx, auth.Credentials{Email: email, Password: password})
	if err != nil {
		_ = store.Close()
		_ = snapshots.Close()
		return nil, err
	}
	a.account = account

	if err := a.session.SignIn(ctx, account.ID, store.Usage(), cfg.Usage.SeriesDays); err != nil {
		logger.Warn().Err(err).Msg("Could not load remote statistics, showing this session only")
	}

	return a, nil
}

func (a *app) Close() {
	if err := a.session.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to save local statistics")
	}
	if err := a.snapshots.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close local statistics")
	}
	if a.remote != nil {
		if err := a.remote.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}
}

func trackerConfig(cfg config.UsageConfig) usage.Config {
	return usage.Config{
		Location:      cfg.Location(),
		RemoteTimeout: config.ParseDuration(cfg.RemoteTimeout, usage.DefaultRemoteTimeout),
	}
}

// openRemote opens the per-user store. Accounts only exist in Redis.
func openRemote(cfg config.StorageConfig) (storage.Store, error) {
	if cfg.Type != "redis" {
		return nil, fmt.Errorf("accounts need storage.type redis (configured: %s)", cfg.Type)
	}

	store, err := redis.Open(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return store, nil
}

func newAuthService(store storage.Store) *auth.Service {
	return auth.NewService(store.Users(), auth.Config{
		JWTSecret:         jwtSecret(),
		TokenExpiration:   config.ParseDuration(cfg.Auth.TokenExpiration, auth.DefaultTokenExpiration),
		MinPasswordLength: cfg.Auth.MinPasswordLength,
	}, logger)
}

// jwtSecret returns the configured secret, or a random one that lives as
// long as the process.
func jwtSecret() string {
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret
	}

	logger.Warn().Msg("auth.jwt_secret is not set, tokens will not survive a restart")

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("kdict-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
