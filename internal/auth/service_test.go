package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goodtune/kdict/internal/config"
	"github.com/goodtune/kdict/internal/storage"
	redisstore "github.com/goodtune/kdict/internal/storage/redis"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, storage.Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := redisstore.Open(config.RedisConfig{
		Host:         mr.Addr(),
		PoolSize:     4,
		DialTimeout:  "1s",
		ReadTimeout:  "1s",
		WriteTimeout: "1s",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := NewService(store.Users(), Config{
		JWTSecret:         "test-secret",
		TokenExpiration:   time.Hour,
		MinPasswordLength: 6,
		BcryptCost:        bcrypt.MinCost,
	}, zerolog.Nop())

	return svc, store
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	account, token, err := svc.SignUp(ctx, Credentials{Email: "Reader@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", account.Email)
	assert.NotEmpty(t, account.ID)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.UserID)

	signedIn, token2, err := svc.SignIn(ctx, Credentials{Email: "reader@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, account.ID, signedIn.ID)
	assert.NotEmpty(t, token2)

	user, err := store.Users().Get(ctx, account.ID)
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin)
	assert.NotEqual(t, "secret1", user.PasswordHash)
}

func TestSignUp_EmailInUse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, Credentials{Email: "reader@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, _, err = svc.SignUp(ctx, Credentials{Email: "READER@example.com", Password: "another1"})
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, Credentials{Email: "reader@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, _, err = svc.SignIn(ctx, Credentials{Email: "reader@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.SignIn(ctx, Credentials{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_ValidationNeverTouchesStore(t *testing.T) {
	svc, _ := newTestService(t)

	svc.store = nil // any store call would panic

	_, _, err := svc.SignIn(context.Background(), Credentials{Email: "bad", Password: ""})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errors, 2)
}

func TestValidateToken(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.GenerateToken("u1", "a@b.co")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewService(nil, Config{JWTSecret: "other-secret"}, zerolog.Nop())
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// expired
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
