package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goodtune/kdict/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultTokenExpiration is the default expiration time for JWT tokens.
	DefaultTokenExpiration = 24 * time.Hour

	// BcryptCost is the cost factor for bcrypt password hashing.
	BcryptCost = 12
)

// Claims represents the JWT claims for a signed-in user.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Account is the public view of a signed-in user.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Service handles sign-up, sign-in and tokens.
type Service struct {
	store           storage.UserStore
	validator       *Validator
	jwtSecret       []byte
	tokenExpiration time.Duration
	bcryptCost      int
	now             func() time.Time
	logger          zerolog.Logger
}

// Config holds auth service settings.
type Config struct {
	JWTSecret         string
	TokenExpiration   time.Duration
	MinPasswordLength int
	// BcryptCost overrides BcryptCost; tests use bcrypt.MinCost.
	BcryptCost int
}

// NewService creates a new authentication service.
func NewService(store storage.UserStore, cfg Config, logger zerolog.Logger) *Service {
	if cfg.TokenExpiration == 0 {
		cfg.TokenExpiration = DefaultTokenExpiration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = BcryptCost
	}

	return &Service{
		store:           store,
		validator:       NewValidator(cfg.MinPasswordLength),
		jwtSecret:       []byte(cfg.JWTSecret),
		tokenExpiration: cfg.TokenExpiration,
		bcryptCost:      cfg.BcryptCost,
		now:             time.Now,
		logger:          logger.With().Str("component", "auth").Logger(),
	}
}

// Validator returns the form validator used by the service.
func (s *Service) Validator() *Validator {
	return s.validator
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a hash.
func VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// SignUp validates the form, creates an account and returns a token.
func (s *Service) SignUp(ctx context.Context, creds Credentials) (*Account, string, error) {
	if err := s.validator.ValidateCredentials(creds); err != nil {
		return nil, "", err
	}

	hash, err := HashPassword(creds.Password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := storage.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(creds.Email),
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, "", ErrEmailInUse
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Account created")

	token, err := s.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	return &Account{ID: user.ID, Email: user.Email}, token, nil
}

// SignIn validates the form, checks the password and returns a token.
func (s *Service) SignIn(ctx context.Context, creds Credentials) (*Account, string, error) {
	if err := s.validator.ValidateCredentials(creds); err != nil {
		return nil, "", err
	}

	user, err := s.store.GetByEmail(ctx, normalizeEmail(creds.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if err := VerifyPassword(creds.Password, user.PasswordHash); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		// Log error but don't fail sign-in
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to update last login")
	}

	token, err := s.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	return &Account{ID: user.ID, Email: user.Email}, token, nil
}

// GenerateToken generates a new JWT token for a user.
func (s *Service) GenerateToken(userID, email string) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
