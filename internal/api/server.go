package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goodtune/kdict/internal/auth"
	"github.com/rs/zerolog"
)

// Config holds the API server configuration.
type Config struct {
	ListenAddr      string
	RateLimit       int
	RateLimitWindow time.Duration
	AllowedOrigins  []string

	// TopWords and SeriesDays are used when a request does not say
	TopWords   int
	SeriesDays int
}

// Server is the JSON API behind `kdict serve`.
type Server struct {
	config      Config
	auth        *auth.Service
	sessions    *SessionManager
	rateLimiter *RateLimiter
	router      *gin.Engine
	server      *http.Server
	listener    net.Listener
	logger      zerolog.Logger
}

// NewServer creates the API server and its routes.
func NewServer(cfg Config, authService *auth.Service, sessions *SessionManager, logger zerolog.Logger) *Server {
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 120
	}
	if cfg.RateLimitWindow == 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if cfg.TopWords <= 0 {
		cfg.TopWords = 15
	}
	if cfg.SeriesDays <= 0 {
		cfg.SeriesDays = 10
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		config:      cfg,
		auth:        authService,
		sessions:    sessions,
		rateLimiter: NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow),
		router:      router,
		logger:      logger.With().Str("component", "api").Logger(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(MetricsMiddleware())
	s.router.Use(LoggingMiddleware(s.logger))

	if len(s.config.AllowedOrigins) > 0 {
		s.router.Use(CORSMiddleware(s.config.AllowedOrigins))
	}

	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")

	// Public routes, limited per client address
	public := api.Group("/auth")
	public.Use(RateLimitMiddleware(s.rateLimiter))
	public.POST("/signup", s.handleSignUp)
	public.POST("/signin", s.handleSignIn)

	// Authenticated routes, limited per user
	protected := api.Group("")
	protected.Use(AuthMiddleware(s.auth))
	protected.Use(RateLimitMiddleware(s.rateLimiter))

	protected.GET("/auth/me", s.handleMe)
	protected.POST("/auth/signout", s.handleSignOut)

	protected.GET("/lookup", s.handleLookup)
	protected.GET("/lookup/current", s.handleCurrent)
	protected.GET("/redirects", s.handleRedirects)

	protected.GET("/stats/top", s.handleTopWords)
	protected.GET("/stats/daily", s.handleDailySeries)
	protected.POST("/stats/refresh", s.handleRefresh)
	protected.GET("/history", s.handleHistory)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetListener makes Start serve on an already open listener, such as a
// socket passed in by systemd.
func (s *Server) SetListener(l net.Listener) {
	s.listener = l
}

// Start starts serving in the background.
func (s *Server) Start() error {
	if s.listener == nil {
		l, err := net.Listen("tcp", s.config.ListenAddr)
		if err != nil {
			return fmt.Errorf("api listen on %s: %w", s.config.ListenAddr, err)
		}
		s.listener = l
	}

	s.logger.Info().Str("addr", s.listener.Addr().String()).Msg("Starting API server")

	go func() {
		if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("API server error")
		}
	}()

	return nil
}

// Stop gracefully stops the API server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping API server")

	s.rateLimiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}

	return nil
}
