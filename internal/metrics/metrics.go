package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Lookup metrics
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kdict_lookups_total",
			Help: "Total dictionary lookups by result",
		},
		[]string{"result"},
	)

	LookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kdict_lookup_duration_seconds",
			Help:    "Dictionary API round trip in seconds",
			Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	LookupCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kdict_lookup_cache_hits_total",
			Help: "Lookups served from the entry cache",
		},
	)

	LookupCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kdict_lookup_cache_misses_total",
			Help: "Lookups that went to the dictionary API",
		},
	)

	TranslateRedirects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kdict_translate_redirects_total",
			Help: "Queries handed off to the translation tool",
		},
	)

	StaleResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kdict_stale_responses_total",
			Help: "Lookup responses discarded because a newer query superseded them",
		},
	)

	// Usage metrics
	QueriesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kdict_queries_recorded_total",
			Help: "Queries recorded in usage statistics",
		},
		[]string{"scope"},
	)

	RemoteWriteErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kdict_remote_write_errors_total",
			Help: "Failed writes to the remote statistics store",
		},
		[]string{"op"},
	)

	SnapshotWriteErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kdict_snapshot_write_errors_total",
			Help: "Failed writes of the local statistics snapshot",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kdict_api_requests_total",
			Help: "Total API requests processed",
		},
		[]string{"route", "method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kdict_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kdict_active_sessions",
			Help: "Number of signed-in sessions held by the API",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		LookupsTotal,
		LookupDuration,
		LookupCacheHits,
		LookupCacheMisses,
		TranslateRedirects,
		StaleResponses,
		QueriesRecorded,
		RemoteWriteErrors,
		SnapshotWriteErrors,
		APIRequestsTotal,
		APIRequestDuration,
		ActiveSessions,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener // Optional pre-created listener (for systemd socket activation)
}

// Handler serves /metrics and /health
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		var err error
		if s.listener != nil {
			// Use systemd socket-activated listener
			s.logger.Debug().Msg("Using systemd socket-activated metrics listener")
			err = s.server.Serve(s.listener)
		} else {
			// Create and bind listener ourselves
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server, waiting for in-flight scrapes until ctx ends
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Shutdown(ctx)
}
