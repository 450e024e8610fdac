// Package devtools serves live statistics about an impulse runtime over
// HTTP.
//
// Routes:
//   - GET /debug/impulse/stats: JSON counters
//   - GET /debug/impulse/events: websocket stream of flush and violation
//     events
//   - GET /metrics: Prometheus exposition
//
// Example:
//
//	srv := devtools.New(devtools.WithAddr("localhost:6060"))
//	rt := impulse.NewRuntime(impulse.WithObserver(srv.Recorder()))
//	go srv.Run(ctx)
package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatsPath   = "/debug/impulse/stats"
	EventsPath  = "/debug/impulse/events"
	MetricsPath = "/metrics"
)

// Config configures the devtools server.
type Config struct {
	// Addr is the listen address (default: "localhost:6060").
	Addr string

	// EventBuffer is the per-client event queue size (default: 64).
	EventBuffer int

	// Gatherer is exposed on /metrics. Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// Logger receives server lifecycle logs. Default: slog.Default()
	Logger *slog.Logger

	// ShutdownTimeout bounds graceful shutdown (default: 5s).
	ShutdownTimeout time.Duration
}

// Option configures the devtools server.
type Option func(*Config)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(c *Config) {
		c.Addr = addr
	}
}

// WithEventBuffer sets the per-client event queue size.
func WithEventBuffer(n int) Option {
	return func(c *Config) {
		c.EventBuffer = n
	}
}

// WithGatherer sets the Prometheus gatherer exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *Config) {
		c.Gatherer = g
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func defaultConfig() Config {
	return Config{
		Addr:            "localhost:6060",
		EventBuffer:     64,
		Gatherer:        prometheus.DefaultGatherer,
		Logger:          slog.Default(),
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server is the devtools HTTP server.
type Server struct {
	config   Config
	hub      *Hub
	recorder *Recorder
	router   chi.Router
}

// New creates a devtools server with its hub and recorder.
func New(opts ...Option) *Server {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	hub := NewHub(config.EventBuffer, config.Logger)
	s := &Server{
		config:   config,
		hub:      hub,
		recorder: NewRecorder(hub),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get(StatsPath, s.handleStats)
	r.Get(EventsPath, s.hub.HandleWebSocket)
	r.Method(http.MethodGet, MetricsPath, promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.recorder.Stats()); err != nil {
		s.config.Logger.Error("devtools stats encode failed", "error", err)
	}
}

// Recorder returns the observer to install on the runtime.
func (s *Server) Recorder() *Recorder {
	return s.recorder
}

// Hub returns the event hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.config.Logger.Info("devtools server starting", "address", s.config.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		s.hub.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.config.Logger.Error("devtools shutdown error", "error", err)
			return err
		}
		s.config.Logger.Info("devtools server shutdown complete")
		return nil
	}
}
