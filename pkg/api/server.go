package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/gomoku/pkg/engine"
)

// Duration is a time.Duration that decodes from strings like "30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host             string   `json:"host"`               // Host to bind to (default "localhost")
	Port             int      `json:"port"`               // Port to listen on (default 8080)
	ReadTimeout      Duration `json:"read_timeout"`       // Read timeout (default 30s)
	WriteTimeout     Duration `json:"write_timeout"`      // Write timeout (default 60s)
	IdleTimeout      Duration `json:"idle_timeout"`       // Idle timeout (default 120s)
	MaxQuickWorkers  int      `json:"max_quick_workers"`  // Max concurrent quick operations (default 64)
	MaxSearchWorkers int      `json:"max_search_workers"` // Max concurrent searches (default 4)
	SearchTimeLimit  Duration `json:"search_time_limit"`  // Default search budget (default 5s)
	MaxDepth         int      `json:"max_depth"`          // Cap on requested depths (0 = engine limit)
}

// DefaultConfig returns a ServerConfig with sensible defaults.
func DefaultConfig() ServerConfig {
	pool := DefaultPoolConfig()
	return ServerConfig{
		Host:             "localhost",
		Port:             8080,
		ReadTimeout:      Duration(30 * time.Second),
		WriteTimeout:     Duration(60 * time.Second),
		IdleTimeout:      Duration(120 * time.Second),
		MaxQuickWorkers:  pool.MaxQuickWorkers,
		MaxSearchWorkers: pool.MaxSearchWorkers,
		SearchTimeLimit:  Duration(5 * time.Second),
	}
}

// Server is the HTTP API server.
type Server struct {
	config   ServerConfig
	engine   *engine.Engine
	handlers *Handlers
	server   *http.Server
	pool     *WorkerPool
	version  string
}

// NewServer creates a new API server.
func NewServer(e *engine.Engine, config ServerConfig, version string) *Server {
	pool := NewWorkerPool(PoolConfig{
		MaxQuickWorkers:  config.MaxQuickWorkers,
		MaxSearchWorkers: config.MaxSearchWorkers,
	})
	handlers := NewHandlersWithPool(e, version, pool)
	handlers.searchTimeLimit = time.Duration(config.SearchTimeLimit)
	handlers.maxDepth = config.MaxDepth

	return &Server{
		config:   config,
		engine:   e,
		handlers: handlers,
		pool:     pool,
		version:  version,
	}
}

// Pool returns the worker pool for monitoring.
func (s *Server) Pool() *WorkerPool {
	return s.pool
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// accessLog logs every request once it completes.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	h := s.handlers
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Post("/evaluate", h.Evaluate)
		r.Post("/bestmove", h.BestMove)
		r.Post("/hints", h.Hints)
		r.Get("/positions", h.Positions)
		r.Get("/search/stream", h.SearchSSE)
		r.HandleFunc("/ws", h.WebSocket)

		r.Post("/tutor/move", h.HandleTutorMove)
		r.Post("/tutor/game", h.HandleAnalyzeGame)

		r.Route("/games", func(r chi.Router) {
			r.Get("/", h.ListGames)
			r.Post("/", h.CreateGame)
			r.Post("/import", h.ImportGame)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetGame)
				r.Delete("/", h.DeleteGame)
				r.Get("/record", h.ExportGame)
				r.Post("/play", h.Play)
				r.Post("/ai-move", h.AIMove)
				r.Post("/resign", h.Resign)
				r.Post("/undo", h.Undo)
			})
		})
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  time.Duration(s.config.ReadTimeout),
		WriteTimeout: time.Duration(s.config.WriteTimeout),
		IdleTimeout:  time.Duration(s.config.IdleTimeout),
	}

	log.Info().
		Str("version", s.version).
		Str("addr", addr).
		Int("board_size", s.engine.BoardSize()).
		Int("max_search_workers", s.pool.Stats().MaxSearch).
		Msg("starting gomoku API server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ListenAndServeWithGracefulShutdown starts the server and handles shutdown signals.
func (s *Server) ListenAndServeWithGracefulShutdown() error {
	errChan := make(chan error, 1)

	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server shutdown failed")
	}

	log.Info().Msg("server stopped")
	return nil
}
