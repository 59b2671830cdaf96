package external

import (
	"context"
	"net"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/yourusername/gomoku/pkg/engine"
)

// Server serves the brain protocol over TCP, one session per connection.
type Server struct {
	engine   *engine.Engine
	listener net.Listener
	mu       sync.Mutex
	running  bool
	options  ServerOptions
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ServerOptions configures the TCP server.
type ServerOptions struct {
	Addr  string // Listen address (default ":1234")
	Brain BrainOptions
}

// DefaultServerOptions returns sensible defaults.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		Addr:  ":1234",
		Brain: DefaultBrainOptions(),
	}
}

// NewServer creates a new protocol server.
func NewServer(eng *engine.Engine, opts ServerOptions) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultServerOptions().Addr
	}
	s := &Server{engine: eng, options: opts, log: zerolog.Nop()}
	if opts.Brain.Logger != nil {
		s.log = *opts.Brain.Logger
	}
	return s
}

// Start begins listening for connections.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	listener, err := net.Listen("tcp", s.options.Addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", s.options.Addr)
	}

	s.listener = listener
	s.running = true
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.log.Info().Str("addr", listener.Addr().String()).Msg("brain server listening")

	go s.acceptLoop()

	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener, cancels running searches and waits for the
// sessions to end.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	err := s.listener.Close()
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

// acceptLoop accepts incoming connections.
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			running := s.running
			s.mu.Unlock()
			if !running {
				return
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection runs one brain session on conn.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Closing the connection unblocks a pending read on Stop.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-s.ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	remote := conn.RemoteAddr().String()
	s.log.Info().Str("remote", remote).Msg("session started")
	brain := NewBrain(s.engine, s.options.Brain)
	if err := brain.Serve(s.ctx, conn, conn); err != nil && s.ctx.Err() == nil {
		s.log.Warn().Err(err).Str("remote", remote).Msg("session failed")
		return
	}
	s.log.Info().Str("remote", remote).Msg("session ended")
}
