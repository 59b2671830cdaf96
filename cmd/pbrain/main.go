// Command pbrain runs the engine as a Gomocup brain. By default it speaks
// the protocol on stdin/stdout; with -listen it serves TCP connections.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourusername/gomoku/pkg/engine"
	"github.com/yourusername/gomoku/pkg/external"
)

const version = "0.1.0"

func main() {
	listen := flag.String("listen", "", "Serve TCP on this address instead of stdio (e.g. :1234)")
	depth := flag.Int("depth", 0, "Search depth (0 = engine default)")
	moveTime := flag.Duration("movetime", 0, "Time per move when the manager sends no timeouts")
	workers := flag.Int("workers", 1, "Root search workers (negative = all CPUs)")
	messages := flag.Bool("messages", false, "Report search statistics with MESSAGE lines")
	logFile := flag.String("log", "", "Log file (stdout belongs to the protocol)")
	debug := flag.Bool("debug", false, "Debug logging")
	flag.Parse()

	// stdout carries the protocol, so logs go to stderr or a file.
	out := os.Stderr
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			os.Stderr.WriteString("pbrain: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(out).Level(level).With().Timestamp().Str("component", "pbrain").Logger()

	eng, err := engine.NewEngine(engine.EngineOptions{
		MaxDepth: *depth,
		Workers:  *workers,
		Logger:   &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create engine")
	}

	opts := external.DefaultBrainOptions()
	opts.Version = version
	opts.MaxDepth = *depth
	opts.MoveTime = *moveTime
	opts.Messages = *messages
	opts.Logger = &logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *listen == "" {
		if err := external.NewBrain(eng, opts).Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("session failed")
		}
		return
	}

	server := external.NewServer(eng, external.ServerOptions{Addr: *listen, Brain: opts})
	if err := server.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start")
	}
	<-ctx.Done()

	done := make(chan struct{})
	go func() {
		server.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("sessions did not end in time")
	}
}
