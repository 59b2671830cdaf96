// Command gomokuserver runs the gomoku REST API server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/gomoku/pkg/api"
	"github.com/yourusername/gomoku/pkg/engine"
)

const version = "0.1.0"

// fileConfig is the layout of the -config file.
type fileConfig struct {
	Server api.ServerConfig `json:"server"`
	Engine struct {
		BoardSize int   `json:"board_size"`
		MaxDepth  int   `json:"max_depth"`
		CacheSize int   `json:"cache_size"`
		Workers   int   `json:"workers"`
		Seed      int64 `json:"seed"`
	} `json:"engine"`
}

func loadConfig(path string, cfg *fileConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	return errors.Wrapf(dec.Decode(cfg), "parsing %s", path)
}

func main() {
	// Command line flags; explicit flags override the config file.
	configFile := flag.String("config", "", "JSON config file")
	host := flag.String("host", "", "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", 0, "Port to listen on")
	size := flag.Int("size", 0, "Default board size")
	depth := flag.Int("depth", 0, "Default search depth")
	workers := flag.Int("workers", 0, "Root search workers per search (negative = all CPUs)")
	searchTime := flag.Duration("search-time", 0, "Default time budget per search")
	pretty := flag.Bool("pretty", false, "Human-readable logs instead of JSON")
	debug := flag.Bool("debug", false, "Debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("gomoku API server v%s\n", version)
		os.Exit(0)
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if *pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	cfg := fileConfig{Server: api.DefaultConfig()}
	if *configFile != "" {
		if err := loadConfig(*configFile, &cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *size != 0 {
		cfg.Engine.BoardSize = *size
	}
	if *depth != 0 {
		cfg.Engine.MaxDepth = *depth
	}
	if *workers != 0 {
		cfg.Engine.Workers = *workers
	}
	if *searchTime != 0 {
		cfg.Server.SearchTimeLimit = api.Duration(*searchTime)
	}

	logger := log.With().Str("component", "engine").Logger()
	eng, err := engine.NewEngine(engine.EngineOptions{
		BoardSize: cfg.Engine.BoardSize,
		MaxDepth:  cfg.Engine.MaxDepth,
		CacheSize: cfg.Engine.CacheSize,
		Workers:   cfg.Engine.Workers,
		Seed:      cfg.Engine.Seed,
		Logger:    &logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create engine")
	}

	server := api.NewServer(eng, cfg.Server, version)

	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
