package engine

import (
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultMaxDepth is the default iterative-deepening limit in plies.
const DefaultMaxDepth = 4

// Engine is the move-search engine. An Engine holds only configuration
// and is safe for concurrent use; every search works on its own copy of
// the board.
type Engine struct {
	size        int
	maxDepth    int
	radius      int
	narrowing   NarrowingPolicy
	earlyStones int
	cacheSize   int // 0 = disabled
	workers     int
	noPruning   bool
	useBook     bool
	seed        int64
	timeLimit   time.Duration
	log         zerolog.Logger
}

// EngineOptions configures the engine
type EngineOptions struct {
	BoardSize         int           // Board dimension (0 = 15)
	MaxDepth          int           // Search depth in plies (0 = default)
	MaxCandidates     int           // Candidate cap per node (0 = default, negative = unlimited)
	NeighborRadius    int           // Candidate radius around stones (0 = default)
	ThreatOnlyStones  int           // Stone count for the threat-only filter (0 = default)
	ThreatOnlyPly     int           // Ply after which the filter applies on crowded boards (0 = default, negative = 0)
	ThreatOnlyDeepPly int           // Ply after which the filter always applies (0 = default)
	EarlyGameStones   int           // Full-depth population threshold (0 = default, negative = disabled)
	CacheSize         int           // Transposition cache entries (0 = default, negative = disabled)
	Workers           int           // Root search workers (0 = 1, negative = GOMAXPROCS)
	DisablePruning    bool          // Full-width minimax over the same candidates (testing)
	DisableBook       bool          // Do not use the opening book
	Seed              int64         // Seed for opening book choices
	TimeLimit         time.Duration // Default per-search time budget (0 = none)
	Logger            *zerolog.Logger
}

// NewEngine creates a new engine with the given options
func NewEngine(opts EngineOptions) (*Engine, error) {
	e := &Engine{
		size:        DefaultBoardSize,
		maxDepth:    DefaultMaxDepth,
		radius:      DefaultNeighborRadius,
		narrowing:   DefaultNarrowing(),
		earlyStones: DefaultEarlyGameStones,
		cacheSize:   DefaultCacheSize,
		workers:     1,
		noPruning:   opts.DisablePruning,
		useBook:     !opts.DisableBook,
		seed:        opts.Seed,
		timeLimit:   opts.TimeLimit,
		log:         zerolog.Nop(),
	}

	if opts.BoardSize != 0 {
		if opts.BoardSize < MinBoardSize || opts.BoardSize > MaxBoardSize {
			return nil, errors.Wrapf(ErrBoardSize, "%d (allowed %d..%d)", opts.BoardSize, MinBoardSize, MaxBoardSize)
		}
		e.size = opts.BoardSize
	}
	if opts.MaxDepth < 0 {
		return nil, errors.Errorf("invalid max depth %d", opts.MaxDepth)
	}
	if opts.MaxDepth > 0 {
		e.maxDepth = opts.MaxDepth
	}
	if opts.MaxCandidates > 0 {
		e.narrowing.MaxCandidates = opts.MaxCandidates
	} else if opts.MaxCandidates < 0 {
		e.narrowing.MaxCandidates = 0
	}
	if opts.NeighborRadius > 0 {
		e.radius = opts.NeighborRadius
	}
	if opts.ThreatOnlyStones > 0 {
		e.narrowing.ThreatOnlyStones = opts.ThreatOnlyStones
	}
	if opts.ThreatOnlyPly > 0 {
		e.narrowing.ThreatOnlyPly = opts.ThreatOnlyPly
	} else if opts.ThreatOnlyPly < 0 {
		e.narrowing.ThreatOnlyPly = 0
	}
	if opts.ThreatOnlyDeepPly > 0 {
		e.narrowing.ThreatOnlyDeepPly = opts.ThreatOnlyDeepPly
	}
	if opts.EarlyGameStones > 0 {
		e.earlyStones = opts.EarlyGameStones
	} else if opts.EarlyGameStones < 0 {
		e.earlyStones = -1
	}
	if opts.CacheSize > 0 {
		e.cacheSize = opts.CacheSize
	} else if opts.CacheSize < 0 {
		e.cacheSize = 0
	}
	if opts.Workers > 0 {
		e.workers = opts.Workers
	} else if opts.Workers < 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger != nil {
		e.log = *opts.Logger
	}

	return e, nil
}

// BoardSize returns the board dimension the engine was configured for.
func (e *Engine) BoardSize() int { return e.size }

// MaxDepth returns the configured search depth.
func (e *Engine) MaxDepth() int { return e.maxDepth }

// NewBoard returns an empty board of the engine's size.
func (e *Engine) NewBoard() *Board { return NewBoard(e.size) }

// Narrowing returns the engine's candidate narrowing policy.
func (e *Engine) Narrowing() NarrowingPolicy { return e.narrowing }

// Evaluate returns the static evaluation of b from side's point of view.
func (e *Engine) Evaluate(b *Board, side Stone) (*Evaluation, error) {
	if !side.IsSide() {
		return nil, errors.Wrapf(ErrInvalidSide, "%d", side)
	}
	p := newScanPass(b.size)
	p.scanBoard(b)

	opp := side.Opponent()
	ev := &Evaluation{
		Side:     side,
		MyThreat: p.counts[side],
		OpThreat: p.counts[opp],
		Win:      p.counts[side][Five] > 0,
		Loss:     p.counts[opp][Five] > 0,
	}
	ev.Mine, ev.Opponent = scoreCounts(ev.MyThreat, ev.OpThreat)
	ev.Score = ev.Mine - ev.Opponent
	return ev, nil
}

// IsWinningPosition reports whether side has five in a row on b.
func (e *Engine) IsWinningPosition(b *Board, side Stone) bool {
	return IsWinningPosition(b, side)
}

// IsWinningPosition reports whether side has five in a row on b.
func IsWinningPosition(b *Board, side Stone) bool {
	if !side.IsSide() || b.stones < 5 {
		return false
	}
	return newScanPass(b.size).hasFive(b, side)
}

// Winner returns the side with five in a row, or Empty.
func Winner(b *Board) Stone {
	if b.stones < 5 {
		return Empty
	}
	p := newScanPass(b.size)
	p.scanBoard(b)
	switch {
	case p.counts[Black][Five] > 0:
		return Black
	case p.counts[White][Five] > 0:
		return White
	}
	return Empty
}
