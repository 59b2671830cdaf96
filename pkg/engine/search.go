package engine

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// abortCheckInterval is the number of nodes between deadline checks.
const abortCheckInterval = 1024

// SearchOptions controls a single search.
type SearchOptions struct {
	MaxDepth  int                 // Depth limit (0 = engine default)
	TimeLimit time.Duration       // Time budget (0 = engine default, negative = none)
	Progress  func(IterationInfo) // Called after every completed iteration
}

// IterationInfo describes one completed iterative-deepening pass.
type IterationInfo struct {
	Depth   int           `json:"depth"`
	Score   int           `json:"score"`
	Move    Move          `json:"move"`
	Nodes   int64         `json:"nodes"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// SearchResult is the outcome of a search.
type SearchResult struct {
	Move       Move            `json:"move"`
	Score      int             `json:"score"`  // From the side to move's point of view
	Depth      int             `json:"depth"`  // Depth of the last completed iteration
	Nodes      int64           `json:"nodes"`  // Nodes visited over all iterations
	CacheHits  uint64          `json:"cache_hits"`
	ScanSkips  int64           `json:"scan_skips"` // Line analyses saved by scan marks
	Elapsed    time.Duration   `json:"elapsed_ns"`
	Aborted    bool            `json:"aborted"`   // Time budget or context ran out
	FromBook   bool            `json:"from_book"` // Move came from the opening book
	Iterations []IterationInfo `json:"iterations,omitempty"`
}

// IsWin reports whether the score proves a win for the side to move.
func (r *SearchResult) IsWin() bool { return r.Score >= WinScore }

// IsLoss reports whether the score proves a loss for the side to move.
func (r *SearchResult) IsLoss() bool { return r.Score <= -WinScore }

// searcher is the private state of one search: a board copy, a scan
// pass and a transposition cache.
type searcher struct {
	board     *Board
	pass      *scanPass
	cache     *TransCache
	narrowing NarrowingPolicy
	radius    int
	noPruning bool

	maxDepth int // Depth of the current iteration
	rootBest Move
	hasBest  bool

	nodes     int64
	cacheHits uint64

	ctx      context.Context
	deadline time.Time
	aborted  bool
}

func (e *Engine) newSearcher(ctx context.Context, b *Board, deadline time.Time) *searcher {
	s := &searcher{
		board:     b,
		pass:      newScanPass(b.size),
		narrowing: e.narrowing,
		radius:    e.radius,
		noPruning: e.noPruning,
		ctx:       ctx,
		deadline:  deadline,
	}
	if e.cacheSize > 0 {
		s.cache = NewTransCache(uint32(e.cacheSize))
	}
	return s
}

// startIteration prepares the searcher for a pass of the given depth.
func (s *searcher) startIteration(depth int) {
	s.maxDepth = depth
	s.hasBest = false
	if s.cache != nil {
		_, hits, _ := s.cache.Stats()
		s.cacheHits += hits
		s.cache.Flush()
	}
}

func (s *searcher) totalCacheHits() uint64 {
	if s.cache == nil {
		return s.cacheHits
	}
	_, hits, _ := s.cache.Stats()
	return s.cacheHits + hits
}

func (s *searcher) checkAbort() bool {
	if s.aborted {
		return true
	}
	if s.ctx.Err() != nil || (!s.deadline.IsZero() && time.Now().After(s.deadline)) {
		s.aborted = true
	}
	return s.aborted
}

// candidates returns the ordered moves for side at ply.
func (s *searcher) candidates(side Stone, ply int) []Candidate {
	return generateCandidates(s.board, side, genOptions{
		radius:     s.radius,
		onlyThrees: s.narrowing.onlyThrees(s.board.stones, ply),
		limit:      s.narrowing.limit(s.maxDepth),
	})
}

// negamax returns the score of the position for side with depth plies
// left. Scores outside (alpha, beta) are bounds: at most alpha when every
// move fails low, at least beta after a cutoff.
func (s *searcher) negamax(side Stone, depth, alpha, beta int) int {
	s.nodes++
	if s.nodes%abortCheckInterval == 0 && s.checkAbort() {
		return 0
	}
	if s.aborted {
		return 0
	}

	ply := s.maxDepth - depth
	key := s.board.hash
	if s.cache != nil {
		if v, ok := s.cache.Lookup(key, ply); ok {
			return v
		}
	}

	score := s.pass.evaluate(s.board, side)
	if depth <= 0 || abs(score) >= WinScore {
		return score
	}

	moves := s.candidates(side, ply)
	if len(moves) == 0 {
		return score
	}

	opp := side.Opponent()
	var best Move
	found, cutoff := false, false
	for _, m := range moves {
		idx := m.Y*s.board.size + m.X
		s.board.put(idx, side)
		var v int
		if s.noPruning {
			v = -s.negamax(opp, depth-1, -ScoreInfinity, ScoreInfinity)
		} else {
			v = -s.negamax(opp, depth-1, -beta, -alpha)
		}
		s.board.take(idx)
		if s.aborted {
			return 0
		}

		if v > alpha {
			alpha = v
			best = m.Move
			found = true
			if alpha >= beta && !s.noPruning {
				cutoff = true
				break
			}
		}
	}

	if ply == 0 && found {
		s.rootBest = best
		s.hasBest = true
	}
	if s.cache != nil && found && !cutoff && abs(alpha) <= WinScore {
		s.cache.Add(key, ply, alpha)
	}
	return alpha
}

// iterationDepths lists the depths searched for a depth limit: even depths
// from 2, then maxDepth itself when it is odd.
func iterationDepths(maxDepth int) []int {
	var ds []int
	for d := 2; d <= maxDepth; d += 2 {
		ds = append(ds, d)
	}
	if maxDepth%2 == 1 {
		ds = append(ds, maxDepth)
	}
	return ds
}

// iterationOutcome is the result of one root pass.
type iterationOutcome struct {
	score   int
	move    Move
	found   bool
	aborted bool
}

// Search finds the best move for side on b. b is not modified.
//
// An empty board yields the center cell without searching. Otherwise the
// engine deepens 2, 4, ... plies up to the depth limit, clearing the
// transposition cache between iterations, and stops early once a forced
// result is proven. When the time budget or ctx runs out the move of the
// last completed iteration is returned with Aborted set.
func (e *Engine) Search(ctx context.Context, b *Board, side Stone, opts SearchOptions) (*SearchResult, error) {
	if !side.IsSide() {
		return nil, errors.Wrapf(ErrInvalidSide, "%d", side)
	}
	if b.Full() {
		return nil, ErrBoardFull
	}
	if w := Winner(b); w != Empty {
		return nil, errors.Wrapf(ErrGameOver, "%s has five", w.Name())
	}

	start := time.Now()
	if b.stones == 0 {
		return &SearchResult{Move: b.Center(), Elapsed: time.Since(start)}, nil
	}
	if e.useBook {
		if entry, ok := e.LookupOpening(b); ok {
			return &SearchResult{Move: entry.Move, FromBook: true, Elapsed: time.Since(start)}, nil
		}
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = e.maxDepth
	}
	if b.stones <= e.earlyStones {
		maxDepth = e.maxDepth
	}

	timeLimit := opts.TimeLimit
	if timeLimit == 0 {
		timeLimit = e.timeLimit
	}
	var deadline time.Time
	if timeLimit > 0 {
		deadline = start.Add(timeLimit)
	}

	board := b.Clone()
	s := e.newSearcher(ctx, board, deadline)
	result := &SearchResult{}
	var nodes, skips int64
	var hits uint64

	for _, depth := range iterationDepths(maxDepth) {
		if s.checkAbort() {
			result.Aborted = true
			break
		}

		var out iterationOutcome
		if e.workers > 1 {
			var st workerStats
			out, st = e.parallelRoot(ctx, board, side, depth, deadline)
			nodes += st.nodes
			hits += st.hits
			skips += st.skips
		} else {
			s.startIteration(depth)
			score := s.negamax(side, depth, -ScoreInfinity, ScoreInfinity)
			out = iterationOutcome{score: score, move: s.rootBest, found: s.hasBest, aborted: s.aborted}
		}

		if out.aborted || !out.found {
			result.Aborted = out.aborted
			break
		}

		result.Move = out.move
		result.Score = out.score
		result.Depth = depth
		info := IterationInfo{
			Depth:   depth,
			Score:   out.score,
			Move:    out.move,
			Nodes:   nodes + s.nodes,
			Elapsed: time.Since(start),
		}
		result.Iterations = append(result.Iterations, info)
		e.log.Debug().
			Int("depth", depth).
			Int("score", out.score).
			Str("move", out.move.String()).
			Int64("nodes", info.Nodes).
			Uint64("cache_hits", hits+s.totalCacheHits()).
			Dur("elapsed", info.Elapsed).
			Msg("iteration complete")
		if opts.Progress != nil {
			opts.Progress(info)
		}

		if abs(out.score) >= WinScore {
			break
		}
	}

	if result.Depth == 0 {
		// Nothing completed: fall back to the best-ordered candidate.
		moves := generateCandidates(board, side, genOptions{radius: e.radius})
		result.Move = moves[0].Move
		result.Score = moves[0].Score
	}

	result.Nodes = nodes + s.nodes
	result.CacheHits = hits + s.totalCacheHits()
	result.ScanSkips = skips + s.pass.skips
	result.Elapsed = time.Since(start)

	e.log.Info().
		Int("stones", b.stones).
		Str("side", side.Name()).
		Str("move", result.Move.String()).
		Int("score", result.Score).
		Int("depth", result.Depth).
		Int64("nodes", result.Nodes).
		Uint64("cache_hits", result.CacheHits).
		Bool("aborted", result.Aborted).
		Dur("elapsed", result.Elapsed).
		Msg("search complete")

	return result, nil
}

// FindBestMove returns the best move for side searching at most maxDepth
// plies (0 = engine default). It panics if the board is full or already
// decided; use Search to get an error instead.
func (e *Engine) FindBestMove(b *Board, side Stone, maxDepth int) Move {
	res, err := e.Search(context.Background(), b, side, SearchOptions{MaxDepth: maxDepth})
	if err != nil {
		panic("engine: FindBestMove: " + err.Error())
	}
	return res.Move
}

// ScoreMoves searches each move for side to the given depth with a full
// window and returns the exact scores, in the order given.
func (e *Engine) ScoreMoves(ctx context.Context, b *Board, side Stone, moves []Move, depth int) ([]int, error) {
	if !side.IsSide() {
		return nil, errors.Wrapf(ErrInvalidSide, "%d", side)
	}
	if depth < 1 {
		depth = 1
	}
	board := b.Clone()
	s := e.newSearcher(ctx, board, time.Time{})
	s.startIteration(depth)

	scores := make([]int, len(moves))
	for i, m := range moves {
		if err := board.CanPlace(m.X, m.Y); err != nil {
			return nil, err
		}
		idx := m.Y*board.size + m.X
		board.put(idx, side)
		scores[i] = -s.negamax(side.Opponent(), depth-1, -ScoreInfinity, ScoreInfinity)
		board.take(idx)
		if s.aborted {
			return nil, errors.Wrap(ctx.Err(), "scoring moves")
		}
	}
	return scores, nil
}
