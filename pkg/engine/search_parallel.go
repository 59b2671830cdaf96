package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var errWorkerAborted = errors.New("root worker aborted")

// workerStats are the counters of one parallel iteration, summed over
// its workers.
type workerStats struct {
	nodes int64
	hits  uint64
	skips int64
}

// rootBest is one worker's best root move.
type rootBest struct {
	score int
	index int // Index in the root candidate list, -1 if none
}

// parallelRoot runs one iteration with the root candidates dealt
// round-robin to e.workers goroutines. Each worker owns a board copy, a
// scan pass and a cache, and keeps its own alpha. The best score wins,
// ties go to the lowest candidate index, which is the move a sequential
// search would pick.
func (e *Engine) parallelRoot(ctx context.Context, board *Board, side Stone, depth int, deadline time.Time) (iterationOutcome, workerStats) {
	root := e.newSearcher(ctx, board, deadline)
	root.startIteration(depth)
	moves := root.candidates(side, 0)

	workers := e.workers
	if workers > len(moves) {
		workers = len(moves)
	}

	var nodes, skips atomic.Int64
	var hits atomic.Uint64
	results := make([]rootBest, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			s := e.newSearcher(gctx, board.Clone(), deadline)
			s.startIteration(depth)
			defer func() {
				nodes.Add(s.nodes + 1)
				hits.Add(s.totalCacheHits())
				skips.Add(s.pass.skips)
			}()

			best := rootBest{index: -1}
			alpha := -ScoreInfinity
			opp := side.Opponent()
			for i := w; i < len(moves); i += workers {
				idx := moves[i].Y*board.size + moves[i].X
				s.board.put(idx, side)
				var v int
				if s.noPruning {
					v = -s.negamax(opp, depth-1, -ScoreInfinity, ScoreInfinity)
				} else {
					v = -s.negamax(opp, depth-1, -ScoreInfinity, -alpha)
				}
				s.board.take(idx)
				if s.aborted {
					return errWorkerAborted
				}
				if v > alpha {
					alpha = v
					best = rootBest{score: v, index: i}
				}
			}
			results[w] = best
			return nil
		})
	}

	err := g.Wait()
	stats := workerStats{nodes: nodes.Load(), hits: hits.Load(), skips: skips.Load()}
	if err != nil {
		return iterationOutcome{aborted: true}, stats
	}

	out := iterationOutcome{}
	bestIndex := -1
	for _, r := range results {
		if r.index < 0 {
			continue
		}
		if bestIndex < 0 || r.score > out.score || (r.score == out.score && r.index < bestIndex) {
			out.score = r.score
			bestIndex = r.index
		}
	}
	if bestIndex >= 0 {
		out.move = moves[bestIndex].Move
		out.found = true
	}
	return out, stats
}
