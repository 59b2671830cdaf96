package engine

import (
	"context"
	"sort"
)

// MoveWithEval is a move together with its evaluation
type MoveWithEval struct {
	Move       Move `json:"move"`
	PointScore int  `json:"point_score"` // Local tactical value used for ordering
	Score      int  `json:"score"`       // Search score after playing the move
}

// AnalysisResult contains the result of move analysis
type AnalysisResult struct {
	Moves     []MoveWithEval `json:"moves"` // Moves ranked by score
	BestMove  Move           `json:"best_move"`
	BestScore int            `json:"best_score"`
	Depth     int            `json:"depth"`
	NumMoves  int            `json:"num_moves"` // Candidate cells considered
}

// Hints returns up to n candidate cells for side ranked by point score,
// without searching. n <= 0 returns every candidate.
func (e *Engine) Hints(b *Board, side Stone, n int) ([]Candidate, error) {
	if !side.IsSide() {
		return nil, ErrInvalidSide
	}
	if b.Full() {
		return nil, ErrBoardFull
	}
	board := b.Clone()
	moves := generateCandidates(board, side, genOptions{radius: e.radius, rank: true})
	if n > 0 && len(moves) > n {
		moves = moves[:n]
	}
	return moves, nil
}

// AnalyzePosition searches the top n candidates for side to the given
// depth (0 = engine default) and returns them ranked by search score.
func (e *Engine) AnalyzePosition(ctx context.Context, b *Board, side Stone, n, depth int) (*AnalysisResult, error) {
	cands, err := e.Hints(b, side, n)
	if err != nil {
		return nil, err
	}
	if depth <= 0 {
		depth = e.maxDepth
	}

	result := &AnalysisResult{
		Moves:    make([]MoveWithEval, len(cands)),
		Depth:    depth,
		NumMoves: len(cands),
	}
	if len(cands) == 0 {
		return result, nil
	}

	moves := make([]Move, len(cands))
	for i, c := range cands {
		moves[i] = c.Move
	}
	scores, err := e.ScoreMoves(ctx, b, side, moves, depth)
	if err != nil {
		return nil, err
	}

	for i, c := range cands {
		result.Moves[i] = MoveWithEval{Move: c.Move, PointScore: c.Score, Score: scores[i]}
	}

	// Sort by score (best first)
	sort.SliceStable(result.Moves, func(i, j int) bool {
		return result.Moves[i].Score > result.Moves[j].Score
	})

	result.BestMove = result.Moves[0].Move
	result.BestScore = result.Moves[0].Score
	return result, nil
}

// LineThreats returns, per direction (horizontal, vertical, down-right,
// up-right), the threats that the stone at (x, y) is part of.
func LineThreats(b *Board, x, y int) [4]ThreatCounts {
	var out [4]ThreatCounts
	mine := b.At(x, y)
	if mine == Empty {
		return out
	}
	opp := mine.Opponent()
	for d, dir := range directions {
		w := b.window(x, y, dir, opp)
		analyzeLine(&w, mine, opp, &out[d], nil)
	}
	return out
}

// DirectionName returns the display name of scan direction d.
func DirectionName(d int) string {
	return [...]string{"horizontal", "vertical", "diagonal", "anti-diagonal"}[d]
}
