// Package engine provides tutor mode for error detection and skill ratings.
package engine

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

// DefaultTutorDepth is the search depth used to grade moves.
const DefaultTutorDepth = 2

// tutorCandidates is how many engine candidates a played move is compared with.
const tutorCandidates = 8

// SkillType represents the skill rating of a move.
type SkillType int

const (
	SkillVeryBad  SkillType = iota // Blunder: misses or allows a forced result
	SkillBad                       // Error: gives up a four or an open three
	SkillDoubtful                  // Doubtful: loses shape
	SkillNone                      // Good or best move
)

// String returns the display name of the skill type.
func (s SkillType) String() string {
	return [...]string{"Very Bad", "Bad", "Doubtful", "None"}[s]
}

// Abbr returns the abbreviated notation (??, ?, ?!).
func (s SkillType) Abbr() string {
	return [...]string{"??", "?", "?!", ""}[s]
}

// SkillThresholds are the score loss thresholds for skill ratings.
var SkillThresholds = [4]int{
	5000, // SkillVeryBad
	1000, // SkillBad
	200,  // SkillDoubtful
	0,    // SkillNone
}

// RatingType represents overall player rating level.
type RatingType int

const (
	RatingUndefined    RatingType = iota
	RatingAwful                   // > 3000 average loss
	RatingBeginner                // 1500-3000
	RatingCasualPlayer            // 800-1500
	RatingIntermediate            // 400-800
	RatingAdvanced                // 200-400
	RatingExpert                  // 100-200
	RatingMaster                  // < 100
)

// String returns the display name of the rating.
func (r RatingType) String() string {
	return [...]string{
		"Undefined", "Awful", "Beginner", "Casual Player",
		"Intermediate", "Advanced", "Expert", "Master",
	}[r]
}

// ClassifySkill returns the skill rating for a score loss.
func ClassifySkill(loss int) SkillType {
	if loss >= SkillThresholds[0] {
		return SkillVeryBad
	} else if loss >= SkillThresholds[1] {
		return SkillBad
	} else if loss >= SkillThresholds[2] {
		return SkillDoubtful
	}
	return SkillNone
}

// GetRating returns the player rating for an average loss per move.
func GetRating(avgLoss float64, moves int) RatingType {
	if moves == 0 {
		return RatingUndefined
	}
	switch {
	case avgLoss < 100:
		return RatingMaster
	case avgLoss < 200:
		return RatingExpert
	case avgLoss < 400:
		return RatingAdvanced
	case avgLoss < 800:
		return RatingIntermediate
	case avgLoss < 1500:
		return RatingCasualPlayer
	case avgLoss < 3000:
		return RatingBeginner
	}
	return RatingAwful
}

// MoveSkillAnalysis contains the detailed analysis of a single move for tutoring.
type MoveSkillAnalysis struct {
	Move      Move           `json:"move"`
	BestMove  Move           `json:"best_move"`
	Score     int            `json:"score"`      // Score of the played move
	BestScore int            `json:"best_score"` // Score of the best move
	Loss      int            `json:"loss"`       // BestScore - Score, never negative
	Skill     SkillType      `json:"skill"`
	IsForced  bool           `json:"is_forced"` // Only one sensible move existed
	Depth     int            `json:"depth"`
	TopMoves  []MoveWithEval `json:"top_moves"`
}

// AnalyzeMoveSkill grades the move side played on b (before the move)
// against the engine's candidates, searched to depth plies (0 = default).
func (e *Engine) AnalyzeMoveSkill(ctx context.Context, b *Board, side Stone, played Move, depth int) (*MoveSkillAnalysis, error) {
	if !side.IsSide() {
		return nil, errors.Wrapf(ErrInvalidSide, "%d", side)
	}
	if err := b.CanPlace(played.X, played.Y); err != nil {
		return nil, errors.Wrap(err, "played move")
	}
	if depth <= 0 {
		depth = DefaultTutorDepth
	}

	board := b.Clone()
	cands := generateCandidates(board, side, genOptions{radius: e.radius})
	analysis := &MoveSkillAnalysis{
		Move:     played,
		IsForced: len(cands) == 1,
		Depth:    depth,
	}
	if len(cands) > tutorCandidates {
		cands = cands[:tutorCandidates]
	}

	moves := make([]Move, 0, len(cands)+1)
	playedIdx := -1
	for i, c := range cands {
		moves = append(moves, c.Move)
		if c.Move == played {
			playedIdx = i
		}
	}
	if playedIdx < 0 {
		playedIdx = len(moves)
		moves = append(moves, played)
	}

	scores, err := e.ScoreMoves(ctx, board, side, moves, depth)
	if err != nil {
		return nil, errors.Wrap(err, "analyzing move")
	}

	best := 0
	for i := range scores {
		if scores[i] > scores[best] {
			best = i
		}
	}
	analysis.BestMove = moves[best]
	analysis.BestScore = scores[best]
	analysis.Score = scores[playedIdx]
	analysis.Loss = analysis.BestScore - analysis.Score
	if analysis.Loss < 0 {
		analysis.Loss = 0
	}
	analysis.Skill = ClassifySkill(analysis.Loss)

	top := make([]MoveWithEval, len(moves))
	for i, m := range moves {
		top[i] = MoveWithEval{Move: m, Score: scores[i]}
		if i < len(cands) {
			top[i].PointScore = cands[i].Score
		}
	}
	sortMovesByScore(top)
	if len(top) > 5 {
		top = top[:5]
	}
	analysis.TopMoves = top

	return analysis, nil
}

func sortMovesByScore(moves []MoveWithEval) {
	sort.SliceStable(moves, func(i, j int) bool {
		return moves[i].Score > moves[j].Score
	})
}
