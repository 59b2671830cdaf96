// Package engine provides analysis of complete recorded games.
package engine

import (
	"context"

	"github.com/pkg/errors"
)

// MatchAnalysis contains the analysis of a series of games.
type MatchAnalysis struct {
	TotalGames  int               `json:"total_games"`
	TotalMoves  int               `json:"total_moves"`
	PlayerStats [2]PlayerAnalysis `json:"player_stats"` // Black, White
	GameStats   []GameAnalysis    `json:"game_stats"`
	MoveErrors  []MoveErrorDetail `json:"move_errors"`
}

// PlayerAnalysis contains analysis stats for one side.
type PlayerAnalysis struct {
	Name        string     `json:"name"`
	TotalMoves  int        `json:"total_moves"` // Graded moves
	TotalLoss   int        `json:"total_loss"`
	LossPerMove float64    `json:"loss_per_move"`
	Rating      RatingType `json:"rating"`
	RatingStr   string     `json:"rating_str"`
	Blunders    int        `json:"blunders"`
	Errors      int        `json:"errors"`
	Doubtful    int        `json:"doubtful"`
}

// GameAnalysis contains analysis of a single game.
type GameAnalysis struct {
	GameNumber  int               `json:"game_number"`
	Winner      string            `json:"winner"` // "black", "white" or "" if undecided
	MoveCount   [2]int            `json:"move_count"`
	TotalLoss   [2]int            `json:"total_loss"`
	LossPerMove [2]float64        `json:"loss_per_move"`
	Errors      []MoveErrorDetail `json:"errors"`
}

// MoveErrorDetail contains details about a single move error.
type MoveErrorDetail struct {
	GameNumber int       `json:"game_number"`
	MoveNumber int       `json:"move_number"`
	Side       string    `json:"side"`
	Position   string    `json:"position"` // Position ID before the move
	Played     string    `json:"played_move"`
	Best       string    `json:"best_move"`
	Loss       int       `json:"loss"`
	Skill      SkillType `json:"skill"`
	SkillStr   string    `json:"skill_str"`
}

// MatchAnalysisOptions configures game analysis behavior.
type MatchAnalysisOptions struct {
	Depth         int    `json:"depth"`          // Grading depth (0 = DefaultTutorDepth)
	LossThreshold int    `json:"loss_threshold"` // Min loss to report (default SkillThresholds[2])
	BlackName     string `json:"black_name"`
	WhiteName     string `json:"white_name"`
}

// DefaultMatchAnalysisOptions returns sensible defaults.
func DefaultMatchAnalysisOptions() MatchAnalysisOptions {
	return MatchAnalysisOptions{
		Depth:         DefaultTutorDepth,
		LossThreshold: SkillThresholds[2],
		BlackName:     "Black",
		WhiteName:     "White",
	}
}

func sideIndex(s Stone) int {
	if s == White {
		return 1
	}
	return 0
}

// AnalyzeGame replays a recorded game on an empty board of the given size
// and grades every move. Moves after a five are ignored.
func (e *Engine) AnalyzeGame(ctx context.Context, size int, moves []Placement, opts MatchAnalysisOptions) (*MatchAnalysis, error) {
	return e.AnalyzeMatch(ctx, size, [][]Placement{moves}, opts)
}

// AnalyzeMatch grades every move of several games.
func (e *Engine) AnalyzeMatch(ctx context.Context, size int, games [][]Placement, opts MatchAnalysisOptions) (*MatchAnalysis, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, errors.Wrapf(ErrBoardSize, "%d", size)
	}

	ma := &MatchAnalysis{TotalGames: len(games)}
	ma.PlayerStats[0].Name = opts.BlackName
	ma.PlayerStats[1].Name = opts.WhiteName

	for gi, moves := range games {
		ga := GameAnalysis{GameNumber: gi + 1}
		b := NewBoard(size)

		for mi, p := range moves {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "analysis cancelled")
			}
			if !p.Side.IsSide() {
				return nil, errors.Wrapf(ErrInvalidSide, "game %d move %d", gi+1, mi+1)
			}

			skill, err := e.AnalyzeMoveSkill(ctx, b, p.Side, p.Move, opts.Depth)
			if err != nil {
				return nil, errors.Wrapf(err, "game %d move %d (%s)", gi+1, mi+1, p.Move)
			}

			idx := sideIndex(p.Side)
			ps := &ma.PlayerStats[idx]
			ps.TotalMoves++
			ps.TotalLoss += skill.Loss
			ga.MoveCount[idx]++
			ga.TotalLoss[idx] += skill.Loss
			switch skill.Skill {
			case SkillVeryBad:
				ps.Blunders++
			case SkillBad:
				ps.Errors++
			case SkillDoubtful:
				ps.Doubtful++
			}

			if skill.Loss > 0 && skill.Loss >= opts.LossThreshold {
				detail := MoveErrorDetail{
					GameNumber: gi + 1,
					MoveNumber: mi + 1,
					Side:       p.Side.Name(),
					Position:   b.PositionID(),
					Played:     p.Move.String(),
					Best:       skill.BestMove.String(),
					Loss:       skill.Loss,
					Skill:      skill.Skill,
					SkillStr:   skill.Skill.String(),
				}
				ga.Errors = append(ga.Errors, detail)
				ma.MoveErrors = append(ma.MoveErrors, detail)
			}

			b.PlaceStone(p.X, p.Y, p.Side)
			ma.TotalMoves++
			if IsWinningPosition(b, p.Side) {
				ga.Winner = p.Side.Name()
				break
			}
		}

		for i := 0; i < 2; i++ {
			if ga.MoveCount[i] > 0 {
				ga.LossPerMove[i] = float64(ga.TotalLoss[i]) / float64(ga.MoveCount[i])
			}
		}
		ma.GameStats = append(ma.GameStats, ga)
	}

	for i := range ma.PlayerStats {
		ps := &ma.PlayerStats[i]
		if ps.TotalMoves > 0 {
			ps.LossPerMove = float64(ps.TotalLoss) / float64(ps.TotalMoves)
		}
		ps.Rating = GetRating(ps.LossPerMove, ps.TotalMoves)
		ps.RatingStr = ps.Rating.String()
	}

	return ma, nil
}

// EncodePositionID returns the position ID of a board.
func EncodePositionID(b *Board) string {
	return b.PositionID()
}

// FormatMoves formats a move history as space-separated coordinates.
func FormatMoves(moves []Placement) string {
	out := make([]byte, 0, len(moves)*4)
	for i, m := range moves {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, m.Move.String()...)
	}
	return string(out)
}
