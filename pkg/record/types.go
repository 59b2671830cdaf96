// Package record provides game record import/export for gomoku games.
// Supports SGF (Smart Game Format, GM[4]) and a plain move-list text format.
package record

import (
	"github.com/pkg/errors"

	"github.com/yourusername/gomoku/pkg/engine"
)

// Errors returned by the parsers.
var (
	ErrNotGomoku   = errors.New("not a gomoku record")
	ErrUnsupported = errors.New("unsupported record feature")
	ErrIllegalMove = errors.New("illegal move in record")
)

// Record represents a single recorded game.
type Record struct {
	Black     string // Name of the black player (moves first)
	White     string // Name of the white player
	Size      int    // Board dimension
	Date      string // Game date (YYYY-MM-DD format)
	Event     string // Event name
	Place     string // Location
	Annotator string // Who analyzed the game
	Comment   string // General game comment
	Result    Result // How the game ended
	Moves     []engine.Placement
}

// Result indicates how a game ended.
type Result int

const (
	ResultInProgress  Result = iota // Game not finished
	ResultBlackWins                 // Black made five
	ResultWhiteWins                 // White made five
	ResultBlackResign               // Black resigned
	ResultWhiteResign               // White resigned
	ResultDraw                      // Board full without five
)

// String returns the SGF RE value of the result.
func (r Result) String() string {
	return [...]string{"", "B+", "W+", "W+R", "B+R", "0"}[r]
}

// Winner returns the winning side, or Empty.
func (r Result) Winner() engine.Stone {
	switch r {
	case ResultBlackWins, ResultWhiteResign:
		return engine.Black
	case ResultWhiteWins, ResultBlackResign:
		return engine.White
	}
	return engine.Empty
}

// ParseResult parses an SGF RE value. Unknown values read as in progress.
func ParseResult(s string) Result {
	switch s {
	case "B+", "B+5", "B+F":
		return ResultBlackWins
	case "W+", "W+5", "W+F":
		return ResultWhiteWins
	case "W+R", "W+Resign":
		return ResultBlackResign
	case "B+R", "B+Resign":
		return ResultWhiteResign
	case "0", "Draw":
		return ResultDraw
	}
	return ResultInProgress
}

// NewRecord creates an empty record for a board of the given size.
func NewRecord(size int) *Record {
	return &Record{Size: size}
}

// FromBoard creates a record from a board's move history. The result is
// set from the position: five in a row or a full board.
func FromBoard(b *engine.Board) *Record {
	r := &Record{Size: b.Size(), Moves: b.History()}
	switch engine.Winner(b) {
	case engine.Black:
		r.Result = ResultBlackWins
	case engine.White:
		r.Result = ResultWhiteWins
	default:
		if b.Full() {
			r.Result = ResultDraw
		}
	}
	return r
}

// AddMove appends a move for the side whose turn it is.
func (r *Record) AddMove(m engine.Move) {
	side := engine.Black
	if len(r.Moves)%2 == 1 {
		side = engine.White
	}
	r.Moves = append(r.Moves, engine.Placement{Move: m, Side: side})
}

// Board replays the moves on an empty board. It fails on the first move
// that is off the board or on an occupied cell.
func (r *Record) Board() (*engine.Board, error) {
	if r.Size < engine.MinBoardSize || r.Size > engine.MaxBoardSize {
		return nil, errors.Wrapf(engine.ErrBoardSize, "%d", r.Size)
	}
	b := engine.NewBoard(r.Size)
	for i, p := range r.Moves {
		if !p.Side.IsSide() {
			return nil, errors.Wrapf(ErrIllegalMove, "move %d has no side", i+1)
		}
		if err := b.CanPlace(p.X, p.Y); err != nil {
			return nil, errors.Wrapf(ErrIllegalMove, "move %d (%s): %v", i+1, p.Move, err)
		}
		b.PlaceStone(p.X, p.Y, p.Side)
	}
	return b, nil
}
