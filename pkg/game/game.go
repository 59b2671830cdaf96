// Package game manages gomoku play sessions: turn order, game status and
// the AI opponent on top of the engine.
package game

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/yourusername/gomoku/pkg/engine"
	"github.com/yourusername/gomoku/pkg/record"
)

// Errors returned by game operations.
var (
	ErrNotFound      = errors.New("game not found")
	ErrGameOver      = errors.New("game is over")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrInvalidMode   = errors.New("invalid game mode")
)

// Mode selects who plays each side.
type Mode int

const (
	ModeHumanVsHuman Mode = iota
	ModeHumanVsAI
	ModeAIVsAI
)

var modeNames = [...]string{"human-vs-human", "human-vs-ai", "ai-vs-ai"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMode parses a mode name. The empty string is human-vs-ai.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human-vs-human", "hvh", "pvp":
		return ModeHumanVsHuman, nil
	case "", "human-vs-ai", "hva", "pve":
		return ModeHumanVsAI, nil
	case "ai-vs-ai", "ava", "eve":
		return ModeAIVsAI, nil
	}
	return 0, errors.Wrapf(ErrInvalidMode, "%q", s)
}

// Status is the state of a game.
type Status int

const (
	StatusRunning Status = iota
	StatusWon
	StatusDraw
	StatusResigned
)

func (s Status) String() string {
	return [...]string{"running", "won", "draw", "resigned"}[s]
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Options configures a new game.
type Options struct {
	Size    int  // Board size (0 = engine.DefaultBoardSize)
	Mode    Mode // Who plays each side
	AIFirst bool // In human-vs-ai, the AI plays Black
}

// Game is one play session. A Game is safe for concurrent use; AIMove
// holds the game for the duration of the search.
type Game struct {
	ID        string
	Mode      Mode
	AISide    engine.Stone // Side played by the AI in human-vs-ai
	CreatedAt time.Time

	mu        sync.Mutex
	board     *engine.Board
	status    Status
	winner    engine.Stone
	updatedAt time.Time
}

// State is a snapshot of a game.
type State struct {
	ID         string             `json:"id"`
	Mode       Mode               `json:"mode"`
	Size       int                `json:"size"`
	Status     Status             `json:"status"`
	Winner     string             `json:"winner,omitempty"`
	ToMove     string             `json:"to_move,omitempty"`
	AISide     string             `json:"ai_side,omitempty"`
	Moves      []engine.Placement `json:"moves"`
	PositionID string             `json:"position_id"`
	Board      string             `json:"board"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// New creates a game. It fails for an unsupported board size or mode.
func New(id string, opts Options) (*Game, error) {
	size := opts.Size
	if size == 0 {
		size = engine.DefaultBoardSize
	}
	if size < engine.MinBoardSize || size > engine.MaxBoardSize {
		return nil, errors.Wrapf(engine.ErrBoardSize, "%d", size)
	}
	if opts.Mode < ModeHumanVsHuman || opts.Mode > ModeAIVsAI {
		return nil, errors.Wrapf(ErrInvalidMode, "%d", opts.Mode)
	}

	now := time.Now()
	g := &Game{
		ID:        id,
		Mode:      opts.Mode,
		CreatedAt: now,
		board:     engine.NewBoard(size),
		updatedAt: now,
	}
	if opts.Mode == ModeHumanVsAI {
		g.AISide = engine.White
		if opts.AIFirst {
			g.AISide = engine.Black
		}
	}
	return g, nil
}

// FromRecord creates a game by replaying a record.
func FromRecord(id string, rec *record.Record, mode Mode) (*Game, error) {
	b, err := rec.Board()
	if err != nil {
		return nil, err
	}
	g, err := New(id, Options{Size: rec.Size, Mode: mode})
	if err != nil {
		return nil, err
	}
	g.board = b
	g.updateStatus()
	if rec.Result == record.ResultBlackResign || rec.Result == record.ResultWhiteResign {
		g.status = StatusResigned
		g.winner = rec.Result.Winner()
	}
	return g, nil
}

// Board returns a copy of the current board.
func (g *Game) Board() *engine.Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Clone()
}

// Status returns the game status and the winner, if any.
func (g *Game) Status() (Status, engine.Stone) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status, g.winner
}

// ToMove returns the side whose turn it is.
func (g *Game) ToMove() engine.Stone {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.SideToMove()
}

// AIToMove reports whether the next move belongs to the AI.
func (g *Game) AIToMove() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status == StatusRunning && g.isAI(g.board.SideToMove())
}

func (g *Game) isAI(side engine.Stone) bool {
	switch g.Mode {
	case ModeAIVsAI:
		return true
	case ModeHumanVsAI:
		return side == g.AISide
	}
	return false
}

// Play places a human move for the side to move.
func (g *Game) Play(m engine.Move) (engine.Placement, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusRunning {
		return engine.Placement{}, errors.Wrap(ErrGameOver, g.status.String())
	}
	side := g.board.SideToMove()
	if g.isAI(side) {
		return engine.Placement{}, errors.Wrapf(ErrNotYourTurn, "%s is played by the AI", side.Name())
	}
	if err := g.board.CanPlace(m.X, m.Y); err != nil {
		return engine.Placement{}, err
	}
	g.board.PlaceStone(m.X, m.Y, side)
	g.updateStatus()
	return engine.Placement{Move: m, Side: side}, nil
}

// AIMove lets the engine play for the side to move. In human-vs-human
// games it acts as a move suggestion that is also played.
func (g *Game) AIMove(ctx context.Context, e *engine.Engine, opts engine.SearchOptions) (*engine.SearchResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusRunning {
		return nil, errors.Wrap(ErrGameOver, g.status.String())
	}
	side := g.board.SideToMove()
	if g.Mode == ModeHumanVsAI && side != g.AISide {
		return nil, errors.Wrapf(ErrNotYourTurn, "%s is played by the human", side.Name())
	}

	res, err := e.Search(ctx, g.board, side, opts)
	if err != nil {
		return nil, err
	}
	g.board.PlaceStone(res.Move.X, res.Move.Y, side)
	g.updateStatus()
	return res, nil
}

// Resign ends the game with side resigning.
func (g *Game) Resign(side engine.Stone) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !side.IsSide() {
		return errors.Wrapf(engine.ErrInvalidSide, "%d", side)
	}
	if g.status != StatusRunning {
		return errors.Wrap(ErrGameOver, g.status.String())
	}
	g.status = StatusResigned
	g.winner = side.Opponent()
	g.updatedAt = time.Now()
	return nil
}

// Undo takes back the last move. In human-vs-ai games it takes back moves
// until it is the human's turn again. A finished game is reopened; a
// resigned one is not.
func (g *Game) Undo() ([]engine.Placement, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status == StatusResigned {
		return nil, errors.Wrap(ErrGameOver, g.status.String())
	}
	if g.board.Stones() == 0 {
		return nil, ErrNothingToUndo
	}

	var undone []engine.Placement
	for {
		p, ok := g.board.Undo()
		if !ok {
			break
		}
		undone = append(undone, p)
		if g.Mode != ModeHumanVsAI || !g.isAI(g.board.SideToMove()) {
			break
		}
	}
	g.updateStatus()
	return undone, nil
}

// updateStatus recomputes the status after the board changed.
func (g *Game) updateStatus() {
	g.updatedAt = time.Now()
	g.status, g.winner = StatusRunning, engine.Empty
	if w := engine.Winner(g.board); w != engine.Empty {
		g.status, g.winner = StatusWon, w
	} else if g.board.Full() {
		g.status = StatusDraw
	}
}

// Snapshot returns the current state of the game.
func (g *Game) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := State{
		ID:         g.ID,
		Mode:       g.Mode,
		Size:       g.board.Size(),
		Status:     g.status,
		Moves:      g.board.History(),
		PositionID: g.board.PositionID(),
		Board:      g.board.String(),
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.updatedAt,
	}
	if g.winner != engine.Empty {
		s.Winner = g.winner.Name()
	}
	if g.status == StatusRunning {
		s.ToMove = g.board.SideToMove().Name()
	}
	if g.AISide != engine.Empty {
		s.AISide = g.AISide.Name()
	}
	return s
}

// Record returns the game as a record for export.
func (g *Game) Record() *record.Record {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec := record.FromBoard(g.board)
	rec.Date = g.CreatedAt.Format("2006-01-02")
	rec.Black, rec.White = "Human", "Human"
	if g.isAI(engine.Black) {
		rec.Black = "gomoku"
	}
	if g.isAI(engine.White) {
		rec.White = "gomoku"
	}
	if g.status == StatusResigned {
		rec.Result = record.ResultWhiteResign
		if g.winner == engine.White {
			rec.Result = record.ResultBlackResign
		}
	}
	return rec
}
