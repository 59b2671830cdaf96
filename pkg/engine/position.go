// Package engine provides the public API for the gomoku move-search engine.
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/yourusername/gomoku/internal/positionid"
)

// Board size limits
const (
	DefaultBoardSize = 15
	MinBoardSize     = positionid.MinSize
	MaxBoardSize     = positionid.MaxSize
)

// Stone is the content of a board cell, and also names a side.
type Stone uint8

const (
	Empty Stone = iota
	Black       // Side A, moves first
	White       // Side B
)

// String returns the single-character board notation of the stone.
func (s Stone) String() string {
	switch s {
	case Black:
		return "X"
	case White:
		return "O"
	}
	return "."
}

// Name returns the side name ("black", "white" or "empty").
func (s Stone) Name() string {
	return [...]string{"empty", "black", "white"}[s]
}

// Opponent returns the other side. Empty has no opponent.
func (s Stone) Opponent() Stone {
	switch s {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

// IsSide reports whether s is Black or White.
func (s Stone) IsSide() bool {
	return s == Black || s == White
}

// ParseSide parses a side name: "black"/"x"/"1" or "white"/"o"/"2".
func ParseSide(s string) (Stone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "b", "x", "1":
		return Black, nil
	case "white", "w", "o", "2":
		return White, nil
	}
	return Empty, errors.Wrapf(ErrInvalidSide, "%q", s)
}

// Move is a board cell, x is the column and y the row (0-based, top-left origin).
type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns the move in coordinate notation, column letter then
// 1-based row ("h8" is the center of a 15x15 board).
func (m Move) String() string {
	return fmt.Sprintf("%c%d", 'a'+m.X, m.Y+1)
}

// ParseMove parses coordinate notation ("h8") or a numeric "x,y" pair.
func ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Move{}, errors.New("empty move")
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		x, err := strconv.Atoi(strings.TrimSpace(s[:i]))
		if err != nil {
			return Move{}, errors.Wrapf(err, "parsing move %q", s)
		}
		y, err := strconv.Atoi(strings.TrimSpace(s[i+1:]))
		if err != nil {
			return Move{}, errors.Wrapf(err, "parsing move %q", s)
		}
		return Move{X: x, Y: y}, nil
	}
	if s[0] < 'a' || s[0] > 'z' {
		return Move{}, errors.Errorf("parsing move %q: bad column", s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil || row < 1 {
		return Move{}, errors.Errorf("parsing move %q: bad row", s)
	}
	return Move{X: int(s[0] - 'a'), Y: row - 1}, nil
}

// Placement is one entry of the move history.
type Placement struct {
	Move
	Side Stone `json:"side"`
}

// Evaluation is the static evaluation of a position from one side's view.
type Evaluation struct {
	Side     Stone        `json:"side"`
	Score    int          `json:"score"`     // mine - opponent
	Mine     int          `json:"mine"`      // Side's partial score
	Opponent int          `json:"opponent"`  // Opponent's partial score
	MyThreat ThreatCounts `json:"my_threats"`
	OpThreat ThreatCounts `json:"opponent_threats"`
	Win      bool         `json:"win"` // Side has five in a row
	Loss     bool         `json:"loss"`
}

// Board is a square gomoku board with an incrementally maintained
// Zobrist fingerprint. A Board is not safe for concurrent use.
type Board struct {
	size    int
	cells   []Stone
	stones  int
	hash    uint64
	zobrist *Zobrist
	history []Placement
}

// NewBoard returns an empty board. It panics if size is outside
// MinBoardSize..MaxBoardSize.
func NewBoard(size int) *Board {
	if size < MinBoardSize || size > MaxBoardSize {
		panic(fmt.Sprintf("engine: board size %d out of range [%d, %d]", size, MinBoardSize, MaxBoardSize))
	}
	z := ZobristFor(size)
	return &Board{
		size:    size,
		cells:   make([]Stone, size*size),
		hash:    z.Seed(),
		zobrist: z,
	}
}

// Size returns the board dimension.
func (b *Board) Size() int { return b.size }

// Stones returns the number of stones on the board.
func (b *Board) Stones() int { return b.stones }

// Hash returns the Zobrist fingerprint of the current occupancy.
func (b *Board) Hash() uint64 { return b.hash }

// Full reports whether every cell is occupied.
func (b *Board) Full() bool { return b.stones == len(b.cells) }

// Center returns the center cell.
func (b *Board) Center() Move {
	c := b.size / 2
	return Move{X: c, Y: c}
}

// InBounds reports whether (x, y) is on the board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.size && y >= 0 && y < b.size
}

// At returns the stone at (x, y). Off-board cells read as Empty.
func (b *Board) At(x, y int) Stone {
	if !b.InBounds(x, y) {
		return Empty
	}
	return b.cells[y*b.size+x]
}

// Count returns the number of stones of one side.
func (b *Board) Count(side Stone) int {
	n := 0
	for _, c := range b.cells {
		if c == side {
			n++
		}
	}
	return n
}

// CanPlace checks that (x, y) is in range and empty. Callers placing
// user-chosen cells must check this before PlaceStone.
func (b *Board) CanPlace(x, y int) error {
	if !b.InBounds(x, y) {
		return errors.Wrapf(ErrOutOfRange, "(%d, %d) on %dx%d board", x, y, b.size, b.size)
	}
	if b.cells[y*b.size+x] != Empty {
		return errors.Wrapf(ErrOccupied, "(%d, %d)", x, y)
	}
	return nil
}

// PlaceStone places a stone for side at (x, y) and records it in the move
// history. It panics if the cell is out of range or occupied, or if side
// is not Black or White.
func (b *Board) PlaceStone(x, y int, side Stone) {
	if !side.IsSide() {
		panic(fmt.Sprintf("engine: PlaceStone with invalid side %d", side))
	}
	if err := b.CanPlace(x, y); err != nil {
		panic("engine: PlaceStone: " + err.Error())
	}
	b.put(y*b.size+x, side)
	b.history = append(b.history, Placement{Move: Move{X: x, Y: y}, Side: side})
}

// RemoveStone clears (x, y), the inverse of a placement. The move history
// is not changed. It panics if the cell is out of range or empty.
func (b *Board) RemoveStone(x, y int) {
	if !b.InBounds(x, y) || b.cells[y*b.size+x] == Empty {
		panic(fmt.Sprintf("engine: RemoveStone on empty or off-board cell (%d, %d)", x, y))
	}
	b.take(y*b.size + x)
}

// Undo removes the last recorded placement. It panics if the cell no
// longer holds that placement's stone, e.g. after RemoveStone cleared it.
func (b *Board) Undo() (Placement, bool) {
	if len(b.history) == 0 {
		return Placement{}, false
	}
	last := b.history[len(b.history)-1]
	idx := last.Y*b.size + last.X
	if b.cells[idx] != last.Side {
		panic(fmt.Sprintf("engine: Undo of %s %s but the cell holds %s", last.Side.Name(), last.Move, b.cells[idx].Name()))
	}
	b.history = b.history[:len(b.history)-1]
	b.take(idx)
	return last, true
}

// LastMove returns the last recorded placement.
func (b *Board) LastMove() (Placement, bool) {
	if len(b.history) == 0 {
		return Placement{}, false
	}
	return b.history[len(b.history)-1], true
}

// History returns a copy of the recorded placements.
func (b *Board) History() []Placement {
	h := make([]Placement, len(b.history))
	copy(h, b.history)
	return h
}

// put and take are the search-internal mutations; they keep the stone
// count and fingerprint in step but never touch the history.
func (b *Board) put(idx int, side Stone) {
	b.cells[idx] = side
	b.hash ^= b.zobrist.Token(idx, side)
	b.stones++
}

func (b *Board) take(idx int) {
	side := b.cells[idx]
	b.cells[idx] = Empty
	b.hash ^= b.zobrist.Token(idx, side)
	b.stones--
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	c := &Board{
		size:    b.size,
		cells:   make([]Stone, len(b.cells)),
		stones:  b.stones,
		hash:    b.hash,
		zobrist: b.zobrist,
		history: make([]Placement, len(b.history)),
	}
	copy(c.cells, b.cells)
	copy(c.history, b.history)
	return c
}

// Equal reports whether two boards have the same size and occupancy.
func (b *Board) Equal(o *Board) bool {
	if b.size != o.size {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// SideToMove returns the side whose turn it is, assuming Black moved first
// and the sides alternated.
func (b *Board) SideToMove() Stone {
	if b.Count(Black) > b.Count(White) {
		return White
	}
	return Black
}

// PositionID returns the compact position ID of the board.
func (b *Board) PositionID() string {
	cells := make([]uint8, len(b.cells))
	for i, c := range b.cells {
		cells[i] = uint8(c)
	}
	return positionid.Encode(b.size, cells)
}

// BoardFromPositionID decodes a position ID. The resulting board has no
// move history.
func BoardFromPositionID(id string) (*Board, error) {
	g, err := positionid.Decode(id)
	if err != nil {
		return nil, err
	}
	b := NewBoard(g.Size)
	for i, c := range g.Cells {
		if c != 0 {
			b.put(i, Stone(c))
		}
	}
	return b, nil
}

// String renders the board as rows of '.', 'X' and 'O' separated by newlines.
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow(len(b.cells) + b.size)
	for y := 0; y < b.size; y++ {
		for x := 0; x < b.size; x++ {
			sb.WriteString(b.cells[y*b.size+x].String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseBoard parses the String format. Blank lines and spaces are ignored;
// 'x'/'X'/'1'/'B' are black, 'o'/'O'/'2'/'W' are white, '.', '-', '0' and
// '+' are empty. The board has no move history.
func ParseBoard(s string) (*Board, error) {
	var rows []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.ReplaceAll(strings.TrimSpace(line), " ", "")
		if line != "" {
			rows = append(rows, line)
		}
	}
	size := len(rows)
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, errors.Wrapf(ErrBoardSize, "%d rows", size)
	}
	b := NewBoard(size)
	for y, row := range rows {
		if len(row) != size {
			return nil, errors.Errorf("row %d has %d cells, want %d", y+1, len(row), size)
		}
		for x := 0; x < size; x++ {
			switch row[x] {
			case '.', '-', '0', '+':
			case 'x', 'X', '1', 'B':
				b.put(y*size+x, Black)
			case 'o', 'O', '2', 'W':
				b.put(y*size+x, White)
			default:
				return nil, errors.Errorf("row %d: unexpected %q", y+1, row[x])
			}
		}
	}
	return b, nil
}
