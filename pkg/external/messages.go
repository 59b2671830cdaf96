package external

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/yourusername/gomoku/pkg/engine"
)

// Field values of a BOARD line.
const (
	FieldOwn      = 1 // Stone of the brain
	FieldOpponent = 2 // Stone of the opponent
	FieldWall     = 3 // Continuous-game marker; rejected by the brain
)

// BoardLine is one "x,y,field" line of a BOARD block.
type BoardLine struct {
	engine.Move
	Field int
}

// ParseCoord parses a zero-based "x,y" coordinate pair.
func ParseCoord(s string) (engine.Move, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return engine.Move{}, errors.Errorf("coordinate %q: want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return engine.Move{}, errors.Wrapf(err, "coordinate %q", s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return engine.Move{}, errors.Wrapf(err, "coordinate %q", s)
	}
	return engine.Move{X: x, Y: y}, nil
}

// FormatCoord renders m the way brains answer: "x,y".
func FormatCoord(m engine.Move) string {
	return strconv.Itoa(m.X) + "," + strconv.Itoa(m.Y)
}

// ParseBoardLine parses an "x,y,field" line.
func ParseBoardLine(s string) (BoardLine, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return BoardLine{}, errors.Errorf("board line %q: want x,y,field", s)
	}
	m, err := ParseCoord(parts[0] + "," + parts[1])
	if err != nil {
		return BoardLine{}, err
	}
	field, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || field < FieldOwn || field > FieldWall {
		return BoardLine{}, errors.Errorf("board line %q: bad field", s)
	}
	return BoardLine{Move: m, Field: field}, nil
}

// splitCommand separates the keyword of a command line from its argument.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		return strings.ToUpper(line[:i]), strings.TrimSpace(line[i+1:])
	}
	return strings.ToUpper(line), ""
}
