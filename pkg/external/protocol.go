// Package external implements the Gomocup "piskvork" brain protocol.
// This allows the engine to play in tournament managers and against other
// gomoku programs over stdio or a TCP socket.
//
// Protocol overview:
//   - The manager sends one command per line: START, BEGIN, TURN, BOARD,
//     INFO, ABOUT, TAKEBACK, RESTART, END
//   - Coordinates are zero-based "x,y" pairs
//   - The brain answers with OK, a move, ERROR <text> or UNKNOWN <text>
//   - BOARD is followed by "x,y,field" lines and a closing DONE
package external

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/yourusername/gomoku/pkg/engine"
)

// BrainOptions configures a protocol session.
type BrainOptions struct {
	Name     string        // Reported by ABOUT (default "gomoku")
	Version  string        // Reported by ABOUT
	Author   string        // Reported by ABOUT
	Country  string        // Reported by ABOUT
	MaxDepth int           // Search depth (0 = engine default)
	MoveTime time.Duration // Budget when the manager sends no timeouts (0 = engine default)
	Messages bool          // Send a MESSAGE line with search statistics before each move
	Logger   *zerolog.Logger
}

// DefaultBrainOptions returns sensible defaults.
func DefaultBrainOptions() BrainOptions {
	return BrainOptions{
		Name:    "gomoku",
		Version: "1.0",
		Author:  "gomoku authors",
		Country: "-",
	}
}

// Brain is one protocol session. A Brain is not safe for concurrent use.
type Brain struct {
	engine *engine.Engine
	opts   BrainOptions
	log    zerolog.Logger

	board       *engine.Board
	timeoutTurn time.Duration
	timeLeft    time.Duration

	inBoard bool
	pending []BoardLine
}

// NewBrain creates a session playing with e.
func NewBrain(e *engine.Engine, opts BrainOptions) *Brain {
	if opts.Name == "" {
		opts.Name = DefaultBrainOptions().Name
	}
	b := &Brain{engine: e, opts: opts, log: zerolog.Nop()}
	if opts.Logger != nil {
		b.log = *opts.Logger
	}
	return b
}

// Board returns the session's board, or nil before START.
func (b *Brain) Board() *engine.Board {
	return b.board
}

// Serve runs the session until END, EOF or ctx is done.
func (b *Brain) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		replies, done := b.Handle(ctx, line)
		for _, reply := range replies {
			if _, err := fmt.Fprintln(w, reply); err != nil {
				return errors.Wrap(err, "writing reply")
			}
		}
		if done {
			return nil
		}
	}
	return sc.Err()
}

// Handle processes one input line and returns the reply lines. done is
// set after END.
func (b *Brain) Handle(ctx context.Context, line string) (replies []string, done bool) {
	if b.inBoard {
		return b.boardLine(ctx, line), false
	}

	cmd, arg := splitCommand(line)
	b.log.Debug().Str("cmd", cmd).Str("arg", arg).Msg("command")

	switch cmd {
	case "START":
		return []string{b.start(arg)}, false
	case "RECTSTART":
		return []string{b.rectStart(arg)}, false
	case "RESTART":
		if b.board == nil {
			return []string{"ERROR no game started"}, false
		}
		b.board = engine.NewBoard(b.board.Size())
		return []string{"OK"}, false
	case "BEGIN":
		if b.board == nil {
			return []string{"ERROR no game started"}, false
		}
		return b.think(ctx), false
	case "TURN":
		return b.turn(ctx, arg), false
	case "BOARD":
		if b.board == nil {
			return []string{"ERROR no game started"}, false
		}
		b.inBoard = true
		b.pending = b.pending[:0]
		return nil, false
	case "TAKEBACK":
		return []string{b.takeback(arg)}, false
	case "INFO":
		b.info(arg)
		return nil, false
	case "ABOUT":
		return []string{fmt.Sprintf(`name="%s", version="%s", author="%s", country="%s"`,
			b.opts.Name, b.opts.Version, b.opts.Author, b.opts.Country)}, false
	case "END":
		return nil, true
	}
	return []string{"UNKNOWN command " + cmd}, false
}

func (b *Brain) start(arg string) string {
	size, err := strconv.Atoi(arg)
	if err != nil {
		return "ERROR START needs a board size"
	}
	if size < engine.MinBoardSize || size > engine.MaxBoardSize {
		return fmt.Sprintf("ERROR unsupported size %d", size)
	}
	b.board = engine.NewBoard(size)
	b.timeLeft = 0
	return "OK"
}

func (b *Brain) rectStart(arg string) string {
	m, err := ParseCoord(arg)
	if err != nil {
		return "ERROR RECTSTART needs width,height"
	}
	if m.X != m.Y {
		return "ERROR rectangular boards are not supported"
	}
	return b.start(strconv.Itoa(m.X))
}

func (b *Brain) turn(ctx context.Context, arg string) []string {
	if b.board == nil {
		return []string{"ERROR no game started"}
	}
	m, err := ParseCoord(arg)
	if err != nil {
		return []string{"ERROR " + err.Error()}
	}
	if err := b.board.CanPlace(m.X, m.Y); err != nil {
		return []string{"ERROR " + err.Error()}
	}
	b.board.PlaceStone(m.X, m.Y, b.board.SideToMove())
	return b.think(ctx)
}

// boardLine collects one line of a BOARD block; DONE rebuilds the board
// and answers with a move.
func (b *Brain) boardLine(ctx context.Context, line string) []string {
	if strings.EqualFold(strings.TrimSpace(line), "DONE") {
		b.inBoard = false
		if err := b.loadBoard(b.pending); err != nil {
			return []string{"ERROR " + err.Error()}
		}
		return b.think(ctx)
	}
	bl, err := ParseBoardLine(line)
	if err != nil {
		b.log.Warn().Err(err).Msg("skipping board line")
		return nil
	}
	b.pending = append(b.pending, bl)
	return nil
}

// loadBoard replaces the position with lines in their given order. The
// brain is Black when both sides have the same number of stones.
func (b *Brain) loadBoard(lines []BoardLine) error {
	own, opp := 0, 0
	for _, l := range lines {
		switch l.Field {
		case FieldOwn:
			own++
		case FieldOpponent:
			opp++
		default:
			return errors.New("continuous games are not supported")
		}
	}
	me := engine.Black
	switch opp - own {
	case 0:
	case 1:
		me = engine.White
	default:
		return errors.Errorf("stone counts %d and %d do not alternate", own, opp)
	}

	board := engine.NewBoard(b.board.Size())
	for _, l := range lines {
		if err := board.CanPlace(l.X, l.Y); err != nil {
			return err
		}
		side := me
		if l.Field == FieldOpponent {
			side = me.Opponent()
		}
		board.PlaceStone(l.X, l.Y, side)
	}
	b.board = board
	return nil
}

func (b *Brain) takeback(arg string) string {
	if b.board == nil {
		return "ERROR no game started"
	}
	m, err := ParseCoord(arg)
	if err != nil {
		return "ERROR " + err.Error()
	}
	last, ok := b.board.LastMove()
	if !ok || last.Move != m {
		return fmt.Sprintf("ERROR %s is not the last move", FormatCoord(m))
	}
	b.board.Undo()
	return "OK"
}

// info records manager settings. Unknown keys are ignored.
func (b *Brain) info(arg string) {
	key, value := splitCommand(arg)
	ms, _ := strconv.Atoi(value)
	switch strings.ToLower(key) {
	case "timeout_turn":
		b.timeoutTurn = time.Duration(ms) * time.Millisecond
	case "time_left":
		b.timeLeft = time.Duration(ms) * time.Millisecond
	case "rule":
		if ms&4 != 0 {
			b.log.Warn().Int("rule", ms).Msg("renju rules requested; playing freestyle")
		}
	}
}

// budget returns the time allowed for the next move.
func (b *Brain) budget() time.Duration {
	d := b.opts.MoveTime
	if b.timeoutTurn > 0 {
		d = b.timeoutTurn * 9 / 10
	}
	if b.timeLeft > 0 && (d == 0 || d > b.timeLeft/10) {
		d = b.timeLeft / 10
	}
	return d
}

// think searches for the side to move, plays the move and returns it.
func (b *Brain) think(ctx context.Context) []string {
	side := b.board.SideToMove()
	res, err := b.engine.Search(ctx, b.board, side, engine.SearchOptions{
		MaxDepth:  b.opts.MaxDepth,
		TimeLimit: b.budget(),
	})
	if err != nil {
		return []string{"ERROR " + err.Error()}
	}
	b.board.PlaceStone(res.Move.X, res.Move.Y, side)
	b.log.Info().
		Str("move", res.Move.String()).
		Int("score", res.Score).
		Int("depth", res.Depth).
		Int64("nodes", res.Nodes).
		Dur("elapsed", res.Elapsed).
		Msg("brain move")

	var replies []string
	if b.opts.Messages {
		replies = append(replies, fmt.Sprintf("MESSAGE depth %d score %d nodes %d", res.Depth, res.Score, res.Nodes))
	}
	return append(replies, FormatCoord(res.Move))
}
