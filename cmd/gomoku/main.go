// gomoku - a free-style gomoku move-search engine
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/gomoku/pkg/engine"
	"github.com/yourusername/gomoku/pkg/record"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	// Ctrl-C stops a long search with its best move so far.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch command {
	case "move":
		err = cmdMove(ctx, args)
	case "eval":
		err = cmdEval(ctx, args)
	case "hint":
		err = cmdHint(ctx, args)
	case "explain":
		err = cmdExplain(ctx, args)
	case "selfplay":
		err = cmdSelfPlay(ctx, args)
	case "bench":
		err = cmdBench(ctx, args)
	case "sgf":
		err = cmdSGF(ctx, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		stop()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gomoku - Free-style Gomoku Engine

Usage: gomoku <command> [options]

Commands:
  move      Search for the best move
  eval      Evaluate a position statically
  hint      Rank candidate moves
  explain   Show the threats through a cell or in a literal line
  selfplay  Play engine-versus-engine games
  bench     Solve the built-in tactical positions
  sgf       Convert or analyze a game record

Use "gomoku <command> -h" for command-specific help.

Positions:
  -moves "h8 i9 h9"   a move list, Black first ("x,y" pairs work too)
  -position <id>      a position ID as returned by the API
  -board <file>       a text board of '.', 'X' and 'O' rows ("-" for stdin)`)
}

// commonFlags are shared by the commands that take a position.
type commonFlags struct {
	moves    *string
	position *string
	board    *string
	size     *int
	side     *string
	depth    *int
	timeMS   *int
	workers  *int
	verbose  *bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		moves:    fs.String("moves", "", "Move list (e.g. \"h8 i9 h9\")"),
		position: fs.String("position", "", "Position ID"),
		board:    fs.String("board", "", "Text board file (\"-\" = stdin)"),
		size:     fs.Int("size", engine.DefaultBoardSize, "Board size"),
		side:     fs.String("side", "", "Side to move (default: from stone counts)"),
		depth:    fs.Int("depth", 0, "Search depth in plies (0 = engine default)"),
		timeMS:   fs.Int("time", 0, "Time budget in milliseconds (0 = none)"),
		workers:  fs.Int("workers", 1, "Root search workers (negative = all CPUs)"),
		verbose:  fs.Bool("v", false, "Log search iterations"),
	}
}

// setupLogging sends human-readable logs to stderr.
func setupLogging(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	return log.Logger
}

func (c *commonFlags) engine() (*engine.Engine, error) {
	logger := setupLogging(*c.verbose)
	e, err := engine.NewEngine(engine.EngineOptions{
		BoardSize: *c.size,
		MaxDepth:  *c.depth,
		Workers:   *c.workers,
		Logger:    &logger,
	})
	return e, errors.Wrap(err, "creating engine")
}

// resolve returns the board and side to move from the flags.
func (c *commonFlags) resolve() (*engine.Board, engine.Stone, error) {
	var b *engine.Board
	var err error
	switch {
	case *c.board != "":
		b, err = readBoardFile(*c.board)
	case *c.position != "":
		b, err = engine.BoardFromPositionID(*c.position)
	case *c.moves != "":
		var rec *record.Record
		if rec, err = record.ParseMoveList(*c.size, *c.moves); err == nil {
			b, err = rec.Board()
		}
	default:
		b = engine.NewBoard(*c.size)
	}
	if err != nil {
		return nil, engine.Empty, errors.Wrap(err, "reading position")
	}

	side := b.SideToMove()
	if *c.side != "" {
		if side, err = engine.ParseSide(*c.side); err != nil {
			return nil, engine.Empty, err
		}
	}
	return b, side, nil
}

func readBoardFile(path string) (*engine.Board, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return engine.ParseBoard(string(data))
}

func (c *commonFlags) searchOptions() engine.SearchOptions {
	return engine.SearchOptions{
		MaxDepth:  *c.depth,
		TimeLimit: time.Duration(*c.timeMS) * time.Millisecond,
	}
}

// printBoard prints b with column letters and 1-based row numbers.
func printBoard(w io.Writer, b *engine.Board, mark engine.Move) {
	n := b.Size()
	fmt.Fprint(w, "   ")
	for x := 0; x < n; x++ {
		fmt.Fprintf(w, " %c", 'a'+x)
	}
	fmt.Fprintln(w)
	for y := n - 1; y >= 0; y-- {
		fmt.Fprintf(w, "%3d", y+1)
		for x := 0; x < n; x++ {
			sep := " "
			if x == mark.X && y == mark.Y {
				sep = "["
			} else if x == mark.X+1 && y == mark.Y {
				sep = "]"
			}
			fmt.Fprint(w, sep+b.At(x, y).String())
		}
		if mark.X == n-1 && mark.Y == y {
			fmt.Fprint(w, "]")
		}
		fmt.Fprintln(w)
	}
}

func cmdMove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("move", flag.ExitOnError)
	c := addCommonFlags(fs)
	show := fs.Bool("show", false, "Print the board with the move marked")
	fs.Parse(args)

	e, err := c.engine()
	if err != nil {
		return err
	}
	b, side, err := c.resolve()
	if err != nil {
		return err
	}

	opts := c.searchOptions()
	opts.Progress = func(info engine.IterationInfo) {
		log.Debug().Int("depth", info.Depth).Int("score", info.Score).
			Str("move", info.Move.String()).Int64("nodes", info.Nodes).Msg("iteration")
	}
	res, err := e.Search(ctx, b, side, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Best move for %s: %s (%d,%d)\n", side.Name(), res.Move, res.Move.X, res.Move.Y)
	fmt.Printf("  Score: %d", res.Score)
	switch {
	case res.IsWin():
		fmt.Print(" (forced win)")
	case res.IsLoss():
		fmt.Print(" (forced loss)")
	}
	fmt.Println()
	fmt.Printf("  Depth: %d  Nodes: %d  Cache hits: %d  Time: %v\n",
		res.Depth, res.Nodes, res.CacheHits, res.Elapsed.Round(time.Millisecond))
	if res.FromBook {
		fmt.Println("  (opening book)")
	}
	if res.Aborted {
		fmt.Println("  (time budget ran out)")
	}
	if *show {
		b.PlaceStone(res.Move.X, res.Move.Y, side)
		printBoard(os.Stdout, b, res.Move)
	}
	return nil
}

func cmdEval(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	c := addCommonFlags(fs)
	fs.Parse(args)

	e, err := c.engine()
	if err != nil {
		return err
	}
	b, side, err := c.resolve()
	if err != nil {
		return err
	}

	ev, err := e.Evaluate(b, side)
	if err != nil {
		return err
	}
	printEvaluation(ev)
	fmt.Printf("  Position ID: %s\n", b.PositionID())
	return nil
}

func printEvaluation(ev *engine.Evaluation) {
	fmt.Printf("Evaluation for %s: %+d (mine %d, opponent %d)\n", ev.Side.Name(), ev.Score, ev.Mine, ev.Opponent)
	if ev.Win {
		fmt.Println("  Five in a row: win")
	} else if ev.Loss {
		fmt.Println("  Opponent has five in a row: loss")
	}
	fmt.Printf("  %-14s %6s %6s\n", "Threat", "Mine", "Opp")
	for t := engine.Five; t >= engine.BlockedTwo; t-- {
		if ev.MyThreat[t] == 0 && ev.OpThreat[t] == 0 {
			continue
		}
		fmt.Printf("  %-14s %6d %6d\n", t, ev.MyThreat[t], ev.OpThreat[t])
	}
}

func cmdHint(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("hint", flag.ExitOnError)
	c := addCommonFlags(fs)
	n := fs.Int("n", 5, "Number of moves to show")
	search := fs.Bool("search", false, "Search each move to -depth instead of ranking by point score")
	fs.Parse(args)

	e, err := c.engine()
	if err != nil {
		return err
	}
	b, side, err := c.resolve()
	if err != nil {
		return err
	}

	if !*search {
		cands, err := e.Hints(b, side, *n)
		if err != nil {
			return err
		}
		fmt.Printf("Candidate moves for %s:\n", side.Name())
		for i, cand := range cands {
			fmt.Printf("  %d. %-4s  point score %6d  (attack %d, defense %d)\n",
				i+1, cand.Move, cand.Score, cand.Mine, cand.Opponent)
		}
		return nil
	}

	depth := *c.depth
	if depth <= 0 {
		depth = e.MaxDepth()
	}
	res, err := e.AnalyzePosition(ctx, b, side, *n, depth)
	if err != nil {
		return err
	}
	fmt.Printf("Moves for %s searched to depth %d:\n", side.Name(), res.Depth)
	for i, m := range res.Moves {
		fmt.Printf("  %d. %-4s  score %7d  point score %6d\n", i+1, m.Move, m.Score, m.PointScore)
	}
	return nil
}

func cmdExplain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	c := addCommonFlags(fs)
	at := fs.String("at", "", "Cell whose stone to explain (e.g. h8)")
	line := fs.String("line", "", "Literal line to classify, e.g. \".XX.X..\" (X = the side analyzed)")
	index := fs.Int("index", -1, "Index of the run to classify in -line (default: first X)")
	fs.Parse(args)

	if *line != "" {
		return explainLine(*line, *index)
	}
	if *at == "" {
		return errors.New("explain needs -at or -line")
	}

	b, _, err := c.resolve()
	if err != nil {
		return err
	}
	m, err := engine.ParseMove(*at)
	if err != nil {
		return err
	}
	if !b.InBounds(m.X, m.Y) {
		return errors.Wrapf(engine.ErrOutOfRange, "%s", m)
	}
	stone := b.At(m.X, m.Y)
	if stone == engine.Empty {
		return errors.Errorf("%s is empty", m)
	}

	fmt.Printf("Threats through %s (%s):\n", m, stone.Name())
	for d, counts := range engine.LineThreats(b, m.X, m.Y) {
		fmt.Printf("  %-14s %s\n", engine.DirectionName(d), formatCounts(counts))
	}
	return nil
}

func explainLine(s string, index int) error {
	cells := make([]engine.Stone, 0, len(s))
	for _, r := range s {
		switch r {
		case 'x', 'X':
			cells = append(cells, engine.Black)
		case 'o', 'O':
			cells = append(cells, engine.White)
		case '.', '_', '-':
			cells = append(cells, engine.Empty)
		default:
			return errors.Errorf("line: unexpected %q", r)
		}
	}
	if index < 0 {
		index = strings.IndexAny(strings.ToUpper(s), "X")
	}
	if index < 0 || index >= len(cells) || cells[index] != engine.Black {
		return errors.New("line: -index must point at an X")
	}
	fmt.Printf("%s: %s\n", s, formatCounts(engine.ClassifyLine(cells, index, engine.Black)))
	return nil
}

func formatCounts(c engine.ThreatCounts) string {
	var parts []string
	for t := engine.Five; t >= engine.BlockedTwo; t-- {
		if c[t] > 0 {
			parts = append(parts, fmt.Sprintf("%s x%d", t, c[t]))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
