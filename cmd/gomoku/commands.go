package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/gomoku/pkg/engine"
	"github.com/yourusername/gomoku/pkg/record"
)

func cmdSelfPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("selfplay", flag.ExitOnError)
	c := addCommonFlags(fs)
	games := fs.Int("games", 10, "Number of games")
	parallel := fs.Int("parallel", 0, "Games played in parallel (0 = all CPUs)")
	seed := fs.Int64("seed", 0, "Random seed (0 = random)")
	opening := fs.Int("opening", 2, "Random opening stones (negative = none)")
	maxMoves := fs.Int("max-moves", 0, "Stop a game as a draw after this many stones (0 = board full)")
	out := fs.String("sgf", "", "Write the games to this SGF file")
	fs.Parse(args)

	e, err := c.engine()
	if err != nil {
		return err
	}

	opts := engine.SelfPlayOptions{
		Games:         *games,
		Workers:       *parallel,
		Seed:          *seed,
		RandomOpening: *opening,
		MaxMoves:      *maxMoves,
		Depth:         *c.depth,
		MoveTime:      time.Duration(*c.timeMS) * time.Millisecond,
		KeepRecords:   *out != "",
	}

	start := time.Now()
	res, err := e.SelfPlay(ctx, opts, func(p engine.SelfPlayProgress) {
		fmt.Fprintf(os.Stderr, "\r%d/%d games (%.0f%%), black wins %.1f%%",
			p.GamesCompleted, p.GamesTotal, p.Percent, p.BlackWinRate*100)
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	fmt.Printf("Self-play (%d games, %.1fs):\n", res.Games, time.Since(start).Seconds())
	fmt.Printf("  Black: %d  White: %d  Draws: %d\n", res.BlackWins, res.WhiteWins, res.Draws)
	fmt.Printf("  Black win rate: %.1f%% ± %.1f%% (95%% CI)\n", res.BlackWinRate*100, res.WinRateCI*100)
	fmt.Printf("  Game length: %.1f ± %.1f stones\n", res.MeanLength, res.LengthStdDev)
	fmt.Printf("  Nodes per move: %.0f ± %.0f\n", res.MeanNodes, res.NodesStdDev)
	fmt.Printf("  Time per move: %.1f ms\n", res.MeanMoveTime)

	if *out == "" {
		return nil
	}
	recs := make([]*record.Record, 0, len(res.Records))
	for _, g := range res.Records {
		rec := record.NewRecord(e.BoardSize())
		rec.Black, rec.White = "gomoku", "gomoku"
		rec.Event = "self-play"
		rec.Comment = fmt.Sprintf("seed %d", g.Seed)
		rec.Moves = g.Moves
		switch g.Winner {
		case engine.Black:
			rec.Result = record.ResultBlackWins
		case engine.White:
			rec.Result = record.ResultWhiteWins
		default:
			rec.Result = record.ResultDraw
		}
		recs = append(recs, rec)
	}
	return writeFile(*out, func(w io.Writer) error { return record.ExportSGF(w, recs...) })
}

func cmdBench(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	c := addCommonFlags(fs)
	category := fs.String("category", "", "Only positions of this category")
	tag := fs.String("tag", "", "Only positions with this tag")
	fs.Parse(args)

	e, err := c.engine()
	if err != nil {
		return err
	}

	db := engine.DefaultPositionDB()
	var solved, total int
	var nodes int64
	start := time.Now()
	for _, p := range db.All() {
		if *category != "" && !strings.EqualFold(p.Category.String(), *category) {
			continue
		}
		if *tag != "" && !containsTag(p.Tags, *tag) {
			continue
		}
		b, err := p.Board()
		if err != nil {
			log.Warn().Err(err).Str("position", p.Name).Msg("skipping position")
			continue
		}
		res, err := e.Search(ctx, b, p.ToMove, c.searchOptions())
		if err != nil {
			return errors.Wrap(err, p.Name)
		}
		total++
		nodes += res.Nodes
		mark := "FAIL"
		if p.Accepts(res.Move) {
			solved++
			mark = "ok"
		}
		fmt.Printf("  %-4s %-32s %-4s depth %d  %8d nodes  %v\n",
			mark, p.Name, res.Move, res.Depth, res.Nodes, res.Elapsed.Round(time.Millisecond))
	}

	elapsed := time.Since(start)
	fmt.Printf("Solved %d/%d positions in %v", solved, total, elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		fmt.Printf(" (%.0f nodes/s)", float64(nodes)/elapsed.Seconds())
	}
	fmt.Println()
	if solved < total {
		return errors.Errorf("%d positions failed", total-solved)
	}
	return nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func cmdSGF(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sgf", flag.ExitOnError)
	in := fs.String("in", "-", "Input file (\"-\" = stdin)")
	out := fs.String("out", "-", "Output file (\"-\" = stdout)")
	from := fs.String("from", "sgf", "Input format: sgf or moves")
	to := fs.String("to", "moves", "Output format: sgf or moves")
	analyze := fs.Bool("analyze", false, "Grade every move instead of converting")
	depth := fs.Int("depth", 0, "Grading depth for -analyze (0 = default)")
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	setupLogging(*verbose)
	recs, err := readRecords(*in, *from)
	if err != nil {
		return err
	}

	if *analyze {
		return analyzeRecords(ctx, recs, *depth)
	}

	return writeFile(*out, func(w io.Writer) error {
		switch *to {
		case "sgf":
			return record.ExportSGF(w, recs...)
		case "moves":
			for i, rec := range recs {
				if i > 0 {
					fmt.Fprintln(w)
				}
				if err := record.WriteMoveList(w, rec); err != nil {
					return err
				}
			}
			return nil
		}
		return errors.Errorf("unknown output format %q", *to)
	})
}

func readRecords(path, format string) ([]*record.Record, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	switch format {
	case "sgf":
		return record.ImportSGF(r)
	case "moves":
		rec, err := record.ReadMoveList(r)
		if err != nil {
			return nil, err
		}
		return []*record.Record{rec}, nil
	}
	return nil, errors.Errorf("unknown input format %q", format)
}

func analyzeRecords(ctx context.Context, recs []*record.Record, depth int) error {
	for i, rec := range recs {
		e, err := engine.NewEngine(engine.EngineOptions{BoardSize: rec.Size})
		if err != nil {
			return err
		}
		opts := engine.DefaultMatchAnalysisOptions()
		if depth > 0 {
			opts.Depth = depth
		}
		if rec.Black != "" {
			opts.BlackName = rec.Black
		}
		if rec.White != "" {
			opts.WhiteName = rec.White
		}

		ma, err := e.AnalyzeGame(ctx, rec.Size, rec.Moves, opts)
		if err != nil {
			return errors.Wrapf(err, "game %d", i+1)
		}
		fmt.Printf("Game %d: %d moves\n", i+1, ma.TotalMoves)
		for _, ps := range ma.PlayerStats {
			fmt.Printf("  %-12s %3d moves  loss/move %7.1f  %-13s  blunders %d  errors %d  doubtful %d\n",
				ps.Name, ps.TotalMoves, ps.LossPerMove, ps.RatingStr, ps.Blunders, ps.Errors, ps.Doubtful)
		}
		for _, me := range ma.MoveErrors {
			fmt.Printf("  %3d. %-5s played %-4s best %-4s loss %6d  %s\n",
				me.MoveNumber, me.Side, me.Played, me.Best, me.Loss, me.SkillStr)
		}
	}
	return nil
}

// writeFile runs fn on path, or on stdout for "-".
func writeFile(path string, fn func(io.Writer) error) error {
	if path == "-" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
