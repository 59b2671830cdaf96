package engine

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// maxRandomOpening caps the random stones placed before engine play.
const maxRandomOpening = 10

// SelfPlayOptions controls engine-versus-engine games
type SelfPlayOptions struct {
	Games         int           // Number of games (default 10)
	Workers       int           // Games played in parallel (0 = GOMAXPROCS)
	Seed          int64         // RNG seed (0 = use current time)
	RandomOpening int           // Random stones placed near the center before the engines play (0 = 2, negative = none)
	MaxMoves      int           // Stop a game as a draw after this many stones (0 = board full)
	Depth         int           // Search depth per move (0 = engine default)
	MoveTime      time.Duration // Time budget per move (0 = engine default)
	KeepRecords   bool          // Return every game's move list
}

// SelfPlayProgress contains progress information during self-play
type SelfPlayProgress struct {
	GamesCompleted int     `json:"games_completed"`
	GamesTotal     int     `json:"games_total"`
	Percent        float64 `json:"percent"`
	BlackWinRate   float64 `json:"black_win_rate"`
}

// SelfPlayCallback is called after every finished game
type SelfPlayCallback func(progress SelfPlayProgress)

// GameRecord is one finished self-play game.
type GameRecord struct {
	Seed   int64       `json:"seed"`
	Moves  []Placement `json:"moves"`
	Winner Stone       `json:"winner"` // Empty for a draw
}

// SelfPlayResult contains the results of a self-play run
type SelfPlayResult struct {
	Games     int `json:"games"`
	BlackWins int `json:"black_wins"`
	WhiteWins int `json:"white_wins"`
	Draws     int `json:"draws"`

	BlackWinRate float64 `json:"black_win_rate"`
	WinRateCI    float64 `json:"win_rate_ci"` // 95% confidence interval half-width

	MeanLength   float64 `json:"mean_length"` // Stones per game
	LengthStdDev float64 `json:"length_stddev"`
	MeanNodes    float64 `json:"mean_nodes"` // Nodes per engine move
	NodesStdDev  float64 `json:"nodes_stddev"`
	MeanMoveTime float64 `json:"mean_move_ms"`

	Records []GameRecord `json:"records,omitempty"`
}

// gameStats holds the measurements of a single game
type gameStats struct {
	record    GameRecord
	nodes     []float64
	moveTimes []float64
}

// DefaultSelfPlayOptions returns sensible defaults
func DefaultSelfPlayOptions() SelfPlayOptions {
	return SelfPlayOptions{
		Games:         10,
		Workers:       0,
		Seed:          0,
		RandomOpening: 2,
		Depth:         0,
	}
}

// SelfPlay plays engine-versus-engine games from seeded random openings
// and reports outcome and search statistics.
func (e *Engine) SelfPlay(ctx context.Context, opts SelfPlayOptions, callback SelfPlayCallback) (*SelfPlayResult, error) {
	if opts.Games <= 0 {
		opts.Games = 10
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Seed == 0 {
		opts.Seed = rand.Int63()
	}
	if opts.RandomOpening == 0 {
		opts.RandomOpening = 2
	} else if opts.RandomOpening < 0 {
		opts.RandomOpening = 0
	} else if opts.RandomOpening > maxRandomOpening {
		opts.RandomOpening = maxRandomOpening
	}

	games := make([]gameStats, opts.Games)
	var mu sync.Mutex
	completed, blackWins := 0, 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := 0; i < opts.Games; i++ {
		i := i
		seed := opts.Seed + int64(i)*1000003
		g.Go(func() error {
			gs, err := e.playGame(gctx, seed, opts)
			if err != nil {
				return errors.Wrapf(err, "game %d", i+1)
			}
			games[i] = gs

			mu.Lock()
			defer mu.Unlock()
			completed++
			if gs.record.Winner == Black {
				blackWins++
			}
			if callback != nil {
				callback(SelfPlayProgress{
					GamesCompleted: completed,
					GamesTotal:     opts.Games,
					Percent:        float64(completed) / float64(opts.Games) * 100,
					BlackWinRate:   float64(blackWins) / float64(completed),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return aggregateSelfPlay(games, opts.KeepRecords), nil
}

// playGame plays one game on a fresh board.
func (e *Engine) playGame(ctx context.Context, seed int64, opts SelfPlayOptions) (gameStats, error) {
	rng := rand.New(rand.NewSource(seed))
	b := e.NewBoard()
	gs := gameStats{record: GameRecord{Seed: seed}}

	maxMoves := opts.MaxMoves
	if maxMoves <= 0 || maxMoves > b.size*b.size {
		maxMoves = b.size * b.size
	}

	side := Black
	for b.stones < opts.RandomOpening && b.stones < maxMoves {
		m := randomOpeningMove(b, rng)
		b.PlaceStone(m.X, m.Y, side)
		if IsWinningPosition(b, side) {
			gs.record.Winner = side
			gs.record.Moves = b.History()
			return gs, nil
		}
		side = side.Opponent()
	}

	for b.stones < maxMoves {
		if err := ctx.Err(); err != nil {
			return gs, err
		}
		res, err := e.Search(ctx, b, side, SearchOptions{MaxDepth: opts.Depth, TimeLimit: opts.MoveTime})
		if err != nil {
			return gs, err
		}
		b.PlaceStone(res.Move.X, res.Move.Y, side)
		gs.nodes = append(gs.nodes, float64(res.Nodes))
		gs.moveTimes = append(gs.moveTimes, float64(res.Elapsed)/float64(time.Millisecond))

		if IsWinningPosition(b, side) {
			gs.record.Winner = side
			break
		}
		side = side.Opponent()
	}

	gs.record.Moves = b.History()
	return gs, nil
}

// randomOpeningMove picks an empty cell within two cells of the center.
func randomOpeningMove(b *Board, rng *rand.Rand) Move {
	c := b.Center()
	if b.stones == 0 {
		return c
	}
	var free []Move
	for y := c.Y - 2; y <= c.Y+2; y++ {
		for x := c.X - 2; x <= c.X+2; x++ {
			if b.InBounds(x, y) && b.At(x, y) == Empty {
				free = append(free, Move{X: x, Y: y})
			}
		}
	}
	return free[rng.Intn(len(free))]
}

// aggregateSelfPlay combines the per-game measurements.
func aggregateSelfPlay(games []gameStats, keepRecords bool) *SelfPlayResult {
	res := &SelfPlayResult{Games: len(games)}

	lengths := make([]float64, 0, len(games))
	var nodes, times []float64
	for _, g := range games {
		switch g.record.Winner {
		case Black:
			res.BlackWins++
		case White:
			res.WhiteWins++
		default:
			res.Draws++
		}
		lengths = append(lengths, float64(len(g.record.Moves)))
		nodes = append(nodes, g.nodes...)
		times = append(times, g.moveTimes...)
		if keepRecords {
			res.Records = append(res.Records, g.record)
		}
	}

	if res.Games > 0 {
		p := float64(res.BlackWins) / float64(res.Games)
		res.BlackWinRate = p
		res.WinRateCI = 1.96 * math.Sqrt(p*(1-p)/float64(res.Games))
	}
	if len(lengths) > 1 {
		res.MeanLength, res.LengthStdDev = stat.MeanStdDev(lengths, nil)
	} else if len(lengths) == 1 {
		res.MeanLength = lengths[0]
	}
	if len(nodes) > 1 {
		res.MeanNodes, res.NodesStdDev = stat.MeanStdDev(nodes, nil)
	} else if len(nodes) == 1 {
		res.MeanNodes = nodes[0]
	}
	if len(times) > 0 {
		res.MeanMoveTime = stat.Mean(times, nil)
	}
	return res
}
