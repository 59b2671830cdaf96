package engine

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
)

// newTestEngine creates an engine for tests; the opening book and the
// early-game depth override are off so results depend only on the search.
func newTestEngine(t *testing.T, opts EngineOptions) *Engine {
	t.Helper()
	opts.DisableBook = true
	if opts.EarlyGameStones == 0 {
		opts.EarlyGameStones = -1
	}
	e, err := NewEngine(opts)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

// Middlegame positions on a 9x9 board, black to move.
var searchPositions = []struct {
	name         string
	black, white []string
}{
	{"cluster", []string{"e5", "f5", "d6", "f6"}, []string{"e6", "e4", "g5", "d4"}},
	{"diagonal", []string{"c3", "d4", "f5", "e6"}, []string{"e5", "d5", "c6", "f4"}},
	{"black three", []string{"d5", "e5", "f5", "b2"}, []string{"d4", "e4", "h8", "a9"}},
}

func TestIterationDepths(t *testing.T) {
	tests := []struct {
		max  int
		want []int
	}{
		{1, []int{1}},
		{2, []int{2}},
		{3, []int{2, 3}},
		{4, []int{2, 4}},
		{5, []int{2, 4, 5}},
		{6, []int{2, 4, 6}},
	}
	for _, tt := range tests {
		got := iterationDepths(tt.max)
		if len(got) != len(tt.want) {
			t.Errorf("iterationDepths(%d) = %v, want %v", tt.max, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("iterationDepths(%d) = %v, want %v", tt.max, got, tt.want)
				break
			}
		}
	}
}

func TestSearchEmptyBoard(t *testing.T) {
	e := newTestEngine(t, EngineOptions{})
	if got := e.FindBestMove(NewBoard(15), Black, 4); got != (Move{X: 7, Y: 7}) {
		t.Errorf("FindBestMove(empty 15x15) = %v, want h8", got)
	}
	if got := e.FindBestMove(NewBoard(9), Black, 4); got != (Move{X: 4, Y: 4}) {
		t.Errorf("FindBestMove(empty 9x9) = %v, want e5", got)
	}
}

func TestSearchCompletesOpenFour(t *testing.T) {
	e := newTestEngine(t, EngineOptions{})
	b := testBoard(t, 15, []string{"f8", "g8", "h8", "i8"}, []string{"f9", "g9", "h9", "c3"})

	res, err := e.Search(context.Background(), b, Black, SearchOptions{MaxDepth: 4})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if res.Move != (Move{X: 4, Y: 7}) && res.Move != (Move{X: 9, Y: 7}) {
		t.Errorf("Move = %v, want e8 or j8", res.Move)
	}
	if !res.IsWin() {
		t.Errorf("Score = %d, want at least %d", res.Score, WinScore)
	}
	if res.Depth != 2 {
		t.Errorf("Depth = %d, want 2 (a proven win stops deepening)", res.Depth)
	}

	b.PlaceStone(res.Move.X, res.Move.Y, Black)
	if !IsWinningPosition(b, Black) {
		t.Error("playing the move should make five")
	}
}

func TestSearchBlocksFour(t *testing.T) {
	e := newTestEngine(t, EngineOptions{})
	b := testBoard(t, 15, []string{"f8", "g8", "h8", "i8"}, []string{"e8", "g10", "k4"})

	got := e.FindBestMove(b, White, 4)
	if got != (Move{X: 9, Y: 7}) {
		t.Errorf("FindBestMove(White) = %v, want j8", got)
	}
}

func TestSearchDoesNotModifyBoard(t *testing.T) {
	e := newTestEngine(t, EngineOptions{BoardSize: 9})
	p := searchPositions[0]
	b := testBoard(t, 9, p.black, p.white)
	before, hash := b.String(), b.Hash()

	if _, err := e.Search(context.Background(), b, Black, SearchOptions{MaxDepth: 2}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if b.String() != before || b.Hash() != hash || len(b.History()) != 8 {
		t.Error("Search modified the board")
	}
}

func TestSearchErrors(t *testing.T) {
	e := newTestEngine(t, EngineOptions{})

	won := testBoard(t, 15, []string{"a1", "b1", "c1", "d1", "e1"}, []string{"a2", "b2", "c2", "d2"})
	if _, err := e.Search(context.Background(), won, White, SearchOptions{}); errors.Cause(err) != ErrGameOver {
		t.Errorf("Search on a decided board: err = %v, want ErrGameOver", err)
	}

	full, err := ParseBoard("XXOOX\nOOXXO\nXXOOX\nOOXXO\nXXOOX\n")
	if err != nil {
		t.Fatalf("ParseBoard failed: %v", err)
	}
	if _, err := e.Search(context.Background(), full, White, SearchOptions{}); errors.Cause(err) != ErrBoardFull {
		t.Errorf("Search on a full board: err = %v, want ErrBoardFull", err)
	}

	if _, err := e.Search(context.Background(), NewBoard(15), Empty, SearchOptions{}); errors.Cause(err) != ErrInvalidSide {
		t.Errorf("Search for Empty: err = %v, want ErrInvalidSide", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("FindBestMove on a full board should panic")
		}
	}()
	e.FindBestMove(full, White, 2)
}

func TestSearchPruningMatchesFullWidth(t *testing.T) {
	for _, depth := range []int{2, 3} {
		for _, p := range searchPositions {
			b := testBoard(t, 9, p.black, p.white)

			pruned := newTestEngine(t, EngineOptions{BoardSize: 9, CacheSize: -1})
			full := newTestEngine(t, EngineOptions{BoardSize: 9, CacheSize: -1, DisablePruning: true})

			a, err := pruned.Search(context.Background(), b, Black, SearchOptions{MaxDepth: depth})
			if err != nil {
				t.Fatalf("%s: Search failed: %v", p.name, err)
			}
			f, err := full.Search(context.Background(), b, Black, SearchOptions{MaxDepth: depth})
			if err != nil {
				t.Fatalf("%s: full-width Search failed: %v", p.name, err)
			}

			t.Logf("%s depth %d: pruned %v/%d (%d nodes), full %v/%d (%d nodes)",
				p.name, depth, a.Move, a.Score, a.Nodes, f.Move, f.Score, f.Nodes)

			if a.Move != f.Move || a.Score != f.Score {
				t.Errorf("%s depth %d: pruned %v/%d, full width %v/%d", p.name, depth, a.Move, a.Score, f.Move, f.Score)
			}
			if a.Nodes > f.Nodes {
				t.Errorf("%s depth %d: pruning visited more nodes (%d > %d)", p.name, depth, a.Nodes, f.Nodes)
			}
		}
	}
}

func TestSearchCacheIsTransparent(t *testing.T) {
	for _, p := range searchPositions {
		b := testBoard(t, 9, p.black, p.white)

		cached := newTestEngine(t, EngineOptions{BoardSize: 9})
		plain := newTestEngine(t, EngineOptions{BoardSize: 9, CacheSize: -1})

		a, err := cached.Search(context.Background(), b, Black, SearchOptions{MaxDepth: 4})
		if err != nil {
			t.Fatalf("%s: Search failed: %v", p.name, err)
		}
		n, err := plain.Search(context.Background(), b, Black, SearchOptions{MaxDepth: 4})
		if err != nil {
			t.Fatalf("%s: uncached Search failed: %v", p.name, err)
		}

		t.Logf("%s: cache hits %d, nodes %d vs %d", p.name, a.CacheHits, a.Nodes, n.Nodes)

		if a.Move != n.Move || a.Score != n.Score {
			t.Errorf("%s: cached %v/%d, uncached %v/%d", p.name, a.Move, a.Score, n.Move, n.Score)
		}
		if n.CacheHits != 0 {
			t.Errorf("%s: uncached search reported %d cache hits", p.name, n.CacheHits)
		}
	}
}

func TestSearchParallelMatchesSequential(t *testing.T) {
	for _, p := range searchPositions {
		b := testBoard(t, 9, p.black, p.white)

		seq := newTestEngine(t, EngineOptions{BoardSize: 9})
		par := newTestEngine(t, EngineOptions{BoardSize: 9, Workers: 3})

		a, err := seq.Search(context.Background(), b, Black, SearchOptions{MaxDepth: 3})
		if err != nil {
			t.Fatalf("%s: Search failed: %v", p.name, err)
		}
		c, err := par.Search(context.Background(), b, Black, SearchOptions{MaxDepth: 3})
		if err != nil {
			t.Fatalf("%s: parallel Search failed: %v", p.name, err)
		}

		if a.Move != c.Move || a.Score != c.Score {
			t.Errorf("%s: sequential %v/%d, parallel %v/%d", p.name, a.Move, a.Score, c.Move, c.Score)
		}
		if c.Depth != 3 {
			t.Errorf("%s: parallel Depth = %d, want 3", p.name, c.Depth)
		}
		// Every position has stones sharing a line, so leaf scans skip.
		if a.ScanSkips == 0 || c.ScanSkips == 0 {
			t.Errorf("%s: ScanSkips sequential %d, parallel %d, want both > 0", p.name, a.ScanSkips, c.ScanSkips)
		}
		if c.Nodes == 0 {
			t.Errorf("%s: parallel Nodes = 0", p.name)
		}
	}
}

func TestSearchProgress(t *testing.T) {
	e := newTestEngine(t, EngineOptions{BoardSize: 9, MaxDepth: 3})
	p := searchPositions[1]
	b := testBoard(t, 9, p.black, p.white)

	var depths []int
	res, err := e.Search(context.Background(), b, Black, SearchOptions{
		Progress: func(info IterationInfo) {
			depths = append(depths, info.Depth)
		},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(depths) != 2 || depths[0] != 2 || depths[1] != 3 {
		t.Errorf("progress depths = %v, want [2 3]", depths)
	}
	if len(res.Iterations) != len(depths) {
		t.Errorf("Iterations has %d entries, want %d", len(res.Iterations), len(depths))
	}
	if last := res.Iterations[len(res.Iterations)-1]; last.Move != res.Move || last.Score != res.Score {
		t.Errorf("result %v/%d differs from last iteration %v/%d", res.Move, res.Score, last.Move, last.Score)
	}
	if res.Nodes == 0 {
		t.Error("Nodes should be counted")
	}
}

func TestSearchEarlyGameUsesFullDepth(t *testing.T) {
	e, err := NewEngine(EngineOptions{BoardSize: 9, MaxDepth: 3, DisableBook: true})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	b := testBoard(t, 9, []string{"e5", "d4"}, []string{"e4", "f6"})

	res, err := e.Search(context.Background(), b, Black, SearchOptions{MaxDepth: 1})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if res.Depth != 3 {
		t.Errorf("Depth = %d, want 3 with few stones on the board", res.Depth)
	}
}

func TestSearchTimeLimit(t *testing.T) {
	e := newTestEngine(t, EngineOptions{BoardSize: 9})
	p := searchPositions[0]
	b := testBoard(t, 9, p.black, p.white)

	res, err := e.Search(context.Background(), b, Black, SearchOptions{MaxDepth: 4, TimeLimit: time.Nanosecond})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !res.Aborted {
		t.Error("Aborted should be set when the budget is exhausted")
	}
	if err := b.CanPlace(res.Move.X, res.Move.Y); err != nil {
		t.Errorf("fallback move %v is not playable: %v", res.Move, err)
	}
}

func TestSearchCancelled(t *testing.T) {
	e := newTestEngine(t, EngineOptions{BoardSize: 9, Workers: 2})
	p := searchPositions[2]
	b := testBoard(t, 9, p.black, p.white)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Search(ctx, b, Black, SearchOptions{MaxDepth: 4})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !res.Aborted || res.Depth != 0 {
		t.Errorf("Aborted = %v, Depth = %d; want true, 0", res.Aborted, res.Depth)
	}
	if err := b.CanPlace(res.Move.X, res.Move.Y); err != nil {
		t.Errorf("fallback move %v is not playable: %v", res.Move, err)
	}
}

func TestScoreMoves(t *testing.T) {
	e := newTestEngine(t, EngineOptions{})
	b := testBoard(t, 15, []string{"f8", "g8", "h8", "i8"}, []string{"f9", "g9", "h9", "c3"})

	scores, err := e.ScoreMoves(context.Background(), b, Black, []Move{{X: 4, Y: 7}, {X: 0, Y: 0}}, 1)
	if err != nil {
		t.Fatalf("ScoreMoves failed: %v", err)
	}
	if scores[0] != ScoreFive {
		t.Errorf("score of e8 = %d, want %d", scores[0], ScoreFive)
	}
	if scores[1] != scoreOppFour {
		t.Errorf("score of a1 = %d, want %d", scores[1], scoreOppFour)
	}

	if _, err := e.ScoreMoves(context.Background(), b, Black, []Move{{X: 5, Y: 7}}, 1); errors.Cause(err) != ErrOccupied {
		t.Errorf("ScoreMoves on an occupied cell: err = %v, want ErrOccupied", err)
	}
}

func BenchmarkSearchDepth4(b *testing.B) {
	e, err := NewEngine(EngineOptions{DisableBook: true})
	if err != nil {
		b.Fatalf("NewEngine failed: %v", err)
	}
	board := NewBoard(15)
	for _, p := range []Placement{
		{Move{7, 7}, Black}, {Move{8, 8}, White}, {Move{8, 7}, Black},
		{Move{6, 7}, White}, {Move{7, 8}, Black}, {Move{7, 6}, White},
		{Move{9, 6}, Black}, {Move{6, 9}, White},
	} {
		board.PlaceStone(p.X, p.Y, p.Side)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Search(context.Background(), board, Black, SearchOptions{MaxDepth: 4}); err != nil {
			b.Fatalf("Search failed: %v", err)
		}
	}
}
