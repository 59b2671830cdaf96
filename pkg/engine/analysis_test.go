package engine

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

func TestHints(t *testing.T) {
	e := newTestEngine(t, EngineOptions{})
	b := testBoard(t, 15, []string{"f8", "g8", "h8", "i8"}, []string{"f9", "g9", "h9", "c3"})

	hints, err := e.Hints(b, Black, 3)
	if err != nil {
		t.Fatalf("Hints failed: %v", err)
	}
	if len(hints) != 3 {
		t.Fatalf("got %d hints, want 3", len(hints))
	}
	if hints[0].Move != (Move{X: 4, Y: 7}) || hints[1].Move != (Move{X: 9, Y: 7}) {
		t.Errorf("top hints = %v, %v; want e8, j8", hints[0].Move, hints[1].Move)
	}
	if hints[2].Score >= ScoreFive {
		t.Errorf("third hint scores %d, only two cells make five", hints[2].Score)
	}

	all, err := e.Hints(b, Black, 0)
	if err != nil {
		t.Fatalf("Hints failed: %v", err)
	}
	if len(all) <= 3 {
		t.Errorf("Hints(n=0) returned %d, want every candidate", len(all))
	}

	if _, err := e.Hints(b, Empty, 3); errors.Cause(err) != ErrInvalidSide {
		t.Errorf("Hints(Empty): err = %v, want ErrInvalidSide", err)
	}
}

func TestAnalyzePosition(t *testing.T) {
	e := newTestEngine(t, EngineOptions{})
	b := testBoard(t, 15, []string{"f8", "g8", "h8", "i8"}, []string{"e8", "g10", "k4"})

	res, err := e.AnalyzePosition(context.Background(), b, White, 5, 2)
	if err != nil {
		t.Fatalf("AnalyzePosition failed: %v", err)
	}
	if res.NumMoves != 5 || len(res.Moves) != 5 {
		t.Fatalf("NumMoves = %d, len(Moves) = %d; want 5", res.NumMoves, len(res.Moves))
	}
	if res.BestMove != (Move{X: 9, Y: 7}) {
		t.Errorf("BestMove = %v, want j8", res.BestMove)
	}
	for i := 1; i < len(res.Moves); i++ {
		if res.Moves[i].Score > res.Moves[i-1].Score {
			t.Errorf("moves not ranked at %d", i)
		}
	}
	// Any move other than the block lets black make five.
	if res.Moves[1].Score > -WinScore {
		t.Errorf("second move scores %d, want a loss", res.Moves[1].Score)
	}
}

func TestLineThreats(t *testing.T) {
	b := testBoard(t, 15, []string{"f8", "g8", "h8", "h9", "h10"}, nil)
	lines := LineThreats(b, 7, 7)

	if lines[0][OpenThree] != 1 {
		t.Errorf("%s: %v, want an open three", DirectionName(0), lines[0])
	}
	if lines[1][OpenThree] != 1 {
		t.Errorf("%s: %v, want an open three", DirectionName(1), lines[1])
	}
	if lines[2] != (ThreatCounts{}) || lines[3] != (ThreatCounts{}) {
		t.Errorf("diagonals = %v, %v; want nothing", lines[2], lines[3])
	}

	if got := LineThreats(b, 0, 0); got != ([4]ThreatCounts{}) {
		t.Errorf("LineThreats on an empty cell = %v", got)
	}
}
