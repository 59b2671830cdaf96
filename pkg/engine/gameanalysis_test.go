package engine

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

// blunderGame is a 9x9 game in which white ignores black's open three.
func blunderGame(t *testing.T) []Placement {
	t.Helper()
	var moves []Placement
	side := Black
	for _, s := range []string{"e5", "a1", "f5", "a9", "g5", "i9", "d5", "c5", "h5"} {
		m, err := ParseMove(s)
		if err != nil {
			t.Fatalf("ParseMove(%q) failed: %v", s, err)
		}
		moves = append(moves, Placement{Move: m, Side: side})
		side = side.Opponent()
	}
	return moves
}

func TestAnalyzeGame(t *testing.T) {
	e := newTestEngine(t, EngineOptions{BoardSize: 9})
	opts := DefaultMatchAnalysisOptions()

	ma, err := e.AnalyzeGame(context.Background(), 9, blunderGame(t), opts)
	if err != nil {
		t.Fatalf("AnalyzeGame failed: %v", err)
	}

	if ma.TotalGames != 1 || ma.TotalMoves != 9 {
		t.Errorf("TotalGames, TotalMoves = %d, %d; want 1, 9", ma.TotalGames, ma.TotalMoves)
	}
	g := ma.GameStats[0]
	if g.Winner != "black" {
		t.Errorf("Winner = %q, want black", g.Winner)
	}
	if g.MoveCount != [2]int{5, 4} {
		t.Errorf("MoveCount = %v, want [5 4]", g.MoveCount)
	}

	white := ma.PlayerStats[1]
	if white.Name != "White" {
		t.Errorf("Name = %q, want White", white.Name)
	}
	if white.Blunders == 0 {
		t.Error("ignoring the open three should be graded a blunder")
	}

	var found bool
	for _, me := range ma.MoveErrors {
		if me.MoveNumber == 6 {
			found = true
			if me.Side != "white" || me.Played != "i9" || me.Skill != SkillVeryBad {
				t.Errorf("move 6 error = %+v", me)
			}
			if me.Best != "d5" && me.Best != "h5" {
				t.Errorf("best reply to the open three = %s, want d5 or h5", me.Best)
			}
		}
	}
	if !found {
		t.Error("move 6 should be reported as an error")
	}
	if white.LossPerMove <= ma.PlayerStats[0].LossPerMove {
		t.Errorf("white loss per move %.1f should exceed black's %.1f", white.LossPerMove, ma.PlayerStats[0].LossPerMove)
	}
}

func TestAnalyzeGameStopsAtFive(t *testing.T) {
	e := newTestEngine(t, EngineOptions{BoardSize: 9})
	moves := append(blunderGame(t), Placement{Move: Move{X: 8, Y: 0}, Side: White})

	ma, err := e.AnalyzeGame(context.Background(), 9, moves, DefaultMatchAnalysisOptions())
	if err != nil {
		t.Fatalf("AnalyzeGame failed: %v", err)
	}
	if ma.TotalMoves != 9 {
		t.Errorf("TotalMoves = %d, want 9", ma.TotalMoves)
	}
}

func TestAnalyzeMatchErrors(t *testing.T) {
	e := newTestEngine(t, EngineOptions{BoardSize: 9})
	opts := DefaultMatchAnalysisOptions()

	if _, err := e.AnalyzeMatch(context.Background(), 2, nil, opts); errors.Cause(err) != ErrBoardSize {
		t.Errorf("size 2: err = %v, want ErrBoardSize", err)
	}

	bad := [][]Placement{{{Move: Move{X: 4, Y: 4}, Side: Empty}}}
	if _, err := e.AnalyzeMatch(context.Background(), 9, bad, opts); errors.Cause(err) != ErrInvalidSide {
		t.Errorf("empty side: err = %v, want ErrInvalidSide", err)
	}

	dup := [][]Placement{{
		{Move: Move{X: 4, Y: 4}, Side: Black},
		{Move: Move{X: 4, Y: 4}, Side: White},
	}}
	if _, err := e.AnalyzeMatch(context.Background(), 9, dup, opts); errors.Cause(err) != ErrOccupied {
		t.Errorf("repeated cell: err = %v, want ErrOccupied", err)
	}
}

func TestFormatMoves(t *testing.T) {
	moves := []Placement{
		{Move: Move{X: 7, Y: 7}, Side: Black},
		{Move: Move{X: 8, Y: 8}, Side: White},
		{Move: Move{X: 0, Y: 14}, Side: Black},
	}
	if got := FormatMoves(moves); got != "h8 i9 a15" {
		t.Errorf("FormatMoves() = %q, want %q", got, "h8 i9 a15")
	}
	if got := FormatMoves(nil); got != "" {
		t.Errorf("FormatMoves(nil) = %q, want empty", got)
	}
}

func TestEncodePositionID(t *testing.T) {
	b := testBoard(t, 9, []string{"e5"}, []string{"d4"})
	id := EncodePositionID(b)
	got, err := BoardFromPositionID(id)
	if err != nil {
		t.Fatalf("BoardFromPositionID failed: %v", err)
	}
	if !got.Equal(b) {
		t.Error("decoded position differs")
	}
}
