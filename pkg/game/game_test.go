package game

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/yourusername/gomoku/pkg/engine"
	"github.com/yourusername/gomoku/pkg/record"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.NewEngine(engine.EngineOptions{BoardSize: 9, MaxDepth: 2, DisableBook: true})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func mustMove(t *testing.T, s string) engine.Move {
	t.Helper()
	m, err := engine.ParseMove(s)
	if err != nil {
		t.Fatalf("ParseMove(%q) failed: %v", s, err)
	}
	return m
}

// whiteFourRecord has White to move with an open four on e5-e8.
func whiteFourRecord(t *testing.T) *record.Record {
	t.Helper()
	rec, err := record.ParseMoveList(9, "a1 e5 c1 e6 g1 e7 a9 e8 c9")
	if err != nil {
		t.Fatalf("ParseMoveList failed: %v", err)
	}
	return rec
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeHumanVsAI, false},
		{"human-vs-human", ModeHumanVsHuman, false},
		{"PVP", ModeHumanVsHuman, false},
		{"human-vs-ai", ModeHumanVsAI, false},
		{"ai-vs-ai", ModeAIVsAI, false},
		{"chess", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if ModeAIVsAI.String() != "ai-vs-ai" || Mode(9).String() != "unknown" {
		t.Error("unexpected mode names")
	}
}

func TestNewGameOptions(t *testing.T) {
	g, err := New("a", Options{Mode: ModeHumanVsAI})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if g.Board().Size() != engine.DefaultBoardSize {
		t.Errorf("Size = %d, want %d", g.Board().Size(), engine.DefaultBoardSize)
	}
	if g.AISide != engine.White {
		t.Errorf("AISide = %v, want white", g.AISide.Name())
	}

	g, err = New("b", Options{Size: 9, Mode: ModeHumanVsAI, AIFirst: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if g.AISide != engine.Black || !g.AIToMove() {
		t.Errorf("AISide = %v, AIToMove = %v; want black, true", g.AISide.Name(), g.AIToMove())
	}

	if _, err := New("c", Options{Size: 3}); errors.Cause(err) != engine.ErrBoardSize {
		t.Errorf("size 3: err = %v, want ErrBoardSize", err)
	}
	if _, err := New("d", Options{Mode: Mode(7)}); errors.Cause(err) != ErrInvalidMode {
		t.Errorf("mode 7: err = %v, want ErrInvalidMode", err)
	}
}

func TestPlayHumanVsHuman(t *testing.T) {
	g, _ := New("g", Options{Size: 9, Mode: ModeHumanVsHuman})

	p, err := g.Play(mustMove(t, "e5"))
	if err != nil {
		t.Fatalf("Play(e5) failed: %v", err)
	}
	if p.Side != engine.Black {
		t.Errorf("first move side = %v, want black", p.Side.Name())
	}
	if p, _ = g.Play(mustMove(t, "f5")); p.Side != engine.White {
		t.Errorf("second move side = %v, want white", p.Side.Name())
	}
	if _, err := g.Play(mustMove(t, "e5")); errors.Cause(err) != engine.ErrOccupied {
		t.Errorf("occupied: err = %v, want ErrOccupied", err)
	}
	if _, err := g.Play(engine.Move{X: 9, Y: 0}); errors.Cause(err) != engine.ErrOutOfRange {
		t.Errorf("off board: err = %v, want ErrOutOfRange", err)
	}
	if g.AIToMove() {
		t.Error("AIToMove() = true in a human-vs-human game")
	}

	s := g.Snapshot()
	if s.Status != StatusRunning || s.ToMove != "black" || len(s.Moves) != 2 {
		t.Errorf("Snapshot = %+v", s)
	}
}

func TestPlayHumanVsAITurns(t *testing.T) {
	e := newTestEngine(t)
	g, _ := New("g", Options{Size: 9, Mode: ModeHumanVsAI, AIFirst: true})

	if _, err := g.Play(mustMove(t, "e5")); errors.Cause(err) != ErrNotYourTurn {
		t.Errorf("human on AI turn: err = %v, want ErrNotYourTurn", err)
	}

	res, err := g.AIMove(context.Background(), e, engine.SearchOptions{})
	if err != nil {
		t.Fatalf("AIMove failed: %v", err)
	}
	if res.Move != (engine.Move{X: 4, Y: 4}) {
		t.Errorf("AI opening = %v, want e5", res.Move)
	}

	if _, err := g.AIMove(context.Background(), e, engine.SearchOptions{}); errors.Cause(err) != ErrNotYourTurn {
		t.Errorf("AI on human turn: err = %v, want ErrNotYourTurn", err)
	}
	if _, err := g.Play(mustMove(t, "d4")); err != nil {
		t.Errorf("human reply failed: %v", err)
	}
	if !g.AIToMove() {
		t.Error("AIToMove() = false after the human moved")
	}
}

func TestAIMoveWins(t *testing.T) {
	e := newTestEngine(t)
	g, err := FromRecord("w", whiteFourRecord(t), ModeAIVsAI)
	if err != nil {
		t.Fatalf("FromRecord failed: %v", err)
	}

	if _, err := g.Play(mustMove(t, "e4")); errors.Cause(err) != ErrNotYourTurn {
		t.Errorf("human move in ai-vs-ai: err = %v, want ErrNotYourTurn", err)
	}

	res, err := g.AIMove(context.Background(), e, engine.SearchOptions{})
	if err != nil {
		t.Fatalf("AIMove failed: %v", err)
	}
	if res.Move != mustMove(t, "e4") && res.Move != mustMove(t, "e9") {
		t.Errorf("AI played %v, want e4 or e9", res.Move)
	}

	status, winner := g.Status()
	if status != StatusWon || winner != engine.White {
		t.Errorf("Status() = %v, %v; want won, white", status, winner.Name())
	}
	if _, err := g.AIMove(context.Background(), e, engine.SearchOptions{}); errors.Cause(err) != ErrGameOver {
		t.Errorf("AIMove after win: err = %v, want ErrGameOver", err)
	}
	if s := g.Snapshot(); s.Winner != "white" || s.ToMove != "" {
		t.Errorf("Snapshot winner = %q, to move = %q", s.Winner, s.ToMove)
	}
}

func TestResign(t *testing.T) {
	g, _ := New("r", Options{Size: 9, Mode: ModeHumanVsHuman})
	g.Play(mustMove(t, "e5"))

	if err := g.Resign(engine.Empty); errors.Cause(err) != engine.ErrInvalidSide {
		t.Errorf("Resign(empty) err = %v, want ErrInvalidSide", err)
	}
	if err := g.Resign(engine.White); err != nil {
		t.Fatalf("Resign failed: %v", err)
	}
	status, winner := g.Status()
	if status != StatusResigned || winner != engine.Black {
		t.Errorf("Status() = %v, %v; want resigned, black", status, winner.Name())
	}
	if err := g.Resign(engine.Black); errors.Cause(err) != ErrGameOver {
		t.Errorf("second Resign err = %v, want ErrGameOver", err)
	}
	if _, err := g.Undo(); errors.Cause(err) != ErrGameOver {
		t.Errorf("Undo after resign err = %v, want ErrGameOver", err)
	}
	if rec := g.Record(); rec.Result != record.ResultWhiteResign {
		t.Errorf("Record().Result = %v, want B+R", rec.Result)
	}
}

func TestUndoHumanVsAI(t *testing.T) {
	e := newTestEngine(t)
	g, _ := New("u", Options{Size: 9, Mode: ModeHumanVsAI})

	if _, err := g.Undo(); errors.Cause(err) != ErrNothingToUndo {
		t.Errorf("Undo on empty board err = %v, want ErrNothingToUndo", err)
	}

	g.Play(mustMove(t, "e5"))
	if _, err := g.AIMove(context.Background(), e, engine.SearchOptions{}); err != nil {
		t.Fatalf("AIMove failed: %v", err)
	}

	undone, err := g.Undo()
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if len(undone) != 2 || undone[0].Side != engine.White || undone[1].Side != engine.Black {
		t.Errorf("Undo removed %v, want the AI reply then the human move", undone)
	}
	if g.Board().Stones() != 0 || g.ToMove() != engine.Black {
		t.Errorf("after Undo: %d stones, %v to move", g.Board().Stones(), g.ToMove().Name())
	}
}

func TestUndoReopensWonGame(t *testing.T) {
	g, err := FromRecord("u", whiteFourRecord(t), ModeHumanVsHuman)
	if err != nil {
		t.Fatalf("FromRecord failed: %v", err)
	}
	g.Play(mustMove(t, "e9"))
	if status, _ := g.Status(); status != StatusWon {
		t.Fatalf("Status() = %v, want won", status)
	}

	undone, err := g.Undo()
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if len(undone) != 1 {
		t.Errorf("Undo removed %d moves, want 1", len(undone))
	}
	if status, winner := g.Status(); status != StatusRunning || winner != engine.Empty {
		t.Errorf("Status() = %v, %v; want running", status, winner.Name())
	}
}

func TestGameRecord(t *testing.T) {
	g, _ := New("rec", Options{Size: 9, Mode: ModeHumanVsAI})
	g.Play(mustMove(t, "e5"))

	rec := g.Record()
	if rec.Size != 9 || len(rec.Moves) != 1 {
		t.Errorf("Record() size = %d, moves = %d", rec.Size, len(rec.Moves))
	}
	if rec.Black != "Human" || rec.White != "gomoku" {
		t.Errorf("players = %q, %q", rec.Black, rec.White)
	}
	if rec.Result != record.ResultInProgress {
		t.Errorf("Result = %v, want in progress", rec.Result)
	}
}

func TestManager(t *testing.T) {
	m := NewManager()

	g1, err := m.Create(Options{Size: 9})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	g2, err := m.Import(whiteFourRecord(t), ModeHumanVsHuman)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if g1.ID == g2.ID || len(g1.ID) != 36 {
		t.Errorf("IDs %q, %q: want distinct UUIDs", g1.ID, g2.ID)
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}

	got, err := m.Get(g2.ID)
	if err != nil || got != g2 {
		t.Errorf("Get() = %v, %v; want the imported game", got, err)
	}
	if len(got.Snapshot().Moves) != 9 {
		t.Errorf("imported game has %d moves, want 9", len(got.Snapshot().Moves))
	}

	if list := m.List(); len(list) != 2 {
		t.Errorf("List() returned %d games, want 2", len(list))
	}

	if err := m.Delete(g1.ID); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if _, err := m.Get(g1.ID); errors.Cause(err) != ErrNotFound {
		t.Errorf("Get after Delete err = %v, want ErrNotFound", err)
	}
	if err := m.Delete(g1.ID); errors.Cause(err) != ErrNotFound {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}

	if _, err := m.Import(record.NewRecord(2), ModeHumanVsHuman); err == nil {
		t.Error("importing a 2x2 record should fail")
	}
}
