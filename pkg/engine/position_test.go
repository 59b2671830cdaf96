package engine

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

// testBoard builds a board from coordinate lists of black and white stones.
func testBoard(t *testing.T, size int, black, white []string) *Board {
	t.Helper()
	b := NewBoard(size)
	for _, group := range []struct {
		side  Stone
		cells []string
	}{{Black, black}, {White, white}} {
		for _, s := range group.cells {
			m, err := ParseMove(s)
			if err != nil {
				t.Fatalf("ParseMove(%q) failed: %v", s, err)
			}
			b.PlaceStone(m.X, m.Y, group.side)
		}
	}
	return b
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		in   string
		want Move
	}{
		{"h8", Move{X: 7, Y: 7}},
		{"a1", Move{X: 0, Y: 0}},
		{"O15", Move{X: 14, Y: 14}},
		{"3,4", Move{X: 3, Y: 4}},
		{" 10 , 2 ", Move{X: 10, Y: 2}},
	}
	for _, tt := range tests {
		got, err := ParseMove(tt.in)
		if err != nil {
			t.Errorf("ParseMove(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMove(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "8h", "h0", "h", "x,", "1,y"} {
		if _, err := ParseMove(bad); err == nil {
			t.Errorf("ParseMove(%q) should fail", bad)
		}
	}
}

func TestMoveString(t *testing.T) {
	if got := (Move{X: 7, Y: 7}).String(); got != "h8" {
		t.Errorf("String() = %q, want %q", got, "h8")
	}
	if got := (Move{X: 0, Y: 14}).String(); got != "a15" {
		t.Errorf("String() = %q, want %q", got, "a15")
	}
}

func TestParseSide(t *testing.T) {
	for in, want := range map[string]Stone{"black": Black, "X": Black, "1": Black, "white": White, "o": White, "2": White} {
		got, err := ParseSide(in)
		if err != nil || got != want {
			t.Errorf("ParseSide(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseSide("red"); errors.Cause(err) != ErrInvalidSide {
		t.Errorf("ParseSide(red) error = %v, want ErrInvalidSide", err)
	}
}

func TestNewBoardPanicsOnBadSize(t *testing.T) {
	for _, size := range []int{0, 4, 27} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NewBoard(%d) should panic", size)
				}
			}()
			NewBoard(size)
		}()
	}
}

func TestPlaceAndRemoveStone(t *testing.T) {
	b := NewBoard(15)
	empty := b.Hash()

	b.PlaceStone(7, 7, Black)
	if b.At(7, 7) != Black {
		t.Errorf("At(7, 7) = %v, want X", b.At(7, 7))
	}
	if b.Stones() != 1 {
		t.Errorf("Stones() = %d, want 1", b.Stones())
	}
	if b.Hash() == empty {
		t.Error("Hash should change after a placement")
	}

	b.RemoveStone(7, 7)
	if b.At(7, 7) != Empty {
		t.Errorf("At(7, 7) = %v, want empty", b.At(7, 7))
	}
	if b.Stones() != 0 {
		t.Errorf("Stones() = %d, want 0", b.Stones())
	}
	if b.Hash() != empty {
		t.Errorf("Hash() = %x, want %x", b.Hash(), empty)
	}
}

func TestCanPlace(t *testing.T) {
	b := NewBoard(15)
	b.PlaceStone(3, 3, White)

	if err := b.CanPlace(4, 4); err != nil {
		t.Errorf("CanPlace(4, 4) = %v, want nil", err)
	}
	if err := b.CanPlace(3, 3); errors.Cause(err) != ErrOccupied {
		t.Errorf("CanPlace(3, 3) = %v, want ErrOccupied", err)
	}
	for _, m := range []Move{{-1, 0}, {0, -1}, {15, 0}, {0, 15}} {
		if err := b.CanPlace(m.X, m.Y); errors.Cause(err) != ErrOutOfRange {
			t.Errorf("CanPlace(%d, %d) = %v, want ErrOutOfRange", m.X, m.Y, err)
		}
	}
}

func TestPlaceStonePanics(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		side Stone
	}{
		{"occupied", 5, 5, White},
		{"off board", 15, 2, Black},
		{"empty side", 1, 1, Empty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard(15)
			b.PlaceStone(5, 5, Black)
			defer func() {
				if recover() == nil {
					t.Error("PlaceStone should panic")
				}
			}()
			b.PlaceStone(tt.x, tt.y, tt.side)
		})
	}
}

func TestUndo(t *testing.T) {
	b := NewBoard(15)
	if _, ok := b.Undo(); ok {
		t.Error("Undo on an empty board should report false")
	}

	b.PlaceStone(7, 7, Black)
	h := b.Hash()
	b.PlaceStone(8, 8, White)

	last, ok := b.Undo()
	if !ok {
		t.Fatal("Undo should succeed")
	}
	if last.Move != (Move{X: 8, Y: 8}) || last.Side != White {
		t.Errorf("Undo() = %+v, want i9 white", last)
	}
	if b.Hash() != h {
		t.Errorf("Hash after undo = %x, want %x", b.Hash(), h)
	}
	if len(b.History()) != 1 {
		t.Errorf("History has %d entries, want 1", len(b.History()))
	}
}

func TestUndoAfterRemoveStonePanics(t *testing.T) {
	b := NewBoard(15)
	b.PlaceStone(7, 7, Black)
	b.PlaceStone(8, 8, White)
	b.RemoveStone(8, 8)
	h := b.Hash()

	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("Undo of a removed stone should panic")
			}
			if msg, ok := r.(string); !ok || !strings.Contains(msg, "engine: Undo") {
				t.Errorf("panic = %v, want a descriptive engine: Undo message", r)
			}
		}()
		b.Undo()
	}()

	if len(b.History()) != 2 || b.Hash() != h || b.Stones() != 1 {
		t.Errorf("failed Undo changed the board: history %d, stones %d", len(b.History()), b.Stones())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := testBoard(t, 15, []string{"h8"}, []string{"i9"})
	c := b.Clone()
	c.PlaceStone(0, 0, Black)

	if b.At(0, 0) != Empty {
		t.Error("placing on the clone changed the original")
	}
	if b.Stones() != 2 || c.Stones() != 3 {
		t.Errorf("Stones() = %d, %d; want 2, 3", b.Stones(), c.Stones())
	}
	if len(b.History()) != 2 {
		t.Errorf("original history has %d entries, want 2", len(b.History()))
	}
}

func TestSideToMove(t *testing.T) {
	b := NewBoard(15)
	if b.SideToMove() != Black {
		t.Error("Black moves first")
	}
	b.PlaceStone(7, 7, Black)
	if b.SideToMove() != White {
		t.Error("White moves after one black stone")
	}
}

func TestBoardStringRoundTrip(t *testing.T) {
	b := testBoard(t, 7, []string{"a1", "d4", "g7"}, []string{"b2", "c3"})
	s := b.String()

	want := "X......\n" +
		".O.....\n" +
		"..O....\n" +
		"...X...\n" +
		".......\n" +
		".......\n" +
		"......X\n"
	if s != want {
		t.Errorf("String() =\n%s\nwant\n%s", s, want)
	}

	parsed, err := ParseBoard(s)
	if err != nil {
		t.Fatalf("ParseBoard failed: %v", err)
	}
	if !parsed.Equal(b) {
		t.Error("parsed board differs from original")
	}
	if parsed.Hash() != b.Hash() {
		t.Errorf("parsed Hash() = %x, want %x", parsed.Hash(), b.Hash())
	}
}

func TestParseBoardErrors(t *testing.T) {
	tests := []string{
		"",
		"....\n....\n....\n....\n",
		".....\n.....\n..z..\n.....\n.....\n",
		".....\n....\n.....\n.....\n.....\n",
	}
	for _, s := range tests {
		if _, err := ParseBoard(s); err == nil {
			t.Errorf("ParseBoard(%q) should fail", s)
		}
	}
}

func TestPositionIDRoundTrip(t *testing.T) {
	b := testBoard(t, 15, []string{"h8", "i9", "a15"}, []string{"o1", "g7"})
	id := b.PositionID()

	got, err := BoardFromPositionID(id)
	if err != nil {
		t.Fatalf("BoardFromPositionID failed: %v", err)
	}
	if !got.Equal(b) {
		t.Error("decoded board differs from original")
	}
	if got.Hash() != b.Hash() {
		t.Errorf("decoded Hash() = %x, want %x", got.Hash(), b.Hash())
	}
	if got.Stones() != 5 {
		t.Errorf("Stones() = %d, want 5", got.Stones())
	}
}
