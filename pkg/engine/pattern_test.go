package engine

import "testing"

// line converts a digit string (0 empty, 1 black, 2 white) to stones.
func line(s string) []Stone {
	out := make([]Stone, len(s))
	for i := range s {
		out[i] = Stone(s[i] - '0')
	}
	return out
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		at   int
		want Threat
	}{
		{"five", "11111", 2, Five},
		{"five between opponents", "2111112", 3, Five},
		{"overline", "0111111", 3, Five},
		{"open four", "000011110", 5, OpenFour},
		{"simple four blocked left", "021111000", 3, SimpleFour},
		// The opponent stone is not adjacent to the run, so both ends stay open.
		{"four with distant opponent", "201111000", 3, OpenFour},
		{"simple four at edge", "111100", 0, SimpleFour},
		{"split four MXMMM", "0101110", 4, SimpleFour},
		{"split four MMXMM", "0110110", 1, SimpleFour},
		{"open three", "011100000", 2, OpenThree},
		{"split open three", "0101100", 3, OpenThree},
		{"blocked three", "211100", 1, BlockedThree},
		{"open two", "00011000", 3, OpenTwo},
		{"split open two", "0010100", 2, OpenTwo},
		{"blocked two", "211000", 1, BlockedTwo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyLine(line(tt.line), tt.at, Black)
			var want ThreatCounts
			want[tt.want] = 1
			if got != want {
				t.Errorf("ClassifyLine(%s, %d) = %v, want one %v", tt.line, tt.at, got, tt.want)
			}
		})
	}
}

func TestClassifyLineNoRoom(t *testing.T) {
	// Three stones with no room to reach five are worthless.
	for _, s := range []string{"21112", "2111", "0211120"} {
		at := 2
		if s[0] == '0' {
			at = 3
		}
		if got := ClassifyLine(line(s), at, Black); got != (ThreatCounts{}) {
			t.Errorf("ClassifyLine(%s) = %v, want nothing", s, got)
		}
	}
}

func TestClassifyLineForWhite(t *testing.T) {
	got := ClassifyLine(line("000022220"), 5, White)
	if got[OpenFour] != 1 {
		t.Errorf("white open four not found: %v", got)
	}
}

func TestScanCountsEachLineOnce(t *testing.T) {
	// A horizontal open four: every stone sits on the same line, so the
	// line must be counted once and the other three stones skipped.
	b := testBoard(t, 15, []string{"f8", "g8", "h8", "i8"}, nil)
	p := newScanPass(15)
	p.scanBoard(b)

	var want ThreatCounts
	want[OpenFour] = 1
	if p.counts[Black] != want {
		t.Errorf("black counts = %v, want one open four", p.counts[Black])
	}
	if p.counts[White] != (ThreatCounts{}) {
		t.Errorf("white counts = %v, want none", p.counts[White])
	}
	if p.skips != 3 {
		t.Errorf("skips = %d, want 3", p.skips)
	}
}

func TestScanResetsBetweenPasses(t *testing.T) {
	b := testBoard(t, 15, []string{"f8", "g8", "h8"}, []string{"c3"})
	p := newScanPass(15)
	p.scanBoard(b)
	first := p.counts
	p.scanBoard(b)
	if p.counts != first {
		t.Errorf("second pass counts = %v, want %v", p.counts, first)
	}
}

func TestEvaluatePerspective(t *testing.T) {
	b := testBoard(t, 15, []string{"f8", "g8", "h8", "i8"}, []string{"f9", "g9", "h9"})
	p := newScanPass(15)

	if got := p.evaluate(b, Black); got != scoreMyFour {
		t.Errorf("evaluate(Black) = %d, want %d", got, scoreMyFour)
	}
	if got := p.evaluate(b, White); got != -scoreOppFour {
		t.Errorf("evaluate(White) = %d, want %d", got, -scoreOppFour)
	}
}

func TestPointCounts(t *testing.T) {
	b := testBoard(t, 15, []string{"f8", "g8", "h8", "h7", "h6"}, nil)
	// i8 extends the row to an open four; the column through h8 is a
	// separate open three.
	b.cells[7*15+8] = Black
	got := pointCounts(b, 8, 7, Black)
	b.cells[7*15+8] = Empty

	if got[OpenFour] != 1 {
		t.Errorf("pointCounts = %v, want an open four", got)
	}
	if got[OpenThree] != 0 {
		t.Errorf("pointCounts = %v, i8 is not on the column three", got)
	}
}

func TestHasFive(t *testing.T) {
	b := testBoard(t, 15, []string{"a1", "b2", "c3", "d4", "e5"}, []string{"a2", "a3", "a4", "a5"})
	if !IsWinningPosition(b, Black) {
		t.Error("diagonal five should win for black")
	}
	if IsWinningPosition(b, White) {
		t.Error("white has no five")
	}
	if Winner(b) != Black {
		t.Errorf("Winner() = %v, want X", Winner(b))
	}
}

func TestAntiDiagonalFive(t *testing.T) {
	b := testBoard(t, 15, nil, []string{"e1", "d2", "c3", "b4", "a5"})
	if !IsWinningPosition(b, White) {
		t.Error("anti-diagonal five at the corner should win for white")
	}
}
