package engine

import "testing"

func candidateMoves(cands []Candidate) []Move {
	out := make([]Move, len(cands))
	for i, c := range cands {
		out[i] = c.Move
	}
	return out
}

func sameMoves(a, b []Move) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCandidatesEmptyBoard(t *testing.T) {
	b := NewBoard(15)
	cands := generateCandidates(b, Black, genOptions{radius: 1})
	if len(cands) != 225 {
		t.Fatalf("got %d candidates, want 225", len(cands))
	}
	if cands[0].Move != (Move{X: 7, Y: 7}) {
		t.Errorf("first candidate = %v, want h8", cands[0].Move)
	}
	for i := 1; i < len(cands); i++ {
		if cands[i].Score > cands[i-1].Score {
			t.Fatalf("candidates not sorted at %d", i)
		}
	}

	limited := generateCandidates(b, Black, genOptions{radius: 1, limit: 5})
	if len(limited) != 5 {
		t.Errorf("limit 5 gave %d candidates", len(limited))
	}
}

func TestCandidatesNeighborsOnly(t *testing.T) {
	b := testBoard(t, 15, []string{"h8"}, nil)
	cands := generateCandidates(b, White, genOptions{radius: 1})
	if len(cands) != 8 {
		t.Fatalf("got %d candidates, want the 8 neighbors", len(cands))
	}
	for _, c := range cands {
		if abs(c.X-7) > 1 || abs(c.Y-7) > 1 {
			t.Errorf("candidate %v is not next to h8", c.Move)
		}
	}

	wide := generateCandidates(b, White, genOptions{radius: 2})
	if len(wide) != 24 {
		t.Errorf("radius 2 gave %d candidates, want 24", len(wide))
	}
}

func TestCandidatesFiveShortCircuit(t *testing.T) {
	// Black has an open four; only the two completing cells matter.
	b := testBoard(t, 15, []string{"f8", "g8", "h8", "i8"}, []string{"f9", "g9", "h9", "c3"})
	got := candidateMoves(generateCandidates(b, Black, genOptions{radius: 1}))
	want := []Move{{X: 4, Y: 7}, {X: 9, Y: 7}}
	if !sameMoves(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}

	// White to defend sees the same cells: they complete a five for black.
	got = candidateMoves(generateCandidates(b, White, genOptions{radius: 1}))
	if !sameMoves(got, want) {
		t.Errorf("white candidates = %v, want %v", got, want)
	}
}

func TestCandidatesStopOpenFour(t *testing.T) {
	// White has an open three; black must stop the open four.
	b := testBoard(t, 15, []string{"b2", "n2", "b14"}, []string{"g8", "h8", "i8"})
	got := candidateMoves(generateCandidates(b, Black, genOptions{radius: 1}))
	want := []Move{{X: 5, Y: 7}, {X: 9, Y: 7}}
	if !sameMoves(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}
}

func TestCandidatesMakeOpenFour(t *testing.T) {
	b := testBoard(t, 15, []string{"g8", "h8", "i8"}, []string{"b2", "n2", "b14"})
	got := candidateMoves(generateCandidates(b, Black, genOptions{radius: 1}))
	want := []Move{{X: 5, Y: 7}, {X: 9, Y: 7}}
	if !sameMoves(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}
}

func TestCandidatesRankSkipsShortCircuit(t *testing.T) {
	b := testBoard(t, 15, []string{"f8", "g8", "h8", "i8"}, []string{"f9", "g9", "h9", "c3"})
	ranked := generateCandidates(b, Black, genOptions{radius: 1, rank: true})
	if len(ranked) <= 2 {
		t.Fatalf("rank mode returned %d candidates, want the full list", len(ranked))
	}
	if ranked[0].Mine != ScoreFive {
		t.Errorf("best ranked candidate scores %d, want %d", ranked[0].Mine, ScoreFive)
	}
}

func TestCandidatesOnlyThrees(t *testing.T) {
	b := testBoard(t, 15, []string{"h8"}, []string{"i9"})
	if got := generateCandidates(b, Black, genOptions{radius: 1, onlyThrees: true}); len(got) != 0 {
		t.Errorf("threat-only filter kept %d quiet candidates", len(got))
	}

	b = testBoard(t, 15, []string{"g8", "h8"}, []string{"c3", "m12"})
	for _, c := range generateCandidates(b, Black, genOptions{radius: 1, onlyThrees: true}) {
		if c.Score < ScoreThree {
			t.Errorf("candidate %v scores %d, below the filter", c.Move, c.Score)
		}
	}
}

func TestCandidatesSortedAndLimited(t *testing.T) {
	b := testBoard(t, 15, []string{"h8", "i9", "g10"}, []string{"h9", "i8", "d4"})
	all := generateCandidates(b, Black, genOptions{radius: 1})
	for i := 1; i < len(all); i++ {
		if all[i].Score > all[i-1].Score {
			t.Fatalf("candidates not sorted at %d: %d > %d", i, all[i].Score, all[i-1].Score)
		}
	}
	for _, c := range all {
		if c.Score != max(c.Mine, c.Opponent) {
			t.Errorf("candidate %v score %d, want max(%d, %d)", c.Move, c.Score, c.Mine, c.Opponent)
		}
	}

	limited := generateCandidates(b, Black, genOptions{radius: 1, limit: 3})
	if len(limited) != 3 {
		t.Fatalf("limit 3 gave %d candidates", len(limited))
	}
	if !sameMoves(candidateMoves(limited), candidateMoves(all[:3])) {
		t.Errorf("limited = %v, want prefix %v", candidateMoves(limited), candidateMoves(all[:3]))
	}
}

func TestCandidatesLeaveBoardUnchanged(t *testing.T) {
	b := testBoard(t, 15, []string{"h8", "i9"}, []string{"h9"})
	before := b.String()
	hash := b.Hash()
	generateCandidates(b, White, genOptions{radius: 2})
	if b.String() != before || b.Hash() != hash {
		t.Error("candidate generation modified the board")
	}
}
