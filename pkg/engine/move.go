package engine

import "sort"

// Candidate generation defaults
const (
	DefaultMaxCandidates  = 20 // Candidates kept per node once the iteration is deeper than 2
	DefaultNeighborRadius = 1  // Empty cells within this distance of a stone are considered
)

// Candidate is a cell worth searching, with its ordering score.
type Candidate struct {
	Move
	Score    int `json:"score"`    // max(Mine, Opponent)
	Mine     int `json:"mine"`     // Point score if the side to move plays here
	Opponent int `json:"opponent"` // Point score if the opponent plays here
}

// genOptions controls candidate generation for one node.
type genOptions struct {
	radius     int
	onlyThrees bool // Drop cells scoring below ScoreThree
	limit      int  // Truncate the sorted list to this many (0 = no limit)
	rank       bool // Skip the forcing short-circuits and return the full ranked list
}

// hasNeighbor reports whether any stone lies within radius of (x, y).
func (b *Board) hasNeighbor(x, y, radius int) bool {
	for cy := y - radius; cy <= y+radius; cy++ {
		if cy < 0 || cy >= b.size {
			continue
		}
		for cx := x - radius; cx <= x+radius; cx++ {
			if cx >= 0 && cx < b.size && b.cells[cy*b.size+cx] != Empty {
				return true
			}
		}
	}
	return false
}

// scorePoint rates (x, y) by tentatively placing each side's stone there.
func (b *Board) scorePoint(x, y int, side Stone) (mine, opp int) {
	idx := y*b.size + x
	b.cells[idx] = side
	mine = pointScore(pointCounts(b, x, y, side))
	b.cells[idx] = side.Opponent()
	opp = pointScore(pointCounts(b, x, y, side.Opponent()))
	b.cells[idx] = Empty
	return mine, opp
}

// openingCandidates orders every cell of an empty board by closeness to
// the center.
func openingCandidates(b *Board) []Candidate {
	c := b.size / 2
	moves := make([]Candidate, 0, len(b.cells))
	for y := 0; y < b.size; y++ {
		for x := 0; x < b.size; x++ {
			score := c - max(abs(x-c), abs(y-c))
			moves = append(moves, Candidate{Move: Move{X: x, Y: y}, Score: score})
		}
	}
	sort.SliceStable(moves, func(i, j int) bool {
		return moves[i].Score > moves[j].Score
	})
	return moves
}

// generateCandidates returns the cells to search for side, best first.
//
// If any cell completes a five for either side only those cells are
// returned. Otherwise cells making an open four for side, then cells
// stopping an opponent open four (plus side's own simple fours) take the
// same short-circuit. Remaining lists are sorted by descending score; ties
// keep row-major order.
func generateCandidates(b *Board, side Stone, opts genOptions) []Candidate {
	if b.stones == 0 {
		moves := openingCandidates(b)
		if opts.limit > 0 && len(moves) > opts.limit {
			moves = moves[:opts.limit]
		}
		return moves
	}

	var fives, myFours, oppFours, mySimpleFours []Candidate
	moves := make([]Candidate, 0, 64)

	for y := 0; y < b.size; y++ {
		for x := 0; x < b.size; x++ {
			if b.cells[y*b.size+x] != Empty || !b.hasNeighbor(x, y, opts.radius) {
				continue
			}
			mscore, oscore := b.scorePoint(x, y, side)
			cand := Candidate{Move: Move{X: x, Y: y}, Score: max(mscore, oscore), Mine: mscore, Opponent: oscore}

			if opts.onlyThrees && cand.Score < ScoreThree {
				continue
			}

			switch {
			case mscore >= ScoreFive || oscore >= ScoreFive:
				fives = append(fives, cand)
			case mscore >= ScoreFour:
				myFours = append(myFours, cand)
			case oscore >= ScoreFour:
				oppFours = append(oppFours, cand)
			case mscore >= ScoreSimpleFour:
				mySimpleFours = append(mySimpleFours, cand)
			}
			moves = append(moves, cand)
		}
	}

	if !opts.rank {
		if len(fives) > 0 {
			return fives
		}
		if len(myFours) > 0 {
			return myFours
		}
		if len(oppFours) > 0 {
			return append(oppFours, mySimpleFours...)
		}
	}

	sort.SliceStable(moves, func(i, j int) bool {
		return moves[i].Score > moves[j].Score
	})

	if !opts.onlyThrees && opts.limit > 0 && len(moves) > opts.limit {
		moves = moves[:opts.limit]
	}
	return moves
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
