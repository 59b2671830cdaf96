package engine

// Threat is the severity class of a run of stones along one line.
// Categories are ordered; ordinal comparisons are meaningful.
type Threat int

const (
	ThreatNone   Threat = iota
	BlockedTwo          // PMMX, XMMP, XMXMP
	OpenTwo             // XMMX, XMXMX, XMXXMX
	BlockedThree        // PMMMX, XMMMP, PXMMMXP
	OpenThree           // XMMMXX, XMXMMX
	SimpleFour          // PMMMMX, MXMMM, MMXMM
	OpenFour            // XMMMMX
	Five                // MMMMM
)

// NumThreats is the number of threat categories, including ThreatNone.
const NumThreats = 8

// String returns the display name of the threat.
func (t Threat) String() string {
	return [...]string{
		"None", "Blocked Two", "Open Two", "Blocked Three",
		"Open Three", "Simple Four", "Open Four", "Five",
	}[t]
}

// ThreatCounts counts threats per category for one side.
type ThreatCounts [NumThreats]int

// Has reports whether at least one threat of category t was counted.
func (c ThreatCounts) Has(t Threat) bool { return c[t] > 0 }

// Scan directions: horizontal, vertical, down-right diagonal, up-right diagonal.
var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// windowLen is the number of cells examined around a stone along a line.
const windowLen = 9

// lineWindow is the 9-cell window centered on a stone. Index 4 is the stone.
type lineWindow [windowLen]Stone

// window reads the cells at offsets -4..4 from (x, y) along dir.
// Off-board cells read as opp.
func (b *Board) window(x, y int, dir [2]int, opp Stone) lineWindow {
	var w lineWindow
	cx, cy := x-4*dir[0], y-4*dir[1]
	for i := range w {
		if cx < 0 || cx >= b.size || cy < 0 || cy >= b.size {
			w[i] = opp
		} else {
			w[i] = b.cells[cy*b.size+cx]
		}
		cx += dir[0]
		cy += dir[1]
	}
	return w
}

// analyzeLine classifies the run of mine through the window center and
// adds what it finds to counts. mark, if non-nil, is called with the
// window index range [lo, hi] of cells that need no further analysis
// along this line.
func analyzeLine(w *lineWindow, mine, opp Stone, counts *ThreatCounts, mark func(lo, hi int)) {
	left, right := 4, 4
	for right < windowLen-1 && w[right+1] == mine {
		right++
	}
	for left > 0 && w[left-1] == mine {
		left--
	}

	leftRange, rightRange := left, right
	for rightRange < windowLen-1 && w[rightRange+1] != opp {
		rightRange++
	}
	for leftRange > 0 && w[leftRange-1] != opp {
		leftRange--
	}

	span := rightRange - leftRange + 1
	if span < 5 {
		if mark != nil {
			mark(leftRange, rightRange)
		}
		return
	}
	if mark != nil {
		mark(left, right)
	}

	// Runs shorter than five never reach the window edges at the indexes
	// probed below.
	switch run := right - left + 1; {
	case run >= 5:
		counts[Five]++

	case run == 4:
		leftEmpty := w[left-1] == Empty
		rightEmpty := w[right+1] == Empty
		if leftEmpty && rightEmpty {
			counts[OpenFour]++
		} else if leftEmpty || rightEmpty {
			counts[SimpleFour]++
		}

	case run == 3:
		var leftEmpty, rightEmpty, leftFour, rightFour bool
		if w[left-1] == Empty {
			if w[left-2] == mine { // MXMMM
				if mark != nil {
					mark(left-2, left-1)
				}
				counts[SimpleFour]++
				leftFour = true
			}
			leftEmpty = true
		}
		if w[right+1] == Empty {
			if w[right+2] == mine { // MMMXM
				if mark != nil {
					mark(right+1, right+2)
				}
				counts[SimpleFour]++
				rightFour = true
			}
			rightEmpty = true
		}

		switch {
		case leftFour || rightFour:
		case leftEmpty && rightEmpty:
			if span > 5 {
				counts[OpenThree]++
			} else {
				counts[BlockedThree]++
			}
		case leftEmpty || rightEmpty:
			counts[BlockedThree]++
		}

	case run == 2:
		var leftEmpty, rightEmpty, leftThree, rightThree bool
		if w[left-1] == Empty {
			if w[left-2] == mine {
				if mark != nil {
					mark(left-2, left-1)
				}
				if w[left-3] == Empty {
					if w[right+1] == Empty { // XMXMMX
						counts[OpenThree]++
					} else { // XMXMMP
						counts[BlockedThree]++
					}
					leftThree = true
				} else if w[left-3] == opp && w[right+1] == Empty { // PMXMMX
					counts[BlockedThree]++
					leftThree = true
				}
			}
			leftEmpty = true
		}
		if w[right+1] == Empty {
			if w[right+2] == mine {
				switch {
				case w[right+3] == mine: // MMXMM
					if mark != nil {
						mark(right+1, right+2)
					}
					counts[SimpleFour]++
					rightThree = true
				case w[right+3] == Empty:
					if leftEmpty { // XMMXMX
						counts[OpenThree]++
					} else { // PMMXMX
						counts[BlockedThree]++
					}
					rightThree = true
				case leftEmpty: // XMMXMP
					counts[BlockedThree]++
					rightThree = true
				}
			}
			rightEmpty = true
		}

		switch {
		case leftThree || rightThree:
		case leftEmpty && rightEmpty:
			counts[OpenTwo]++
		case leftEmpty || rightEmpty:
			counts[BlockedTwo]++
		}

	case run == 1:
		leftEmpty := false
		if w[left-1] == Empty {
			if w[left-2] == mine && w[left-3] == Empty && w[right+1] == opp { // XMXMP
				counts[BlockedTwo]++
			}
			leftEmpty = true
		}
		if w[right+1] == Empty {
			if w[right+2] == mine {
				if w[right+3] == Empty {
					if leftEmpty { // XMXMX
						counts[OpenTwo]++
					} else { // PMXMX
						counts[BlockedTwo]++
					}
				}
			} else if w[right+2] == Empty && w[right+3] == mine && w[right+4] == Empty { // XMXXMX
				counts[OpenTwo]++
			}
		}
	}
}

// ClassifyLine analyzes a one-dimensional line as if it were a board row:
// the run of mine through index at is classified, cells beyond either end
// of line read as the opponent.
func ClassifyLine(line []Stone, at int, mine Stone) ThreatCounts {
	opp := mine.Opponent()
	var w lineWindow
	for i := range w {
		j := at - 4 + i
		if j < 0 || j >= len(line) {
			w[i] = opp
		} else {
			w[i] = line[j]
		}
	}
	var counts ThreatCounts
	analyzeLine(&w, mine, opp, &counts, nil)
	return counts
}

// scanPass owns the state of one evaluation pass over a board: per-side
// threat counts and a per-cell, per-direction mask of cells already
// accounted for. Both are cleared at the start of every pass.
type scanPass struct {
	size   int
	marks  []uint8
	counts [3]ThreatCounts // indexed by Stone
	skips  int64
}

func newScanPass(size int) *scanPass {
	return &scanPass{
		size:  size,
		marks: make([]uint8, size*size),
	}
}

func (p *scanPass) reset() {
	for i := range p.marks {
		p.marks[i] = 0
	}
	p.counts = [3]ThreatCounts{}
}

// scanBoard counts threats for both sides, visiting stones row by row.
func (p *scanPass) scanBoard(b *Board) {
	p.reset()
	for y := 0; y < b.size; y++ {
		for x := 0; x < b.size; x++ {
			if s := b.cells[y*b.size+x]; s != Empty {
				p.scanStone(b, x, y, s)
			}
		}
	}
}

// scanStone analyzes the lines through one stone, skipping directions in
// which the stone was already covered by an earlier analysis.
func (p *scanPass) scanStone(b *Board, x, y int, mine Stone) {
	opp := mine.Opponent()
	for d, dir := range directions {
		bit := uint8(1) << uint(d)
		if p.marks[y*p.size+x]&bit != 0 {
			p.skips++
			continue
		}
		w := b.window(x, y, dir, opp)
		analyzeLine(&w, mine, opp, &p.counts[mine], func(lo, hi int) {
			for i := lo; i <= hi; i++ {
				cx, cy := x+(i-4)*dir[0], y+(i-4)*dir[1]
				p.marks[cy*p.size+cx] |= bit
			}
		})
	}
}

// pointCounts returns the threats through (x, y) for mine, which must
// already be on that cell. Marks are neither read nor written.
func pointCounts(b *Board, x, y int, mine Stone) ThreatCounts {
	opp := mine.Opponent()
	var counts ThreatCounts
	for _, dir := range directions {
		w := b.window(x, y, dir, opp)
		analyzeLine(&w, mine, opp, &counts, nil)
	}
	return counts
}

// evaluate scans the board and scores it from side's point of view.
func (p *scanPass) evaluate(b *Board, side Stone) int {
	p.scanBoard(b)
	mscore, oscore := scoreCounts(p.counts[side], p.counts[side.Opponent()])
	return mscore - oscore
}

// hasFive reports whether side has five or more in a row.
func (p *scanPass) hasFive(b *Board, side Stone) bool {
	p.scanBoard(b)
	return p.counts[side][Five] > 0
}
