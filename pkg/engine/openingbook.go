package engine

import (
	"math/rand"
)

// OpeningEntry is a book reply to a position.
type OpeningEntry struct {
	Move         Move   // The chosen reply
	Alternatives []Move // Equally good replies the choice was made from
	Note         string // Brief explanation
}

// LookupOpening returns a book reply when b holds a single stone: one of
// the neighboring cells closest to the center, picked with a generator
// seeded from the engine seed and the position.
func (e *Engine) LookupOpening(b *Board) (*OpeningEntry, bool) {
	if b.stones != 1 {
		return nil, false
	}

	var first Move
	for i, c := range b.cells {
		if c != Empty {
			first = Move{X: i % b.size, Y: i / b.size}
			break
		}
	}

	center := b.Center()
	bestDist := -1
	var choices []Move
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			m := Move{X: first.X + dx, Y: first.Y + dy}
			if (dx == 0 && dy == 0) || !b.InBounds(m.X, m.Y) {
				continue
			}
			d := max(abs(m.X-center.X), abs(m.Y-center.Y))
			switch {
			case bestDist < 0 || d < bestDist:
				bestDist = d
				choices = []Move{m}
			case d == bestDist:
				choices = append(choices, m)
			}
		}
	}
	if len(choices) == 0 {
		return nil, false
	}

	rng := rand.New(rand.NewSource(e.seed ^ int64(b.hash)))
	pick := choices[rng.Intn(len(choices))]

	note := "indirect opening"
	if pick.X == first.X || pick.Y == first.Y {
		note = "direct opening"
	}
	return &OpeningEntry{Move: pick, Alternatives: choices, Note: note}, true
}
