package engine

import "sync"

// Zobrist holds the random tokens used to fingerprint positions on one
// board size: one token per (cell, side) plus a seed token that is the
// fingerprint of the empty board. Tables are immutable once built.
type Zobrist struct {
	size   int
	seed   uint64
	tokens [][2]uint64
}

var (
	zobristMu     sync.Mutex
	zobristTables = map[int]*Zobrist{}
)

// ZobristFor returns the shared token table for a board size.
func ZobristFor(size int) *Zobrist {
	zobristMu.Lock()
	defer zobristMu.Unlock()

	if z, ok := zobristTables[size]; ok {
		return z
	}
	z := newZobrist(size)
	zobristTables[size] = z
	return z
}

func newZobrist(size int) *Zobrist {
	state := uint64(0x9E3779B97F4A7C15) ^ uint64(size)*0xBF58476D1CE4E5B9
	z := &Zobrist{
		size:   size,
		seed:   splitmix64(&state),
		tokens: make([][2]uint64, size*size),
	}
	for i := range z.tokens {
		z.tokens[i][0] = splitmix64(&state)
		z.tokens[i][1] = splitmix64(&state)
	}
	return z
}

func splitmix64(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Seed returns the fingerprint of the empty board.
func (z *Zobrist) Seed() uint64 { return z.seed }

// Token returns the token for side at cell index idx (y*size + x).
func (z *Zobrist) Token(idx int, side Stone) uint64 {
	return z.tokens[idx][side-1]
}

// Hash recomputes the fingerprint of b from scratch.
func (z *Zobrist) Hash(b *Board) uint64 {
	h := z.seed
	for i, c := range b.cells {
		if c != Empty {
			h ^= z.tokens[i][c-1]
		}
	}
	return h
}
