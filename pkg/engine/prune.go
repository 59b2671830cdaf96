package engine

// Search narrowing defaults. These are performance tuning: they bound the
// branching factor deep in the tree and on crowded boards.
const (
	DefaultThreatOnlyStones  = 10 // Board population at which the threat-only filter can start
	DefaultThreatOnlyPly     = 1  // ...once the node is deeper than this ply
	DefaultThreatOnlyDeepPly = 3  // Beyond this ply the filter always applies
	DefaultEarlyGameStones   = 6  // At or below this population the full depth is searched
	shallowIteration         = 2  // Iterations this deep keep every candidate
)

// NarrowingPolicy decides when a node only considers cells worth at least
// an open three, and how many candidates deeper iterations keep.
type NarrowingPolicy struct {
	ThreatOnlyStones  int
	ThreatOnlyPly     int
	ThreatOnlyDeepPly int
	MaxCandidates     int
}

// DefaultNarrowing returns the reference narrowing policy.
func DefaultNarrowing() NarrowingPolicy {
	return NarrowingPolicy{
		ThreatOnlyStones:  DefaultThreatOnlyStones,
		ThreatOnlyPly:     DefaultThreatOnlyPly,
		ThreatOnlyDeepPly: DefaultThreatOnlyDeepPly,
		MaxCandidates:     DefaultMaxCandidates,
	}
}

// onlyThrees reports whether a node at ply on a board holding stones
// stones should drop cells scoring below an open three.
func (p NarrowingPolicy) onlyThrees(stones, ply int) bool {
	if stones >= p.ThreatOnlyStones && ply > p.ThreatOnlyPly {
		return true
	}
	return ply > p.ThreatOnlyDeepPly
}

// limit returns the candidate cap for an iteration of the given depth.
func (p NarrowingPolicy) limit(iterationDepth int) int {
	if iterationDepth > shallowIteration && p.MaxCandidates > 0 {
		return p.MaxCandidates
	}
	return 0
}
