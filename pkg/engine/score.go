package engine

// Scoring constants. These are hand-tuned values kept as-is; changing
// them changes search behavior.
const (
	ScoreFive       = 100000
	ScoreFour       = 10000
	ScoreSimpleFour = 1000
	ScoreThree      = 100
	ScoreBlocked3   = 10
	ScoreTwo        = 8
	ScoreBlocked2   = 2

	// WinScore is the magnitude at or above which a score means a
	// decided game.
	WinScore = ScoreFive

	// ScoreInfinity bounds the search window.
	ScoreInfinity = 0x7fffffff
)

// Forced-result scores returned by scoreCounts, strongest first.
const (
	scoreMyFour          = 9050
	scoreMySimpleFour    = 9040
	scoreOppFour         = 9030
	scoreOppFourThree    = 9020
	scoreMyThree         = 9010
	scoreOppDoubleThree  = 9000
	scoreOppSimpleFour   = 400
	scoreMyThreesLinear  = 500
	scoreMyThreeLinear   = 100
	scoreOppThreesLinear = 2000
	scoreOppThreeLinear  = 400
	scoreBlockedThreeLin = 10
	scoreOpenTwoLinear   = 6
	scoreBlockedTwoLin   = 2
)

// scoreCounts turns the threat counts of the side to move (mine) and its
// opponent into a pair of partial scores. The first matching rule wins.
// mine and opp are copies; the four promotion below stays local.
func scoreCounts(mine, opp ThreatCounts) (mscore, oscore int) {
	if mine[Five] > 0 {
		return ScoreFive, 0
	}
	if opp[Five] > 0 {
		return 0, ScoreFive
	}

	// Two simple fours are as good as an open four.
	if mine[SimpleFour] >= 2 {
		mine[OpenFour]++
	}
	if opp[SimpleFour] >= 2 {
		opp[OpenFour]++
	}

	switch {
	case mine[OpenFour] > 0:
		return scoreMyFour, 0
	case mine[SimpleFour] > 0:
		return scoreMySimpleFour, 0
	case opp[OpenFour] > 0:
		return 0, scoreOppFour
	case opp[SimpleFour] > 0 && opp[OpenThree] > 0:
		return 0, scoreOppFourThree
	case mine[OpenThree] > 0 && opp[SimpleFour] == 0:
		return scoreMyThree, 0
	case opp[OpenThree] > 1 && mine[OpenThree] == 0 && mine[BlockedThree] == 0:
		return 0, scoreOppDoubleThree
	}

	if opp[SimpleFour] > 0 {
		oscore += scoreOppSimpleFour
	}

	if mine[OpenThree] > 1 {
		mscore += scoreMyThreesLinear
	} else if mine[OpenThree] > 0 {
		mscore += scoreMyThreeLinear
	}
	if opp[OpenThree] > 1 {
		oscore += scoreOppThreesLinear
	} else if opp[OpenThree] > 0 {
		oscore += scoreOppThreeLinear
	}

	mscore += mine[BlockedThree] * scoreBlockedThreeLin
	oscore += opp[BlockedThree] * scoreBlockedThreeLin
	mscore += mine[OpenTwo] * scoreOpenTwoLinear
	oscore += opp[OpenTwo] * scoreOpenTwoLinear
	mscore += mine[BlockedTwo] * scoreBlockedTwoLin
	oscore += opp[BlockedTwo] * scoreBlockedTwoLin

	return mscore, oscore
}

// ScoreThreats returns the position score (mine - opponent) for the given
// threat counts.
func ScoreThreats(mine, opp ThreatCounts) int {
	m, o := scoreCounts(mine, opp)
	return m - o
}

// pointScore rates the threats one stone creates, for move ordering.
func pointScore(c ThreatCounts) int {
	if c[Five] > 0 {
		return ScoreFive
	}
	if c[OpenFour] > 0 {
		return ScoreFour
	}

	score := c[SimpleFour] * ScoreSimpleFour
	if c[OpenThree] > 1 {
		score += 5 * ScoreThree
	} else if c[OpenThree] > 0 {
		score += ScoreThree
	}
	score += c[BlockedThree] * ScoreBlocked3
	score += c[OpenTwo] * ScoreTwo
	score += c[BlockedTwo] * ScoreBlocked2
	return score
}
