package betresult

type Outcome int

const (
	OutcomeAwayWin Outcome = iota - 1
	OutcomeDraw
	OutcomeHomeWin
)

func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHomeWin
	case home < away:
		return OutcomeAwayWin
	default:
		return OutcomeDraw
	}
}

// Rule is a league's point table.
type Rule struct {
	PointsExactMatch    int
	PointsCorrectResult int
}

type Score struct {
	Points    int
	IsExact   bool
	IsCorrect bool
}

// Evaluate scores a predicted result against the final score.
func (r Rule) Evaluate(predHome, predAway, actualHome, actualAway int) Score {
	if predHome == actualHome && predAway == actualAway {
		return Score{Points: r.PointsExactMatch, IsExact: true, IsCorrect: true}
	}
	if OutcomeOf(predHome, predAway) == OutcomeOf(actualHome, actualAway) {
		return Score{Points: r.PointsCorrectResult, IsCorrect: true}
	}
	return Score{}
}
