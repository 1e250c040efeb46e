package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PilotGoal is the fixed pilot target, in pieces, used for the progress bar.
const PilotGoal = 1000

// Progress is the derived progress-toward-goal figure.
type Progress struct {
	Percent int64  `json:"percent"`
	Goal    int64  `json:"goal"`
	Display string `json:"display"`
}

// ComputeProgress returns round(collected/goal*100) capped at 100 together with
// a display string such as "250 / 1,000 pcs (25%)". A non-positive goal yields 0%.
func ComputeProgress(collectedTotal, goal int64) Progress {
	var percent int64
	if goal > 0 {
		ratio := decimal.NewFromInt(collectedTotal).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(goal))
		percent = min(RoundTo(ratio, 0).IntPart(), 100)
	}

	return Progress{
		Percent: percent,
		Goal:    goal,
		Display: fmt.Sprintf("%s / %s pcs (%d%%)", FormatNumber(collectedTotal), FormatNumber(goal), percent),
	}
}
