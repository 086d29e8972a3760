package domain

import "fmt"

const buffThresholdSeconds = 20 * 60

// BalanceSeconds is the remaining break budget. Negative means break debt.
func BalanceSeconds(totalFocus, totalBreak int, difficulty Difficulty) int {
	return totalFocus/difficulty.Ratio() - totalBreak
}

type Tone string

const (
	TonePositive Tone = "positive"
	ToneNeutral  Tone = "neutral"
	ToneNegative Tone = "negative"
)

// Feedback is a display hint for a balance value. Buffed has no rule effect.
type Feedback struct {
	Tone   Tone
	Label  string
	Buffed bool
}

func BalanceFeedback(balance int) Feedback {
	switch {
	case balance > 0:
		return Feedback{
			Tone:   TonePositive,
			Label:  fmt.Sprintf("+%d min", balance/60),
			Buffed: balance > buffThresholdSeconds,
		}
	case balance == 0:
		return Feedback{Tone: ToneNeutral, Label: "Even"}
	default:
		return Feedback{Tone: ToneNegative, Label: fmt.Sprintf("-%d min", -balance/60)}
	}
}
