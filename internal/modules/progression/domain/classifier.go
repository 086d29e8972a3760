package domain

const (
	BriefThresholdSeconds = 600
	DeepThresholdSeconds  = 1500
)

type Action int

const (
	ActionNone Action = iota
	ActionApplyMini
	ActionApplyDeep
	ActionUpgrade
)

// Classify decides what the current focus session should be credited with.
// The deep threshold is checked first so a session resumed past 1500s with
// nothing credited still gets its deep block.
func Classify(elapsedFocusSeconds int, state AutoRegistration) Action {
	if elapsedFocusSeconds >= DeepThresholdSeconds {
		switch state {
		case AutoDeep:
			return ActionNone
		case AutoBrief:
			return ActionUpgrade
		default:
			return ActionApplyDeep
		}
	}
	if elapsedFocusSeconds >= BriefThresholdSeconds && state == AutoNone {
		return ActionApplyMini
	}
	return ActionNone
}
