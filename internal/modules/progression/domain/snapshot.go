package domain

import "time"

// Snapshot is a consistent read of the state and the timer.
type Snapshot struct {
	State   State
	Mode    Mode
	Running bool
	Elapsed int
}

func (s Snapshot) Level() int {
	return Level(s.State.ExperienceTotal)
}

func (s Snapshot) HPRemaining() int {
	return max(0, s.State.BossHP-s.State.DamageTotal)
}

func (s Snapshot) TokensAvailable() int {
	return TokensAvailable(s.State.ExperienceTotal, s.State.TokensSpent)
}

func (s Snapshot) BalanceSeconds() int {
	return BalanceSeconds(s.State.TotalFocusSeconds, s.State.TotalBreakSeconds, s.State.Difficulty)
}

// Chronicle is the story log as exported to a markdown note.
type Chronicle struct {
	BossName        string
	Level           int
	ExperienceTotal int
	Difficulty      Difficulty
	Entries         []string
	ExportedAt      time.Time
}
