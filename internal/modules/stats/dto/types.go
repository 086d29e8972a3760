package dto

import "time"

type RecordBlockInput struct {
	SessionID    string
	Kind         string
	FocusSeconds int
	Level        int
}

type UpgradeBlockInput struct {
	SessionID    string
	FocusSeconds int
	Level        int
}

type JournalInput struct {
	Kind   string
	Level  int
	Detail string
}

type AchievementOutput struct {
	ID          string
	Name        string
	Description string
	Unlocked    bool
	UnlockedAt  time.Time
}

type JournalOutput struct {
	At     time.Time
	Kind   string
	Level  int
	Detail string
}

type SummaryOutput struct {
	SessionsToday         int
	CompletedTotal        int
	AverageSessionSeconds int
	WeeklyFocusSeconds    int
	CurrentStreak         int
	BestStreak            int
	BossesDefeated        int
	LastSessionAt         time.Time
	HasSessions           bool
	Achievements          []AchievementOutput
	RecentJournal         []JournalOutput
}
