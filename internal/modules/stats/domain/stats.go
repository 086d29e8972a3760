package domain

import (
	"sort"
	"time"
)

const DayLayout = "2006-01-02"

// SessionRecord is one credited focus session. A mini credit starts
// incomplete and is completed in place when the session is upgraded.
type SessionRecord struct {
	ID           string
	Day          string
	RecordedAt   time.Time
	FocusSeconds int
	Kind         string
	Completed    bool
}

type JournalEntry struct {
	ID     string
	At     time.Time
	Kind   string
	Level  int
	Detail string
}

type Achievement struct {
	ID          string
	Name        string
	Description string
	unlocked    func(Counters) bool
}

// Counters are the facts achievements are evaluated against.
type Counters struct {
	CompletedTotal int
	CompletedToday int
	BossesDefeated int
	Level          int
}

var achievements = []Achievement{
	{ID: "first_session", Name: "First Steps", Description: "Complete your first deep session",
		unlocked: func(c Counters) bool { return c.CompletedTotal >= 1 }},
	{ID: "five_sessions_day", Name: "Productive Day", Description: "Complete 5 deep sessions in one day",
		unlocked: func(c Counters) bool { return c.CompletedToday >= 5 }},
	{ID: "ten_sessions", Name: "Dedicated", Description: "Complete 10 deep sessions",
		unlocked: func(c Counters) bool { return c.CompletedTotal >= 10 }},
	{ID: "first_boss_defeated", Name: "Giant Slayer", Description: "Defeat your first boss",
		unlocked: func(c Counters) bool { return c.BossesDefeated >= 1 }},
	{ID: "level_five", Name: "Veteran", Description: "Reach level 5",
		unlocked: func(c Counters) bool { return c.Level >= 5 }},
}

func Achievements() []Achievement {
	return append([]Achievement(nil), achievements...)
}

func AchievementByID(id string) (Achievement, bool) {
	for _, a := range achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Earned lists the achievements whose condition holds for c.
func Earned(c Counters) []Achievement {
	var out []Achievement
	for _, a := range achievements {
		if a.unlocked(c) {
			out = append(out, a)
		}
	}
	return out
}

// Streaks computes the current and best run of consecutive days with a
// completed session. The current run may end today or yesterday.
func Streaks(days []string, today time.Time) (current, best int) {
	if len(days) == 0 {
		return 0, 0
	}
	parsed := make([]time.Time, 0, len(days))
	for _, d := range days {
		t, err := time.Parse(DayLayout, d)
		if err != nil {
			continue
		}
		parsed = append(parsed, t)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })

	run := 0
	var prev time.Time
	for i, d := range parsed {
		switch {
		case i == 0:
			run = 1
		case d.Equal(prev):
			continue
		case d.Equal(prev.AddDate(0, 0, 1)):
			run++
		default:
			run = 1
		}
		prev = d
		best = max(best, run)
	}

	todayDay, _ := time.Parse(DayLayout, today.Format(DayLayout))
	if prev.Equal(todayDay) || prev.Equal(todayDay.AddDate(0, 0, -1)) {
		current = run
	}
	return current, best
}

// Journal kinds the summary reads back.
const (
	JournalBlockApplied  = "block_applied"
	JournalBossDefeated  = "boss_defeated"
	JournalBossSpawned   = "boss_spawned"
	JournalProgressReset = "progress_reset"
)
