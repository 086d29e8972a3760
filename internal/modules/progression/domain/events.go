package domain

// EventKind names a progression event. The values double as hook subscription keys.
type EventKind string

const (
	EventBlockApplied         EventKind = "block_applied"
	EventBlockUpgraded        EventKind = "block_upgraded"
	EventLevelUp              EventKind = "level_up"
	EventBossDefeated         EventKind = "boss_defeated"
	EventBossSpawned          EventKind = "boss_spawned"
	EventTokensClaimed        EventKind = "tokens_claimed"
	EventDifficultyChanged    EventKind = "difficulty_changed"
	EventFocusMilestone       EventKind = "focus_milestone"
	EventBreakBudgetExhausted EventKind = "break_budget_exhausted"
	EventAchievementUnlocked  EventKind = "achievement_unlocked"
	EventProgressReset        EventKind = "progress_reset"
	EventTimesForgotten       EventKind = "times_forgotten"
)

var allEventKinds = []EventKind{
	EventBlockApplied,
	EventBlockUpgraded,
	EventLevelUp,
	EventBossDefeated,
	EventBossSpawned,
	EventTokensClaimed,
	EventDifficultyChanged,
	EventFocusMilestone,
	EventBreakBudgetExhausted,
	EventAchievementUnlocked,
	EventProgressReset,
	EventTimesForgotten,
}

func EventKinds() []EventKind {
	return append([]EventKind(nil), allEventKinds...)
}

func (k EventKind) Known() bool {
	for _, known := range allEventKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Event is returned by ledger and timer operations for the host to react to.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind       EventKind
	Level      int
	BlockKind  Kind
	Auto       bool
	Index      int
	Experience int
	Damage     int
	BossName   string
	BossHP     int
	Cost       int
	Tokens     int
	Minutes    int
	Difficulty Difficulty
	Message    string
}
