package dto

import "time"

// Snapshot is everything a host needs to render the progression screen.
type Snapshot struct {
	Mode                string
	Running             bool
	Elapsed             int
	Level               int
	ExperienceInLevel   int
	LevelSize           int
	ExperienceTotal     int
	BossName            string
	BossHP              int
	HPRemaining         int
	DamageTotal         int
	TokensAvailable     int
	TokensSpent         int
	TotalFocusSeconds   int
	TotalBreakSeconds   int
	SessionFocusSeconds int
	SessionBreakSeconds int
	BalanceSeconds      int
	BalanceTone         string
	BalanceLabel        string
	Buffed              bool
	Difficulty          string
	DifficultyLabel     string
	AutoRegistration    string
	HistoryLength       int
	StoryTail           []string
}

type Event struct {
	Kind        string `json:"kind"`
	Level       int    `json:"level,omitempty"`
	BlockKind   string `json:"block_kind,omitempty"`
	Auto        bool   `json:"auto,omitempty"`
	Index       int    `json:"index,omitempty"`
	Experience  int    `json:"experience,omitempty"`
	Damage      int    `json:"damage,omitempty"`
	BossName    string `json:"boss_name,omitempty"`
	BossHP      int    `json:"boss_hp,omitempty"`
	Cost        int    `json:"cost,omitempty"`
	Tokens      int    `json:"tokens,omitempty"`
	Minutes     int    `json:"minutes,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	Achievement string `json:"achievement,omitempty"`
	Message     string `json:"message"`
}

type Achievement struct {
	ID   string
	Name string
}

// Result is returned by every operation. Events are in emission order, with
// achievement_unlocked events appended after the ones that caused them.
type Result struct {
	Snapshot Snapshot
	Events   []Event
	Unlocked []Achievement
}

type ChronicleOutput struct {
	BossName string
	Level    int
	Total    int
	Entries  []string
}

type ExportInput struct {
	// Path is optional; empty writes <export dir>/<boss slug>.md.
	Path string
}

type ExportOutput struct {
	Path       string
	Entries    int
	ExportedAt time.Time
}
