package domain

import (
	"fmt"

	"flowrpg/internal/platform/id"
	"flowrpg/internal/platform/random"
)

const SchemaVersion = 1

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts the current names and the legacy "facil"/"avanzado".
func ParseDifficulty(raw string) (Difficulty, error) {
	switch raw {
	case "easy", "facil":
		return DifficultyEasy, nil
	case "normal":
		return DifficultyNormal, nil
	case "hard", "avanzado":
		return DifficultyHard, nil
	default:
		return "", fmt.Errorf("unknown difficulty: %s", raw)
	}
}

// Ratio is the focus seconds that earn one second of break.
func (d Difficulty) Ratio() int {
	switch d {
	case DifficultyEasy:
		return 2
	case DifficultyHard:
		return 4
	default:
		return 3
	}
}

func (d Difficulty) Next() Difficulty {
	switch d {
	case DifficultyEasy:
		return DifficultyNormal
	case DifficultyNormal:
		return DifficultyHard
	default:
		return DifficultyEasy
	}
}

func (d Difficulty) Label() string {
	return fmt.Sprintf("%s 1:%d", d, d.Ratio())
}

// AutoRegistration tracks what the current focus session has already been credited.
type AutoRegistration string

const (
	AutoNone  AutoRegistration = "none"
	AutoBrief AutoRegistration = "brief"
	AutoDeep  AutoRegistration = "deep"
)

func (a AutoRegistration) valid() bool {
	return a == AutoNone || a == AutoBrief || a == AutoDeep
}

type Block struct {
	Experience int  `json:"experience"`
	Damage     int  `json:"damage"`
	Kind       Kind `json:"kind"`
}

type State struct {
	SchemaVersion         int              `json:"schema_version"`
	ExperienceTotal       int              `json:"experience_total"`
	DamageTotal           int              `json:"damage_total"`
	BossHP                int              `json:"boss_hp"`
	BossName              string           `json:"boss_name"`
	LastLevelAnnounced    int              `json:"last_level_announced"`
	History               []Block          `json:"history"`
	StoryLog              []string         `json:"story_log"`
	TotalFocusSeconds     int              `json:"total_focus_seconds"`
	TotalBreakSeconds     int              `json:"total_break_seconds"`
	SessionFocusSeconds   int              `json:"session_focus_seconds"`
	SessionBreakSeconds   int              `json:"session_break_seconds"`
	AutoRegistration      AutoRegistration `json:"auto_registration_state"`
	AutoRegistrationIndex *int             `json:"auto_registration_history_index"`
	Difficulty            Difficulty       `json:"difficulty"`
	TokensSpent           int              `json:"tokens_spent"`
	FocusSessionID        string           `json:"focus_session_id"`
}

// NewState is the first-run state: zero counters and a fresh level-1 boss.
func NewState(src random.Source, ids id.Generator) State {
	return State{
		SchemaVersion:      SchemaVersion,
		BossHP:             random.Between(src, BaseHPMin, BaseHPMax),
		BossName:           BossName(src),
		LastLevelAnnounced: 1,
		History:            []Block{},
		StoryLog:           []string{},
		AutoRegistration:   AutoNone,
		Difficulty:         DifficultyNormal,
		FocusSessionID:     ids.New(),
	}
}

// Clone returns a copy that shares no slices or pointers with s.
func (s State) Clone() State {
	out := s
	out.History = append([]Block(nil), s.History...)
	out.StoryLog = append([]string(nil), s.StoryLog...)
	if s.AutoRegistrationIndex != nil {
		idx := *s.AutoRegistrationIndex
		out.AutoRegistrationIndex = &idx
	}
	return out
}

// Persisted state keys, also used to report which fields a load had to repair.
const (
	FieldExperienceTotal       = "experience_total"
	FieldDamageTotal           = "damage_total"
	FieldBossHP                = "boss_hp"
	FieldBossName              = "boss_name"
	FieldLastLevelAnnounced    = "last_level_announced"
	FieldHistory               = "history"
	FieldStoryLog              = "story_log"
	FieldTotalFocusSeconds     = "total_focus_seconds"
	FieldTotalBreakSeconds     = "total_break_seconds"
	FieldSessionFocusSeconds   = "session_focus_seconds"
	FieldSessionBreakSeconds   = "session_break_seconds"
	FieldAutoRegistration      = "auto_registration_state"
	FieldAutoRegistrationIndex = "auto_registration_history_index"
	FieldDifficulty            = "difficulty"
	FieldTokensSpent           = "tokens_spent"
	FieldFocusSessionID        = "focus_session_id"
)

// Restored is a state decoded key by key. Absent holds every key that was
// missing or failed to decode; those fields are left at their zero value.
type Restored struct {
	State  State
	Absent map[string]bool
}

// Normalize backfills and coerces a restored state so every invariant holds.
// It returns the keys it had to repair, sorted in field order.
func Normalize(r Restored, src random.Source, ids id.Generator) (State, []string) {
	s := r.State.Clone()
	var repaired []string
	mark := func(field string) { repaired = append(repaired, field) }
	absent := func(field string) bool { return r.Absent[field] }

	s.SchemaVersion = SchemaVersion

	counters := []struct {
		field string
		value *int
	}{
		{FieldExperienceTotal, &s.ExperienceTotal},
		{FieldDamageTotal, &s.DamageTotal},
		{FieldTotalFocusSeconds, &s.TotalFocusSeconds},
		{FieldTotalBreakSeconds, &s.TotalBreakSeconds},
		{FieldSessionFocusSeconds, &s.SessionFocusSeconds},
		{FieldSessionBreakSeconds, &s.SessionBreakSeconds},
		{FieldTokensSpent, &s.TokensSpent},
	}
	for _, c := range counters {
		if *c.value < 0 {
			*c.value = 0
			mark(c.field)
		} else if absent(c.field) {
			mark(c.field)
		}
	}

	if absent(FieldBossHP) || s.BossHP <= 0 {
		s.BossHP = BaseHPMax
		mark(FieldBossHP)
	}
	if s.BossName == "" {
		s.BossName = BossName(src)
		if s.BossName == "" {
			s.BossName = DefaultBossName
		}
		mark(FieldBossName)
	}
	if absent(FieldLastLevelAnnounced) || s.LastLevelAnnounced < 1 {
		s.LastLevelAnnounced = Level(s.ExperienceTotal)
		mark(FieldLastLevelAnnounced)
	}

	if s.History == nil {
		s.History = []Block{}
		if absent(FieldHistory) {
			mark(FieldHistory)
		}
	}
	for i, b := range s.History {
		if b.Kind.Validate() == nil {
			continue
		}
		if b.Experience >= ExpDeep {
			s.History[i].Kind = KindDeep
		} else {
			s.History[i].Kind = KindMini
		}
		mark(FieldHistory)
	}
	if s.StoryLog == nil {
		s.StoryLog = []string{}
		if absent(FieldStoryLog) {
			mark(FieldStoryLog)
		}
	}

	if difficulty, err := ParseDifficulty(string(s.Difficulty)); err != nil {
		s.Difficulty = DifficultyNormal
		mark(FieldDifficulty)
	} else {
		s.Difficulty = difficulty
	}

	if !s.AutoRegistration.valid() {
		s.AutoRegistration = AutoNone
		mark(FieldAutoRegistration)
	}
	if s.AutoRegistration != AutoBrief && s.AutoRegistrationIndex != nil {
		s.AutoRegistrationIndex = nil
		mark(FieldAutoRegistrationIndex)
	}

	if s.FocusSessionID == "" {
		s.FocusSessionID = ids.New()
		mark(FieldFocusSessionID)
	}
	return s, dedupe(repaired)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
