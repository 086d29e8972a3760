package domain

import (
	"fmt"

	apperrors "flowrpg/internal/platform/errors"
	"flowrpg/internal/platform/id"
	"flowrpg/internal/platform/random"
)

// Ledger applies every progression mutation to a single State.
// It performs no I/O; persistence is the caller's job.
type Ledger struct {
	state State
	rng   random.Source
	ids   id.Generator
}

func NewLedger(state State, rng random.Source, ids id.Generator) *Ledger {
	return &Ledger{state: state.Clone(), rng: rng, ids: ids}
}

// State returns a copy of the current state.
func (l *Ledger) State() State {
	return l.state.Clone()
}

func (l *Ledger) Level() int {
	return Level(l.state.ExperienceTotal)
}

func (l *Ledger) ExperienceInLevel() int {
	return ExperienceInLevel(l.state.ExperienceTotal)
}

func (l *Ledger) HPRemaining() int {
	return max(0, l.state.BossHP-l.state.DamageTotal)
}

func (l *Ledger) TokensAvailable() int {
	return TokensAvailable(l.state.ExperienceTotal, l.state.TokensSpent)
}

func (l *Ledger) BalanceSeconds() int {
	return BalanceSeconds(l.state.TotalFocusSeconds, l.state.TotalBreakSeconds, l.state.Difficulty)
}

// StoryTail returns the last n story entries, oldest first.
func (l *Ledger) StoryTail(n int) []string {
	log := l.state.StoryLog
	if n <= 0 || len(log) == 0 {
		return []string{}
	}
	if n > len(log) {
		n = len(log)
	}
	return append([]string(nil), log[len(log)-n:]...)
}

// ApplyBlock credits a deep or mini block at the current level.
func (l *Ledger) ApplyBlock(kind Kind, auto bool) []Event {
	exp := kind.Experience()
	damage := ScaledDamage(kind, l.Level())

	l.state.ExperienceTotal += exp
	l.state.DamageTotal += damage
	l.state.History = append(l.state.History, Block{Experience: exp, Damage: damage, Kind: kind})

	events := []Event{{
		Kind:       EventBlockApplied,
		BlockKind:  kind,
		Auto:       auto,
		Index:      len(l.state.History) - 1,
		Experience: exp,
		Damage:     damage,
		Level:      l.Level(),
	}}
	if l.HPRemaining() == 0 {
		events = append(events, Event{Kind: EventBossDefeated, BossName: l.state.BossName, Level: l.Level()})
	}
	return append(events, l.announceLevel()...)
}

// UpgradeBlock rewrites the mini block at index into a deep one, crediting
// only the difference. A missing index leaves the state untouched.
func (l *Ledger) UpgradeBlock(index int) ([]Event, error) {
	if index < 0 || index >= len(l.state.History) {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrMissingHistoryIndex, index)
	}
	level := l.Level()
	deltaExp := ExpDeep - ExpMini
	deltaDamage := ScaledDamage(KindDeep, level) - ScaledDamage(KindMini, level)

	l.state.ExperienceTotal += deltaExp
	l.state.DamageTotal += deltaDamage
	l.state.History[index] = Block{Experience: ExpDeep, Damage: ScaledDamage(KindDeep, level), Kind: KindDeep}

	events := []Event{{
		Kind:       EventBlockUpgraded,
		BlockKind:  KindDeep,
		Auto:       true,
		Index:      index,
		Experience: deltaExp,
		Damage:     deltaDamage,
		Level:      l.Level(),
	}}
	return append(events, l.announceLevel()...), nil
}

func (l *Ledger) announceLevel() []Event {
	level := l.Level()
	if level <= l.state.LastLevelAnnounced {
		return nil
	}
	line := StoryLine(level, StorySnippet(l.rng))
	l.state.StoryLog = append(l.state.StoryLog, line)
	l.state.LastLevelAnnounced = level
	return []Event{{Kind: EventLevelUp, Level: level, Message: line}}
}

// SpawnNewBoss replaces the boss with one scaled to the current level.
func (l *Ledger) SpawnNewBoss() []Event {
	l.state.BossHP = RollBossHP(l.Level(), l.rng)
	l.state.DamageTotal = 0
	l.state.BossName = BossName(l.rng)
	return []Event{{Kind: EventBossSpawned, BossName: l.state.BossName, BossHP: l.state.BossHP, Level: l.Level()}}
}

func (l *Ledger) ClaimToken(cost int) ([]Event, error) {
	if cost <= 0 {
		return nil, fmt.Errorf("%w: token cost must be positive", apperrors.ErrInvalidInput)
	}
	if available := l.TokensAvailable(); available < cost {
		return nil, fmt.Errorf("%w: need %d, have %d", apperrors.ErrInsufficientTokens, cost, available)
	}
	l.state.TokensSpent += cost
	return []Event{{Kind: EventTokensClaimed, Cost: cost, Tokens: l.TokensAvailable(), Level: l.Level()}}, nil
}

func (l *Ledger) CycleDifficulty() []Event {
	l.state.Difficulty = l.state.Difficulty.Next()
	return []Event{{Kind: EventDifficultyChanged, Difficulty: l.state.Difficulty, Level: l.Level()}}
}

// ResetAll wipes all progress and spawns a fresh level-1 boss.
func (l *Ledger) ResetAll() []Event {
	l.state = NewState(l.rng, l.ids)
	return []Event{
		{Kind: EventProgressReset, Level: 1},
		{Kind: EventBossSpawned, BossName: l.state.BossName, BossHP: l.state.BossHP, Level: 1},
	}
}

// ─── timer hooks ─────────────────────────────────────────────────────────────

func (l *Ledger) recordSecond(mode Mode, elapsed int) {
	if mode == ModeFocus {
		l.state.SessionFocusSeconds = elapsed
		l.state.TotalFocusSeconds++
		return
	}
	l.state.SessionBreakSeconds = elapsed
	l.state.TotalBreakSeconds++
}

func (l *Ledger) storeSession(mode Mode, elapsed int) {
	if mode == ModeFocus {
		l.state.SessionFocusSeconds = elapsed
		return
	}
	l.state.SessionBreakSeconds = elapsed
}

func (l *Ledger) sessionSeconds(mode Mode) int {
	if mode == ModeFocus {
		return l.state.SessionFocusSeconds
	}
	return l.state.SessionBreakSeconds
}

// beginFocusSession scopes auto-classification to a new continuous focus session.
func (l *Ledger) beginFocusSession() {
	l.state.AutoRegistration = AutoNone
	l.state.AutoRegistrationIndex = nil
	l.state.FocusSessionID = l.ids.New()
}

func (l *Ledger) forgetTimes() {
	l.state.TotalFocusSeconds = 0
	l.state.TotalBreakSeconds = 0
	l.state.SessionFocusSeconds = 0
	l.state.SessionBreakSeconds = 0
	l.beginFocusSession()
}

// classify runs the auto classifier against the current focus session.
func (l *Ledger) classify(elapsed int) []Event {
	switch Classify(elapsed, l.state.AutoRegistration) {
	case ActionApplyMini:
		events := l.ApplyBlock(KindMini, true)
		idx := len(l.state.History) - 1
		l.state.AutoRegistration = AutoBrief
		l.state.AutoRegistrationIndex = &idx
		return events
	case ActionUpgrade:
		var events []Event
		if l.state.AutoRegistrationIndex == nil {
			// brief without an index: credit the whole deep block
			events = l.ApplyBlock(KindDeep, true)
		} else {
			// a vanished index only loses the upgrade credit
			events, _ = l.UpgradeBlock(*l.state.AutoRegistrationIndex)
		}
		l.state.AutoRegistration = AutoDeep
		l.state.AutoRegistrationIndex = nil
		return events
	case ActionApplyDeep:
		events := l.ApplyBlock(KindDeep, true)
		l.state.AutoRegistration = AutoDeep
		l.state.AutoRegistrationIndex = nil
		return events
	default:
		return nil
	}
}
