package domain

type Mode string

const (
	ModeFocus Mode = "focus"
	ModeBreak Mode = "break"
)

const milestoneSeconds = 10 * 60

// SessionTimer is the one-second stopwatch over the focus and break modes.
// Only the active mode accumulates.
type SessionTimer struct {
	mode    Mode
	running bool
	elapsed int
}

// NewSessionTimer starts paused in focus, resuming the persisted focus session.
func NewSessionTimer(l *Ledger) *SessionTimer {
	return &SessionTimer{mode: ModeFocus, elapsed: l.sessionSeconds(ModeFocus)}
}

func (t *SessionTimer) Mode() Mode { return t.mode }
func (t *SessionTimer) Running() bool { return t.running }
func (t *SessionTimer) Elapsed() int { return t.elapsed }

// Start reports whether the timer changed state.
func (t *SessionTimer) Start() bool {
	if t.running {
		return false
	}
	t.running = true
	return true
}

func (t *SessionTimer) Pause() bool {
	if !t.running {
		return false
	}
	t.running = false
	return true
}

// Tick advances one second. A paused timer ignores ticks and returns nil.
func (t *SessionTimer) Tick(l *Ledger) []Event {
	if !t.running {
		return nil
	}
	t.elapsed++
	l.recordSecond(t.mode, t.elapsed)

	if t.mode == ModeBreak {
		if l.BalanceSeconds() == 0 {
			return []Event{{Kind: EventBreakBudgetExhausted, Level: l.Level()}}
		}
		return nil
	}

	events := l.classify(t.elapsed)
	if t.elapsed%milestoneSeconds == 0 {
		events = append(events, Event{Kind: EventFocusMilestone, Minutes: t.elapsed / 60, Level: l.Level()})
	}
	return events
}

// SwitchMode stops the clock and flips between focus and break. Entering
// focus starts a new auto-classification scope.
func (t *SessionTimer) SwitchMode(l *Ledger) {
	l.storeSession(t.mode, t.elapsed)
	t.running = false
	if t.mode == ModeFocus {
		t.mode = ModeBreak
	} else {
		t.mode = ModeFocus
		l.beginFocusSession()
	}
	t.elapsed = l.sessionSeconds(t.mode)
}

// ForgetTimes zeroes every time counter. Mode and running state are kept.
func (t *SessionTimer) ForgetTimes(l *Ledger) []Event {
	l.forgetTimes()
	t.elapsed = 0
	return []Event{{Kind: EventTimesForgotten, Level: l.Level()}}
}

// Reset returns the timer to paused focus at zero, as after ResetAll.
func (t *SessionTimer) Reset() {
	t.mode = ModeFocus
	t.running = false
	t.elapsed = 0
}
