package domain_test

import (
	"fmt"

	"flowrpg/internal/modules/progression/domain"
	"flowrpg/internal/platform/random"
)

type seqIDs struct{ n int }

func (s *seqIDs) New() string {
	s.n++
	return fmt.Sprintf("focus-%d", s.n)
}

func newLedger(seed int64, mutate func(*domain.State)) *domain.Ledger {
	rng := random.New(seed)
	ids := &seqIDs{}
	state := domain.NewState(rng, ids)
	if mutate != nil {
		mutate(&state)
	}
	return domain.NewLedger(state, rng, ids)
}

func tickN(timer *domain.SessionTimer, ledger *domain.Ledger, n int) []domain.Event {
	var events []domain.Event
	for i := 0; i < n; i++ {
		events = append(events, timer.Tick(ledger)...)
	}
	return events
}

func countKind(events []domain.Event, kind domain.EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
