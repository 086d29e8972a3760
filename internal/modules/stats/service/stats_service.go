package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flowrpg/internal/modules/stats/domain"
	statsout "flowrpg/internal/modules/stats/port/out"
	"flowrpg/internal/platform/clock"
	apperrors "flowrpg/internal/platform/errors"
	"flowrpg/internal/platform/id"
)

const recentJournalLimit = 10

// Unlock is an achievement granted by the call that returned it.
type Unlock struct {
	Achievement domain.Achievement
	At          time.Time
}

type Summary struct {
	SessionsToday         int
	CompletedTotal        int
	AverageSessionSeconds int
	WeeklyFocusSeconds    int
	CurrentStreak         int
	BestStreak            int
	BossesDefeated        int
	LastSessionAt         time.Time
	HasSessions           bool
	Unlocked              map[string]time.Time
	Recent                []domain.JournalEntry
}

type StatsService struct {
	clock clock.Clock
	idGen id.Generator
	store statsout.Store
	loc   *time.Location
}

// NewStatsService buckets sessions into days using loc; nil means UTC.
func NewStatsService(clock clock.Clock, idGen id.Generator, store statsout.Store, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{clock: clock, idGen: idGen, store: store, loc: loc}
}

func (s *StatsService) RecordSession(ctx context.Context, sessionID, kind string, focusSeconds, level int) ([]Unlock, error) {
	kind = strings.TrimSpace(kind)
	if kind != "deep" && kind != "mini" {
		return nil, fmt.Errorf("%w: block kind %q", apperrors.ErrInvalidInput, kind)
	}
	if sessionID == "" {
		sessionID = s.idGen.New()
	}
	now := s.clock.Now()
	record := domain.SessionRecord{
		ID:           sessionID,
		Day:          s.day(now),
		RecordedAt:   now,
		FocusSeconds: max(focusSeconds, 0),
		Kind:         kind,
		Completed:    kind == "deep",
	}
	if err := s.store.InsertSession(ctx, record); err != nil {
		return nil, err
	}
	if err := s.journal(ctx, now, domain.JournalBlockApplied, level, kind); err != nil {
		return nil, err
	}
	return s.evaluate(ctx, level)
}

// CompleteSession promotes a mini credit to a completed deep session. A
// session the store has never seen is recorded as a fresh deep one.
func (s *StatsService) CompleteSession(ctx context.Context, sessionID string, focusSeconds, level int) ([]Unlock, error) {
	if sessionID == "" {
		return s.RecordSession(ctx, "", "deep", focusSeconds, level)
	}
	now := s.clock.Now()
	found, err := s.store.CompleteSession(ctx, sessionID, max(focusSeconds, 0), now)
	if err != nil {
		return nil, err
	}
	if !found {
		return s.RecordSession(ctx, sessionID, "deep", focusSeconds, level)
	}
	return s.evaluate(ctx, level)
}

func (s *StatsService) Journal(ctx context.Context, kind string, level int, detail string) ([]Unlock, error) {
	if strings.TrimSpace(kind) == "" {
		return nil, fmt.Errorf("%w: journal kind is required", apperrors.ErrInvalidInput)
	}
	if err := s.journal(ctx, s.clock.Now(), kind, level, detail); err != nil {
		return nil, err
	}
	return s.evaluate(ctx, level)
}

func (s *StatsService) Summary(ctx context.Context) (Summary, error) {
	now := s.clock.Now().In(s.loc)
	today := s.day(now)
	weekStart := s.day(now.AddDate(0, 0, -6))

	var out Summary
	var err error
	if out.SessionsToday, err = s.store.CountCompleted(ctx, today); err != nil {
		return Summary{}, err
	}
	if out.CompletedTotal, err = s.store.CountCompleted(ctx, ""); err != nil {
		return Summary{}, err
	}
	if out.AverageSessionSeconds, err = s.store.AverageCompletedSeconds(ctx); err != nil {
		return Summary{}, err
	}
	if out.WeeklyFocusSeconds, err = s.store.FocusSecondsSince(ctx, weekStart); err != nil {
		return Summary{}, err
	}
	days, err := s.store.CompletedDays(ctx)
	if err != nil {
		return Summary{}, err
	}
	out.CurrentStreak, out.BestStreak = domain.Streaks(days, now)
	if out.BossesDefeated, err = s.store.CountBossesDefeated(ctx); err != nil {
		return Summary{}, err
	}
	if out.LastSessionAt, out.HasSessions, err = s.store.LastSessionAt(ctx); err != nil {
		return Summary{}, err
	}
	if out.Unlocked, err = s.store.Unlocked(ctx); err != nil {
		return Summary{}, err
	}
	if out.Recent, err = s.store.RecentJournal(ctx, recentJournalLimit); err != nil {
		return Summary{}, err
	}
	return out, nil
}

// Reset clears history and achievements, leaving a single journal entry
// recording the reset.
func (s *StatsService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	return s.journal(ctx, s.clock.Now(), domain.JournalProgressReset, 1, "all progress cleared")
}

func (s *StatsService) journal(ctx context.Context, at time.Time, kind string, level int, detail string) error {
	return s.store.AppendJournal(ctx, domain.JournalEntry{
		ID:     s.idGen.New(),
		At:     at,
		Kind:   kind,
		Level:  level,
		Detail: detail,
	})
}

func (s *StatsService) evaluate(ctx context.Context, level int) ([]Unlock, error) {
	today := s.day(s.clock.Now())
	var c domain.Counters
	var err error
	if c.CompletedTotal, err = s.store.CountCompleted(ctx, ""); err != nil {
		return nil, err
	}
	if c.CompletedToday, err = s.store.CountCompleted(ctx, today); err != nil {
		return nil, err
	}
	if c.BossesDefeated, err = s.store.CountBossesDefeated(ctx); err != nil {
		return nil, err
	}
	c.Level = level

	var unlocked []Unlock
	now := s.clock.Now()
	for _, a := range domain.Earned(c) {
		fresh, err := s.store.Unlock(ctx, a.ID, now)
		if err != nil {
			return nil, err
		}
		if fresh {
			unlocked = append(unlocked, Unlock{Achievement: a, At: now})
		}
	}
	return unlocked, nil
}

func (s *StatsService) day(t time.Time) string {
	return t.In(s.loc).Format(domain.DayLayout)
}
