package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"flowrpg/internal/modules/progression/domain"
	"flowrpg/internal/modules/progression/service"
	apperrors "flowrpg/internal/platform/errors"
	"flowrpg/internal/platform/random"
)

type memStore struct {
	restored domain.Restored
	loadErr  error
	saveErr  error
	saved    []domain.State
}

func (s *memStore) Load(context.Context) (domain.Restored, error) {
	return s.restored, s.loadErr
}

func (s *memStore) Save(_ context.Context, state domain.State) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, state.Clone())
	return nil
}

func (s *memStore) last() domain.State {
	return s.saved[len(s.saved)-1]
}

type fakeExporter struct {
	path      string
	chronicle domain.Chronicle
}

func (e *fakeExporter) Export(_ context.Context, path string, c domain.Chronicle) (string, error) {
	e.path, e.chronicle = path, c
	return path, nil
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

type seqIDs struct{ n int }

func (s *seqIDs) New() string {
	s.n++
	return fmt.Sprintf("focus-%d", s.n)
}

func open(t *testing.T, store *memStore) *service.ProgressionService {
	t.Helper()
	svc, err := service.OpenProgressionService(context.Background(), store, &fakeExporter{}, fixedClock{}, random.New(7), &seqIDs{}, hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	return svc
}

func TestOpenSeedsFreshStateWhenMissing(t *testing.T) {
	t.Parallel()
	store := &memStore{loadErr: apperrors.ErrNotFound}
	svc := open(t, store)

	snap := svc.Snapshot()
	if snap.Level() != 1 || snap.State.ExperienceTotal != 0 {
		t.Fatalf("expected level 1 with no experience, got %+v", snap.State)
	}
	if snap.State.BossHP < domain.BaseHPMin || snap.State.BossHP > domain.BaseHPMax {
		t.Fatalf("boss hp %d out of range", snap.State.BossHP)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected the seeded state to be saved once, got %d saves", len(store.saved))
	}
	if snap.Mode != domain.ModeFocus || snap.Running {
		t.Fatalf("expected paused focus, got %s running=%v", snap.Mode, snap.Running)
	}
}

func TestOpenRepairsRestoredState(t *testing.T) {
	t.Parallel()
	store := &memStore{restored: domain.Restored{
		State:  domain.State{ExperienceTotal: 130, BossHP: -3, Difficulty: "avanzado"},
		Absent: map[string]bool{domain.FieldBossName: true},
	}}
	svc := open(t, store)

	snap := svc.Snapshot()
	if snap.State.BossHP != 30 {
		t.Fatalf("expected boss hp reset to 30, got %d", snap.State.BossHP)
	}
	if snap.State.BossName == "" {
		t.Fatalf("expected a regenerated boss name")
	}
	if snap.State.Difficulty != domain.DifficultyHard {
		t.Fatalf("expected legacy difficulty mapped to hard, got %s", snap.State.Difficulty)
	}
	if snap.State.LastLevelAnnounced != 2 {
		t.Fatalf("expected last level derived as 2, got %d", snap.State.LastLevelAnnounced)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected repaired state to be saved, got %d saves", len(store.saved))
	}
}

func TestOpenFailsOnUnreadableStore(t *testing.T) {
	t.Parallel()
	store := &memStore{loadErr: errors.New("permission denied")}
	_, err := service.OpenProgressionService(context.Background(), store, nil, fixedClock{}, random.New(1), &seqIDs{}, hclog.NewNullLogger())
	if err == nil {
		t.Fatalf("expected load error")
	}
}

func TestOpenWithoutLogger(t *testing.T) {
	t.Parallel()
	store := &memStore{restored: domain.Restored{
		State:  domain.State{ExperienceTotal: 40, BossHP: -1},
		Absent: map[string]bool{domain.FieldBossName: true},
	}}
	svc, err := service.OpenProgressionService(context.Background(), store, &fakeExporter{}, fixedClock{}, random.New(3), &seqIDs{}, nil)
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	store.saveErr = errors.New("disk full")
	if _, _, err := svc.ApplyBlock(context.Background(), domain.KindDeep); !errors.Is(err, apperrors.ErrPersistenceWriteFailed) {
		t.Fatalf("expected ErrPersistenceWriteFailed, got %v", err)
	}
	if got := svc.Snapshot().State.ExperienceTotal; got != 40+domain.ExpDeep {
		t.Fatalf("expected %d experience, got %d", 40+domain.ExpDeep, got)
	}
}

func TestEveryMutationIsSaved(t *testing.T) {
	t.Parallel()
	store := &memStore{loadErr: apperrors.ErrNotFound}
	svc := open(t, store)
	ctx := context.Background()

	if _, _, err := svc.ApplyBlock(ctx, domain.KindDeep); err != nil {
		t.Fatalf("apply block: %v", err)
	}
	if got := store.last().ExperienceTotal; got != domain.ExpDeep {
		t.Fatalf("expected saved experience %d, got %d", domain.ExpDeep, got)
	}
	if _, _, err := svc.CycleDifficulty(ctx); err != nil {
		t.Fatalf("cycle difficulty: %v", err)
	}
	if got := store.last().Difficulty; got != domain.DifficultyHard {
		t.Fatalf("expected saved difficulty hard, got %s", got)
	}
	before := len(store.saved)
	svc.Start()
	svc.Pause()
	if len(store.saved) != before {
		t.Fatalf("start and pause must not save")
	}
}

func TestFailedSaveKeepsInMemoryProgress(t *testing.T) {
	t.Parallel()
	store := &memStore{loadErr: apperrors.ErrNotFound}
	svc := open(t, store)
	store.saveErr = errors.New("disk full")

	snap, events, err := svc.ApplyBlock(context.Background(), domain.KindMini)
	if !errors.Is(err, apperrors.ErrPersistenceWriteFailed) {
		t.Fatalf("expected ErrPersistenceWriteFailed, got %v", err)
	}
	if snap.State.ExperienceTotal != domain.ExpMini {
		t.Fatalf("expected in-memory experience %d, got %d", domain.ExpMini, snap.State.ExperienceTotal)
	}
	if len(events) == 0 || events[0].Kind != domain.EventBlockApplied {
		t.Fatalf("expected block_applied event, got %+v", events)
	}
	if svc.Snapshot().State.ExperienceTotal != domain.ExpMini {
		t.Fatalf("expected progress to survive the failed save")
	}
}

func TestClaimTokenWithoutEnoughTokens(t *testing.T) {
	t.Parallel()
	store := &memStore{loadErr: apperrors.ErrNotFound}
	svc := open(t, store)
	saves := len(store.saved)

	_, _, err := svc.ClaimToken(context.Background(), domain.TokenCostSmall)
	if !errors.Is(err, apperrors.ErrInsufficientTokens) {
		t.Fatalf("expected ErrInsufficientTokens, got %v", err)
	}
	if len(store.saved) != saves {
		t.Fatalf("a rejected claim must not save")
	}
}

func TestApplyBlockRejectsUnknownKind(t *testing.T) {
	t.Parallel()
	svc := open(t, &memStore{loadErr: apperrors.ErrNotFound})
	snap, _, err := svc.ApplyBlock(context.Background(), domain.Kind("nap"))
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if snap.State.BossName == "" {
		t.Fatalf("expected the current snapshot alongside the error")
	}
}

func TestTickOnlyAdvancesWhenRunning(t *testing.T) {
	t.Parallel()
	store := &memStore{loadErr: apperrors.ErrNotFound}
	svc := open(t, store)
	ctx := context.Background()

	snap, _, err := svc.Tick(ctx)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if snap.Elapsed != 0 || snap.State.TotalFocusSeconds != 0 {
		t.Fatalf("paused tick advanced the clock: %+v", snap)
	}

	svc.Start()
	for i := 0; i < domain.BriefThresholdSeconds; i++ {
		if snap, _, err = svc.Tick(ctx); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if snap.State.TotalFocusSeconds != domain.BriefThresholdSeconds {
		t.Fatalf("expected %d focus seconds, got %d", domain.BriefThresholdSeconds, snap.State.TotalFocusSeconds)
	}
	if snap.State.AutoRegistration != domain.AutoBrief || snap.State.ExperienceTotal != domain.ExpMini {
		t.Fatalf("expected a mini credit at the brief threshold, got %+v", snap.State)
	}
	if store.last().SessionFocusSeconds != domain.BriefThresholdSeconds {
		t.Fatalf("expected session seconds to be saved each tick")
	}
}

func TestSwitchModeAutoStart(t *testing.T) {
	t.Parallel()
	svc := open(t, &memStore{loadErr: apperrors.ErrNotFound})
	ctx := context.Background()

	snap, _, err := svc.SwitchMode(ctx, true)
	if err != nil {
		t.Fatalf("switch mode: %v", err)
	}
	if snap.Mode != domain.ModeBreak || !snap.Running {
		t.Fatalf("expected running break, got %s running=%v", snap.Mode, snap.Running)
	}
	snap, _, err = svc.SwitchMode(ctx, false)
	if err != nil {
		t.Fatalf("switch mode: %v", err)
	}
	if snap.Mode != domain.ModeFocus || snap.Running {
		t.Fatalf("expected paused focus, got %s running=%v", snap.Mode, snap.Running)
	}
}

func TestResetAllStopsTimer(t *testing.T) {
	t.Parallel()
	svc := open(t, &memStore{loadErr: apperrors.ErrNotFound})
	ctx := context.Background()
	if _, _, err := svc.ApplyBlock(ctx, domain.KindDeep); err != nil {
		t.Fatalf("apply: %v", err)
	}
	svc.Start()
	snap, events, err := svc.ResetAll(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if snap.Running || snap.State.ExperienceTotal != 0 || len(snap.State.History) != 0 {
		t.Fatalf("expected a clean paused state, got %+v", snap)
	}
	if len(events) == 0 || events[0].Kind != domain.EventProgressReset {
		t.Fatalf("expected progress_reset first, got %+v", events)
	}
}

func TestExportChronicle(t *testing.T) {
	t.Parallel()
	exporter := &fakeExporter{}
	svc, err := service.OpenProgressionService(context.Background(), &memStore{loadErr: apperrors.ErrNotFound}, exporter, fixedClock{}, random.New(3), &seqIDs{}, hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 10; i++ {
		if _, _, err := svc.ApplyBlock(context.Background(), domain.KindDeep); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	path, chronicle, err := svc.ExportChronicle(context.Background(), "/tmp/out.md")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if path != "/tmp/out.md" || exporter.path != path {
		t.Fatalf("unexpected export path %s", path)
	}
	if len(chronicle.Entries) != 1 || chronicle.Level != 2 {
		t.Fatalf("expected one level-up chapter at level 2, got %+v", chronicle)
	}
	if !chronicle.ExportedAt.Equal(fixedClock{}.Now()) {
		t.Fatalf("expected export time from the clock")
	}
}
