package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	"flowrpg/internal/modules/progression/domain"
	progressionout "flowrpg/internal/modules/progression/port/out"
	"flowrpg/internal/platform/clock"
	apperrors "flowrpg/internal/platform/errors"
	"flowrpg/internal/platform/id"
	"flowrpg/internal/platform/random"
)

// ProgressionService owns the ledger and the timer. Every operation is
// serialized, and every mutation is saved before it returns.
type ProgressionService struct {
	mu       sync.Mutex
	store    progressionout.StateStore
	exporter progressionout.ChronicleExporter
	clock    clock.Clock
	rng      random.Source
	ids      id.Generator
	logger   hclog.Logger
	ledger   *domain.Ledger
	timer    *domain.SessionTimer
}

// OpenProgressionService loads (or seeds) the persisted state.
func OpenProgressionService(
	ctx context.Context,
	store progressionout.StateStore,
	exporter progressionout.ChronicleExporter,
	clk clock.Clock,
	rng random.Source,
	ids id.Generator,
	logger hclog.Logger,
) (*ProgressionService, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &ProgressionService{store: store, exporter: exporter, clock: clk, rng: rng, ids: ids, logger: logger}
	state, dirty, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.ledger = domain.NewLedger(state, rng, ids)
	s.timer = domain.NewSessionTimer(s.ledger)
	if dirty {
		if err := s.save(ctx); err != nil {
			s.logger.Warn("initial save failed", "error", err)
		}
	}
	return s, nil
}

func (s *ProgressionService) load(ctx context.Context) (domain.State, bool, error) {
	restored, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		s.logger.Info("no saved state, seeding a new one")
		return domain.NewState(s.rng, s.ids), true, nil
	case errors.Is(err, apperrors.ErrCorruptState):
		s.logger.Warn("saved state is corrupt, starting over", "error", err)
		return domain.NewState(s.rng, s.ids), true, nil
	case err != nil:
		return domain.State{}, false, fmt.Errorf("load progression state: %w", err)
	}
	state, repaired := domain.Normalize(restored, s.rng, s.ids)
	if len(repaired) > 0 {
		s.logger.Warn("repaired saved state", "fields", repaired)
	}
	return state, len(repaired) > 0, nil
}

func (s *ProgressionService) save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.ledger.State()); err != nil {
		s.logger.Error("save state failed", "error", err)
		return fmt.Errorf("%w: %v", apperrors.ErrPersistenceWriteFailed, err)
	}
	return nil
}

func (s *ProgressionService) snapshot() domain.Snapshot {
	return domain.Snapshot{
		State:   s.ledger.State(),
		Mode:    s.timer.Mode(),
		Running: s.timer.Running(),
		Elapsed: s.timer.Elapsed(),
	}
}

// commit saves after a mutation. A failed save keeps the in-memory result.
func (s *ProgressionService) commit(ctx context.Context, events []domain.Event) (domain.Snapshot, []domain.Event, error) {
	err := s.save(ctx)
	return s.snapshot(), events, err
}

func (s *ProgressionService) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *ProgressionService) StoryTail(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.StoryTail(n)
}

func (s *ProgressionService) Start() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Start()
	return s.snapshot()
}

func (s *ProgressionService) Pause() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Pause()
	return s.snapshot()
}

func (s *ProgressionService) Toggle() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.timer.Start() {
		s.timer.Pause()
	}
	return s.snapshot()
}

// Tick advances the running mode by one second.
func (s *ProgressionService) Tick(ctx context.Context) (domain.Snapshot, []domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.timer.Running() {
		return s.snapshot(), nil, nil
	}
	return s.commit(ctx, s.timer.Tick(s.ledger))
}

// SwitchMode flips focus and break; autoStart restarts the clock afterwards.
func (s *ProgressionService) SwitchMode(ctx context.Context, autoStart bool) (domain.Snapshot, []domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.SwitchMode(s.ledger)
	if autoStart {
		s.timer.Start()
	}
	return s.commit(ctx, nil)
}

func (s *ProgressionService) ApplyBlock(ctx context.Context, kind domain.Kind) (domain.Snapshot, []domain.Event, error) {
	if err := kind.Validate(); err != nil {
		return s.Snapshot(), nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, s.ledger.ApplyBlock(kind, false))
}

func (s *ProgressionService) ClaimToken(ctx context.Context, cost int) (domain.Snapshot, []domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, err := s.ledger.ClaimToken(cost)
	if err != nil {
		return s.snapshot(), nil, err
	}
	return s.commit(ctx, events)
}

func (s *ProgressionService) SpawnNewBoss(ctx context.Context) (domain.Snapshot, []domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, s.ledger.SpawnNewBoss())
}

func (s *ProgressionService) CycleDifficulty(ctx context.Context) (domain.Snapshot, []domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, s.ledger.CycleDifficulty())
}

// ResetAll wipes all progress. Confirmation is the caller's responsibility.
func (s *ProgressionService) ResetAll(ctx context.Context) (domain.Snapshot, []domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.ledger.ResetAll()
	s.timer.Reset()
	return s.commit(ctx, events)
}

func (s *ProgressionService) ForgetTimes(ctx context.Context) (domain.Snapshot, []domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, s.timer.ForgetTimes(s.ledger))
}

// ExportChronicle writes the full story log through the exporter.
func (s *ProgressionService) ExportChronicle(ctx context.Context, path string) (string, domain.Chronicle, error) {
	if s.exporter == nil {
		return "", domain.Chronicle{}, fmt.Errorf("chronicle exporter is not configured")
	}
	s.mu.Lock()
	state := s.ledger.State()
	s.mu.Unlock()

	chronicle := domain.Chronicle{
		BossName:        state.BossName,
		Level:           domain.Level(state.ExperienceTotal),
		ExperienceTotal: state.ExperienceTotal,
		Difficulty:      state.Difficulty,
		Entries:         state.StoryLog,
		ExportedAt:      s.clock.Now(),
	}
	written, err := s.exporter.Export(ctx, path, chronicle)
	if err != nil {
		return "", domain.Chronicle{}, err
	}
	return written, chronicle, nil
}
