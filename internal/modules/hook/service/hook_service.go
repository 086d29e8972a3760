package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flowrpg/internal/modules/hook/domain"
	"flowrpg/internal/modules/hook/dto"
	hookout "flowrpg/internal/modules/hook/port/out"
	"flowrpg/internal/platform/clock"
	"flowrpg/internal/platform/id"

	hclog "github.com/hashicorp/go-hclog"
)

const defaultDispatchTimeout = 2 * time.Second

type Options struct {
	// KnownEvent reports whether a manifest may subscribe to a kind.
	KnownEvent func(string) bool
	// Timeout bounds each hook delivery.
	Timeout time.Duration
}

type HookService struct {
	store  hookout.ManifestStore
	host   hookout.Host
	clock  clock.Clock
	idGen  id.Generator
	logger hclog.Logger
	opts   Options
}

func NewHookService(store hookout.ManifestStore, host hookout.Host, clock clock.Clock, idGen id.Generator, logger hclog.Logger, opts Options) *HookService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultDispatchTimeout
	}
	return &HookService{store: store, host: host, clock: clock, idGen: idGen, logger: logger, opts: opts}
}

func (s *HookService) List(ctx context.Context) ([]dto.HookInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HookInfo, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, dto.HookInfo{
			Name:    m.Name,
			Version: m.Version,
			Enabled: m.Enabled,
			Binary:  m.Binary,
			Events:  append([]string(nil), m.Events...),
		})
	}
	return out, nil
}

func (s *HookService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(s.opts.KnownEvent); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.BinaryReachable = fileExists(m.Binary)
		if !result.BinaryReachable {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
			results = append(results, result)
			continue
		}
		result.ChecksumValid = checksumMatches(m.Binary, m.SHA256) == nil
		if !result.ChecksumValid {
			result.Error = "checksum mismatch"
			results = append(results, result)
			continue
		}
		if m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.HandshakeOK = true
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// Dispatch delivers input to each enabled hook subscribed to its kind, one
// at a time. Hooks that fail are reported and skipped.
func (s *HookService) Dispatch(ctx context.Context, input dto.EventInput) (dto.DispatchOutput, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return dto.DispatchOutput{}, err
	}
	at := input.At
	if at.IsZero() {
		at = s.clock.Now()
	}
	event := domain.Event{
		ID:          s.idGen.New(),
		Kind:        input.Kind,
		At:          at,
		Level:       input.Level,
		Message:     input.Message,
		PayloadJSON: input.PayloadJSON,
	}
	if err := event.Validate(); err != nil {
		return dto.DispatchOutput{}, err
	}

	var out dto.DispatchOutput
	for _, m := range manifests {
		if !m.Enabled || !m.Subscribes(event.Kind) {
			continue
		}
		if err := s.deliver(ctx, m, event); err != nil {
			s.logger.Warn("hook delivery failed", "hook", m.Name, "event", event.Kind, "error", err)
			out.Failures = append(out.Failures, dto.DispatchFailure{Hook: m.Name, Error: err.Error()})
			continue
		}
		s.logger.Debug("hook delivered", "hook", m.Name, "event", event.Kind)
		out.Delivered = append(out.Delivered, m.Name)
	}
	return out, nil
}

func (s *HookService) deliver(ctx context.Context, m domain.Manifest, event domain.Event) error {
	if err := m.Validate(s.opts.KnownEvent); err != nil {
		return err
	}
	if err := checksumMatches(m.Binary, m.SHA256); err != nil {
		return err
	}
	if s.host == nil {
		return fmt.Errorf("no hook host configured")
	}
	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	ack, err := s.host.HandleEvent(callCtx, m, event)
	if err != nil {
		return err
	}
	if !ack.Accepted {
		if ack.Note != "" {
			return fmt.Errorf("%w: %s", domain.ErrEventRejected, ack.Note)
		}
		return domain.ErrEventRejected
	}
	return nil
}

func (s *HookService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(s.opts.KnownEvent); err != nil {
			return nil, fmt.Errorf("hook %q: %w", manifest.Name, err)
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate hook name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read hook binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	if hex.EncodeToString(hash[:]) != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
