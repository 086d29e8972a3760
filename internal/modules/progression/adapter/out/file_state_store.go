package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"flowrpg/internal/modules/progression/domain"
	progressionout "flowrpg/internal/modules/progression/port/out"
	apperrors "flowrpg/internal/platform/errors"
)

// legacyKeys maps current keys to the names the desktop app wrote.
var legacyKeys = map[string]string{
	domain.FieldExperienceTotal:       "exp_total",
	domain.FieldDamageTotal:           "dano_total",
	domain.FieldBossHP:                "hp_total",
	domain.FieldLastLevelAnnounced:    "last_level",
	domain.FieldStoryLog:              "story",
	domain.FieldTotalFocusSeconds:     "total_focus_sec",
	domain.FieldTotalBreakSeconds:     "total_break_sec",
	domain.FieldSessionFocusSeconds:   "session_focus_sec",
	domain.FieldSessionBreakSeconds:   "session_break_sec",
	domain.FieldAutoRegistration:      "auto_registered_focus",
	domain.FieldAutoRegistrationIndex: "auto_last_idx_focus",
}

type FileStateStore struct {
	path string
}

func NewFileStateStore(path string) progressionout.StateStore {
	return &FileStateStore{path: path}
}

// Save writes the state to a temp file and renames it into place.
func (s *FileStateStore) Save(_ context.Context, state domain.State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode state: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Load decodes the state key by key so one bad field never loses the rest.
// An unparseable document is moved aside to <path>.corrupt.
func (s *FileStateStore) Load(_ context.Context) (domain.Restored, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Restored{}, apperrors.ErrNotFound
		}
		return domain.Restored{}, fmt.Errorf("read state: %w", err)
	}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		aside := s.path + ".corrupt"
		if renameErr := os.Rename(s.path, aside); renameErr != nil {
			return domain.Restored{}, fmt.Errorf("%w: %v (could not move aside: %v)", apperrors.ErrCorruptState, err, renameErr)
		}
		return domain.Restored{}, fmt.Errorf("%w: %v (moved to %s)", apperrors.ErrCorruptState, err, aside)
	}

	d := decoder{raw: raw, absent: map[string]bool{}}
	state := domain.State{
		SchemaVersion:         decodeField[int](d, "schema_version"),
		ExperienceTotal:       decodeField[int](d, domain.FieldExperienceTotal),
		DamageTotal:           decodeField[int](d, domain.FieldDamageTotal),
		BossHP:                decodeField[int](d, domain.FieldBossHP),
		BossName:              decodeField[string](d, domain.FieldBossName),
		LastLevelAnnounced:    decodeField[int](d, domain.FieldLastLevelAnnounced),
		History:               d.history(),
		StoryLog:              decodeField[[]string](d, domain.FieldStoryLog),
		TotalFocusSeconds:     decodeField[int](d, domain.FieldTotalFocusSeconds),
		TotalBreakSeconds:     decodeField[int](d, domain.FieldTotalBreakSeconds),
		SessionFocusSeconds:   decodeField[int](d, domain.FieldSessionFocusSeconds),
		SessionBreakSeconds:   decodeField[int](d, domain.FieldSessionBreakSeconds),
		AutoRegistration:      domain.AutoRegistration(decodeField[string](d, domain.FieldAutoRegistration)),
		AutoRegistrationIndex: decodeField[*int](d, domain.FieldAutoRegistrationIndex),
		Difficulty:            domain.Difficulty(decodeField[string](d, domain.FieldDifficulty)),
		TokensSpent:           decodeField[int](d, domain.FieldTokensSpent),
		FocusSessionID:        decodeField[string](d, domain.FieldFocusSessionID),
	}
	return domain.Restored{State: state, Absent: d.absent}, nil
}

type decoder struct {
	raw    map[string]json.RawMessage
	absent map[string]bool
}

func (d decoder) lookup(key string) (json.RawMessage, bool) {
	if msg, ok := d.raw[key]; ok {
		return msg, true
	}
	if legacy, ok := legacyKeys[key]; ok {
		msg, ok := d.raw[legacy]
		return msg, ok
	}
	return nil, false
}

func decodeField[T any](d decoder, key string) T {
	var zero T
	msg, ok := d.lookup(key)
	if !ok {
		d.absent[key] = true
		return zero
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		d.absent[key] = true
		return zero
	}
	return v
}

// blockRecord accepts both the current and the legacy history entry shape.
type blockRecord struct {
	Experience *int   `json:"experience"`
	Damage     *int   `json:"damage"`
	Kind       string `json:"kind"`
	Exp        *int   `json:"exp"`
	Dano       *int   `json:"dano"`
	Tipo       string `json:"tipo"`
}

func (d decoder) history() []domain.Block {
	records := decodeField[[]json.RawMessage](d, domain.FieldHistory)
	if records == nil {
		return nil
	}
	out := make([]domain.Block, 0, len(records))
	for _, msg := range records {
		var rec blockRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			d.absent[domain.FieldHistory] = true
			continue
		}
		block := domain.Block{Kind: domain.Kind(firstNonEmpty(rec.Kind, rec.Tipo))}
		if v := firstSet(rec.Experience, rec.Exp); v != nil {
			block.Experience = *v
		}
		if v := firstSet(rec.Damage, rec.Dano); v != nil {
			block.Damage = *v
		}
		out = append(out, block)
	}
	return out
}

func firstSet(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
