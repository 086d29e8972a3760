package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrHookDisabled     = errors.New("hook is disabled")
	ErrChecksumMismatch = errors.New("hook checksum mismatch")
	ErrHookTimeout      = errors.New("hook timeout")
	ErrEventRejected    = errors.New("hook rejected event")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest declares one hook binary and the event kinds it subscribes to.
type Manifest struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Binary  string   `json:"binary"`
	SHA256  string   `json:"sha256"`
	Enabled bool     `json:"enabled"`
	Events  []string `json:"events"`
}

// Validate checks the manifest shape. known reports whether an event kind
// exists; nil accepts any non-empty kind.
func (m Manifest) Validate(known func(string) bool) error {
	if m.Name == "" {
		return fmt.Errorf("hook name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("hook version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("hook binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("hook sha256 must be lowercase 64-char hex")
	}
	if len(m.Events) == 0 {
		return fmt.Errorf("hook events are required")
	}
	seen := map[string]struct{}{}
	for _, kind := range m.Events {
		if kind == "" || (known != nil && !known(kind)) {
			return fmt.Errorf("unknown event kind: %q", kind)
		}
		if _, ok := seen[kind]; ok {
			return fmt.Errorf("duplicate event kind: %s", kind)
		}
		seen[kind] = struct{}{}
	}
	return nil
}

func (m Manifest) Subscribes(kind string) bool {
	for _, k := range m.Events {
		if k == kind {
			return true
		}
	}
	return false
}

type Metadata struct {
	Name    string
	Version string
	Events  []string
}

// Event is what a hook receives. PayloadJSON carries the full progression
// event so hooks can read fields this struct does not name.
type Event struct {
	ID          string
	Kind        string
	At          time.Time
	Level       int
	Message     string
	PayloadJSON string
}

func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if e.Kind == "" {
		return fmt.Errorf("event kind is required")
	}
	return nil
}

type Ack struct {
	Accepted bool
	Note     string
}
