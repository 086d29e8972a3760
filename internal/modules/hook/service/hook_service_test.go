package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flowrpg/internal/modules/hook/domain"
	"flowrpg/internal/modules/hook/dto"
	"flowrpg/internal/modules/hook/service"
)

type staticStore struct{ manifests []domain.Manifest }

func (s staticStore) Load(context.Context) ([]domain.Manifest, error) { return s.manifests, nil }

type fakeHost struct {
	delivered []string
	fail      map[string]error
	reject    map[string]string
	deadline  bool
}

func (h *fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return nil }

func (h *fakeHost) GetMetadata(_ context.Context, m domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: m.Name, Version: m.Version}, nil
}

func (h *fakeHost) HandleEvent(ctx context.Context, m domain.Manifest, e domain.Event) (domain.Ack, error) {
	if _, ok := ctx.Deadline(); ok {
		h.deadline = true
	}
	if err := h.fail[m.Name]; err != nil {
		return domain.Ack{}, err
	}
	if note, ok := h.reject[m.Name]; ok {
		return domain.Ack{Accepted: false, Note: note}, nil
	}
	h.delivered = append(h.delivered, m.Name+":"+e.Kind)
	return domain.Ack{Accepted: true}, nil
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

type staticID struct{}

func (staticID) New() string { return "evt" }

func knownKind(kind string) bool {
	switch kind {
	case "level_up", "boss_defeated", "tokens_claimed":
		return true
	}
	return false
}

func writeBinary(t *testing.T, dir, name string) (string, string) {
	t.Helper()
	path := filepath.Join(dir, name)
	payload := []byte("#!/bin/sh\necho " + name + "\n")
	if err := os.WriteFile(path, payload, 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	sum := sha256.Sum256(payload)
	return path, hex.EncodeToString(sum[:])
}

func manifest(name, binary, sha string, events ...string) domain.Manifest {
	return domain.Manifest{Name: name, Version: "1.0.0", Binary: binary, SHA256: sha, Enabled: true, Events: events}
}

func TestDispatchDeliversToSubscribedHooksOnly(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	aBin, aSum := writeBinary(t, dir, "a")
	bBin, bSum := writeBinary(t, dir, "b")
	cBin, cSum := writeBinary(t, dir, "c")
	disabled := manifest("c", cBin, cSum, "level_up")
	disabled.Enabled = false

	host := &fakeHost{}
	svc := service.NewHookService(staticStore{manifests: []domain.Manifest{
		manifest("a", aBin, aSum, "level_up"),
		manifest("b", bBin, bSum, "boss_defeated"),
		disabled,
	}}, host, fixedClock{}, staticID{}, nil, service.Options{KnownEvent: knownKind, Timeout: time.Second})

	out, err := svc.Dispatch(context.Background(), dto.EventInput{Kind: "level_up", Level: 2})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(out.Delivered) != 1 || out.Delivered[0] != "a" || len(out.Failures) != 0 {
		t.Fatalf("unexpected dispatch output: %+v", out)
	}
	if len(host.delivered) != 1 || host.delivered[0] != "a:level_up" {
		t.Fatalf("unexpected deliveries: %v", host.delivered)
	}
	if !host.deadline {
		t.Fatalf("expected delivery context to carry a deadline")
	}
}

func TestDispatchCollectsPerHookFailures(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	okBin, okSum := writeBinary(t, dir, "ok")
	badBin, _ := writeBinary(t, dir, "tampered")
	errBin, errSum := writeBinary(t, dir, "broken")
	rejBin, rejSum := writeBinary(t, dir, "picky")

	host := &fakeHost{
		fail:   map[string]error{"broken": errors.New("boom")},
		reject: map[string]string{"picky": "not today"},
	}
	svc := service.NewHookService(staticStore{manifests: []domain.Manifest{
		manifest("tampered", badBin, strings.Repeat("0", 64), "tokens_claimed"),
		manifest("broken", errBin, errSum, "tokens_claimed"),
		manifest("picky", rejBin, rejSum, "tokens_claimed"),
		manifest("ok", okBin, okSum, "tokens_claimed"),
	}}, host, fixedClock{}, staticID{}, nil, service.Options{KnownEvent: knownKind})

	out, err := svc.Dispatch(context.Background(), dto.EventInput{Kind: "tokens_claimed"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(out.Delivered) != 1 || out.Delivered[0] != "ok" {
		t.Fatalf("expected only ok delivered, got %v", out.Delivered)
	}
	if len(out.Failures) != 3 {
		t.Fatalf("expected 3 failures, got %+v", out.Failures)
	}
	if !strings.Contains(out.Failures[0].Error, "checksum mismatch") {
		t.Fatalf("expected checksum failure first, got %q", out.Failures[0].Error)
	}
	if !strings.Contains(out.Failures[2].Error, "not today") {
		t.Fatalf("expected rejection note, got %q", out.Failures[2].Error)
	}
}

func TestDispatchRequiresKind(t *testing.T) {
	t.Parallel()
	svc := service.NewHookService(staticStore{}, &fakeHost{}, fixedClock{}, staticID{}, nil, service.Options{})
	if _, err := svc.Dispatch(context.Background(), dto.EventInput{}); err == nil {
		t.Fatalf("expected missing kind error")
	}
}

func TestListRejectsDuplicateNames(t *testing.T) {
	t.Parallel()
	sha := strings.Repeat("a", 64)
	svc := service.NewHookService(staticStore{manifests: []domain.Manifest{
		manifest("dup", "/tmp/a", sha, "level_up"),
		manifest("dup", "/tmp/b", sha, "level_up"),
	}}, nil, fixedClock{}, staticID{}, nil, service.Options{KnownEvent: knownKind})
	if _, err := svc.List(context.Background()); err == nil {
		t.Fatalf("expected duplicate name error")
	}
}

func TestDoctorReportsMissingBinaryAndChecksum(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	goodBin, goodSum := writeBinary(t, dir, "good")
	tamperedBin, _ := writeBinary(t, dir, "tampered")

	svc := service.NewHookService(staticStore{manifests: []domain.Manifest{
		manifest("missing", filepath.Join(dir, "nope"), strings.Repeat("a", 64), "level_up"),
		manifest("tampered", tamperedBin, strings.Repeat("0", 64), "level_up"),
		manifest("good", goodBin, goodSum, "level_up"),
		manifest("invalid", goodBin, goodSum, "nap_taken"),
	}}, &fakeHost{}, fixedClock{}, staticID{}, nil, service.Options{KnownEvent: knownKind})

	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results[0].BinaryReachable {
		t.Fatalf("expected missing binary")
	}
	if !results[1].BinaryReachable || results[1].ChecksumValid {
		t.Fatalf("expected checksum mismatch, got %+v", results[1])
	}
	if !results[2].ChecksumValid || !results[2].HandshakeOK || results[2].Error != "" {
		t.Fatalf("expected healthy hook, got %+v", results[2])
	}
	if results[3].Error == "" {
		t.Fatalf("expected validation error for unknown event")
	}
}
