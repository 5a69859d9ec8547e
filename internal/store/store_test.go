package store

import (
	"reflect"
	"testing"

	"github.com/sift-cli/sift/internal/domain"
	bolt "go.etcd.io/bbolt"
)

func newTestStore(t *testing.T) *TriageStateStore {
	t.Helper()
	s, err := NewTriageStateStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestLoadDefaults verifies a never-visited folder loads as the empty state.
func TestLoadDefaults(t *testing.T) {
	s := newTestStore(t)

	state := s.Load("folder-1")
	if len(state.Marks) != 0 || len(state.SoftTouched) != 0 {
		t.Errorf("expected empty maps, got %+v", state)
	}
	if state.FilterMode != domain.FilterAll {
		t.Errorf("expected default filter mode %q, got %q", domain.FilterAll, state.FilterMode)
	}
	if state.HideProcessed || state.Cursor != "" || state.PageIndex != 0 {
		t.Errorf("expected zero view settings, got %+v", state)
	}
}

// TestSaveLoadRoundtrip verifies state survives a store reopen.
func TestSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewTriageStateStore(dir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	state := domain.NewTriageState()
	state.Marks["a"] = domain.MarkKeep
	state.Marks["b"] = domain.MarkDecline
	state.SoftTouched["c"] = true
	state.FilterMode = domain.FilterUnmarked
	state.HideProcessed = true
	state.Cursor = "opaque-token"
	state.PageIndex = 3

	if err := s.Save("folder-1", state); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	s.Close()

	s2, err := NewTriageStateStore(dir)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s2.Close()

	got := s2.Load("folder-1")
	if !reflect.DeepEqual(got, state) {
		t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", got, state)
	}
}

// TestSetMarkIdempotent verifies setting the same mark twice yields identical
// persisted state.
func TestSetMarkIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetMark("f", "abc", domain.MarkKeep); err != nil {
		t.Fatalf("first set failed: %v", err)
	}
	first := s.Load("f")

	if err := s.SetMark("f", "abc", domain.MarkKeep); err != nil {
		t.Fatalf("second set failed: %v", err)
	}
	second := s.Load("f")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated mark changed state:\n got %+v\nwant %+v", second, first)
	}
	if second.Marks["abc"] != domain.MarkKeep {
		t.Errorf("expected keep mark, got %q", second.Marks["abc"])
	}
}

// TestClearAbsentMarkNoop verifies clearing an unset mark changes nothing.
func TestClearAbsentMarkNoop(t *testing.T) {
	s := newTestStore(t)

	before := s.Load("f")
	if err := s.SetMark("f", "never-marked", ""); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	after := s.Load("f")

	if !reflect.DeepEqual(before, after) {
		t.Errorf("clearing absent mark mutated state: %+v -> %+v", before, after)
	}
}

// TestClearMarkKeepsSoftTouch verifies clearing an explicit mark leaves the
// soft-touch flag in place.
func TestClearMarkKeepsSoftTouch(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetSoft("f", "abc"); err != nil {
		t.Fatalf("soft failed: %v", err)
	}
	if err := s.SetMark("f", "abc", domain.MarkDecline); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := s.SetMark("f", "abc", ""); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	state := s.Load("f")
	if _, ok := state.Marks["abc"]; ok {
		t.Error("expected mark cleared")
	}
	if !state.SoftTouched["abc"] {
		t.Error("expected soft-touch to survive mark clearing")
	}
}

// TestSoftDoesNotOverrideMark verifies soft-touch is only recorded when no
// explicit mark exists.
func TestSoftDoesNotOverrideMark(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetMark("f", "abc", domain.MarkKeep); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := s.SetSoft("f", "abc"); err != nil {
		t.Fatalf("soft failed: %v", err)
	}

	state := s.Load("f")
	if state.Marks["abc"] != domain.MarkKeep {
		t.Errorf("expected keep mark intact, got %q", state.Marks["abc"])
	}
	if state.SoftTouched["abc"] {
		t.Error("soft-touch recorded over an explicit mark")
	}
}

// TestCorruptRecordFallsBack verifies a corrupt persisted record loads as the
// default state instead of raising.
func TestCorruptRecordFallsBack(t *testing.T) {
	s := newTestStore(t)

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTriage).Put([]byte("folder-1"), []byte("{not json"))
	})
	if err != nil {
		t.Fatalf("failed to plant corrupt record: %v", err)
	}

	state := s.Load("folder-1")
	if len(state.Marks) != 0 || state.FilterMode != domain.FilterAll {
		t.Errorf("expected defaults for corrupt record, got %+v", state)
	}
}

// TestMemoryOnlyMode verifies an empty base dir still supports the full
// contract without persistence.
func TestMemoryOnlyMode(t *testing.T) {
	s, err := NewTriageStateStore("")
	if err != nil {
		t.Fatalf("failed to create memory store: %v", err)
	}
	defer s.Close()

	if err := s.SetMark("f", "abc", domain.MarkKeep); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if got := s.Load("f").Marks["abc"]; got != domain.MarkKeep {
		t.Errorf("expected keep mark, got %q", got)
	}
}
