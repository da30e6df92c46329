package history

import (
	"fmt"
	"testing"

	"github.com/panelwise/backend/internal/service/simulation"
)

func entry(id string) simulation.ArchiveEntry {
	return simulation.ArchiveEntry{SessionID: id}
}

func TestArchiveAndListNewestFirst(t *testing.T) {
	s := NewService(0)
	s.Archive(entry("a"))
	s.Archive(entry("b"))
	s.Archive(entry("c"))

	got := s.List()
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, want := range []string{"c", "b", "a"} {
		if got[i].SessionID != want {
			t.Errorf("entry %d: got %s, want %s", i, got[i].SessionID, want)
		}
	}
}

func TestRetentionLimitEvictsOldest(t *testing.T) {
	s := NewService(2)
	for i := 0; i < 5; i++ {
		s.Archive(entry(fmt.Sprintf("s%d", i)))
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 retained entries, got %d", s.Len())
	}
	if _, ok := s.Get("s0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := s.Get("s4"); !ok {
		t.Error("newest entry should be retained")
	}
}

func TestGetMissing(t *testing.T) {
	s := NewService(0)
	if _, ok := s.Get("nope"); ok {
		t.Fatal("expected miss for unknown id")
	}
}

func TestClear(t *testing.T) {
	s := NewService(0)
	s.Archive(entry("a"))
	s.Archive(entry("b"))
	if n := s.Clear(); n != 2 {
		t.Fatalf("Clear reported %d, want 2", n)
	}
	if s.Len() != 0 || len(s.List()) != 0 {
		t.Fatal("archive should be empty after Clear")
	}
}

var _ simulation.Archiver = (*Service)(nil)
