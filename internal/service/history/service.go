// Package history keeps finished session transcripts in memory so they can
// be listed and cleared after the sessions themselves are released.
package history

import (
	"sync"

	"github.com/panelwise/backend/internal/service/simulation"
)

// Service is an in-memory archive of completed sessions. It implements
// simulation.Archiver; newest entries are listed first.
type Service struct {
	mu      sync.RWMutex
	entries []simulation.ArchiveEntry
	limit   int
}

const defaultLimit = 100

// NewService returns an archive that retains at most limit entries,
// evicting the oldest. limit <= 0 selects the default of 100.
func NewService(limit int) *Service {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Service{limit: limit}
}

// Archive records a finished session. When the retention limit is reached
// the oldest entry is dropped.
func (s *Service) Archive(entry simulation.ArchiveEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}
}

// List returns archived sessions, newest first.
func (s *Service) List() []simulation.ArchiveEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]simulation.ArchiveEntry, len(s.entries))
	for i, e := range s.entries {
		out[len(s.entries)-1-i] = e
	}
	return out
}

// Get returns one archived session by id.
func (s *Service) Get(sessionID string) (simulation.ArchiveEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].SessionID == sessionID {
			return s.entries[i], true
		}
	}
	return simulation.ArchiveEntry{}, false
}

// Clear drops every archived session and reports how many were removed.
func (s *Service) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.entries = nil
	return n
}

// Len reports the number of archived sessions.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
