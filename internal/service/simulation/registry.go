package simulation

import (
	"fmt"
	"sync"

	simModel "github.com/panelwise/backend/internal/model/simulation"
)

// managedSession pairs a session with its locks and live subscribers.
//
// mu guards the session's mutable fields (state, transcript, questions,
// currentRound) and the subscriber list. runMu serializes the mutating
// operations that execute rounds (start processing, continue, inject,
// complete); pause and resume deliberately take only mu so they can land
// while a round is in flight.
type managedSession struct {
	mu      sync.Mutex
	runMu   sync.Mutex
	session *simModel.Session

	subscribers map[int]chan simModel.TranscriptEntry
	nextSubID   int
}

func newManagedSession(sess *simModel.Session) *managedSession {
	return &managedSession{
		session:     sess,
		subscribers: make(map[int]chan simModel.TranscriptEntry),
	}
}

// appendEntry commits one transcript entry and fans it out to subscribers.
// Slow subscribers are skipped rather than blocking the round.
func (ms *managedSession) appendEntry(entry simModel.TranscriptEntry) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.session.Transcript = append(ms.session.Transcript, entry)
	for _, ch := range ms.subscribers {
		select {
		case ch <- entry:
		default:
		}
	}
}

// subscribe registers a buffered channel for transcript updates, returning
// the channel and a cancel func.
func (ms *managedSession) subscribe() (<-chan simModel.TranscriptEntry, func()) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	id := ms.nextSubID
	ms.nextSubID++
	ch := make(chan simModel.TranscriptEntry, 32)
	ms.subscribers[id] = ch

	cancel := func() {
		ms.mu.Lock()
		defer ms.mu.Unlock()
		if sub, ok := ms.subscribers[id]; ok {
			delete(ms.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// closeSubscribers drops and closes every live subscription; called when the
// session leaves the registry.
func (ms *managedSession) closeSubscribers() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for id, ch := range ms.subscribers {
		delete(ms.subscribers, id)
		close(ch)
	}
}

// Registry holds the active sessions for the hosting process. Sessions are
// independent; the registry map is the only shared structure.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*managedSession
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*managedSession)}
}

func (r *Registry) add(ms *managedSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[ms.session.ID] = ms
}

func (r *Registry) get(id string) (*managedSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ms, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return ms, nil
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	ms, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		ms.closeSubscribers()
	}
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
