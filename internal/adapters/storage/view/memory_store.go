package view

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"roster/internal/domain/listview"
)

type entry struct {
	mu      sync.Mutex
	view    View
	deleted bool
}

// MemoryStore is an in-memory view store with one lock per view.
type MemoryStore struct {
	mu    sync.RWMutex
	views map[string]*entry
}

// NewMemoryStore creates an empty view store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{views: make(map[string]*entry)}
}

// Compile-time check that *MemoryStore satisfies Store.
var _ Store = (*MemoryStore)(nil)

// Create registers a new view in the loading phase.
// PRE: id is non-empty and unused
// POST: the view exists with listview.New() state
func (s *MemoryStore) Create(id string, now time.Time) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.views[id]; ok {
		return View{}, fmt.Errorf("view %s already exists", id)
	}
	v := View{ID: id, State: listview.New(), CreatedAt: now, LastSeen: now}
	s.views[id] = &entry{view: v}
	return v, nil
}

// Read calls fn with a snapshot of the view while holding its lock, and marks the view as seen.
// PRE: id is non-empty
// POST: returns ErrViewNotFound for unknown views; fn's error is returned unchanged
func (s *MemoryStore) Read(id string, now time.Time, fn func(View) error) error {
	e, err := s.lock(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()
	e.view.LastSeen = now
	return fn(snapshot(e.view))
}

// Update runs fn on a copy of the view's state under its lock.
// The copy replaces the stored state only when fn returns nil.
// PRE: id is non-empty
// POST: returns the view as stored after the call; ErrViewNotFound for unknown views
func (s *MemoryStore) Update(id string, now time.Time, fn func(*listview.State) error) (View, error) {
	e, err := s.lock(id)
	if err != nil {
		return View{}, err
	}
	defer e.mu.Unlock()
	e.view.LastSeen = now

	draft := snapshot(e.view)
	if err := fn(&draft.State); err != nil {
		return snapshot(e.view), err
	}
	e.view.State = draft.State
	return snapshot(e.view), nil
}

// Delete removes a view. In-flight calls holding the view finish first.
// POST: returns false when the view did not exist
func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	e, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()
	return true
}

// IdleSince returns the IDs of views not seen since cutoff, sorted.
func (s *MemoryStore) IdleSince(cutoff time.Time) []string {
	s.mu.RLock()
	entries := make(map[string]*entry, len(s.views))
	for id, e := range s.views {
		entries[id] = e
	}
	s.mu.RUnlock()

	var ids []string
	for id, e := range entries {
		e.mu.Lock()
		if e.view.LastSeen.Before(cutoff) {
			ids = append(ids, id)
		}
		e.mu.Unlock()
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of open views.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

// lock returns the entry for id with its mutex held.
func (s *MemoryStore) lock(id string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.views[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrViewNotFound
	}
	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return nil, ErrViewNotFound
	}
	return e, nil
}

// snapshot copies a view so callers never share the pending confirmation.
func snapshot(v View) View {
	if v.State.Pending != nil {
		c := *v.State.Pending
		v.State.Pending = &c
	}
	return v
}
