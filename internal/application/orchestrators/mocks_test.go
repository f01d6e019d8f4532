package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"roster/internal/adapters/source"
	memberStore "roster/internal/adapters/storage/member"
	viewStore "roster/internal/adapters/storage/view"
	"roster/internal/domain/listview"
	domain "roster/internal/domain/member"
)

// mockMemberStore implements memberStore.Store with per-view slices.
type mockMemberStore struct {
	mu       sync.Mutex
	views    map[string][]domain.Member
	writeErr error
}

func newMockMemberStore() *mockMemberStore {
	return &mockMemberStore{views: make(map[string][]domain.Member)}
}

// ReplaceAll implements memberStore.Store.
func (m *mockMemberStore) ReplaceAll(_ context.Context, viewID string, members []domain.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.views[viewID] = append([]domain.Member(nil), members...)
	return nil
}

// List implements memberStore.Store.
func (m *mockMemberStore) List(_ context.Context, viewID string) ([]domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Member{}, m.views[viewID]...), nil
}

// GetByID implements memberStore.Store.
func (m *mockMemberStore) GetByID(_ context.Context, viewID, id string) (domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range m.views[viewID] {
		if mem.ID == id {
			return mem, nil
		}
	}
	return domain.Member{}, memberStore.ErrMemberNotFound
}

// Save implements memberStore.Store.
func (m *mockMemberStore) Save(_ context.Context, viewID string, value domain.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	for i, mem := range m.views[viewID] {
		if mem.ID == value.ID {
			m.views[viewID][i] = value
			return nil
		}
	}
	return memberStore.ErrMemberNotFound
}

// Delete implements memberStore.Store.
func (m *mockMemberStore) Delete(_ context.Context, viewID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	list := m.views[viewID]
	for i, mem := range list {
		if mem.ID == id {
			m.views[viewID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return memberStore.ErrMemberNotFound
}

// DeleteView implements memberStore.Store.
func (m *mockMemberStore) DeleteView(_ context.Context, viewID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.views, viewID)
	return nil
}

// Count implements memberStore.Store.
func (m *mockMemberStore) Count(_ context.Context, viewID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.views[viewID]), nil
}

// sequentialIDs returns a generator of "<prefix>1", "<prefix>2", ...
func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

var errStoreDown = errors.New("store down")

// testEnv wires a ready view over the given members.
type testEnv struct {
	views   *viewStore.MemoryStore
	members *mockMemberStore
	viewID  string
}

func newReadyEnv(members ...domain.Member) testEnv {
	env := testEnv{
		views:   viewStore.NewMemoryStore(),
		members: newMockMemberStore(),
		viewID:  "v1",
	}
	_, _ = env.views.Create(env.viewID, time.Now())
	_, _ = env.views.Update(env.viewID, time.Now(), func(s *listview.State) error {
		s.MarkReady()
		return nil
	})
	_ = env.members.ReplaceAll(context.Background(), env.viewID, members)
	return env
}

func (e testEnv) cursorDeps() CursorDeps {
	return CursorDeps{Views: e.views, Members: e.members}
}

func (e testEnv) editDeps() EditDeps {
	return EditDeps{Views: e.views, Members: e.members, GenerateID: sequentialIDs("c")}
}

func (e testEnv) state() listview.State {
	var st listview.State
	_ = e.views.Read(e.viewID, time.Now(), func(v viewStore.View) error {
		st = v.State
		return nil
	})
	return st
}

func (e testEnv) list() []domain.Member {
	out, _ := e.members.List(context.Background(), e.viewID)
	return out
}

func scenarioMembers() []domain.Member {
	return []domain.Member{
		{ID: "m1", Name: "Ann", Email: "ann@x.com", Role: "admin"},
		{ID: "m2", Name: "Bo", Email: "bo@x.com", Role: "user"},
	}
}

func numberedMembers(n int) []domain.Member {
	out := make([]domain.Member, n)
	for i := range out {
		out[i] = domain.Member{
			ID:    fmt.Sprintf("m%d", i+1),
			Name:  fmt.Sprintf("Member %d", i+1),
			Email: fmt.Sprintf("m%d@x.com", i+1),
			Role:  "user",
		}
	}
	return out
}

func scenarioRecords() []source.Record {
	return []source.Record{
		{Name: "Ann", Email: "ann@x.com", Role: "admin"},
		{Name: "Bo", Email: "bo@x.com", Role: "user"},
	}
}

func t0() time.Time {
	return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
}
