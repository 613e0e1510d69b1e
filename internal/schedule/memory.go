package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by the demo mode and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	schedules map[string]*Schedule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{schedules: make(map[string]*Schedule)}
}

func (m *MemoryStore) Create(_ context.Context, s *Schedule) error {
	if err := s.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.schedules[s.ID]; exists {
		return fmt.Errorf("schedule %s already exists", s.ID)
	}
	m.schedules[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.schedules[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) List(_ context.Context, owner string) ([]*Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Schedule
	for _, s := range m.schedules {
		if owner == "" || s.Owner == owner {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, s *Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.schedules[s.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Status != s.Status && !IsTransitionAllowed(current.Status, s.Status) {
		return fmt.Errorf("invalid status transition %s -> %s for schedule %s", current.Status, s.Status, s.ID)
	}
	m.schedules[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.schedules[id]; !ok {
		return ErrNotFound
	}
	delete(m.schedules, id)
	return nil
}

func (m *MemoryStore) Due(_ context.Context, now time.Time) ([]*Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var due []*Schedule
	for _, s := range m.schedules {
		if s.Due(now) {
			due = append(due, s.Clone())
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}
