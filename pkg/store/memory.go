package store

import (
	"context"
	"slices"
	"sync"
)

// Memory is a Repository kept entirely in process memory.
type Memory struct {
	mu         sync.RWMutex
	categories map[string]*State
	identities []string
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{categories: make(map[string]*State)}
}

// Load implements Repository.
func (m *Memory) Load(_ context.Context, category string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if st, ok := m.categories[category]; ok {
		return st.Clone(), nil
	}
	return NewState(), nil
}

// Save implements Repository.
func (m *Memory) Save(_ context.Context, category string, change *Change) error {
	m.modify(category, func(st *State) { st.Merge(change) })
	return nil
}

// Replace implements Repository.
func (m *Memory) Replace(_ context.Context, category string, change *Change) error {
	m.modify(category, func(st *State) { st.Overlay(change) })
	return nil
}

func (m *Memory) modify(category string, fn func(*State)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.categories[category]
	if !ok {
		st = NewState()
		m.categories[category] = st
	}
	fn(st)
}

// AcceptedIdentities implements Repository.
func (m *Memory) AcceptedIdentities(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.identities), nil
}

// SetAcceptedIdentities implements Repository.
func (m *Memory) SetAcceptedIdentities(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities = sortedSet(ids)
	return nil
}

// Close implements Repository.
func (m *Memory) Close() error { return nil }
