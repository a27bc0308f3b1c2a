package storage

import (
	"context"
	"sync"
)

type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemory() *Memory {
	return &Memory{items: map[string]string{}}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// MemoryProvider keeps the items of every session id that has stored
// something. A session is created by its first SetItem and dropped once it is
// empty again.
type MemoryProvider struct {
	mu       sync.Mutex
	sessions map[string]map[string]string
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{sessions: map[string]map[string]string{}}
}

func (p *MemoryProvider) Session(id string) Storage {
	return &memorySession{p: p, id: id}
}

// Len returns the number of sessions holding items.
func (p *MemoryProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

type memorySession struct {
	p  *MemoryProvider
	id string
}

func (s *memorySession) GetItem(_ context.Context, key string) (string, bool, error) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	v, ok := s.p.sessions[s.id][key]
	return v, ok, nil
}

func (s *memorySession) SetItem(_ context.Context, key, value string) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	items, ok := s.p.sessions[s.id]
	if !ok {
		items = map[string]string{}
		s.p.sessions[s.id] = items
	}
	items[key] = value
	return nil
}

func (s *memorySession) RemoveItem(_ context.Context, key string) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	items, ok := s.p.sessions[s.id]
	if !ok {
		return nil
	}
	delete(items, key)
	if len(items) == 0 {
		delete(s.p.sessions, s.id)
	}
	return nil
}
