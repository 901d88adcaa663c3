package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fintrack/internal/matching"
)

// Memory keeps rules in creation order.
type Memory struct {
	mu    sync.RWMutex
	rules []*matching.Rule
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) FindMatch(_ context.Context, note string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if r := matching.Best(m.rules, note); r != nil {
		return r.Category, nil
	}

	return "", nil
}

func (m *Memory) CreateRule(_ context.Context, r *matching.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = uuid.NewString()
	m.rules = append(m.rules, r.Clone())

	return nil
}

func (m *Memory) ListRules(_ context.Context) ([]*matching.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*matching.Rule, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.Clone()
	}

	return out, nil
}
