package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fintrack/internal/category"
)

// Memory keeps categories in insertion order.
type Memory struct {
	mu         sync.RWMutex
	categories []*category.Category
}

func NewMemory(seed ...*category.Category) *Memory {
	m := &Memory{categories: make([]*category.Category, 0, len(seed))}

	for _, c := range seed {
		cp := c.Clone()
		if cp.ID == "" {
			cp.ID = uuid.NewString()
		}

		m.categories = append(m.categories, cp)
	}

	return m
}

func (m *Memory) CreateCategory(_ context.Context, c *category.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c.ID = uuid.NewString()
	m.categories = append(m.categories, c.Clone())

	return nil
}

func (m *Memory) GetCategory(_ context.Context, id string) (*category.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return nil, category.ErrNotFound
	}

	return m.categories[idx].Clone(), nil
}

func (m *Memory) UpdateCategory(_ context.Context, c *category.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(c.ID)
	if idx < 0 {
		return category.ErrNotFound
	}

	m.categories[idx] = c.Clone()

	return nil
}

func (m *Memory) DeleteCategory(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return category.ErrNotFound
	}

	m.categories = slices.Delete(m.categories, idx, idx+1)

	return nil
}

func (m *Memory) ListCategories(_ context.Context) ([]*category.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*category.Category, len(m.categories))
	for i, c := range m.categories {
		out[i] = c.Clone()
	}

	return out, nil
}

func (m *Memory) indexOf(id string) int {
	return slices.IndexFunc(m.categories, func(c *category.Category) bool {
		return c.ID == id
	})
}
