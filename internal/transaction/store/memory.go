package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

// Memory is an in-process transaction repository. Records are kept in
// creation order, newest first, and handed out as copies.
type Memory struct {
	mu  sync.RWMutex
	txs []*transaction.Transaction
}

// NewMemory returns a repository holding copies of seed. Seed records without
// an ID are assigned one.
func NewMemory(seed ...*transaction.Transaction) *Memory {
	m := &Memory{txs: make([]*transaction.Transaction, 0, len(seed))}

	for _, tx := range seed {
		c := tx.Clone()
		if c.ID == "" {
			c.ID = uuid.NewString()
		}

		m.txs = append(m.txs, c)
	}

	return m
}

func (m *Memory) CreateTransaction(_ context.Context, tx *transaction.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx.ID = uuid.NewString()
	m.txs = slices.Insert(m.txs, 0, tx.Clone())

	return nil
}

func (m *Memory) GetTransaction(_ context.Context, id string) (*transaction.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return nil, transaction.ErrNotFound
	}

	return m.txs[idx].Clone(), nil
}

func (m *Memory) UpdateTransaction(_ context.Context, tx *transaction.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(tx.ID)
	if idx < 0 {
		return transaction.ErrNotFound
	}

	m.txs[idx] = tx.Clone()

	return nil
}

func (m *Memory) DeleteTransaction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return transaction.ErrNotFound
	}

	m.txs = slices.Delete(m.txs, idx, idx+1)

	return nil
}

func (m *Memory) ListTransactions(_ context.Context, filter transaction.ListFilter) (*transaction.Page, error) {
	m.mu.RLock()

	matched := make([]*transaction.Transaction, 0, len(m.txs))
	for _, tx := range m.txs {
		if filter.Matches(tx) {
			matched = append(matched, tx.Clone())
		}
	}

	m.mu.RUnlock()

	transaction.SortNewestFirst(matched)

	return transaction.Paginate(matched, filter), nil
}

func (m *Memory) indexOf(id string) int {
	return slices.IndexFunc(m.txs, func(tx *transaction.Transaction) bool {
		return tx.ID == id
	})
}
