package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/fintrack/internal/category"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

type TransactionSource interface {
	All(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type CategorySource interface {
	List(ctx context.Context) ([]*category.Category, error)
}

type Service struct {
	txs  TransactionSource
	cats CategorySource
	loc  *time.Location
	now  func() time.Time
}

// NewService returns a Service bucketing days and months in loc. A nil loc
// means UTC and a nil now means time.Now.
func NewService(txs TransactionSource, cats CategorySource, loc *time.Location, now func() time.Time) *Service {
	if loc == nil {
		loc = time.UTC
	}

	if now == nil {
		now = time.Now
	}

	return &Service{txs: txs, cats: cats, loc: loc, now: now}
}

// Month computes the snapshot for a YYYY-MM key; empty means the current
// month.
func (s *Service) Month(ctx context.Context, key string) (*Snapshot, error) {
	now := s.now()

	month, err := ParseMonth(key, now, s.loc)
	if err != nil {
		return nil, err
	}

	txs, cats, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return Compute(txs, cats, month, now, s.loc), nil
}

func (s *Service) Period(ctx context.Context, p Period) (*Snapshot, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}

	txs, cats, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return ComputePeriod(txs, cats, p, s.now(), s.loc)
}

func (s *Service) load(ctx context.Context) ([]*transaction.Transaction, []*category.Category, error) {
	txs, err := s.txs.All(ctx, transaction.ListFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("loading transactions: %w", err)
	}

	cats, err := s.cats.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading categories: %w", err)
	}

	return txs, cats, nil
}
