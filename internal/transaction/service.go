package transaction

import (
	"context"
	"fmt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	// CreateTransaction stores tx and assigns tx.ID.
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	// UpdateTransaction replaces the stored record with the same ID.
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, filter ListFilter) (*Page, error)
}

// allPageSize is the page size used when walking every page of a result.
const allPageSize = MaxPageSize

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	tx := params.toTransaction()
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// CreateBatch validates every entry of params before storing any of them.
// Records are stored in order; on a store failure the ones created so far are
// returned with the error.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]*Transaction, error) {
	txs := make([]*Transaction, len(params))

	for i, p := range params {
		txs[i] = p.toTransaction()
		if err := txs[i].Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	for i, tx := range txs {
		if err := s.repo.CreateTransaction(ctx, tx); err != nil {
			return txs[:i], fmt.Errorf("creating entry %d: %w", i+1, err)
		}
	}

	return txs, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// Update merges params over the stored record. Nothing is written when the
// merged record fails validation.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	params.Apply(tx)

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*Page, error) {
	return s.repo.ListTransactions(ctx, filter.Normalize())
}

// All returns every transaction matching filter, newest first. The paging
// fields of filter are ignored.
func (s *Service) All(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	filter.PageSize = allPageSize

	var txs []*Transaction

	for page := 1; ; page++ {
		filter.Page = page

		res, err := s.repo.ListTransactions(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("listing page %d: %w", page, err)
		}

		txs = append(txs, res.Items...)

		if !res.HasMore || len(res.Items) == 0 {
			return txs, nil
		}
	}
}
