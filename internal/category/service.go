package category

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	// CreateCategory stores c and assigns c.ID.
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id string) error
	// ListCategories returns every category in insertion order.
	ListCategories(ctx context.Context) ([]*Category, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	c := params.toCategory()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	params.Apply(c)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Delete removes the category only. Transactions that reference it by name
// are left as they are.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

// ForKind returns the categories selectable for a transaction of kind k.
func (s *Service) ForKind(ctx context.Context, k transaction.Kind) ([]*Category, error) {
	all, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	out := make([]*Category, 0, len(all))

	for _, c := range all {
		if c.AppliesTo(k) {
			out = append(out, c)
		}
	}

	return out, nil
}

// Colors returns a name to color index over every category.
func (s *Service) Colors(ctx context.Context) (ColorIndex, error) {
	all, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	return NewColorIndex(all), nil
}
