package matching

import (
	"context"
	"fmt"
	"strings"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns the category of the best rule for note, or "" when no
	// rule applies.
	FindMatch(ctx context.Context, note string) (string, error)
	// CreateRule stores r and assigns r.ID.
	CreateRule(ctx context.Context, r *Rule) error
	ListRules(ctx context.Context) ([]*Rule, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the category learned for note. An empty result means no
// rule matched.
func (s *Service) Suggest(ctx context.Context, note string) (string, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return "", nil
	}

	cat, err := s.repo.FindMatch(ctx, note)
	if err != nil {
		return "", fmt.Errorf("finding match: %w", err)
	}

	return cat, nil
}

// Learn remembers that notes containing pattern belong to cat.
func (s *Service) Learn(ctx context.Context, pattern, cat string) (*Rule, error) {
	r, err := newRule(pattern, cat)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateRule(ctx, r); err != nil {
		return nil, fmt.Errorf("creating rule: %w", err)
	}

	return r, nil
}

func (s *Service) Rules(ctx context.Context) ([]*Rule, error) {
	return s.repo.ListRules(ctx)
}
