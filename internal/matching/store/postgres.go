package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/MrJamesThe3rd/fintrack/internal/matching"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) FindMatch(ctx context.Context, note string) (string, error) {
	query, args, err := psql.Select("category").
		From("category_rules").
		Where("? ILIKE '%' || pattern || '%'", note).
		OrderBy("LENGTH(pattern) DESC", "created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("building select: %w", err)
	}

	var cat string

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&cat); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding match: %w", err)
	}

	return cat, nil
}

func (s *Postgres) CreateRule(ctx context.Context, r *matching.Rule) error {
	query, args, err := psql.Insert("category_rules").
		Columns("pattern", "category").
		Values(r.Pattern, r.Category).
		Suffix("RETURNING id::text").
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&r.ID); err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}

func (s *Postgres) ListRules(ctx context.Context) ([]*matching.Rule, error) {
	query, args, err := psql.Select("id::text", "pattern", "category").
		From("category_rules").
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []*matching.Rule

	for rows.Next() {
		var r matching.Rule
		if err := rows.Scan(&r.ID, &r.Pattern, &r.Category); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		rules = append(rules, &r)
	}

	return rules, rows.Err()
}
