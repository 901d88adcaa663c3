package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fintrack/internal/category"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var categoryColumns = []string{"id::text", "name", "icon", "color", "kind"}

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (*category.Category, error) {
	var c category.Category

	var kind string

	if err := s.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &kind); err != nil {
		return nil, err
	}

	c.Kind = category.Kind(kind)

	return &c, nil
}

func (s *Postgres) CreateCategory(ctx context.Context, c *category.Category) error {
	query, args, err := psql.Insert("categories").
		Columns("name", "icon", "color", "kind").
		Values(c.Name, c.Icon, c.Color, string(c.Kind)).
		Suffix("RETURNING id::text").
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&c.ID); err != nil {
		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func (s *Postgres) GetCategory(ctx context.Context, id string) (*category.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, category.ErrNotFound
	}

	query, args, err := psql.Select(categoryColumns...).From("categories").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrNotFound
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	return c, nil
}

func (s *Postgres) UpdateCategory(ctx context.Context, c *category.Category) error {
	if _, err := uuid.Parse(c.ID); err != nil {
		return category.ErrNotFound
	}

	query, args, err := psql.Update("categories").
		Set("name", c.Name).
		Set("icon", c.Icon).
		Set("color", c.Color).
		Set("kind", string(c.Kind)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	return s.execOne(ctx, "updating category", query, args)
}

func (s *Postgres) DeleteCategory(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return category.ErrNotFound
	}

	query, args, err := psql.Delete("categories").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}

	return s.execOne(ctx, "deleting category", query, args)
}

func (s *Postgres) ListCategories(ctx context.Context) ([]*category.Category, error) {
	query, args, err := psql.Select(categoryColumns...).From("categories").OrderBy("created_at ASC", "name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var out []*category.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return out, nil
}

func (s *Postgres) execOne(ctx context.Context, op, query string, args []any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	} else if n == 0 {
		return category.ErrNotFound
	}

	return nil
}
