package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

var transactionColumns = []string{
	"id::text", "kind", "amount", "currency", "category", "note", "date", "recurring",
}

// scanTransaction expects the column order of transactionColumns.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var kind string

	if err := s.Scan(
		&tx.ID, &kind, &tx.Amount, &tx.Currency, &tx.Category, &tx.Note, &tx.Date, &tx.Recurring,
	); err != nil {
		return nil, err
	}

	tx.Kind = transaction.Kind(kind)

	return &tx, nil
}

func (s *Postgres) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query, args, err := psql.Insert("transactions").
		Columns("kind", "amount", "currency", "category", "note", "date", "recurring").
		Values(string(tx.Kind), tx.Amount, tx.Currency, tx.Category, tx.Note, tx.Date, tx.Recurring).
		Suffix("RETURNING id::text").
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&tx.ID); err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Postgres) GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, transaction.ErrNotFound
	}

	query, args, err := psql.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Postgres) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	if _, err := uuid.Parse(tx.ID); err != nil {
		return transaction.ErrNotFound
	}

	query, args, err := psql.Update("transactions").
		SetMap(map[string]any{
			"kind":       string(tx.Kind),
			"amount":     tx.Amount,
			"currency":   tx.Currency,
			"category":   tx.Category,
			"note":       tx.Note,
			"date":       tx.Date,
			"recurring":  tx.Recurring,
			"updated_at": squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": tx.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	return execOne(ctx, s.db, "updating transaction", query, args)
}

func (s *Postgres) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return transaction.ErrNotFound
	}

	query, args, err := psql.Delete("transactions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}

	return execOne(ctx, s.db, "deleting transaction", query, args)
}

func (s *Postgres) ListTransactions(ctx context.Context, filter transaction.ListFilter) (*transaction.Page, error) {
	filter = filter.Normalize()
	where := filterPredicates(filter)

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("transactions").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building count: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting transactions: %w", err)
	}

	query, args, err := psql.Select(transactionColumns...).
		From("transactions").
		Where(where).
		OrderBy("date DESC", "created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	items := make([]*transaction.Transaction, 0, filter.PageSize)

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		items = append(items, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return &transaction.Page{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		HasMore:  filter.Offset()+len(items) < total,
	}, nil
}

// filterPredicates mirrors transaction.ListFilter.Matches in SQL.
func filterPredicates(f transaction.ListFilter) squirrel.And {
	where := squirrel.And{}

	if f.Kind != nil {
		where = append(where, squirrel.Eq{"kind": string(*f.Kind)})
	}

	if f.Category != nil {
		where = append(where, squirrel.Eq{"category": *f.Category})
	}

	if f.DateFrom != nil {
		where = append(where, squirrel.GtOrEq{"date": *f.DateFrom})
	}

	if f.DateTo != nil {
		where = append(where, squirrel.LtOrEq{"date": *f.DateTo})
	}

	if f.AmountMin != nil {
		where = append(where, squirrel.GtOrEq{"amount": *f.AmountMin})
	}

	if f.AmountMax != nil {
		where = append(where, squirrel.LtOrEq{"amount": *f.AmountMax})
	}

	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"note": pattern},
			squirrel.ILike{"category": pattern},
		})
	}

	return where
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func execOne(ctx context.Context, db *sql.DB, op, query string, args []any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}
