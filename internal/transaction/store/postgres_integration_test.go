//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fintrack/internal/seed"
	"github.com/MrJamesThe3rd/fintrack/internal/testutil/testdb"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction/store"
)

// The PostgreSQL repository must answer every filter exactly as the
// in-memory one does.
func TestPostgres_MatchesMemory(t *testing.T) {
	ctx := context.Background()
	pg := store.NewPostgres(testdb.Postgres(t))

	for _, tx := range seed.Transactions(day0) {
		c := tx.Clone()
		require.NoError(t, pg.CreateTransaction(ctx, c))
	}

	mem := store.NewMemory(seed.Transactions(day0)...)

	income := transaction.KindIncome
	from := day0.AddDate(0, 0, -10)
	food := "Food & Drinks"
	minAmount := decimal.NewFromInt(50)

	filters := map[string]transaction.ListFilter{
		"all":        {},
		"income":     {Kind: &income},
		"category":   {Category: &food},
		"since":      {DateFrom: &from},
		"min amount": {AmountMin: &minAmount},
		"search":     {Search: "salary"},
		"page 2":     {Page: 2, PageSize: 10},
	}

	for name, f := range filters {
		t.Run(name, func(t *testing.T) {
			want, err := mem.ListTransactions(ctx, f.Normalize())
			require.NoError(t, err)

			got, err := pg.ListTransactions(ctx, f.Normalize())
			require.NoError(t, err)

			assert.Equal(t, want.Total, got.Total)
			assert.Equal(t, want.HasMore, got.HasMore)
			require.Len(t, got.Items, len(want.Items))

			for i := range want.Items {
				assert.True(t, want.Items[i].Date.Equal(got.Items[i].Date), "item %d date", i)
			}
		})
	}
}

func TestPostgres_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := transaction.NewService(store.NewPostgres(testdb.Postgres(t)))

	created, err := svc.Create(ctx, transaction.CreateParams{
		Kind:     transaction.KindExpense,
		Amount:   decimal.RequireFromString("12.3456"),
		Currency: "EUR",
		Category: "Food & Drinks",
		Note:     "lunch",
		Date:     day0,
	})
	require.NoError(t, err)

	note := "dinner"

	updated, err := svc.Update(ctx, created.ID, transaction.UpdateParams{Note: &note})
	require.NoError(t, err)
	assert.Equal(t, "dinner", updated.Note)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, created.Amount.Equal(got.Amount))
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "dinner", got.Note)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	_, err = svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}
