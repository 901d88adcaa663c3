//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fintrack/internal/category"
	"github.com/MrJamesThe3rd/fintrack/internal/category/store"
	"github.com/MrJamesThe3rd/fintrack/internal/seed"
	"github.com/MrJamesThe3rd/fintrack/internal/testutil/testdb"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

func TestPostgres(t *testing.T) {
	ctx := context.Background()
	repo := store.NewPostgres(testdb.Postgres(t))
	svc := category.NewService(repo)

	for _, c := range seed.Categories() {
		require.NoError(t, repo.CreateCategory(ctx, c.Clone()))
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(seed.Categories()))

	income, err := svc.ForKind(ctx, transaction.KindIncome)
	require.NoError(t, err)
	assert.Len(t, income, 5)

	created, err := svc.Create(ctx, category.CreateParams{Name: "Pets", Color: "#FFAA00", Kind: category.KindExpense})
	require.NoError(t, err)

	name := "Pet care"

	updated, err := svc.Update(ctx, created.ID, category.UpdateParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Pet care", updated.Name)
	assert.Equal(t, category.DefaultIcon, updated.Icon)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), category.ErrNotFound)
}
