//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fintrack/internal/matching"
	"github.com/MrJamesThe3rd/fintrack/internal/matching/store"
	"github.com/MrJamesThe3rd/fintrack/internal/testutil/testdb"
)

func TestPostgres_PrefersLongestPattern(t *testing.T) {
	ctx := context.Background()
	svc := matching.NewService(store.NewPostgres(testdb.Postgres(t)))

	_, err := svc.Learn(ctx, "uber", "Transport")
	require.NoError(t, err)

	_, err = svc.Learn(ctx, "uber eats", "Food & Drinks")
	require.NoError(t, err)

	got, err := svc.Suggest(ctx, "UBER EATS 1234")
	require.NoError(t, err)
	assert.Equal(t, "Food & Drinks", got)

	got, err = svc.Suggest(ctx, "Uber trip")
	require.NoError(t, err)
	assert.Equal(t, "Transport", got)

	got, err = svc.Suggest(ctx, "Groceries")
	require.NoError(t, err)
	assert.Empty(t, got)

	rules, err := svc.Rules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}
