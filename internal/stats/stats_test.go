package stats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fintrack/internal/category"
	catstore "github.com/MrJamesThe3rd/fintrack/internal/category/store"
	"github.com/MrJamesThe3rd/fintrack/internal/seed"
	"github.com/MrJamesThe3rd/fintrack/internal/stats"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
	txstore "github.com/MrJamesThe3rd/fintrack/internal/transaction/store"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestParseMonth(t *testing.T) {
	got, err := stats.ParseMonth("2024-02", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = stats.ParseMonth("", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"2024-13", "2024/02", "March", "2024-2"} {
		_, err := stats.ParseMonth(bad, now, time.UTC)
		assert.ErrorIs(t, err, stats.ErrInvalidPeriod, bad)
	}
}

func TestCompute_Empty(t *testing.T) {
	snap := stats.Compute(nil, nil, now, now, time.UTC)

	assert.True(t, snap.TotalIncome.IsZero())
	assert.True(t, snap.TotalExpenses.IsZero())
	assert.True(t, snap.Balance.IsZero())
	assert.Empty(t, snap.ByCategory)
	require.Len(t, snap.Daily, stats.DailyWindow)

	for _, d := range snap.Daily {
		assert.True(t, d.Income.IsZero())
		assert.True(t, d.Expense.IsZero())
	}

	assert.Equal(t, "2024-03-04", snap.Daily[0].Date)
	assert.Equal(t, "2024-03-10", snap.Daily[6].Date)
}

func TestCompute_SeedMonth(t *testing.T) {
	snap := stats.Compute(seed.Transactions(now), seed.Categories(), now, now, time.UTC)

	assert.Equal(t, "2024-03", snap.Month)
	assertDecimal(t, "5700", snap.TotalIncome)
	assertDecimal(t, "738.47", snap.TotalExpenses)
	assertDecimal(t, "4961.53", snap.Balance)
	assert.True(t, snap.Balance.Equal(snap.TotalIncome.Sub(snap.TotalExpenses)))

	names := make([]string, 0, len(snap.ByCategory))
	for _, c := range snap.ByCategory {
		names = append(names, c.Name)
	}

	assert.Equal(t, []string{
		"Bills & Utilities", "Shopping", "Food & Drinks", "Entertainment", "Transport", "Health", "Education",
	}, names)
	assertDecimal(t, "214.99", snap.ByCategory[1].Amount)
	assert.Equal(t, "#14B8A6", snap.ByCategory[0].Color)
	assert.Equal(t, "#EC4899", snap.ByCategory[1].Color)

	require.Len(t, snap.Daily, 7)
	assert.Equal(t, "2024-03-04", snap.Daily[0].Date)
	assertDecimal(t, "12.99", snap.Daily[0].Expense)
	assertDecimal(t, "150", snap.Daily[1].Income)
	assertDecimal(t, "144.99", snap.Daily[5].Expense)
	assertDecimal(t, "4500", snap.Daily[6].Income)
	assertDecimal(t, "42.5", snap.Daily[6].Expense)
}

func TestCompute_UnknownCategoryGetsNeutralColor(t *testing.T) {
	txs := []*transaction.Transaction{
		{ID: "1", Kind: transaction.KindExpense, Amount: dec("10"), Category: "Deleted", Date: now},
		{ID: "2", Kind: transaction.KindIncome, Amount: dec("10"), Category: "Deleted", Date: now},
	}

	snap := stats.Compute(txs, seed.Categories(), now, now, time.UTC)

	require.Len(t, snap.ByCategory, 1)
	assert.Equal(t, category.NeutralColor, snap.ByCategory[0].Color)
	assert.True(t, snap.Balance.IsZero())
}

func TestCompute_MonthBoundaries(t *testing.T) {
	txs := []*transaction.Transaction{
		{Kind: transaction.KindIncome, Amount: dec("1"), Category: "x", Date: time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)},
		{Kind: transaction.KindIncome, Amount: dec("2"), Category: "x", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Kind: transaction.KindIncome, Amount: dec("4"), Category: "x", Date: time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)},
		{Kind: transaction.KindIncome, Amount: dec("8"), Category: "x", Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	}

	snap := stats.Compute(txs, nil, now, now, time.UTC)
	assertDecimal(t, "6", snap.TotalIncome)
}

func TestCompute_DailyUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)

	// 22:30 UTC on the 9th is already the 10th at UTC+3.
	txs := []*transaction.Transaction{
		{Kind: transaction.KindExpense, Amount: dec("5"), Category: "x", Date: time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC)},
	}

	snap := stats.Compute(txs, nil, now, now, loc)
	assert.Equal(t, "2024-03-10", snap.Daily[6].Date)
	assertDecimal(t, "5", snap.Daily[6].Expense)
}

func TestComputePeriod(t *testing.T) {
	txs := seed.Transactions(now)

	tests := []struct {
		period     stats.Period
		wantFrom   time.Time
		wantIncome string
	}{
		{stats.PeriodMonth, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "5700"},
		{stats.PeriodQuarter, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "10700"},
		{stats.PeriodYear, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "10700"},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			snap, err := stats.ComputePeriod(txs, seed.Categories(), tt.period, now, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, snap.From)
			assertDecimal(t, tt.wantIncome, snap.TotalIncome)
		})
	}

	_, err := stats.ComputePeriod(txs, nil, "decade", now, time.UTC)
	assert.ErrorIs(t, err, stats.ErrInvalidPeriod)
}

type failingSource struct{}

func (failingSource) All(context.Context, transaction.ListFilter) ([]*transaction.Transaction, error) {
	return nil, errors.New("remote down")
}

func TestService(t *testing.T) {
	ctx := context.Background()
	txs := transaction.NewService(txstore.NewMemory(seed.Transactions(now)...))
	cats := category.NewService(catstore.NewMemory(seed.Categories()...))
	svc := stats.NewService(txs, cats, time.UTC, func() time.Time { return now })

	snap, err := svc.Month(ctx, "")
	require.NoError(t, err)
	assertDecimal(t, "4961.53", snap.Balance)

	feb, err := svc.Month(ctx, "2024-02")
	require.NoError(t, err)
	assertDecimal(t, "5000", feb.TotalIncome)

	// Mutations are reflected on the next call.
	_, err = txs.Create(ctx, transaction.CreateParams{
		Kind: transaction.KindExpense, Amount: dec("61.53"), Category: "Other", Date: now,
	})
	require.NoError(t, err)

	snap, err = svc.Month(ctx, "")
	require.NoError(t, err)
	assertDecimal(t, "4900", snap.Balance)

	_, err = svc.Month(ctx, "bogus")
	assert.ErrorIs(t, err, stats.ErrInvalidPeriod)

	_, err = stats.NewService(failingSource{}, cats, nil, nil).Month(ctx, "")
	assert.Error(t, err)
}
