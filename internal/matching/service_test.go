package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/fintrack/internal/matching"
)

func TestBest(t *testing.T) {
	rules := []*matching.Rule{
		{ID: "1", Pattern: "uber", Category: "Transport"},
		{ID: "2", Pattern: "uber eats", Category: "Food & Drinks"},
		{ID: "3", Pattern: "UBER", Category: "Taxi"},
	}

	tests := []struct {
		note string
		want string
	}{
		{note: "Uber Eats order 1234", want: "Food & Drinks"},
		{note: "UBER *TRIP", want: "Taxi"},
		{note: "Grocery store", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.note, func(t *testing.T) {
			got := matching.Best(rules, tt.note)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Category)
		})
	}
}

func TestService_Suggest(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)
	svc := matching.NewService(repo)
	ctx := context.Background()

	repo.EXPECT().FindMatch(ctx, "Netflix monthly").Return("Entertainment", nil)

	got, err := svc.Suggest(ctx, "  Netflix monthly ")
	require.NoError(t, err)
	assert.Equal(t, "Entertainment", got)

	got, err = svc.Suggest(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, got)

	repo.EXPECT().FindMatch(ctx, "boom").Return("", errors.New("db down"))

	_, err = svc.Suggest(ctx, "boom")
	assert.ErrorContains(t, err, "finding match")
}

func TestService_Learn(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)
	svc := matching.NewService(repo)
	ctx := context.Background()

	repo.EXPECT().CreateRule(ctx, &matching.Rule{Pattern: "spotify", Category: "Entertainment"}).
		DoAndReturn(func(_ context.Context, r *matching.Rule) error {
			r.ID = "rule-1"
			return nil
		})

	r, err := svc.Learn(ctx, " spotify ", "Entertainment ")
	require.NoError(t, err)
	assert.Equal(t, "rule-1", r.ID)

	_, err = svc.Learn(ctx, "", "Food")
	assert.ErrorIs(t, err, matching.ErrInvalid)

	_, err = svc.Learn(ctx, "coffee", " ")
	assert.ErrorIs(t, err, matching.ErrInvalid)
}
