package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

func TestService_Create(t *testing.T) {
	type args struct {
		params transaction.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantErr   error
	}

	valid := transaction.CreateParams{
		Kind:     transaction.KindExpense,
		Amount:   decimal.RequireFromString("42.5"),
		Category: "Food & Drinks",
		Note:     "  Lunch at café  ",
		Date:     time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{params: valid},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = "tx-1"
						return nil
					})
			},
		},
		{
			name: "RepoError",
			args: args{params: valid},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
		{
			name: "MissingCategory",
			args: args{params: transaction.CreateParams{
				Kind:   transaction.KindIncome,
				Amount: decimal.NewFromInt(10),
				Date:   time.Now(),
			}},
			wantErr: transaction.ErrInvalid,
		},
		{
			name: "NegativeAmount",
			args: args{params: transaction.CreateParams{
				Kind:     transaction.KindIncome,
				Amount:   decimal.NewFromInt(-1),
				Category: "Salary",
				Date:     time.Now(),
			}},
			wantErr: transaction.ErrInvalid,
		},
		{
			name: "UnknownKind",
			args: args{params: transaction.CreateParams{
				Kind:     "transfer",
				Amount:   decimal.NewFromInt(1),
				Category: "Salary",
				Date:     time.Now(),
			}},
			wantErr: transaction.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, transaction.ErrInvalid) {
					assert.ErrorIs(t, err, transaction.ErrInvalid)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "tx-1", got.ID)
			assert.Equal(t, "Lunch at café", got.Note)
			assert.Equal(t, "USD", got.Currency)
		})
	}
}

func TestService_Update(t *testing.T) {
	stored := func() *transaction.Transaction {
		return &transaction.Transaction{
			ID:        "tx-7",
			Kind:      transaction.KindExpense,
			Amount:    decimal.NewFromInt(220),
			Currency:  "USD",
			Category:  "Bills & Utilities",
			Note:      "Electricity bill",
			Date:      time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC),
			Recurring: true,
		}
	}

	t.Run("EmptyUpdateKeepsRecord", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		repo.EXPECT().GetTransaction(gomock.Any(), "tx-7").Return(stored(), nil)
		repo.EXPECT().UpdateTransaction(gomock.Any(), stored()).Return(nil)

		got, err := transaction.NewService(repo).Update(context.Background(), "tx-7", transaction.UpdateParams{})
		require.NoError(t, err)
		assert.Equal(t, stored(), got)
	})

	t.Run("PartialUpdatePreservesOtherFields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		amount := decimal.NewFromInt(180)
		want := stored()
		want.Amount = amount

		repo.EXPECT().GetTransaction(gomock.Any(), "tx-7").Return(stored(), nil)
		repo.EXPECT().UpdateTransaction(gomock.Any(), want).Return(nil)

		got, err := transaction.NewService(repo).Update(context.Background(), "tx-7", transaction.UpdateParams{Amount: &amount})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		repo.EXPECT().GetTransaction(gomock.Any(), "missing").Return(nil, transaction.ErrNotFound)

		_, err := transaction.NewService(repo).Update(context.Background(), "missing", transaction.UpdateParams{})
		assert.ErrorIs(t, err, transaction.ErrNotFound)
	})

	t.Run("InvalidMergeIsNotWritten", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		empty := ""

		repo.EXPECT().GetTransaction(gomock.Any(), "tx-7").Return(stored(), nil)

		_, err := transaction.NewService(repo).Update(context.Background(), "tx-7", transaction.UpdateParams{Category: &empty})
		assert.ErrorIs(t, err, transaction.ErrInvalid)
	})
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	repo.EXPECT().
		ListTransactions(gomock.Any(), transaction.ListFilter{Page: 1, PageSize: transaction.DefaultPageSize}).
		Return(&transaction.Page{Items: []*transaction.Transaction{{ID: "a"}, {ID: "b"}}, Total: 2, Page: 1, PageSize: 20}, nil)

	got, err := transaction.NewService(repo).List(context.Background(), transaction.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.False(t, got.HasMore)
}

func TestService_All(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	kind := transaction.KindIncome

	gomock.InOrder(
		repo.EXPECT().
			ListTransactions(gomock.Any(), transaction.ListFilter{Kind: &kind, Page: 1, PageSize: 100}).
			Return(&transaction.Page{Items: []*transaction.Transaction{{ID: "a"}}, HasMore: true}, nil),
		repo.EXPECT().
			ListTransactions(gomock.Any(), transaction.ListFilter{Kind: &kind, Page: 2, PageSize: 100}).
			Return(&transaction.Page{Items: []*transaction.Transaction{{ID: "b"}}, HasMore: false}, nil),
	)

	got, err := transaction.NewService(repo).All(context.Background(), transaction.ListFilter{Kind: &kind, Page: 5, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	repo.EXPECT().DeleteTransaction(gomock.Any(), "missing").Return(transaction.ErrNotFound)

	err := transaction.NewService(repo).Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestService_CreateBatch(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ok := transaction.CreateParams{Kind: transaction.KindExpense, Amount: decimal.NewFromInt(10), Category: "Food", Date: day}
	bad := transaction.CreateParams{Kind: transaction.KindIncome, Amount: decimal.NewFromInt(-1), Category: "Salary", Date: day}

	t.Run("validates before storing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		_, err := transaction.NewService(repo).CreateBatch(context.Background(), []transaction.CreateParams{ok, bad})
		assert.ErrorIs(t, err, transaction.ErrInvalid)
		assert.ErrorContains(t, err, "entry 2")
	})

	t.Run("returns the stored prefix on failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		gomock.InOrder(
			repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil),
			repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(errors.New("disk full")),
		)

		got, err := transaction.NewService(repo).CreateBatch(context.Background(), []transaction.CreateParams{ok, ok, ok})
		require.Error(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Times(2).Return(nil)

		got, err := transaction.NewService(repo).CreateBatch(context.Background(), []transaction.CreateParams{ok, ok})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "USD", got[0].Currency)
	})
}
