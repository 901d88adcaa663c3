package category_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/fintrack/internal/category"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

func TestService_Create(t *testing.T) {
	tests := []struct {
		name      string
		params    category.CreateParams
		setupMock func(m *category.MockRepository)
		wantErr   error
		wantIcon  string
	}{
		{
			name:   "DefaultsIcon",
			params: category.CreateParams{Name: "  Pets ", Color: "#AABBCC", Kind: category.KindExpense},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *category.Category) error {
						c.ID = "cat-13"
						return nil
					})
			},
			wantIcon: category.DefaultIcon,
		},
		{
			name:   "KeepsIcon",
			params: category.CreateParams{Name: "Pets", Icon: "paw", Color: "#aabbcc", Kind: category.KindBoth},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantIcon: "paw",
		},
		{
			name:    "BlankName",
			params:  category.CreateParams{Name: "   ", Color: "#AABBCC", Kind: category.KindExpense},
			wantErr: category.ErrInvalid,
		},
		{
			name:    "BadColor",
			params:  category.CreateParams{Name: "Pets", Color: "red", Kind: category.KindExpense},
			wantErr: category.ErrInvalid,
		},
		{
			name:    "BadKind",
			params:  category.CreateParams{Name: "Pets", Color: "#AABBCC", Kind: "transfer"},
			wantErr: category.ErrInvalid,
		},
		{
			name:   "RepoError",
			params: category.CreateParams{Name: "Pets", Color: "#AABBCC", Kind: category.KindExpense},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := category.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := category.NewService(repo).Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, category.ErrInvalid) {
					assert.ErrorIs(t, err, category.ErrInvalid)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Pets", got.Name)
			assert.Equal(t, tt.wantIcon, got.Icon)
		})
	}
}

func TestService_Update(t *testing.T) {
	stored := func() *category.Category {
		return &category.Category{ID: "cat-1", Name: "Food & Drinks", Icon: "restaurant", Color: "#FF6B6B", Kind: category.KindExpense}
	}

	t.Run("Partial", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := category.NewMockRepository(ctrl)

		color := "#000000"
		want := stored()
		want.Color = color

		repo.EXPECT().GetCategory(gomock.Any(), "cat-1").Return(stored(), nil)
		repo.EXPECT().UpdateCategory(gomock.Any(), want).Return(nil)

		got, err := category.NewService(repo).Update(context.Background(), "cat-1", category.UpdateParams{Color: &color})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("InvalidMergeIsNotWritten", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := category.NewMockRepository(ctrl)

		kind := category.Kind("nope")

		repo.EXPECT().GetCategory(gomock.Any(), "cat-1").Return(stored(), nil)

		_, err := category.NewService(repo).Update(context.Background(), "cat-1", category.UpdateParams{Kind: &kind})
		assert.ErrorIs(t, err, category.ErrInvalid)
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := category.NewMockRepository(ctrl)

		repo.EXPECT().GetCategory(gomock.Any(), "missing").Return(nil, category.ErrNotFound)

		_, err := category.NewService(repo).Update(context.Background(), "missing", category.UpdateParams{})
		assert.ErrorIs(t, err, category.ErrNotFound)
	})
}

func TestService_ForKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)

	all := []*category.Category{
		{ID: "1", Name: "Food & Drinks", Kind: category.KindExpense},
		{ID: "2", Name: "Salary", Kind: category.KindIncome},
		{ID: "3", Name: "Other", Kind: category.KindBoth},
	}

	repo.EXPECT().ListCategories(gomock.Any()).Return(all, nil).Times(2)

	svc := category.NewService(repo)

	income, err := svc.ForKind(context.Background(), transaction.KindIncome)
	require.NoError(t, err)
	assert.Equal(t, []*category.Category{all[1], all[2]}, income)

	expense, err := svc.ForKind(context.Background(), transaction.KindExpense)
	require.NoError(t, err)
	assert.Equal(t, []*category.Category{all[0], all[2]}, expense)
}

func TestColorIndex(t *testing.T) {
	idx := category.NewColorIndex([]*category.Category{
		{Name: "Shopping", Color: "#45B7D1"},
		{Name: "Shopping", Color: "#000000"},
	})

	assert.Equal(t, "#45B7D1", idx.Of("Shopping"))
	assert.Equal(t, category.NeutralColor, idx.Of("Unknown"))
}
