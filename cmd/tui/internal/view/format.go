package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

const dbTimeout = 10 * time.Second

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Local().Format(time.DateOnly)
}

// Signed returns amount negated for expenses.
func Signed(tx *transaction.Transaction) decimal.Decimal {
	if tx.Kind == transaction.KindExpense {
		return tx.Amount.Neg()
	}

	return tx.Amount
}

// DbCtx returns a context with a standard timeout for store operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
