package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

// Header is the first row of every CSV export.
var Header = []string{"date", "type", "category", "note", "amount", "currency", "amount_usd", "entered_currency", "recurring"}

type TransactionSource interface {
	All(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

// Service renders filtered transactions in a display currency.
type Service struct {
	transactions TransactionSource
}

func NewService(txs TransactionSource) *Service {
	return &Service{transactions: txs}
}

// Export returns every transaction matching filter, newest first. Paging
// fields of filter are ignored.
func (s *Service) Export(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	txs, err := s.transactions.All(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return txs, nil
}

// WriteCSV writes txs with amounts converted into code. The base amount is
// kept alongside so the file can be re-imported without loss.
func WriteCSV(w io.Writer, txs []*transaction.Transaction, code string, rates currency.Rates) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		row := []string{
			tx.Date.Format(time.RFC3339),
			string(tx.Kind),
			tx.Category,
			tx.Note,
			currency.Convert(tx.Amount, code, rates).StringFixed(2),
			code,
			tx.Amount.String(),
			tx.Currency,
			strconv.FormatBool(tx.Recurring),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Summary renders one line per transaction, signed by kind, e.g.
// "* 2024-03-09 | Food & Drinks | lunch | -€11.50".
func Summary(txs []*transaction.Transaction, code string, rates currency.Rates) string {
	var sb strings.Builder

	for _, tx := range txs {
		amount := currency.Display(tx.Amount, code, rates)
		if tx.Kind == transaction.KindIncome {
			amount = "+" + amount
		} else {
			amount = "-" + amount
		}

		note := tx.Note
		if note == "" {
			note = "-"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s\n", tx.Date.Format(time.DateOnly), tx.Category, note, amount)
	}

	return sb.String()
}
