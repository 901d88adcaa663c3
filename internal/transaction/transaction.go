package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/currency"
)

// Kind represents the kind of transaction (income or expense).
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// MaxNoteLength bounds the free-text note, counted in characters.
const MaxNoteLength = 200

var (
	ErrNotFound = errors.New("transaction not found")
	ErrInvalid  = errors.New("invalid transaction")
)

// Transaction represents a single income or expense record.
//
// Category holds the category name by value. It is expected to match an
// existing category but nothing enforces that; a deleted category leaves the
// name dangling.
type Transaction struct {
	ID        string
	Kind      Kind
	Amount    decimal.Decimal // Always in currency.Base
	Currency  string          // Informational, the currency the user entered
	Category  string
	Note      string
	Date      time.Time
	Recurring bool // Presentation hint only
}

// Clone returns a copy that shares no mutable state with tx.
func (tx *Transaction) Clone() *Transaction {
	c := *tx
	return &c
}

// Validate checks the invariants every stored transaction must satisfy.
func (tx *Transaction) Validate() error {
	if !tx.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalid, tx.Kind)
	}

	if tx.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalid)
	}

	if strings.TrimSpace(tx.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalid)
	}

	if tx.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalid)
	}

	if utf8.RuneCountInString(tx.Note) > MaxNoteLength {
		return fmt.Errorf("%w: note exceeds %d characters", ErrInvalid, MaxNoteLength)
	}

	return nil
}

// CreateParams carries the fields of a new transaction.
type CreateParams struct {
	Kind      Kind
	Amount    decimal.Decimal
	Currency  string
	Category  string
	Note      string
	Date      time.Time
	Recurring bool
}

func (p CreateParams) toTransaction() *Transaction {
	cur := p.Currency
	if cur == "" {
		cur = currency.Base
	}

	return &Transaction{
		Kind:      p.Kind,
		Amount:    p.Amount,
		Currency:  cur,
		Category:  strings.TrimSpace(p.Category),
		Note:      strings.TrimSpace(p.Note),
		Date:      p.Date,
		Recurring: p.Recurring,
	}
}

// UpdateParams is a partial update. Nil fields keep their stored value.
type UpdateParams struct {
	Kind      *Kind
	Amount    *decimal.Decimal
	Currency  *string
	Category  *string
	Note      *string
	Date      *time.Time
	Recurring *bool
}

// Apply merges the set fields of p over tx.
func (p UpdateParams) Apply(tx *Transaction) {
	if p.Kind != nil {
		tx.Kind = *p.Kind
	}

	if p.Amount != nil {
		tx.Amount = *p.Amount
	}

	if p.Currency != nil {
		tx.Currency = *p.Currency
	}

	if p.Category != nil {
		tx.Category = strings.TrimSpace(*p.Category)
	}

	if p.Note != nil {
		tx.Note = strings.TrimSpace(*p.Note)
	}

	if p.Date != nil {
		tx.Date = *p.Date
	}

	if p.Recurring != nil {
		tx.Recurring = *p.Recurring
	}
}
