package stats

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/category"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"

	// DailyWindow is the number of days in the trailing daily series.
	DailyWindow = 7
)

var ErrInvalidPeriod = errors.New("invalid period")

// Period selects the range of a snapshot.
type Period string

const (
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter" // Current month and the two before it
	PeriodYear    Period = "year"    // Since January 1st
)

func (p Period) Valid() bool {
	return p == PeriodMonth || p == PeriodQuarter || p == PeriodYear
}

type CategoryTotal struct {
	Name   string
	Amount decimal.Decimal
	Color  string
}

type DailyTotal struct {
	Date    string // YYYY-MM-DD
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Snapshot is derived from the transaction set on every request and never
// cached. Amounts are in the base currency.
type Snapshot struct {
	Period        Period
	Month         string // YYYY-MM of the first month covered
	From          time.Time
	To            time.Time // Exclusive
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
	ByCategory    []CategoryTotal // Expenses only, largest first
	Daily         []DailyTotal    // DailyWindow entries, oldest first
}

// ParseMonth returns the first instant of the month named by key (YYYY-MM)
// in loc. An empty key selects the month containing now.
func ParseMonth(key string, now time.Time, loc *time.Location) (time.Time, error) {
	if key == "" {
		return monthStart(now.In(loc)), nil
	}

	t, err := time.ParseInLocation(monthLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month %q is not YYYY-MM", ErrInvalidPeriod, key)
	}

	return t, nil
}

// Compute builds the snapshot of the calendar month containing month.
func Compute(txs []*transaction.Transaction, categories []*category.Category, month, now time.Time, loc *time.Location) *Snapshot {
	from := monthStart(month.In(loc))
	return compute(txs, categories, PeriodMonth, from, from.AddDate(0, 1, 0), now, loc)
}

// ComputePeriod builds the snapshot of period p relative to now.
func ComputePeriod(txs []*transaction.Transaction, categories []*category.Category, p Period, now time.Time, loc *time.Location) (*Snapshot, error) {
	current := monthStart(now.In(loc))

	switch p {
	case PeriodMonth:
		return compute(txs, categories, p, current, current.AddDate(0, 1, 0), now, loc), nil
	case PeriodQuarter:
		return compute(txs, categories, p, current.AddDate(0, -2, 0), current.AddDate(0, 1, 0), now, loc), nil
	case PeriodYear:
		jan := time.Date(current.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return compute(txs, categories, p, jan, jan.AddDate(1, 0, 0), now, loc), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
}

func compute(txs []*transaction.Transaction, categories []*category.Category, p Period, from, to, now time.Time, loc *time.Location) *Snapshot {
	snap := &Snapshot{
		Period:        p,
		Month:         from.Format(monthLayout),
		From:          from,
		To:            to,
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		ByCategory:    []CategoryTotal{},
	}

	byCategory := map[string]decimal.Decimal{}

	for _, tx := range txs {
		if tx.Date.Before(from) || !tx.Date.Before(to) {
			continue
		}

		switch tx.Kind {
		case transaction.KindIncome:
			snap.TotalIncome = snap.TotalIncome.Add(tx.Amount)
		case transaction.KindExpense:
			snap.TotalExpenses = snap.TotalExpenses.Add(tx.Amount)
			byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
		}
	}

	snap.Balance = snap.TotalIncome.Sub(snap.TotalExpenses)

	colors := category.NewColorIndex(categories)
	for name, amount := range byCategory {
		snap.ByCategory = append(snap.ByCategory, CategoryTotal{Name: name, Amount: amount, Color: colors.Of(name)})
	}

	slices.SortFunc(snap.ByCategory, func(a, b CategoryTotal) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}

		return cmp.Compare(a.Name, b.Name)
	})

	snap.Daily = daily(txs, now, loc)

	return snap
}

// daily sums every transaction into the trailing window ending today. Days
// are calendar days in loc.
func daily(txs []*transaction.Transaction, now time.Time, loc *time.Location) []DailyTotal {
	today := now.In(loc)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	out := make([]DailyTotal, DailyWindow)
	index := make(map[string]int, DailyWindow)

	for i := range DailyWindow {
		key := today.AddDate(0, 0, i-(DailyWindow-1)).Format(dayLayout)
		out[i] = DailyTotal{Date: key, Income: decimal.Zero, Expense: decimal.Zero}
		index[key] = i
	}

	for _, tx := range txs {
		i, ok := index[tx.Date.In(loc).Format(dayLayout)]
		if !ok {
			continue
		}

		switch tx.Kind {
		case transaction.KindIncome:
			out[i].Income = out[i].Income.Add(tx.Amount)
		case transaction.KindExpense:
			out[i].Expense = out[i].Expense.Add(tx.Amount)
		}
	}

	return out
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
