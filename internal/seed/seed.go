// Package seed provides the demo data loaded into the in-memory stores.
package seed

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/category"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

func Categories() []*category.Category {
	return []*category.Category{
		{ID: "cat-1", Name: "Salary", Icon: "cash", Color: "#10B981", Kind: category.KindIncome},
		{ID: "cat-2", Name: "Freelance", Icon: "laptop", Color: "#6366F1", Kind: category.KindIncome},
		{ID: "cat-3", Name: "Investments", Icon: "trending-up", Color: "#8B5CF6", Kind: category.KindIncome},
		{ID: "cat-4", Name: "Food & Drinks", Icon: "restaurant", Color: "#F59E0B", Kind: category.KindExpense},
		{ID: "cat-5", Name: "Transport", Icon: "car", Color: "#3B82F6", Kind: category.KindExpense},
		{ID: "cat-6", Name: "Shopping", Icon: "cart", Color: "#EC4899", Kind: category.KindExpense},
		{ID: "cat-7", Name: "Entertainment", Icon: "game-controller", Color: "#F97316", Kind: category.KindExpense},
		{ID: "cat-8", Name: "Health", Icon: "fitness", Color: "#EF4444", Kind: category.KindExpense},
		{ID: "cat-9", Name: "Bills & Utilities", Icon: "flash", Color: "#14B8A6", Kind: category.KindExpense},
		{ID: "cat-10", Name: "Education", Icon: "school", Color: "#0EA5E9", Kind: category.KindExpense},
		{ID: "cat-11", Name: "Gifts", Icon: "gift", Color: "#D946EF", Kind: category.KindBoth},
		{ID: "cat-12", Name: "Other", Icon: category.DefaultIcon, Color: category.NeutralColor, Kind: category.KindBoth},
	}
}

type entry struct {
	kind      transaction.Kind
	amount    string
	category  string
	note      string
	daysAgo   int
	recurring bool
}

var entries = []entry{
	{transaction.KindIncome, "4500", "Salary", "Monthly salary", 0, false},
	{transaction.KindExpense, "42.5", "Food & Drinks", "Lunch at café", 0, false},
	{transaction.KindExpense, "15", "Transport", "Uber ride", 1, false},
	{transaction.KindExpense, "129.99", "Shopping", "New headphones", 1, false},
	{transaction.KindIncome, "800", "Freelance", "Logo design project", 2, false},
	{transaction.KindExpense, "65", "Entertainment", "Concert tickets", 2, false},
	{transaction.KindExpense, "220", "Bills & Utilities", "Electricity bill", 3, true},
	{transaction.KindExpense, "35", "Food & Drinks", "Grocery run", 3, false},
	{transaction.KindExpense, "50", "Health", "Gym membership", 4, true},
	{transaction.KindIncome, "150", "Investments", "Dividend payout", 5, false},
	{transaction.KindExpense, "28", "Food & Drinks", "Sushi takeout", 5, false},
	{transaction.KindExpense, "12.99", "Entertainment", "Netflix subscription", 6, true},
	{transaction.KindExpense, "85", "Shopping", "Running shoes", 7, false},
	{transaction.KindExpense, "9.99", "Education", "Online course", 7, false},
	{transaction.KindIncome, "250", "Freelance", "Consulting session", 8, false},
	{transaction.KindExpense, "45", "Transport", "Weekly gas fill", 9, false},
	{transaction.KindExpense, "200", "Gifts", "Birthday present", 10, false},
	{transaction.KindExpense, "18.5", "Food & Drinks", "Morning brunch", 11, false},
	{transaction.KindIncome, "4500", "Salary", "Monthly salary", 30, false},
	{transaction.KindExpense, "1200", "Bills & Utilities", "Rent payment", 30, true},
	{transaction.KindExpense, "75", "Health", "Doctor visit copay", 14, false},
	{transaction.KindExpense, "32", "Food & Drinks", "Pizza night", 12, false},
	{transaction.KindIncome, "500", "Freelance", "Website maintenance", 15, false},
	{transaction.KindExpense, "55", "Shopping", "Book haul", 16, false},
	{transaction.KindExpense, "100", "Education", "TypeScript masterclass", 20, false},
}

// Transactions returns the demo transactions dated relative to now, with IDs
// tx-1 through tx-25.
func Transactions(now time.Time) []*transaction.Transaction {
	txs := make([]*transaction.Transaction, 0, len(entries))

	for i, e := range entries {
		txs = append(txs, &transaction.Transaction{
			ID:        "tx-" + strconv.Itoa(i+1),
			Kind:      e.kind,
			Amount:    decimal.RequireFromString(e.amount),
			Currency:  "USD",
			Category:  e.category,
			Note:      e.note,
			Date:      now.AddDate(0, 0, -e.daysAgo),
			Recurring: e.recurring,
		})
	}

	return txs
}
