package transaction

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPageSize is used when a filter does not ask for a page size.
const DefaultPageSize = 20

// MaxPageSize bounds a single page; larger requests are clamped.
const MaxPageSize = 100

// ListFilter selects transactions. Every set field must match (AND).
// Date and amount bounds are inclusive.
type ListFilter struct {
	Kind      *Kind
	Category  *string
	DateFrom  *time.Time
	DateTo    *time.Time
	AmountMin *decimal.Decimal
	AmountMax *decimal.Decimal
	Search    string // Case-insensitive substring of note or category

	Page     int // 1-based
	PageSize int
}

// Normalize fills in the paging defaults.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}

	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}

	f.PageSize = min(f.PageSize, MaxPageSize)

	return f
}

// Offset is the number of matching items preceding the requested page. It
// saturates at math.MaxInt for pages too far out to address.
func (f ListFilter) Offset() int {
	f = f.Normalize()

	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}

	return (f.Page - 1) * f.PageSize
}

// Matches reports whether tx satisfies every predicate of f.
func (f ListFilter) Matches(tx *Transaction) bool {
	if f.Kind != nil && tx.Kind != *f.Kind {
		return false
	}

	if f.Category != nil && tx.Category != *f.Category {
		return false
	}

	if f.DateFrom != nil && tx.Date.Before(*f.DateFrom) {
		return false
	}

	if f.DateTo != nil && tx.Date.After(*f.DateTo) {
		return false
	}

	if f.AmountMin != nil && tx.Amount.LessThan(*f.AmountMin) {
		return false
	}

	if f.AmountMax != nil && tx.Amount.GreaterThan(*f.AmountMax) {
		return false
	}

	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(tx.Note), q) && !strings.Contains(strings.ToLower(tx.Category), q) {
			return false
		}
	}

	return true
}

// Page is one slice of a filtered, newest-first result.
type Page struct {
	Items    []*Transaction
	Total    int
	Page     int
	PageSize int
	HasMore  bool
}

// SortNewestFirst orders txs by date descending. Equal dates keep their
// relative order.
func SortNewestFirst(txs []*Transaction) {
	slices.SortStableFunc(txs, func(a, b *Transaction) int {
		return b.Date.Compare(a.Date)
	})
}

// Paginate cuts the requested page out of an already filtered and sorted
// result.
func Paginate(sorted []*Transaction, filter ListFilter) *Page {
	filter = filter.Normalize()
	total := len(sorted)

	start := min(filter.Offset(), total)
	end := min(start+filter.PageSize, total)

	items := make([]*Transaction, 0, end-start)
	items = append(items, sorted[start:end]...)

	return &Page{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		HasMore:  start+len(items) < total,
	}
}
