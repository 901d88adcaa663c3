package transaction

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

// ParseFilter reads a ListFilter from query parameters. Dates accept RFC 3339
// or YYYY-MM-DD; a date-only date_to covers the whole of that day.
func ParseFilter(q url.Values) (transaction.ListFilter, error) {
	var f transaction.ListFilter

	if s := q.Get("type"); s != "" {
		k := transaction.Kind(s)
		if !k.Valid() {
			return f, fmt.Errorf("invalid type %q", s)
		}

		f.Kind = &k
	}

	if s := q.Get("category"); s != "" {
		f.Category = new(s)
	}

	if s := q.Get("date_from"); s != "" {
		t, _, err := parseDate(s)
		if err != nil {
			return f, fmt.Errorf("invalid date_from: %w", err)
		}

		f.DateFrom = &t
	}

	if s := q.Get("date_to"); s != "" {
		t, dateOnly, err := parseDate(s)
		if err != nil {
			return f, fmt.Errorf("invalid date_to: %w", err)
		}

		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}

		f.DateTo = &t
	}

	var err error

	if f.AmountMin, err = parseAmount(q, "amount_min"); err != nil {
		return f, err
	}

	if f.AmountMax, err = parseAmount(q, "amount_max"); err != nil {
		return f, err
	}

	f.Search = q.Get("search")

	if f.Page, err = parseInt(q, "page"); err != nil {
		return f, err
	}

	if f.PageSize, err = parseInt(q, "page_size"); err != nil {
		return f, err
	}

	return f, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)

	return t, false, err
}

func parseAmount(q url.Values, key string) (*decimal.Decimal, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}

	return &d, nil
}

func parseInt(q url.Values, key string) (int, error) {
	s := q.Get(key)
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return n, nil
}
