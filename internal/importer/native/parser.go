// Package native reads the CSV files written by the export service.
package native

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	"github.com/MrJamesThe3rd/fintrack/internal/importer"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

const (
	colDate      = "date"
	colType      = "type"
	colCategory  = "category"
	colNote      = "note"
	colAmount    = "amount"
	colCurrency  = "currency"
	colBase      = "amount_usd"
	colEntered   = "entered_currency"
	colRecurring = "recurring"
)

// Parser accepts any column order. date, type and either amount_usd or
// amount are required. Files with amount_usd import losslessly; otherwise
// amount is read in the file's currency column.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

type columns map[string]int

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[i])
}

func (p *Parser) Parse(r io.Reader, statementCurrency string) ([]importer.Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", importer.ErrInvalid, err)
	}

	cols := make(columns, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	_, hasBase := cols[colBase]
	_, hasAmount := cols[colAmount]

	for _, name := range []string{colDate, colType} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing %s column", importer.ErrInvalid, name)
		}
	}

	if !hasBase && !hasAmount {
		return nil, fmt.Errorf("%w: missing amount column", importer.ErrInvalid)
	}

	var entries []importer.Entry

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			return entries, nil
		}

		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", importer.ErrInvalid, line, err)
		}

		if isBlank(row) {
			continue
		}

		e, err := parseRow(cols, row, hasBase, statementCurrency)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", importer.ErrInvalid, line, err)
		}

		entries = append(entries, e)
	}
}

func parseRow(cols columns, row []string, hasBase bool, statementCurrency string) (importer.Entry, error) {
	var e importer.Entry

	date, err := parseDate(cols.get(row, colDate))
	if err != nil {
		return e, err
	}

	kind := transaction.Kind(strings.ToLower(cols.get(row, colType)))
	if !kind.Valid() {
		return e, fmt.Errorf("unknown type %q", kind)
	}

	e.Params = transaction.CreateParams{
		Kind:     kind,
		Category: cols.get(row, colCategory),
		Note:     cols.get(row, colNote),
		Date:     date,
	}

	if s := cols.get(row, colRecurring); s != "" {
		if e.Params.Recurring, err = strconv.ParseBool(s); err != nil {
			return e, fmt.Errorf("invalid recurring %q", s)
		}
	}

	entered := strings.ToUpper(cols.get(row, colEntered))

	if hasBase {
		if e.Params.Amount, err = decimal.NewFromString(cols.get(row, colBase)); err != nil {
			return e, fmt.Errorf("invalid %s: %w", colBase, err)
		}

		e.Canonical = true
		e.Params.Currency = orDefault(entered, currency.Base)

		return e, nil
	}

	if e.Params.Amount, err = decimal.NewFromString(cols.get(row, colAmount)); err != nil {
		return e, fmt.Errorf("invalid %s: %w", colAmount, err)
	}

	code := orDefault(strings.ToUpper(cols.get(row, colCurrency)), statementCurrency)
	if !currency.IsSupported(code) {
		return e, fmt.Errorf("unsupported currency %q", code)
	}

	e.Params.Currency = code

	return e, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}

	return t, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
