// Package bank reads bank statement CSV exports. The layout is detected from
// the header row; see profiles.
package bank

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/importer"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads r with every known separator in turn until a profile header is
// found. Amounts are in statementCurrency; categories are left empty.
func (p *Parser) Parse(r io.Reader, statementCurrency string) ([]importer.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}

	for _, comma := range []rune{';', ','} {
		rows, err := readRows(data, comma)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows, comma)
		if profile == nil {
			continue
		}

		return parseRows(profile, cols, rows[headerIdx+1:], headerIdx, statementCurrency)
	}

	return nil, fmt.Errorf("%w: no known bank statement header found", importer.ErrInvalid)
}

func readRows(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header matching a profile that uses comma.
// It returns the profile, the column map and the header row index.
func detectProfile(rows [][]string, comma rune) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if profiles[i].Comma == comma && matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts entries from the data rows. Rows without a parseable date
// or a non-zero amount are footers or balances and are skipped. headerRow is
// the 0-based header index, used for error messages.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRow int, cur string) ([]importer.Entry, error) {
	var entries []importer.Entry

	for i, row := range rows {
		line := headerRow + i + 2

		date, ok := parseDate(row, cols[p.DateCol], p.DateLayout)
		if !ok {
			continue
		}

		amount, kind, ok := parseRowAmount(p, cols, row)
		if !ok {
			continue
		}

		desc := cellValue(row, cols[p.DescCol])
		if desc == "" {
			return nil, fmt.Errorf("%w: line %d: missing description", importer.ErrInvalid, line)
		}

		entries = append(entries, importer.Entry{Params: transaction.CreateParams{
			Kind:     kind,
			Amount:   amount,
			Currency: cur,
			Note:     desc,
			Date:     date,
		}})
	}

	return entries, nil
}

func parseDate(row []string, idx int, layout string) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func parseRowAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, transaction.Kind, bool) {
	switch p.AmountMode {
	case amountSingle:
		d, ok := cellAmount(row, cols[p.AmountCol], p.DecimalComma)
		if !ok {
			return decimal.Zero, "", false
		}

		if d.IsNegative() {
			return d.Neg(), transaction.KindExpense, true
		}

		return d, transaction.KindIncome, true
	case amountSplit:
		if d, ok := cellAmount(row, cols[p.DebitCol], p.DecimalComma); ok {
			return d.Abs(), transaction.KindExpense, true
		}

		if d, ok := cellAmount(row, cols[p.CreditCol], p.DecimalComma); ok {
			return d.Abs(), transaction.KindIncome, true
		}
	}

	return decimal.Zero, "", false
}

// cellAmount parses a non-zero amount.
func cellAmount(row []string, idx int, decimalComma bool) (decimal.Decimal, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parseAmount(s, decimalComma)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
