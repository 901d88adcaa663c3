package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	"github.com/MrJamesThe3rd/fintrack/internal/encoding"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

type TransactionStore interface {
	All(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
	CreateBatch(ctx context.Context, params []transaction.CreateParams) ([]*transaction.Transaction, error)
}

type CategorySuggester interface {
	Suggest(ctx context.Context, note string) (string, error)
}

type RateSource interface {
	Rates(ctx context.Context) currency.Rates
}

type Service struct {
	txs     TransactionStore
	matcher CategorySuggester
	rates   RateSource
	parsers map[Format]Parser
}

func NewService(txs TransactionStore, matcher CategorySuggester, rates RateSource, parsers map[Format]Parser) *Service {
	return &Service{txs: txs, matcher: matcher, rates: rates, parsers: parsers}
}

// Formats lists the registered formats.
func (s *Service) Formats() []Format {
	out := make([]Format, 0, len(s.parsers))

	for _, f := range []Format{FormatNative, FormatBank} {
		if _, ok := s.parsers[f]; ok {
			out = append(out, f)
		}
	}

	return out
}

// Parse decodes r, parses it with the parser registered for format and
// normalizes every entry: amounts end up in currency.Base, missing categories
// are suggested from the note, and notes are cut to the allowed length.
func (s *Service) Parse(ctx context.Context, format Format, statementCurrency string, r io.Reader) ([]transaction.CreateParams, encoding.Charset, error) {
	parser, ok := s.parsers[format]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	statementCurrency = strings.ToUpper(strings.TrimSpace(statementCurrency))
	if statementCurrency == "" {
		statementCurrency = currency.Base
	}

	if !currency.IsSupported(statementCurrency) {
		return nil, "", fmt.Errorf("%w: unsupported currency %q", ErrInvalid, statementCurrency)
	}

	utf8r, cs, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, "", fmt.Errorf("detecting encoding: %w", err)
	}

	entries, err := parser.Parse(utf8r, statementCurrency)
	if err != nil {
		return nil, cs, err
	}

	table := s.rates.Rates(ctx)
	params := make([]transaction.CreateParams, len(entries))

	for i, e := range entries {
		p := e.Params

		if !e.Canonical {
			p.Amount = currency.ToBase(p.Amount, p.Currency, table).Round(4)
		}

		p.Note = truncate(strings.TrimSpace(p.Note), transaction.MaxNoteLength)

		if strings.TrimSpace(p.Category) == "" {
			p.Category = s.suggest(ctx, p.Note)
		}

		params[i] = p
	}

	return params, cs, nil
}

// Import parses r and stores its entries unless some of them duplicate
// stored transactions, in which case nothing is stored and the conflicts are
// returned for confirmation.
func (s *Service) Import(ctx context.Context, format Format, statementCurrency string, r io.Reader) (*Result, error) {
	params, cs, err := s.Parse(ctx, format, statementCurrency, r)
	if err != nil {
		return nil, err
	}

	res := &Result{Charset: string(cs)}

	if len(params) == 0 {
		return res, nil
	}

	res.New, res.Conflicts, err = s.findConflicts(ctx, params)
	if err != nil {
		return nil, err
	}

	if len(res.Conflicts) > 0 {
		return res, nil
	}

	res.Imported, err = s.Confirm(ctx, res.New)
	if err != nil {
		return nil, err
	}

	res.New = nil

	return res, nil
}

// Confirm stores params as they are.
func (s *Service) Confirm(ctx context.Context, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
	txs, err := s.txs.CreateBatch(ctx, params)
	if err != nil {
		return txs, fmt.Errorf("storing import: %w", err)
	}

	return txs, nil
}

type dupKey struct {
	Date   string
	Kind   transaction.Kind
	Amount string
	Note   string
}

func keyOf(kind transaction.Kind, date time.Time, amount fmt.Stringer, note string) dupKey {
	return dupKey{
		Date:   date.Format(time.DateOnly),
		Kind:   kind,
		Amount: amount.String(),
		Note:   strings.ToLower(strings.TrimSpace(note)),
	}
}

// findConflicts compares params with the stored transactions of the same
// days. Two records collide when day, kind, amount to the cent and note agree.
func (s *Service) findConflicts(ctx context.Context, params []transaction.CreateParams) ([]transaction.CreateParams, []Conflict, error) {
	from, to := dateRange(params)

	existing, err := s.txs.All(ctx, transaction.ListFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, nil, fmt.Errorf("finding duplicates: %w", err)
	}

	lookup := make(map[dupKey]*transaction.Transaction, len(existing))
	for _, tx := range existing {
		lookup[keyOf(tx.Kind, tx.Date, tx.Amount.Round(2), tx.Note)] = tx
	}

	var (
		fresh     []transaction.CreateParams
		conflicts []Conflict
	)

	for _, p := range params {
		if tx, ok := lookup[keyOf(p.Kind, p.Date, p.Amount.Round(2), p.Note)]; ok {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: tx})
			continue
		}

		fresh = append(fresh, p)
	}

	return fresh, conflicts, nil
}

// dateRange spans whole days around params so that time-of-day differences
// between the file and the store do not hide a duplicate.
func dateRange(params []transaction.CreateParams) (time.Time, time.Time) {
	lo, hi := params[0].Date, params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(lo) {
			lo = p.Date
		}

		if p.Date.After(hi) {
			hi = p.Date
		}
	}

	return lo.AddDate(0, 0, -1), hi.AddDate(0, 0, 1)
}

func (s *Service) suggest(ctx context.Context, note string) string {
	if s.matcher == nil || note == "" {
		return DefaultCategory
	}

	cat, err := s.matcher.Suggest(ctx, note)
	if err != nil {
		slog.Warn("category suggestion failed", "error", err)
		return DefaultCategory
	}

	if cat == "" {
		return DefaultCategory
	}

	return cat
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return strings.TrimSpace(string(r[:n]))
}
