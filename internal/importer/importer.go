// Package importer turns uploaded CSV files into new transactions.
package importer

import (
	"errors"
	"io"

	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

// Format names a CSV layout understood by a Parser.
type Format string

const (
	// FormatNative is the layout written by the export service.
	FormatNative Format = "fintrack"
	// FormatBank covers the bank statement layouts in package bank.
	FormatBank Format = "bank"
)

// DefaultCategory is assigned when neither the file nor a learned rule names
// one.
const DefaultCategory = "Other"

var (
	ErrUnknownFormat = errors.New("unknown import format")
	ErrInvalid       = errors.New("invalid import file")
)

// Entry is one parsed row.
type Entry struct {
	Params transaction.CreateParams
	// Canonical is set when Params.Amount is already in currency.Base.
	// Otherwise it is in Params.Currency and is converted on import.
	Canonical bool
}

// Parser reads UTF-8 CSV. statementCurrency is the currency of amounts that
// the file does not label itself.
type Parser interface {
	Parse(r io.Reader, statementCurrency string) ([]Entry, error)
}

// Conflict pairs an incoming row with the stored transaction it duplicates.
type Conflict struct {
	Incoming transaction.CreateParams
	Existing *transaction.Transaction
}

// Result reports an import. When Conflicts is non-empty nothing was stored:
// the caller confirms New plus whichever conflicts it wants through
// Service.Confirm.
type Result struct {
	Charset   string
	Imported  []*transaction.Transaction
	New       []transaction.CreateParams
	Conflicts []Conflict
}
