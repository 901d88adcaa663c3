package bank

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column, e.g. "Montante" holding "-10,00".
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// Profile describes the column layout of one bank statement export.
// Adding a format is adding a Profile to profiles.
type Profile struct {
	Name       string
	Comma      rune
	DateCol    string
	DateLayout string
	DescCol    string
	AmountMode amountMode
	AmountCol  string // amountSingle
	DebitCol   string // amountSplit
	CreditCol  string // amountSplit
	// DecimalComma is set for "1.234,56" style amounts.
	DecimalComma bool
}

// requiredCols returns the column names that must be present for p to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:         "cgd-card",
		Comma:        ';',
		DateCol:      "Data",
		DateLayout:   "02-01-2006",
		DescCol:      "Descrição",
		AmountMode:   amountSplit,
		DebitCol:     "Débito",
		CreditCol:    "Crédito",
		DecimalComma: true,
	},
	{
		Name:         "cgd-statement",
		Comma:        ';',
		DateCol:      "Data mov.",
		DateLayout:   "02-01-2006",
		DescCol:      "Descrição",
		AmountMode:   amountSingle,
		AmountCol:    "Movimento",
		DecimalComma: true,
	},
	{
		Name:         "cgd-account",
		Comma:        ';',
		DateCol:      "Data mov.",
		DateLayout:   "02-01-2006",
		DescCol:      "Descrição",
		AmountMode:   amountSingle,
		AmountCol:    "Montante",
		DecimalComma: true,
	},
	{
		Name:         "sber",
		Comma:        ';',
		DateCol:      "Дата операции",
		DateLayout:   "02.01.2006",
		DescCol:      "Описание",
		AmountMode:   amountSingle,
		AmountCol:    "Сумма",
		DecimalComma: true,
	},
	{
		Name:       "generic",
		Comma:      ',',
		DateCol:    "Date",
		DateLayout: "2006-01-02",
		DescCol:    "Description",
		AmountMode: amountSingle,
		AmountCol:  "Amount",
	},
}
