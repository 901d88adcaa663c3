// Package currency converts amounts held in the base currency into a display
// currency and renders them for presentation. Stored amounts are never
// rewritten; everything here is a read-time transform.
package currency

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Base is the canonical storage currency. Every persisted amount is in Base.
const Base = USD

const (
	USD = "USD"
	EUR = "EUR"
	RUB = "RUB"
	GBP = "GBP"
	JPY = "JPY"
)

// Supported lists the display currencies a user may select, in menu order.
var Supported = []string{USD, EUR, RUB, GBP, JPY}

var symbols = map[string]string{
	USD: "$",
	EUR: "€",
	RUB: "₽",
	GBP: "£",
	JPY: "¥",
}

var one = decimal.NewFromInt(1)

// IsSupported reports whether code is one of the selectable display currencies.
func IsSupported(code string) bool {
	_, ok := symbols[code]
	return ok
}

// Symbol returns the display symbol for code, or the code itself when unknown.
func Symbol(code string) string {
	if s, ok := symbols[code]; ok {
		return s
	}

	return code
}

// Rates maps a currency code to its multiplier relative to Base.
type Rates map[string]decimal.Decimal

// Rate returns the multiplier for code. The base currency, a missing entry and
// a non-positive entry all yield 1 so a partial table never breaks rendering.
func (r Rates) Rate(code string) decimal.Decimal {
	if code == Base {
		return one
	}

	rate, ok := r[code]
	if !ok || !rate.IsPositive() {
		return one
	}

	return rate
}

// Clone returns a copy of r with the base entry pinned to exactly 1.
func (r Rates) Clone() Rates {
	out := make(Rates, len(r)+1)
	for code, rate := range r {
		out[code] = rate
	}

	out[Base] = one

	return out
}

// Convert turns an amount in Base into target.
func Convert(amount decimal.Decimal, target string, rates Rates) decimal.Decimal {
	return amount.Mul(rates.Rate(target))
}

// ToBase turns an amount entered in from back into Base.
func ToBase(amount decimal.Decimal, from string, rates Rates) decimal.Decimal {
	return amount.Div(rates.Rate(from))
}

// Format renders amount in code using en-US grouping, e.g. -€1,042.50.
func Format(amount decimal.Decimal, code string) string {
	return FormatLocale(amount, code, language.AmericanEnglish)
}

// FormatLocale renders amount with exactly two fraction digits and the
// grouping rules of tag. The minus sign precedes the symbol.
func FormatLocale(amount decimal.Decimal, code string, tag language.Tag) string {
	rounded := amount.Round(2)
	sep := separatorsFor(tag)

	whole, frac, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")
	digits := group(whole, sep.group) + sep.point + frac

	if rounded.IsNegative() {
		return "-" + Symbol(code) + digits
	}

	return Symbol(code) + digits
}

type separators struct {
	group string
	point string
}

var separatorCache sync.Map // language.Tag -> separators

// separatorsFor reads the grouping and decimal separators of tag off a sample
// rendered by x/text, so digits never pass through a float.
func separatorsFor(tag language.Tag) separators {
	if v, ok := separatorCache.Load(tag); ok {
		return v.(separators)
	}

	sample := message.NewPrinter(tag).Sprintf("%.2f", 1234.5)

	rest := strings.TrimPrefix(sample, "1")
	groupSep, rest, _ := strings.Cut(rest, "234")
	sep := separators{group: groupSep, point: strings.TrimSuffix(rest, "50")}

	if sep.point == "" {
		sep = separators{group: ",", point: "."}
	}

	separatorCache.Store(tag, sep)

	return sep
}

// group inserts sep between every three digits of whole, counted from the right.
func group(whole, sep string) string {
	if len(whole) <= 3 || sep == "" {
		return whole
	}

	var sb strings.Builder

	head := len(whole) % 3
	if head > 0 {
		sb.WriteString(whole[:head])
	}

	for i := head; i < len(whole); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(sep)
		}

		sb.WriteString(whole[i : i+3])
	}

	return sb.String()
}

// Display converts amount from Base into code and formats the result.
func Display(amount decimal.Decimal, code string, rates Rates) string {
	return Format(Convert(amount, code, rates), code)
}

// Locale resolves a preference locale ("en", "ru") to a language tag,
// defaulting to American English.
func Locale(pref string) language.Tag {
	switch pref {
	case "ru":
		return language.Russian
	default:
		return language.AmericanEnglish
	}
}
