// Package format renders prices, market caps and percentages for display.
// Rounding goes through decimal so that half-way values round the same way
// on every platform.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	trillion = decimal.New(1, 12)
	billion  = decimal.New(1, 9)
	million  = decimal.New(1, 6)
	cent     = decimal.New(1, -2)
)

// Price formats a USD price: 6 decimals below $0.01, 4 below $1,
// otherwise grouped with 2 decimals.
func Price(v float64) string {
	d := decimal.NewFromFloat(v)
	switch {
	case d.LessThan(cent):
		return "$" + d.StringFixed(6)
	case d.LessThan(decimal.NewFromInt(1)):
		return "$" + d.StringFixed(4)
	default:
		return "$" + group(d.StringFixed(2))
	}
}

// MarketCap formats large USD values with T/B/M suffixes and 2 decimals.
func MarketCap(v float64) string {
	return compact(decimal.NewFromFloat(v), 2)
}

// CompactValue is MarketCap with a single decimal, used for chart labels.
func CompactValue(v float64) string {
	return compact(decimal.NewFromFloat(v), 1)
}

func compact(d decimal.Decimal, places int32) string {
	switch {
	case d.GreaterThanOrEqual(trillion):
		return "$" + d.Div(trillion).StringFixed(places) + "T"
	case d.GreaterThanOrEqual(billion):
		return "$" + d.Div(billion).StringFixed(places) + "B"
	case d.GreaterThanOrEqual(million):
		return "$" + d.Div(million).StringFixed(places) + "M"
	default:
		return "$" + Number(d.InexactFloat64())
	}
}

// Percentage formats a signed percentage with 2 decimals and a "+" for gains.
func Percentage(v float64) string {
	d := decimal.NewFromFloat(v)
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// Number formats v with thousands separators and at most 3 decimals.
func Number(v float64) string {
	return group(decimal.NewFromFloat(v).Round(3).String())
}

// Supply formats a token supply as a grouped number followed by the symbol.
func Supply(v float64, symbol string) string {
	return Number(v) + " " + strings.ToUpper(symbol)
}

// group inserts thousands separators into a plain decimal string.
func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	out := sign + b.String()
	if hasFrac {
		out += "." + frac
	}
	return out
}
