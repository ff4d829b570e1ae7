// Package currencyutils converts payroll sheet cells to fixed-point decimals
// and back. Every monetary value in the application goes through here; no
// code path uses float64 for money.
package currencyutils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnitPlaces is the number of decimal places money is rounded to.
const MinorUnitPlaces = 2

var (
	// ErrNotNumeric is wrapped by every parse failure.
	ErrNotNumeric = errors.New("not a numeric value")

	currencyRe  = regexp.MustCompile(`(?i)(PHP|USD|EUR|CHF|₱|\$|€|£|¥)`)
	spaceRe     = regexp.MustCompile(`\s+`)
	hundred     = decimal.NewFromInt(100)
	blankTokens = map[string]bool{"": true, "-": true, "–": true, "—": true}
)

// IsBlank reports whether a cell carries no value. A lone dash is how
// spreadsheets render an empty accounting cell.
func IsBlank(s string) bool {
	return blankTokens[strings.TrimSpace(s)]
}

// ParseAmount parses a payroll amount such as "35,067.00", "₱ 1,052.01",
// "(250.00)" or "1.234,56". Blank cells parse as zero. A value wrapped in
// parentheses is negative.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	if IsBlank(amountStr) {
		return decimal.Zero, nil
	}

	standardized, negative := StandardizeAmount(amountStr)
	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, ErrNotNumeric)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// StandardizeAmount strips currency markers, whitespace and thousands
// separators, returning a string accepted by decimal.NewFromString and
// whether the value was written in accounting (parenthesised) form.
func StandardizeAmount(amountStr string) (string, bool) {
	s := strings.TrimSpace(amountStr)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	s = currencyRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "'", "")

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ".") < strings.LastIndex(s, ",") {
			// 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Contains(s, ","):
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			// 1234,56
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	return s, negative
}

// HasPercent reports whether the cell is written as a percentage.
func HasPercent(s string) bool {
	return strings.Contains(s, "%")
}

// ParsePercent converts "10%" or "12.5" to a fraction (0.10, 0.125).
// Blank cells parse as zero.
func ParsePercent(s string) (decimal.Decimal, error) {
	if IsBlank(s) {
		return decimal.Zero, nil
	}
	value, err := ParseAmount(strings.ReplaceAll(s, "%", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse percentage '%s': %w", s, ErrNotNumeric)
	}
	return value.Div(hundred), nil
}

// Round rounds to the currency minor unit.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MinorUnitPlaces)
}

// CalculateTaxAmount applies a fractional rate to amount and rounds the
// result to the minor unit, e.g. CalculateTaxAmount(35067, 0.10) = 3506.70.
func CalculateTaxAmount(amount, rate decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(rate))
}

// FormatAmount renders an amount with two decimals and comma thousands
// separators: 35067 -> "35,067.00", -1234.5 -> "-1,234.50".
func FormatAmount(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(MinorUnitPlaces)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if amount.Round(MinorUnitPlaces).IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// FormatPercent renders a fractional rate as a percentage: 0.1 -> "10%",
// 0.125 -> "12.5%".
func FormatPercent(rate decimal.Decimal) string {
	return rate.Mul(hundred).String() + "%"
}
