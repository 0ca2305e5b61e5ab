// Package core holds the canonical transaction model and the pure
// aggregation pipeline: period filtering, grouped sums, financial ratios and
// cash-flow reconciliation. Everything here is side-effect free; callers
// inject "now" where a clock is needed.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseLocaleAmount converts a spreadsheet amount cell to cents.
//
// Accepted input is the documented source format: an optional euro symbol,
// thousands separated by commas and a dot as decimal separator
// ("3,000.00" -> 300000). The "1.234,00" style is out of scope. Negative,
// zero, empty and non-numeric inputs return ErrInvalidAmount so that callers
// can drop the row.
func ParseLocaleAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Amounts are always the original invoice amount, never signed.
		return 0, ErrInvalidAmount
	}
	// Drop thousands separators.
	s = strings.ReplaceAll(s, ",", "")

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// Euros returns the euro value as a float64 for display purposes.
// Use cents for all arithmetic.
func (m Money) Euros() float64 {
	return float64(m.Cents) / 100.0
}
