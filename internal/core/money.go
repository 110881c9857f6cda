// Package core provides money parsing and handling utilities.
//
// This file contains the decimal parsing used by forms and the pt-BR
// currency rendering used everywhere values are displayed.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseValue converts a decimal string to a decimal.Decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// thousands separators and any other characters are rejected. Zero is
// accepted; callers decide whether a zero value is meaningful.
//
// Examples:
//
//	ParseValue("12.34") -> 12.34, nil
//	ParseValue("12,34") -> 12.34, nil
//	ParseValue("-1")    -> 0, ErrInvalidValue
func ParseValue(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidValue
	}
	s = strings.Replace(s, ",", ".", 1)
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidValue
	}
	if parts[0] == "" {
		parts[0] = "0"
	}
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return decimal.Zero, ErrInvalidValue
			}
		}
	}
	d, err := decimal.NewFromString(strings.Join(parts, "."))
	if err != nil {
		return decimal.Zero, ErrInvalidValue
	}
	return d, nil
}

// FormatBRL renders d as "R$ 1234,50": two decimals, comma separator and no
// thousands grouping.
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// MaskCurrencyInput applies the value mask of the forms: digits are kept,
// read as cents, and rendered with two decimals and a comma.
// "1234" gives "12,34"; input without digits gives "".
func MaskCurrencyInput(text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	if digits == "" {
		return ""
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return ""
	}
	return MaskDecimal(d.Shift(-2))
}

// MaskDecimal renders d in the masked form, e.g. 12.3 gives "12,30".
func MaskDecimal(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// NumericValue converts a masked value back to the dot form submitted to
// the API. An empty mask gives "0".
func NumericValue(masked string) string {
	if masked == "" {
		return "0"
	}
	return strings.Replace(masked, ",", ".", 1)
}
