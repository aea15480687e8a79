// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from form
// input and normalising their sign from the transaction category.
package core

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to a decimal.
//
// It accepts a plain decimal number with a dot separator, an optional sign
// and surrounding whitespace. Any other input, including the empty string
// and comma decimals, returns ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("4.50")  -> 4.5, nil
//	ParseAmount("-10")   -> -10, nil
//	ParseAmount("4,50")  -> 0, ErrInvalidAmount
//	ParseAmount("ten")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// SignedAmount applies the category sign convention: income is stored as
// a positive magnitude, every other category as a negative one.
func SignedAmount(category string, amount decimal.Decimal) decimal.Decimal {
	if category == IncomeCategory {
		return amount.Abs()
	}
	return amount.Abs().Neg()
}

// FormatCurrency renders an amount as US dollars with two decimals
// ("$1,234.50", "-$4.50").
func FormatCurrency(d decimal.Decimal) string {
	r := d.Round(2)
	_, frac, _ := strings.Cut(r.Abs().StringFixed(2), ".")
	out := "$" + humanize.BigComma(r.Abs().BigInt()) + "." + frac
	if r.IsNegative() {
		return "-" + out
	}
	return out
}
