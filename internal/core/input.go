package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Field names used as keys in FieldErrors.
const (
	FieldTitle       = "title"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldPaymentMode = "paymentMode"
	FieldDate        = "date"
)

// TransactionInput is the raw form submission for a new transaction.
type TransactionInput struct {
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	PaymentMode string `json:"paymentMode"`
	Date        string `json:"date"` // optional, today when empty
}

// FieldErrors maps a form field to a user-facing message.
type FieldErrors map[string]string

// ValidationError is returned by the mutation entry point when the input
// is rejected. Nothing is stored when it is returned.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// CategoryResolver reports whether a category is known. Used only when
// strict category checking is enabled.
type CategoryResolver func(category string) bool

// BuildTransaction validates in and returns the transaction to store, with
// the sign already normalised. now supplies the default date.
func BuildTransaction(in TransactionInput, now time.Time, known CategoryResolver) (Transaction, FieldErrors) {
	errs := FieldErrors{}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		errs[FieldTitle] = "Title is required"
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		errs[FieldAmount] = "Valid amount is required"
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		errs[FieldCategory] = "Category is required"
	} else if known != nil && category != IncomeCategory && !known(category) {
		errs[FieldCategory] = "Unknown category"
	}

	mode, err := ParsePaymentMode(in.PaymentMode)
	if err != nil {
		errs[FieldPaymentMode] = "Payment mode must be cash, bank or card"
	}

	date := DateOf(now)
	if strings.TrimSpace(in.Date) != "" {
		d, err := ParseDate(in.Date)
		if err != nil {
			errs[FieldDate] = "Valid date is required"
		}
		date = d
	}

	if len(errs) > 0 {
		return Transaction{}, errs
	}

	return Transaction{
		Title:       title,
		Amount:      SignedAmount(category, amount),
		Date:        date,
		Category:    category,
		PaymentMode: mode,
	}, nil
}
