package core

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// IncomeCategory is the only category whose transactions are stored as
// positive amounts.
const IncomeCategory = "Income"

// DateLabelLayout is the display format used for transaction dates
// ("Jan 2, 2006").
const DateLabelLayout = "Jan 2, 2006"

const (
	PaymentCash PaymentMode = "cash"
	PaymentBank PaymentMode = "bank"
	PaymentCard PaymentMode = "card"
)

type (
	PaymentMode string

	// Date is a calendar date without time of day.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          int64
		Title       string
		Amount      decimal.Decimal // negative = expense, positive = income
		Date        Date
		Category    string
		PaymentMode PaymentMode
		CreatedAt   time.Time
	}

	Budget struct {
		ID       int64
		Category string
		Limit    decimal.Decimal
		Color    string // presentation tag, e.g. "bg-violet-500"
		IconName string // presentation tag, e.g. "Utensils"
	}

	// BudgetWithSpent is a Budget with its spent amount computed from the
	// current transactions. It is never persisted.
	BudgetWithSpent struct {
		Budget
		Spent decimal.Decimal
	}

	Totals struct {
		TotalSpent      decimal.Decimal
		TotalLimit      decimal.Decimal
		OverBudgetCount int
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyTitle         = errors.New("empty title")
	ErrEmptyCategory      = errors.New("empty category")
	ErrInvalidPaymentMode = errors.New("invalid payment mode")
	ErrInvalidLimit       = errors.New("budget limit must be positive")
)

// PaymentModes lists the accepted payment modes in display order.
func PaymentModes() []PaymentMode {
	return []PaymentMode{PaymentCash, PaymentBank, PaymentCard}
}

// ParsePaymentMode accepts "cash", "bank" or "card" in any case. An empty
// string selects cash, which is the form default.
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch PaymentMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", PaymentCash:
		return PaymentCash, nil
	case PaymentBank:
		return PaymentBank, nil
	case PaymentCard:
		return PaymentCard, nil
	default:
		return "", ErrInvalidPaymentMode
	}
}

func (p PaymentMode) Valid() bool {
	switch p {
	case PaymentCash, PaymentBank, PaymentCard:
		return true
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts ISO dates (2006-01-02) and display labels (Jan 2, 2006).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", DateLabelLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, ErrInvalidDate
}

// Label returns the display string used to group transactions.
func (d Date) Label() string {
	return d.Format(DateLabelLayout)
}

// ISO returns the sortable storage form.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// DateLabel is the display-formatted date of the transaction.
func (t Transaction) DateLabel() string {
	return t.Date.Label()
}

func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// Validate checks a transaction that is about to be stored. Input-level
// checks with per-field messages live in BuildTransaction.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.PaymentMode.Valid() {
		return ErrInvalidPaymentMode
	}
	return t.Date.Validate()
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if !b.Limit.IsPositive() {
		return ErrInvalidLimit
	}
	return nil
}

// SortTransactions orders newest date first, ties broken by newest id.
func SortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.After(txs[j].Date.Time)
		}
		return txs[i].ID > txs[j].ID
	})
}
