// Package advisor answers chat messages with canned budgeting advice.
package advisor

import (
	"context"
	"strings"
	"time"
)

const DefaultDelay = 1500 * time.Millisecond

const (
	BudgetReply = "Based on your spending patterns, I recommend allocating 50% of your income to necessities, 30% to discretionary spending, and 20% to savings. Your current allocation is 60% to necessities, 35% to discretionary, and only 5% to savings."
	SavingReply = "I see potential to increase your savings by $320 monthly. Your subscription services cost $95/month, and your dining out expenses are $430/month, which is 40% higher than average for your income level."
	InvestReply = "Based on your risk profile and financial goals, consider a portfolio with 60% index funds, 30% bonds, and 10% individual stocks. Start with automatic monthly investments of $200 to build the habit."
	Fallback    = "Thanks for your message. To provide specific financial advice, I'd need to know more about your budget, spending patterns, or financial goals. Could you provide more details about what you're looking to achieve?"
)

// rules are checked in order, first match wins.
var rules = []struct {
	keywords []string
	reply    string
}{
	{[]string{"budget", "spending"}, BudgetReply},
	{[]string{"save", "saving"}, SavingReply},
	{[]string{"invest", "investment"}, InvestReply},
}

// Match returns the reply for message without waiting.
func Match(message string) string {
	m := strings.ToLower(message)
	for _, r := range rules {
		for _, k := range r.keywords {
			if strings.Contains(m, k) {
				return r.reply
			}
		}
	}
	return Fallback
}

type Advisor struct {
	delay time.Duration
}

// New returns an advisor that waits delay before answering. A zero delay
// answers immediately.
func New(delay time.Duration) *Advisor {
	if delay < 0 {
		delay = 0
	}
	return &Advisor{delay: delay}
}

// Reply answers message after the configured delay, or returns ctx.Err()
// if ctx ends first.
func (a *Advisor) Reply(ctx context.Context, message string) (string, error) {
	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return Match(message), nil
}
