package core

import "github.com/shopspring/decimal"

// DefaultBudgets are written once when the budget collection is empty.
func DefaultBudgets() []Budget {
	return []Budget{
		{Category: "Food & Dining", Limit: decimal.NewFromInt(600), Color: "bg-violet-500", IconName: "Utensils"},
		{Category: "Transportation", Limit: decimal.NewFromInt(150), Color: "bg-blue-500", IconName: "Car"},
		{Category: "Entertainment", Limit: decimal.NewFromInt(200), Color: "bg-pink-500", IconName: "Film"},
		{Category: "Shopping", Limit: decimal.NewFromInt(300), Color: "bg-emerald-500", IconName: "ShoppingBag"},
		{Category: "Housing", Limit: decimal.NewFromInt(1200), Color: "bg-amber-500", IconName: "Home"},
		{Category: "Utilities", Limit: decimal.NewFromInt(250), Color: "bg-indigo-500", IconName: "Wifi"},
	}
}
