// Package pricing derives cart and order totals from line items.
package pricing

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var (
	DefaultFreeShippingThreshold = decimal.NewFromInt(100000)
	DefaultStandardShippingCost  = decimal.NewFromInt(25000)
)

// Line is a priced quantity.
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// Rule waives shipping once the subtotal reaches FreeShippingThreshold.
type Rule struct {
	FreeShippingThreshold decimal.Decimal
	StandardShippingCost  decimal.Decimal
}

// DefaultRule returns the storefront's standard shipping rule.
func DefaultRule() Rule {
	return Rule{
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		StandardShippingCost:  DefaultStandardShippingCost,
	}
}

// Totals is the derived money summary of a set of lines.
type Totals struct {
	Subtotal             decimal.Decimal `json:"subtotal"`
	ShippingCost         decimal.Decimal `json:"shippingCost"`
	Total                decimal.Decimal `json:"total"`
	AmountToFreeShipping decimal.Decimal `json:"amountToFreeShipping"`
}

// Calculate computes totals for lines. It has no side effects.
func (r Rule) Calculate(lines []Line) Totals {
	subtotal := lo.Reduce(lines, func(acc decimal.Decimal, l Line, _ int) decimal.Decimal {
		return acc.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}, decimal.Zero)

	shipping := r.StandardShippingCost
	if subtotal.GreaterThanOrEqual(r.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal:             subtotal,
		ShippingCost:         shipping,
		Total:                subtotal.Add(shipping),
		AmountToFreeShipping: decimal.Max(decimal.Zero, r.FreeShippingThreshold.Sub(subtotal)),
	}
}
