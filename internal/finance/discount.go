package finance

import "github.com/shopspring/decimal"

// DiscountResult is the outcome of applying a single percentage discount.
type DiscountResult struct {
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
}

// ApplyDiscount reduces amount by percent. Percent values outside [0,100]
// are computed as given; business-range validation belongs to the caller.
func ApplyDiscount(amount, percent decimal.Decimal) DiscountResult {
	discount := Round(amount.Mul(percent).Div(oneHundred))
	return DiscountResult{
		DiscountAmount: discount,
		FinalAmount:    Round(amount.Sub(discount)),
	}
}

// DiscountStep records one stage of a cascading discount sequence.
type DiscountStep struct {
	Percent         decimal.Decimal `json:"percent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
}

// CascadeResult is the outcome of a cascading discount sequence.
type CascadeResult struct {
	Steps                    []DiscountStep  `json:"steps"`
	TotalDiscount            decimal.Decimal `json:"totalDiscount"`
	FinalAmount              decimal.Decimal `json:"finalAmount"`
	EffectiveDiscountPercent decimal.Decimal `json:"effectiveDiscountPercent"`
}

// ApplyCascadingDiscounts applies each percent in order to the running,
// already-discounted amount. Composition is multiplicative: 10% then 10% on
// 100 leaves 81, not 80. The effective percent is 0 when the base amount is 0.
func ApplyCascadingDiscounts(amount decimal.Decimal, percents []decimal.Decimal) CascadeResult {
	running := amount
	steps := make([]DiscountStep, 0, len(percents))
	for _, percent := range percents {
		applied := ApplyDiscount(running, percent)
		running = applied.FinalAmount
		steps = append(steps, DiscountStep{
			Percent:         percent,
			DiscountAmount:  applied.DiscountAmount,
			RemainingAmount: running,
		})
	}
	total := Round(amount.Sub(running))
	effective := decimal.Zero
	if !amount.IsZero() {
		effective = Round(total.Div(amount).Mul(oneHundred))
	}
	return CascadeResult{
		Steps:                    steps,
		TotalDiscount:            total,
		FinalAmount:              running,
		EffectiveDiscountPercent: effective,
	}
}
