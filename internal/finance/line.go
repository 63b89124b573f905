package finance

import "github.com/shopspring/decimal"

// LineItem is the raw input for a single document line.
type LineItem struct {
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxRate         decimal.Decimal `json:"taxRate"`
}

// LineItemResult is the full monetary breakdown of one line. For every
// result, Total equals NetAmount plus TaxAmount and NetAmount equals
// Subtotal minus DiscountAmount, to the cent.
type LineItemResult struct {
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	NetAmount       decimal.Decimal `json:"netAmount"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	Total           decimal.Decimal `json:"total"`
}

// ComputeLine turns a line item into its subtotal/net/tax/total breakdown.
// A negative quantity is rejected; a negative unit price is allowed and
// represents a credit or return line, with signed amounts flowing through
// every downstream field unchanged.
func ComputeLine(item LineItem) (LineItemResult, error) {
	if item.Quantity.IsNegative() {
		return LineItemResult{}, ErrInvalidQuantity
	}
	subtotal := Round(item.Quantity.Mul(item.UnitPrice))
	discounted := ApplyDiscount(subtotal, item.DiscountPercent)
	taxed := VATFromNet(discounted.FinalAmount, item.TaxRate)
	return LineItemResult{
		Quantity:        item.Quantity,
		UnitPrice:       item.UnitPrice,
		Subtotal:        subtotal,
		DiscountPercent: item.DiscountPercent,
		DiscountAmount:  discounted.DiscountAmount,
		NetAmount:       discounted.FinalAmount,
		TaxRate:         item.TaxRate,
		TaxAmount:       taxed.VATAmount,
		Total:           taxed.Gross,
	}, nil
}
