package finance

import "github.com/shopspring/decimal"

// TaxBreakdown accumulates net and tax amounts for one distinct tax rate.
type TaxBreakdown struct {
	Rate      decimal.Decimal `json:"rate"`
	NetAmount decimal.Decimal `json:"netAmount"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
}

// DocumentTotals is the document-level aggregation of its line results,
// including the per-rate breakdown required for regulatory reporting.
type DocumentTotals struct {
	ItemCount     int              `json:"itemCount"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	TotalDiscount decimal.Decimal  `json:"totalDiscount"`
	TotalNet      decimal.Decimal  `json:"totalNet"`
	TaxBreakdown  []TaxBreakdown   `json:"taxBreakdown"`
	TotalTax      decimal.Decimal  `json:"totalTax"`
	GrandTotal    decimal.Decimal  `json:"grandTotal"`
	Lines         []LineItemResult `json:"lines"`
}

// Aggregate computes each line via ComputeLine and sums the already-rounded
// per-line values. Running sums are not re-rounded per step; the exposed
// totals are rounded once at the end. The breakdown groups lines by exact
// tax rate in first-seen order. An empty item list yields zero totals and an
// empty breakdown.
func Aggregate(items []LineItem) (DocumentTotals, error) {
	totals := DocumentTotals{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalNet:      decimal.Zero,
		TotalTax:      decimal.Zero,
		GrandTotal:    decimal.Zero,
		TaxBreakdown:  []TaxBreakdown{},
		Lines:         make([]LineItemResult, 0, len(items)),
	}
	rateIndex := make(map[string]int, 4)
	for _, item := range items {
		line, err := ComputeLine(item)
		if err != nil {
			return DocumentTotals{}, err
		}
		totals.Lines = append(totals.Lines, line)
		totals.Subtotal = totals.Subtotal.Add(line.Subtotal)
		totals.TotalDiscount = totals.TotalDiscount.Add(line.DiscountAmount)
		totals.TotalNet = totals.TotalNet.Add(line.NetAmount)
		totals.TotalTax = totals.TotalTax.Add(line.TaxAmount)
		totals.GrandTotal = totals.GrandTotal.Add(line.Total)

		key := line.TaxRate.String()
		idx, seen := rateIndex[key]
		if !seen {
			idx = len(totals.TaxBreakdown)
			rateIndex[key] = idx
			totals.TaxBreakdown = append(totals.TaxBreakdown, TaxBreakdown{
				Rate:      line.TaxRate,
				NetAmount: decimal.Zero,
				TaxAmount: decimal.Zero,
			})
		}
		totals.TaxBreakdown[idx].NetAmount = totals.TaxBreakdown[idx].NetAmount.Add(line.NetAmount)
		totals.TaxBreakdown[idx].TaxAmount = totals.TaxBreakdown[idx].TaxAmount.Add(line.TaxAmount)
	}
	totals.ItemCount = len(items)
	totals.Subtotal = Round(totals.Subtotal)
	totals.TotalDiscount = Round(totals.TotalDiscount)
	totals.TotalNet = Round(totals.TotalNet)
	totals.TotalTax = Round(totals.TotalTax)
	totals.GrandTotal = Round(totals.GrandTotal)
	for i := range totals.TaxBreakdown {
		totals.TaxBreakdown[i].NetAmount = Round(totals.TaxBreakdown[i].NetAmount)
		totals.TaxBreakdown[i].TaxAmount = Round(totals.TaxBreakdown[i].TaxAmount)
	}
	return totals, nil
}
