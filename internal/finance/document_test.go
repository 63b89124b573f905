package finance_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-erp/internal/finance"
)

func TestAggregateEmptyDocument(t *testing.T) {
	t.Parallel()

	totals, err := finance.Aggregate(nil)
	require.NoError(t, err)
	require.Equal(t, 0, totals.ItemCount)
	require.Empty(t, totals.TaxBreakdown)
	requireEqualDecimal(t, "0", totals.Subtotal)
	requireEqualDecimal(t, "0", totals.TotalNet)
	requireEqualDecimal(t, "0", totals.TotalTax)
	requireEqualDecimal(t, "0", totals.GrandTotal)
}

func TestAggregateSingleRate(t *testing.T) {
	t.Parallel()

	totals, err := finance.Aggregate([]finance.LineItem{
		{Quantity: d("2"), UnitPrice: d("50"), DiscountPercent: d("10"), TaxRate: d("24")},
		{Quantity: d("1"), UnitPrice: d("10"), DiscountPercent: d("0"), TaxRate: d("24")},
	})
	require.NoError(t, err)
	require.Equal(t, 2, totals.ItemCount)
	requireEqualDecimal(t, "110", totals.Subtotal)
	requireEqualDecimal(t, "10", totals.TotalDiscount)
	requireEqualDecimal(t, "100", totals.TotalNet)
	requireEqualDecimal(t, "24", totals.TotalTax)
	requireEqualDecimal(t, "124", totals.GrandTotal)
	require.Len(t, totals.TaxBreakdown, 1)
	requireEqualDecimal(t, "100", totals.TaxBreakdown[0].NetAmount)
	requireEqualDecimal(t, "24", totals.TaxBreakdown[0].TaxAmount)
}

func TestAggregateBreakdownKeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()

	totals, err := finance.Aggregate([]finance.LineItem{
		{Quantity: d("1"), UnitPrice: d("100"), TaxRate: d("24")},
		{Quantity: d("1"), UnitPrice: d("100"), TaxRate: d("6")},
		{Quantity: d("1"), UnitPrice: d("100"), TaxRate: d("24")},
		{Quantity: d("1"), UnitPrice: d("100"), TaxRate: d("13")},
		{Quantity: d("1"), UnitPrice: d("100"), TaxRate: d("6")},
	})
	require.NoError(t, err)
	require.Len(t, totals.TaxBreakdown, 3)
	requireEqualDecimal(t, "24", totals.TaxBreakdown[0].Rate)
	requireEqualDecimal(t, "6", totals.TaxBreakdown[1].Rate)
	requireEqualDecimal(t, "13", totals.TaxBreakdown[2].Rate)
	requireEqualDecimal(t, "200", totals.TaxBreakdown[0].NetAmount)
	requireEqualDecimal(t, "48", totals.TaxBreakdown[0].TaxAmount)
	requireEqualDecimal(t, "200", totals.TaxBreakdown[1].NetAmount)
	requireEqualDecimal(t, "12", totals.TaxBreakdown[1].TaxAmount)
}

func TestAggregateInvariants(t *testing.T) {
	t.Parallel()

	totals, err := finance.Aggregate([]finance.LineItem{
		{Quantity: d("3"), UnitPrice: d("0.333"), DiscountPercent: d("7.5"), TaxRate: d("13")},
		{Quantity: d("1.25"), UnitPrice: d("19.99"), DiscountPercent: d("33.33"), TaxRate: d("24")},
		{Quantity: d("7"), UnitPrice: d("142.857"), TaxRate: d("6")},
		{Quantity: d("1"), UnitPrice: d("-80"), TaxRate: d("24")},
	})
	require.NoError(t, err)

	require.True(t, totals.GrandTotal.Equal(totals.TotalNet.Add(totals.TotalTax)),
		"grandTotal != totalNet + totalTax")
	require.True(t, totals.TotalNet.Equal(totals.Subtotal.Sub(totals.TotalDiscount)),
		"totalNet != subtotal - totalDiscount")

	sumTax := d("0")
	sumNet := d("0")
	for _, b := range totals.TaxBreakdown {
		sumTax = sumTax.Add(b.TaxAmount)
		sumNet = sumNet.Add(b.NetAmount)
	}
	require.True(t, totals.TotalTax.Equal(sumTax), "totalTax != sum of breakdown tax")
	require.True(t, totals.TotalNet.Equal(sumNet), "totalNet != sum of breakdown net")
}

func TestAggregatePropagatesLineErrors(t *testing.T) {
	t.Parallel()

	_, err := finance.Aggregate([]finance.LineItem{
		{Quantity: d("1"), UnitPrice: d("10")},
		{Quantity: d("-2"), UnitPrice: d("10")},
	})
	require.ErrorIs(t, err, finance.ErrInvalidQuantity)
}
