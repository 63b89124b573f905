package finance_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-erp/internal/finance"
)

func TestComputeLineFullBreakdown(t *testing.T) {
	t.Parallel()

	res, err := finance.ComputeLine(finance.LineItem{
		Quantity:        d("2"),
		UnitPrice:       d("50"),
		DiscountPercent: d("10"),
		TaxRate:         d("24"),
	})
	require.NoError(t, err)
	requireEqualDecimal(t, "100", res.Subtotal)
	requireEqualDecimal(t, "10", res.DiscountAmount)
	requireEqualDecimal(t, "90", res.NetAmount)
	requireEqualDecimal(t, "21.6", res.TaxAmount)
	requireEqualDecimal(t, "111.6", res.Total)
}

func TestComputeLineRejectsNegativeQuantity(t *testing.T) {
	t.Parallel()

	_, err := finance.ComputeLine(finance.LineItem{Quantity: d("-1"), UnitPrice: d("10")})
	require.ErrorIs(t, err, finance.ErrInvalidQuantity)
}

func TestComputeLineCreditLine(t *testing.T) {
	t.Parallel()

	// negative unit price is a credit/return: signed amounts flow through
	res, err := finance.ComputeLine(finance.LineItem{
		Quantity:        d("1"),
		UnitPrice:       d("-80"),
		DiscountPercent: d("0"),
		TaxRate:         d("24"),
	})
	require.NoError(t, err)
	requireEqualDecimal(t, "-80", res.Subtotal)
	requireEqualDecimal(t, "-80", res.NetAmount)
	requireEqualDecimal(t, "-19.2", res.TaxAmount)
	requireEqualDecimal(t, "-99.2", res.Total)
}

func TestComputeLineZeroPriceAndQuantity(t *testing.T) {
	t.Parallel()

	res, err := finance.ComputeLine(finance.LineItem{Quantity: d("0"), UnitPrice: d("0")})
	require.NoError(t, err)
	requireEqualDecimal(t, "0", res.Total)

	res, err = finance.ComputeLine(finance.LineItem{Quantity: d("5"), UnitPrice: d("0"), TaxRate: d("24")})
	require.NoError(t, err)
	requireEqualDecimal(t, "0", res.Total)
}

func TestComputeLineBalanceInvariant(t *testing.T) {
	t.Parallel()

	items := []finance.LineItem{
		{Quantity: d("3"), UnitPrice: d("0.333"), DiscountPercent: d("7.5"), TaxRate: d("13")},
		{Quantity: d("1.25"), UnitPrice: d("19.99"), DiscountPercent: d("33.33"), TaxRate: d("24")},
		{Quantity: d("7"), UnitPrice: d("142.857"), DiscountPercent: d("0"), TaxRate: d("6")},
		{Quantity: d("2"), UnitPrice: d("-9.99"), DiscountPercent: d("10"), TaxRate: d("24")},
	}
	for _, item := range items {
		res, err := finance.ComputeLine(item)
		require.NoError(t, err)
		require.True(t, res.Total.Equal(res.NetAmount.Add(res.TaxAmount)),
			"total != net + tax for %+v", item)
		require.True(t, res.NetAmount.Equal(res.Subtotal.Sub(res.DiscountAmount)),
			"net != subtotal - discount for %+v", item)
		require.True(t, res.Total.Equal(finance.Round(res.Total)), "total not normalised to cents")
	}
}
