package finance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-erp/internal/finance"
)

func d(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func requireEqualDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(d(want)), "got %s, want %s", got, want)
}

func TestApplyDiscount(t *testing.T) {
	t.Parallel()

	res := finance.ApplyDiscount(d("100"), d("10"))
	requireEqualDecimal(t, "10", res.DiscountAmount)
	requireEqualDecimal(t, "90", res.FinalAmount)

	// fractional percentages round at the boundary
	res = finance.ApplyDiscount(d("123.45"), d("7.25"))
	requireEqualDecimal(t, "8.95", res.DiscountAmount)
	requireEqualDecimal(t, "114.5", res.FinalAmount)

	// out-of-range percent is computed, not clamped
	res = finance.ApplyDiscount(d("100"), d("150"))
	requireEqualDecimal(t, "150", res.DiscountAmount)
	requireEqualDecimal(t, "-50", res.FinalAmount)
}

func TestApplyCascadingDiscountsIsMultiplicative(t *testing.T) {
	t.Parallel()

	res := finance.ApplyCascadingDiscounts(d("100"), []decimal.Decimal{d("10"), d("10")})
	requireEqualDecimal(t, "81", res.FinalAmount)
	requireEqualDecimal(t, "19", res.TotalDiscount)
	requireEqualDecimal(t, "19", res.EffectiveDiscountPercent)
	require.Len(t, res.Steps, 2)
	requireEqualDecimal(t, "10", res.Steps[0].DiscountAmount)
	requireEqualDecimal(t, "90", res.Steps[0].RemainingAmount)
	requireEqualDecimal(t, "9", res.Steps[1].DiscountAmount)
	requireEqualDecimal(t, "81", res.Steps[1].RemainingAmount)
}

func TestApplyCascadingDiscountsZeroBase(t *testing.T) {
	t.Parallel()

	res := finance.ApplyCascadingDiscounts(d("0"), []decimal.Decimal{d("50")})
	requireEqualDecimal(t, "0", res.TotalDiscount)
	requireEqualDecimal(t, "0", res.FinalAmount)
	requireEqualDecimal(t, "0", res.EffectiveDiscountPercent)
}

func TestApplyCascadingDiscountsEmptyList(t *testing.T) {
	t.Parallel()

	res := finance.ApplyCascadingDiscounts(d("250.50"), nil)
	require.Empty(t, res.Steps)
	requireEqualDecimal(t, "0", res.TotalDiscount)
	requireEqualDecimal(t, "250.5", res.FinalAmount)
}
