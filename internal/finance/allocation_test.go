package finance_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-erp/internal/finance"
)

func day(offset int) time.Time {
	return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func outstandingDoc(number string, date time.Time, total, paid string) finance.OutstandingDocument {
	return finance.OutstandingDocument{
		ID:         uuid.New(),
		Number:     number,
		IssueDate:  date,
		Total:      d(total),
		AmountPaid: d(paid),
	}
}

func TestAllocateOldestFirst(t *testing.T) {
	t.Parallel()

	docs := []finance.OutstandingDocument{
		outstandingDoc("INV-003", day(20), "100", "0"),
		outstandingDoc("INV-001", day(0), "100", "0"),
		outstandingDoc("INV-002", day(10), "100", "0"),
	}
	res, err := finance.Allocate(d("40"), docs)
	require.NoError(t, err)
	require.Len(t, res.Allocations, 1)
	require.Equal(t, "INV-001", res.Allocations[0].DocumentNumber)
	requireEqualDecimal(t, "40", res.Allocations[0].AmountAllocated)
	require.False(t, res.Allocations[0].FullyPaid)
	requireEqualDecimal(t, "0", res.RemainingCredit)
	require.True(t, res.FullyAllocated)
}

func TestAllocateSpansDocumentsAndStops(t *testing.T) {
	t.Parallel()

	docs := []finance.OutstandingDocument{
		outstandingDoc("INV-001", day(0), "100", "60"), // outstanding 40
		outstandingDoc("INV-002", day(5), "200", "0"),  // outstanding 200
		outstandingDoc("INV-003", day(9), "300", "0"),  // never reached
	}
	res, err := finance.Allocate(d("150"), docs)
	require.NoError(t, err)
	require.Len(t, res.Allocations, 2)

	first := res.Allocations[0]
	requireEqualDecimal(t, "40", first.AmountAllocated)
	requireEqualDecimal(t, "40", first.OutstandingBefore)
	requireEqualDecimal(t, "0", first.OutstandingAfter)
	require.True(t, first.FullyPaid)

	second := res.Allocations[1]
	requireEqualDecimal(t, "110", second.AmountAllocated)
	requireEqualDecimal(t, "90", second.OutstandingAfter)
	require.False(t, second.FullyPaid)

	requireEqualDecimal(t, "150", res.TotalAllocated)
	requireEqualDecimal(t, "0", res.RemainingCredit)
}

func TestAllocatePaymentExceedsDebt(t *testing.T) {
	t.Parallel()

	docs := []finance.OutstandingDocument{outstandingDoc("INV-001", day(0), "50", "0")}
	res, err := finance.Allocate(d("80"), docs)
	require.NoError(t, err)
	require.Len(t, res.Allocations, 1)
	requireEqualDecimal(t, "50", res.Allocations[0].AmountAllocated)
	require.True(t, res.Allocations[0].FullyPaid)
	requireEqualDecimal(t, "30", res.RemainingCredit)
	require.False(t, res.FullyAllocated)
}

func TestAllocatePaymentUndershootsDebt(t *testing.T) {
	t.Parallel()

	docs := []finance.OutstandingDocument{outstandingDoc("INV-001", day(0), "50", "0")}
	res, err := finance.Allocate(d("30"), docs)
	require.NoError(t, err)
	require.Len(t, res.Allocations, 1)
	requireEqualDecimal(t, "30", res.Allocations[0].AmountAllocated)
	require.False(t, res.Allocations[0].FullyPaid)
	requireEqualDecimal(t, "0", res.RemainingCredit)
	require.True(t, res.FullyAllocated)
}

func TestAllocateSkipsSettledDocuments(t *testing.T) {
	t.Parallel()

	docs := []finance.OutstandingDocument{
		outstandingDoc("INV-001", day(0), "100", "100"), // settled
		outstandingDoc("INV-002", day(1), "100", "120"), // overpaid snapshot, tolerated
		outstandingDoc("INV-003", day(2), "100", "0"),
	}
	res, err := finance.Allocate(d("50"), docs)
	require.NoError(t, err)
	require.Len(t, res.Allocations, 1)
	require.Equal(t, "INV-003", res.Allocations[0].DocumentNumber)
}

func TestAllocateDateTiesKeepInputOrder(t *testing.T) {
	t.Parallel()

	docs := []finance.OutstandingDocument{
		outstandingDoc("INV-B", day(0), "100", "0"),
		outstandingDoc("INV-A", day(0), "100", "0"),
	}
	res, err := finance.Allocate(d("150"), docs)
	require.NoError(t, err)
	require.Len(t, res.Allocations, 2)
	require.Equal(t, "INV-B", res.Allocations[0].DocumentNumber)
	require.Equal(t, "INV-A", res.Allocations[1].DocumentNumber)
}

func TestAllocateZeroPayment(t *testing.T) {
	t.Parallel()

	docs := []finance.OutstandingDocument{outstandingDoc("INV-001", day(0), "100", "0")}
	res, err := finance.Allocate(d("0"), docs)
	require.NoError(t, err)
	require.Empty(t, res.Allocations)
	requireEqualDecimal(t, "0", res.RemainingCredit)
	require.True(t, res.FullyAllocated)
}

func TestAllocateRejectsNegativePayment(t *testing.T) {
	t.Parallel()

	_, err := finance.Allocate(d("-1"), nil)
	require.ErrorIs(t, err, finance.ErrInvalidPayment)
}

func TestAllocateConservation(t *testing.T) {
	t.Parallel()

	docs := []finance.OutstandingDocument{
		outstandingDoc("INV-001", day(3), "33.33", "10"),
		outstandingDoc("INV-002", day(1), "120.45", "80.44"),
		outstandingDoc("INV-003", day(2), "19.99", "0"),
	}
	for _, amount := range []string{"0", "10.01", "40", "93.33", "500"} {
		res, err := finance.Allocate(d(amount), docs)
		require.NoError(t, err)
		require.True(t, res.TotalAllocated.Add(res.RemainingCredit).Equal(d(amount)),
			"allocation of %s does not conserve the payment", amount)
		sum := d("0")
		for _, a := range res.Allocations {
			sum = sum.Add(a.AmountAllocated)
		}
		require.True(t, res.TotalAllocated.Equal(sum))
	}
}
