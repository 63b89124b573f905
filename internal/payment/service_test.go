package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-erp/internal/common"
	"github.com/noah-isme/backend-erp/internal/finance"
	"github.com/noah-isme/backend-erp/internal/payment"
	"github.com/noah-isme/backend-erp/internal/repo"
)

type memPayments struct {
	outstanding []finance.OutstandingDocument
	payments    map[uuid.UUID]repo.PaymentRecord
}

func newMemPayments(outstanding ...finance.OutstandingDocument) *memPayments {
	return &memPayments{
		outstanding: outstanding,
		payments:    map[uuid.UUID]repo.PaymentRecord{},
	}
}

func (m *memPayments) Record(_ context.Context, p repo.PaymentRecord, allocate func([]finance.OutstandingDocument) (finance.AllocationResult, error)) (repo.PaymentRecord, finance.AllocationResult, error) {
	result, err := allocate(m.outstanding)
	if err != nil {
		return repo.PaymentRecord{}, finance.AllocationResult{}, err
	}
	p.AllocatedTotal = result.TotalAllocated
	p.RemainingCredit = result.RemainingCredit
	for _, alloc := range result.Allocations {
		p.Allocations = append(p.Allocations, repo.PaymentAllocationRecord{
			ID:         uuid.New(),
			PaymentID:  p.ID,
			DocumentID: alloc.DocumentID,
			Amount:     alloc.AmountAllocated,
		})
		for i := range m.outstanding {
			if m.outstanding[i].ID == alloc.DocumentID {
				m.outstanding[i].AmountPaid = m.outstanding[i].AmountPaid.Add(alloc.AmountAllocated)
			}
		}
	}
	m.payments[p.ID] = p
	return p, result, nil
}

func (m *memPayments) Get(_ context.Context, id uuid.UUID) (repo.PaymentRecord, error) {
	p, ok := m.payments[id]
	if !ok {
		return repo.PaymentRecord{}, repo.ErrNotFound
	}
	return p, nil
}

func (m *memPayments) Outstanding(_ context.Context, _ uuid.UUID) ([]finance.OutstandingDocument, error) {
	var open []finance.OutstandingDocument
	for _, doc := range m.outstanding {
		if doc.Outstanding().IsPositive() {
			open = append(open, doc)
		}
	}
	return open, nil
}

type memCustomers map[uuid.UUID]repo.CustomerRecord

func (m memCustomers) Get(_ context.Context, id uuid.UUID) (repo.CustomerRecord, error) {
	c, ok := m[id]
	if !ok {
		return repo.CustomerRecord{}, repo.ErrNotFound
	}
	return c, nil
}

type recordingLocker struct {
	keys []string
}

func (l *recordingLocker) WithLock(ctx context.Context, key string, _ time.Duration, fn func(context.Context) error) error {
	l.keys = append(l.keys, key)
	return fn(ctx)
}

func d(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func day(offset int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func outstandingDoc(number string, issued time.Time, total, paid string) finance.OutstandingDocument {
	return finance.OutstandingDocument{
		ID:         uuid.New(),
		Number:     number,
		IssueDate:  issued,
		Total:      d(total),
		AmountPaid: d(paid),
	}
}

func newService(store *memPayments, customers memCustomers, locker *recordingLocker) *payment.Service {
	return &payment.Service{
		Payments:  store,
		Customers: customers,
		Locker:    locker,
		LockTTL:   time.Second,
		Now:       func() time.Time { return day(30) },
	}
}

func TestRecordAllocatesOldestFirst(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	customers := memCustomers{customerID: {ID: customerID, Name: "Acme"}}
	store := newMemPayments(
		outstandingDoc("INV-002", day(10), "40", "0"),
		outstandingDoc("INV-001", day(5), "100", "0"),
	)
	locker := &recordingLocker{}
	svc := newService(store, customers, locker)

	stored, result, err := svc.Record(context.Background(), payment.RecordInput{
		CustomerID: customerID,
		Amount:     d("120"),
	})
	require.NoError(t, err)

	require.Len(t, result.Allocations, 2)
	require.Equal(t, "INV-001", result.Allocations[0].DocumentNumber)
	require.True(t, result.Allocations[0].AmountAllocated.Equal(d("100")))
	require.True(t, result.Allocations[0].FullyPaid)
	require.Equal(t, "INV-002", result.Allocations[1].DocumentNumber)
	require.True(t, result.Allocations[1].AmountAllocated.Equal(d("20")))
	require.False(t, result.Allocations[1].FullyPaid)
	require.True(t, result.RemainingCredit.IsZero())
	require.True(t, result.FullyAllocated)

	require.True(t, stored.AllocatedTotal.Equal(d("120")))
	require.Len(t, locker.keys, 1)
	require.Contains(t, locker.keys[0], customerID.String())
}

func TestRecordOverpaymentReportsCredit(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	customers := memCustomers{customerID: {ID: customerID, Name: "Acme"}}
	store := newMemPayments(outstandingDoc("INV-001", day(1), "50", "0"))
	svc := newService(store, customers, &recordingLocker{})

	stored, result, err := svc.Record(context.Background(), payment.RecordInput{
		CustomerID: customerID,
		Amount:     d("80"),
	})
	require.NoError(t, err)
	require.True(t, result.RemainingCredit.Equal(d("30")))
	require.False(t, result.FullyAllocated)
	require.True(t, stored.RemainingCredit.Equal(d("30")))
}

func TestRecordNegativeAmountRejected(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	customers := memCustomers{customerID: {ID: customerID, Name: "Acme"}}
	svc := newService(newMemPayments(), customers, &recordingLocker{})

	_, _, err := svc.Record(context.Background(), payment.RecordInput{
		CustomerID: customerID,
		Amount:     d("-1"),
	})
	require.Error(t, err)
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "VALIDATION", appErr.Code)
}

func TestRecordUnknownCustomer(t *testing.T) {
	t.Parallel()

	svc := newService(newMemPayments(), memCustomers{}, &recordingLocker{})
	_, _, err := svc.Record(context.Background(), payment.RecordInput{
		CustomerID: uuid.New(),
		Amount:     d("10"),
	})
	require.Error(t, err)
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestRecordZeroPayment(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	customers := memCustomers{customerID: {ID: customerID, Name: "Acme"}}
	store := newMemPayments(outstandingDoc("INV-001", day(1), "50", "0"))
	svc := newService(store, customers, &recordingLocker{})

	_, result, err := svc.Record(context.Background(), payment.RecordInput{
		CustomerID: customerID,
		Amount:     decimal.Zero,
	})
	require.NoError(t, err)
	require.Empty(t, result.Allocations)
	require.True(t, result.TotalAllocated.IsZero())
	require.True(t, result.FullyAllocated)
}

func TestOutstandingSkipsSettled(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	customers := memCustomers{customerID: {ID: customerID, Name: "Acme"}}
	store := newMemPayments(
		outstandingDoc("INV-001", day(1), "50", "50"),
		outstandingDoc("INV-002", day(2), "70", "0"),
	)
	svc := newService(store, customers, &recordingLocker{})

	docs, err := svc.Outstanding(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "INV-002", docs[0].Number)
}
