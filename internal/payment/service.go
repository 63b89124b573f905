// Package payment records customer payments and allocates them across
// outstanding documents, oldest first.
package payment

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-erp/internal/common"
	"github.com/noah-isme/backend-erp/internal/finance"
	"github.com/noah-isme/backend-erp/internal/lock"
	"github.com/noah-isme/backend-erp/internal/obs"
	"github.com/noah-isme/backend-erp/internal/repo"
)

// PaymentStore captures the persistence methods required by the service.
type PaymentStore interface {
	Record(ctx context.Context, payment repo.PaymentRecord, allocate func([]finance.OutstandingDocument) (finance.AllocationResult, error)) (repo.PaymentRecord, finance.AllocationResult, error)
	Get(ctx context.Context, id uuid.UUID) (repo.PaymentRecord, error)
	Outstanding(ctx context.Context, customerID uuid.UUID) ([]finance.OutstandingDocument, error)
}

// CustomerStore captures the customer lookups required by the service.
type CustomerStore interface {
	Get(ctx context.Context, id uuid.UUID) (repo.CustomerRecord, error)
}

// Locker serializes allocation per customer across instances.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// RecordInput describes an incoming customer payment.
type RecordInput struct {
	CustomerID uuid.UUID
	Amount     decimal.Decimal
	Reference  string
	ReceivedAt time.Time
}

// Service applies payments to outstanding documents.
type Service struct {
	Payments  PaymentStore
	Customers CustomerStore
	Locker    Locker
	LockTTL   time.Duration
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Record persists the payment and its allocations. The per-customer lock and
// the row locks taken inside the transaction together guarantee that two
// concurrent payments for the same customer cannot allocate against stale
// balances.
func (s *Service) Record(ctx context.Context, input RecordInput) (repo.PaymentRecord, finance.AllocationResult, error) {
	if input.Amount.IsNegative() {
		return repo.PaymentRecord{}, finance.AllocationResult{},
			common.NewAppError("VALIDATION", "payment amount must not be negative", http.StatusUnprocessableEntity, finance.ErrInvalidPayment)
	}
	if _, err := s.Customers.Get(ctx, input.CustomerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.PaymentRecord{}, finance.AllocationResult{},
				common.NewAppError("NOT_FOUND", "customer not found", http.StatusNotFound, err)
		}
		return repo.PaymentRecord{}, finance.AllocationResult{}, err
	}

	receivedAt := input.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = s.now()
	}
	payment := repo.PaymentRecord{
		ID:         uuid.New(),
		CustomerID: input.CustomerID,
		Amount:     finance.Round(input.Amount),
		ReceivedAt: receivedAt,
		Reference:  input.Reference,
	}

	var (
		stored repo.PaymentRecord
		result finance.AllocationResult
	)
	err := s.Locker.WithLock(ctx, lock.AllocationKey(input.CustomerID), s.LockTTL, func(ctx context.Context) error {
		var err error
		stored, result, err = s.Payments.Record(ctx, payment, func(docs []finance.OutstandingDocument) (finance.AllocationResult, error) {
			return finance.Allocate(payment.Amount, docs)
		})
		return err
	})
	observeAllocation(result, err)
	if err != nil {
		return repo.PaymentRecord{}, finance.AllocationResult{}, err
	}
	return stored, result, nil
}

// Get returns a stored payment with its allocations.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repo.PaymentRecord, error) {
	p, err := s.Payments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.PaymentRecord{}, common.NewAppError("NOT_FOUND", "payment not found", http.StatusNotFound, err)
		}
		return repo.PaymentRecord{}, err
	}
	return p, nil
}

// Outstanding returns the customer's open documents, oldest first.
func (s *Service) Outstanding(ctx context.Context, customerID uuid.UUID) ([]finance.OutstandingDocument, error) {
	if _, err := s.Customers.Get(ctx, customerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, common.NewAppError("NOT_FOUND", "customer not found", http.StatusNotFound, err)
		}
		return nil, err
	}
	return s.Payments.Outstanding(ctx, customerID)
}

func observeAllocation(result finance.AllocationResult, err error) {
	if obs.PaymentAllocationTotal == nil {
		return
	}
	if err != nil {
		obs.PaymentAllocationTotal.WithLabelValues("error").Inc()
		return
	}
	obs.PaymentAllocationTotal.WithLabelValues("ok").Inc()
	obs.PaymentAllocationDocs.Observe(float64(len(result.Allocations)))
	if result.RemainingCredit.IsPositive() {
		obs.PaymentRemainingCredit.Inc()
	}
}
