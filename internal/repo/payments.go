package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-erp/internal/finance"
)

// PaymentAllocationRecord links a payment to a document it settled against.
type PaymentAllocationRecord struct {
	ID         uuid.UUID
	PaymentID  uuid.UUID
	DocumentID uuid.UUID
	Amount     decimal.Decimal
	CreatedAt  time.Time
}

// PaymentRecord is a persisted customer payment with its allocations.
type PaymentRecord struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	Amount          decimal.Decimal
	AllocatedTotal  decimal.Decimal
	RemainingCredit decimal.Decimal
	ReceivedAt      time.Time
	Reference       string
	CreatedAt       time.Time
	Allocations     []PaymentAllocationRecord
}

// PaymentRepo persists payments and applies allocations to documents.
type PaymentRepo struct {
	Pool *pgxpool.Pool
}

// Record runs allocate against the customer's outstanding documents and
// persists the outcome atomically. The outstanding rows are locked with
// FOR UPDATE for the duration of the transaction so the balances the
// allocation saw cannot move underneath it.
func (r PaymentRepo) Record(
	ctx context.Context,
	payment PaymentRecord,
	allocate func([]finance.OutstandingDocument) (finance.AllocationResult, error),
) (PaymentRecord, finance.AllocationResult, error) {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return PaymentRecord{}, finance.AllocationResult{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	outstanding, err := lockOutstanding(ctx, tx, payment.CustomerID)
	if err != nil {
		return PaymentRecord{}, finance.AllocationResult{}, err
	}

	result, err := allocate(outstanding)
	if err != nil {
		return PaymentRecord{}, finance.AllocationResult{}, err
	}

	payment.AllocatedTotal = result.TotalAllocated
	payment.RemainingCredit = result.RemainingCredit
	err = tx.QueryRow(ctx, `INSERT INTO payments
(id, customer_id, amount, allocated_total, remaining_credit, received_at, reference)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING created_at`,
		payment.ID, payment.CustomerID, payment.Amount, payment.AllocatedTotal,
		payment.RemainingCredit, payment.ReceivedAt, payment.Reference).
		Scan(&payment.CreatedAt)
	if err != nil {
		return PaymentRecord{}, finance.AllocationResult{}, fmt.Errorf("insert payment: %w", err)
	}

	for _, alloc := range result.Allocations {
		rec := PaymentAllocationRecord{
			ID:         uuid.New(),
			PaymentID:  payment.ID,
			DocumentID: alloc.DocumentID,
			Amount:     alloc.AmountAllocated,
		}
		_, err = tx.Exec(ctx, `INSERT INTO payment_allocations (id, payment_id, document_id, amount)
VALUES ($1,$2,$3,$4)`, rec.ID, rec.PaymentID, rec.DocumentID, rec.Amount)
		if err != nil {
			return PaymentRecord{}, finance.AllocationResult{}, fmt.Errorf("insert allocation: %w", err)
		}

		status := "issued"
		if alloc.FullyPaid {
			status = "paid"
		}
		_, err = tx.Exec(ctx, `UPDATE documents
SET amount_paid = amount_paid + $1, status = $2, updated_at = now()
WHERE id = $3`, rec.Amount, status, rec.DocumentID)
		if err != nil {
			return PaymentRecord{}, finance.AllocationResult{}, fmt.Errorf("update document balance: %w", err)
		}
		payment.Allocations = append(payment.Allocations, rec)
	}

	if err := tx.Commit(ctx); err != nil {
		return PaymentRecord{}, finance.AllocationResult{}, fmt.Errorf("commit: %w", err)
	}
	return payment, result, nil
}

func lockOutstanding(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) ([]finance.OutstandingDocument, error) {
	rows, err := tx.Query(ctx, `SELECT id, number, issue_date, grand_total, amount_paid
FROM documents
WHERE customer_id = $1 AND amount_paid < grand_total
ORDER BY issue_date, created_at
FOR UPDATE`, customerID)
	if err != nil {
		return nil, fmt.Errorf("lock outstanding documents: %w", err)
	}
	defer rows.Close()

	var docs []finance.OutstandingDocument
	for rows.Next() {
		var doc finance.OutstandingDocument
		if err := rows.Scan(&doc.ID, &doc.Number, &doc.IssueDate, &doc.Total, &doc.AmountPaid); err != nil {
			return nil, fmt.Errorf("scan outstanding document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outstanding documents: %w", err)
	}
	return docs, nil
}

// Get returns a payment with its allocations.
func (r PaymentRepo) Get(ctx context.Context, id uuid.UUID) (PaymentRecord, error) {
	var p PaymentRecord
	err := r.Pool.QueryRow(ctx, `SELECT id, customer_id, amount, allocated_total, remaining_credit,
received_at, reference, created_at
FROM payments WHERE id = $1`, id).
		Scan(&p.ID, &p.CustomerID, &p.Amount, &p.AllocatedTotal, &p.RemainingCredit,
			&p.ReceivedAt, &p.Reference, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PaymentRecord{}, ErrNotFound
		}
		return PaymentRecord{}, fmt.Errorf("select payment: %w", err)
	}

	rows, err := r.Pool.Query(ctx, `SELECT id, payment_id, document_id, amount, created_at
FROM payment_allocations WHERE payment_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return PaymentRecord{}, fmt.Errorf("select allocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec PaymentAllocationRecord
		if err := rows.Scan(&rec.ID, &rec.PaymentID, &rec.DocumentID, &rec.Amount, &rec.CreatedAt); err != nil {
			return PaymentRecord{}, fmt.Errorf("scan allocation: %w", err)
		}
		p.Allocations = append(p.Allocations, rec)
	}
	if err := rows.Err(); err != nil {
		return PaymentRecord{}, fmt.Errorf("iterate allocations: %w", err)
	}
	return p, nil
}

// Outstanding returns the customer's open documents without locking, oldest
// first, for read-only views.
func (r PaymentRepo) Outstanding(ctx context.Context, customerID uuid.UUID) ([]finance.OutstandingDocument, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, number, issue_date, grand_total, amount_paid
FROM documents
WHERE customer_id = $1 AND amount_paid < grand_total
ORDER BY issue_date, created_at`, customerID)
	if err != nil {
		return nil, fmt.Errorf("select outstanding documents: %w", err)
	}
	defer rows.Close()

	var docs []finance.OutstandingDocument
	for rows.Next() {
		var doc finance.OutstandingDocument
		if err := rows.Scan(&doc.ID, &doc.Number, &doc.IssueDate, &doc.Total, &doc.AmountPaid); err != nil {
			return nil, fmt.Errorf("scan outstanding document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outstanding documents: %w", err)
	}
	return docs, nil
}
