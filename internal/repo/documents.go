// Package repo contains hand-written pgx data access for the ERP schema.
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
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// DocumentLineRecord is a persisted, fully computed document line.
type DocumentLineRecord struct {
	ID              uuid.UUID
	DocumentID      uuid.UUID
	Position        int32
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	NetAmount       decimal.Decimal
	TaxRate         decimal.Decimal
	TaxAmount       decimal.Decimal
	LineTotal       decimal.Decimal
}

// DocumentRecord is a persisted financial document with its computed totals.
type DocumentRecord struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	Number        string
	Kind          string
	Status        string
	IssueDate     time.Time
	Currency      string
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	TotalNet      decimal.Decimal
	TotalTax      decimal.Decimal
	GrandTotal    decimal.Decimal
	AmountPaid    decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []DocumentLineRecord
}

// DocumentListFilter narrows List results.
type DocumentListFilter struct {
	CustomerID *uuid.UUID
	Status     *string
	Limit      int32
	Offset     int32
}

// DocumentRepo persists documents and their lines.
type DocumentRepo struct {
	Pool *pgxpool.Pool
}

const documentColumns = `id, customer_id, number, kind, status, issue_date, currency,
subtotal, total_discount, total_net, total_tax, grand_total, amount_paid, created_at, updated_at`

// Insert stores a document together with its lines in one transaction.
func (r DocumentRepo) Insert(ctx context.Context, doc DocumentRecord) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `INSERT INTO documents
(id, customer_id, number, kind, status, issue_date, currency,
 subtotal, total_discount, total_net, total_tax, grand_total, amount_paid)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		doc.ID, doc.CustomerID, doc.Number, doc.Kind, doc.Status, doc.IssueDate, doc.Currency,
		doc.Subtotal, doc.TotalDiscount, doc.TotalNet, doc.TotalTax, doc.GrandTotal, doc.AmountPaid)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	for _, line := range doc.Lines {
		_, err = tx.Exec(ctx, `INSERT INTO document_lines
(id, document_id, position, description, quantity, unit_price,
 discount_percent, discount_amount, net_amount, tax_rate, tax_amount, line_total)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			line.ID, doc.ID, line.Position, line.Description, line.Quantity, line.UnitPrice,
			line.DiscountPercent, line.DiscountAmount, line.NetAmount, line.TaxRate, line.TaxAmount, line.LineTotal)
		if err != nil {
			return fmt.Errorf("insert document line %d: %w", line.Position, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get returns a document with its lines ordered by position.
func (r DocumentRepo) Get(ctx context.Context, id uuid.UUID) (DocumentRecord, error) {
	var doc DocumentRecord
	err := r.Pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id).
		Scan(&doc.ID, &doc.CustomerID, &doc.Number, &doc.Kind, &doc.Status, &doc.IssueDate, &doc.Currency,
			&doc.Subtotal, &doc.TotalDiscount, &doc.TotalNet, &doc.TotalTax, &doc.GrandTotal, &doc.AmountPaid,
			&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DocumentRecord{}, ErrNotFound
		}
		return DocumentRecord{}, fmt.Errorf("select document: %w", err)
	}

	rows, err := r.Pool.Query(ctx, `SELECT id, document_id, position, description, quantity, unit_price,
discount_percent, discount_amount, net_amount, tax_rate, tax_amount, line_total
FROM document_lines WHERE document_id = $1 ORDER BY position`, id)
	if err != nil {
		return DocumentRecord{}, fmt.Errorf("select document lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line DocumentLineRecord
		if err := rows.Scan(&line.ID, &line.DocumentID, &line.Position, &line.Description,
			&line.Quantity, &line.UnitPrice, &line.DiscountPercent, &line.DiscountAmount,
			&line.NetAmount, &line.TaxRate, &line.TaxAmount, &line.LineTotal); err != nil {
			return DocumentRecord{}, fmt.Errorf("scan document line: %w", err)
		}
		doc.Lines = append(doc.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return DocumentRecord{}, fmt.Errorf("iterate document lines: %w", err)
	}
	return doc, nil
}

// List returns documents without lines, newest issue first, plus the total count.
func (r DocumentRepo) List(ctx context.Context, filter DocumentListFilter) ([]DocumentRecord, int64, error) {
	var total int64
	err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM documents
WHERE ($1::uuid IS NULL OR customer_id = $1)
  AND ($2::text IS NULL OR status = $2)`, filter.CustomerID, filter.Status).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	rows, err := r.Pool.Query(ctx, `SELECT `+documentColumns+` FROM documents
WHERE ($1::uuid IS NULL OR customer_id = $1)
  AND ($2::text IS NULL OR status = $2)
ORDER BY issue_date DESC, created_at DESC
LIMIT $3 OFFSET $4`, filter.CustomerID, filter.Status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("select documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		if err := rows.Scan(&doc.ID, &doc.CustomerID, &doc.Number, &doc.Kind, &doc.Status, &doc.IssueDate, &doc.Currency,
			&doc.Subtotal, &doc.TotalDiscount, &doc.TotalNet, &doc.TotalTax, &doc.GrandTotal, &doc.AmountPaid,
			&doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, total, nil
}
