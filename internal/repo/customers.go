package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerRecord is a billing counterparty.
type CustomerRecord struct {
	ID        uuid.UUID
	Name      string
	TaxID     string
	CreatedAt time.Time
}

// CustomerRepo persists customers.
type CustomerRepo struct {
	Pool *pgxpool.Pool
}

// Upsert inserts the customer or refreshes its name and tax id.
func (r CustomerRepo) Upsert(ctx context.Context, c CustomerRecord) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO customers (id, name, tax_id)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, tax_id = EXCLUDED.tax_id`,
		c.ID, c.Name, c.TaxID)
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	return nil
}

// Get returns a customer by id.
func (r CustomerRepo) Get(ctx context.Context, id uuid.UUID) (CustomerRecord, error) {
	var c CustomerRecord
	err := r.Pool.QueryRow(ctx,
		`SELECT id, name, tax_id, created_at FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.TaxID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CustomerRecord{}, ErrNotFound
		}
		return CustomerRecord{}, fmt.Errorf("select customer: %w", err)
	}
	return c, nil
}
