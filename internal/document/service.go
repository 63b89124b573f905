// Package document manages financial documents: computing totals from raw
// line items and persisting the result.
package document

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-erp/internal/common"
	"github.com/noah-isme/backend-erp/internal/finance"
	"github.com/noah-isme/backend-erp/internal/obs"
	"github.com/noah-isme/backend-erp/internal/repo"
)

// DocumentStore captures the persistence methods required by the service.
type DocumentStore interface {
	Insert(ctx context.Context, doc repo.DocumentRecord) error
	Get(ctx context.Context, id uuid.UUID) (repo.DocumentRecord, error)
	List(ctx context.Context, filter repo.DocumentListFilter) ([]repo.DocumentRecord, int64, error)
}

// CustomerStore captures the customer lookups required by the service.
type CustomerStore interface {
	Get(ctx context.Context, id uuid.UUID) (repo.CustomerRecord, error)
}

// LineInput is one raw document line as submitted by the caller. TaxRate is
// optional; absent lines fall back to the configured default rate.
type LineInput struct {
	Description     string           `json:"description"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unitPrice"`
	DiscountPercent decimal.Decimal  `json:"discountPercent"`
	TaxRate         *decimal.Decimal `json:"taxRate"`
}

// CreateInput describes a document to be computed and stored.
type CreateInput struct {
	CustomerID uuid.UUID
	Number     string
	Kind       string
	IssueDate  time.Time
	Currency   string
	Lines      []LineInput
}

// Service computes document totals and persists documents.
type Service struct {
	Docs           DocumentStore
	Customers      CustomerStore
	DefaultTaxRate decimal.Decimal
	Currency       string
	Now            func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) defaultRate() decimal.Decimal {
	if s.DefaultTaxRate.IsZero() {
		return finance.DefaultVATRate
	}
	return s.DefaultTaxRate
}

func (s *Service) toLineItems(lines []LineInput) []finance.LineItem {
	items := make([]finance.LineItem, 0, len(lines))
	for _, line := range lines {
		rate := s.defaultRate()
		if line.TaxRate != nil {
			rate = *line.TaxRate
		}
		items = append(items, finance.LineItem{
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			TaxRate:         rate,
		})
	}
	return items
}

// Preview computes document totals without persisting anything.
func (s *Service) Preview(ctx context.Context, lines []LineInput) (finance.DocumentTotals, error) {
	totals, err := finance.Aggregate(s.toLineItems(lines))
	observeCompute("preview", err)
	if err != nil {
		return finance.DocumentTotals{}, invalidLines(err)
	}
	return totals, nil
}

// Create computes totals for the submitted lines and stores the document.
func (s *Service) Create(ctx context.Context, input CreateInput) (repo.DocumentRecord, error) {
	if len(input.Lines) == 0 {
		return repo.DocumentRecord{}, common.NewAppError("VALIDATION", "document requires at least one line", http.StatusUnprocessableEntity, nil)
	}
	if _, err := s.Customers.Get(ctx, input.CustomerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.DocumentRecord{}, common.NewAppError("NOT_FOUND", "customer not found", http.StatusNotFound, err)
		}
		return repo.DocumentRecord{}, err
	}

	totals, err := finance.Aggregate(s.toLineItems(input.Lines))
	observeCompute("create", err)
	if err != nil {
		return repo.DocumentRecord{}, invalidLines(err)
	}

	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = s.Currency
	}
	issueDate := input.IssueDate
	if issueDate.IsZero() {
		issueDate = s.now()
	}

	doc := repo.DocumentRecord{
		ID:            uuid.New(),
		CustomerID:    input.CustomerID,
		Number:        strings.TrimSpace(input.Number),
		Kind:          input.Kind,
		Status:        "issued",
		IssueDate:     issueDate,
		Currency:      currency,
		Subtotal:      totals.Subtotal,
		TotalDiscount: totals.TotalDiscount,
		TotalNet:      totals.TotalNet,
		TotalTax:      totals.TotalTax,
		GrandTotal:    totals.GrandTotal,
		AmountPaid:    decimal.Zero,
	}
	for i, line := range totals.Lines {
		doc.Lines = append(doc.Lines, repo.DocumentLineRecord{
			ID:              uuid.New(),
			DocumentID:      doc.ID,
			Position:        int32(i + 1),
			Description:     input.Lines[i].Description,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			DiscountAmount:  line.DiscountAmount,
			NetAmount:       line.NetAmount,
			TaxRate:         line.TaxRate,
			TaxAmount:       line.TaxAmount,
			LineTotal:       line.Total,
		})
	}

	if err := s.Docs.Insert(ctx, doc); err != nil {
		return repo.DocumentRecord{}, err
	}
	return doc, nil
}

// Get returns a stored document with its lines.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repo.DocumentRecord, error) {
	doc, err := s.Docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.DocumentRecord{}, common.NewAppError("NOT_FOUND", "document not found", http.StatusNotFound, err)
		}
		return repo.DocumentRecord{}, err
	}
	return doc, nil
}

// List returns documents matching the filter plus the total count.
func (s *Service) List(ctx context.Context, filter repo.DocumentListFilter) ([]repo.DocumentRecord, int64, error) {
	return s.Docs.List(ctx, filter)
}

func invalidLines(err error) error {
	switch {
	case errors.Is(err, finance.ErrInvalidQuantity):
		return common.NewAppError("VALIDATION", "line quantity must not be negative", http.StatusUnprocessableEntity, err)
	case errors.Is(err, finance.ErrInvalidRate):
		return common.NewAppError("VALIDATION", "tax rate must be greater than -100", http.StatusUnprocessableEntity, err)
	default:
		return err
	}
}

func observeCompute(operation string, err error) {
	if obs.DocumentComputeTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	obs.DocumentComputeTotal.WithLabelValues(operation, result).Inc()
}
