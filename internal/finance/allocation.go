package finance

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutstandingDocument is a snapshot of a document a payment can settle.
// The caller is responsible for the snapshot being consistent; concurrent
// allocations against the same customer must be serialized upstream.
type OutstandingDocument struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	IssueDate  time.Time       `json:"date"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
}

// Outstanding is the document total minus what has already been paid.
func (d OutstandingDocument) Outstanding() decimal.Decimal {
	return Round(d.Total.Sub(d.AmountPaid))
}

// Allocation assigns part of a payment to one document's balance.
type Allocation struct {
	DocumentID        uuid.UUID       `json:"documentId"`
	DocumentNumber    string          `json:"documentNumber"`
	DocumentTotal     decimal.Decimal `json:"documentTotal"`
	PreviouslyPaid    decimal.Decimal `json:"previouslyPaid"`
	OutstandingBefore decimal.Decimal `json:"outstandingBefore"`
	AmountAllocated   decimal.Decimal `json:"amountAllocated"`
	OutstandingAfter  decimal.Decimal `json:"outstandingAfter"`
	FullyPaid         bool            `json:"fullyPaid"`
}

// AllocationResult reports how a payment was distributed. TotalAllocated
// plus RemainingCredit always equals PaymentAmount.
type AllocationResult struct {
	PaymentAmount   decimal.Decimal `json:"paymentAmount"`
	TotalAllocated  decimal.Decimal `json:"totalAllocated"`
	RemainingCredit decimal.Decimal `json:"remainingCredit"`
	Allocations     []Allocation    `json:"allocations"`
	FullyAllocated  bool            `json:"fullyAllocated"`
}

// Allocate distributes a payment across outstanding documents oldest-first.
// Date ties keep input order (stable sort). Documents with a non-positive
// outstanding balance are skipped without an allocation record. Whatever the
// documents cannot absorb is reported as remaining credit, never discarded.
// A zero payment is valid and yields an empty allocation list.
func Allocate(paymentAmount decimal.Decimal, documents []OutstandingDocument) (AllocationResult, error) {
	if paymentAmount.IsNegative() {
		return AllocationResult{}, ErrInvalidPayment
	}
	sorted := make([]OutstandingDocument, len(documents))
	copy(sorted, documents)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].IssueDate.Before(sorted[j].IssueDate)
	})

	remaining := Round(paymentAmount)
	result := AllocationResult{
		PaymentAmount:  remaining,
		TotalAllocated: decimal.Zero,
		Allocations:    []Allocation{},
	}
	for _, doc := range sorted {
		if !remaining.IsPositive() {
			break
		}
		outstanding := doc.Outstanding()
		if !outstanding.IsPositive() {
			continue
		}
		allocated := decimal.Min(remaining, outstanding)
		after := Round(outstanding.Sub(allocated))
		result.Allocations = append(result.Allocations, Allocation{
			DocumentID:        doc.ID,
			DocumentNumber:    doc.Number,
			DocumentTotal:     Round(doc.Total),
			PreviouslyPaid:    Round(doc.AmountPaid),
			OutstandingBefore: outstanding,
			AmountAllocated:   allocated,
			OutstandingAfter:  after,
			FullyPaid:         after.IsZero(),
		})
		remaining = Round(remaining.Sub(allocated))
		result.TotalAllocated = result.TotalAllocated.Add(allocated)
	}
	result.TotalAllocated = Round(result.TotalAllocated)
	result.RemainingCredit = remaining
	result.FullyAllocated = remaining.IsZero()
	return result, nil
}
