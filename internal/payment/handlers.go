package payment

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-erp/internal/common"
	"github.com/noah-isme/backend-erp/internal/finance"
	"github.com/noah-isme/backend-erp/internal/repo"
)

// Handler exposes payment endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type recordRequest struct {
	CustomerID string          `json:"customerId" validate:"required,uuid4"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  string          `json:"reference" validate:"max=128"`
	ReceivedAt *time.Time      `json:"receivedAt"`
}

type allocationView struct {
	DocumentID        uuid.UUID       `json:"documentId"`
	DocumentNumber    string          `json:"documentNumber"`
	DocumentTotal     decimal.Decimal `json:"documentTotal"`
	PreviouslyPaid    decimal.Decimal `json:"previouslyPaid"`
	OutstandingBefore decimal.Decimal `json:"outstandingBefore"`
	AmountAllocated   decimal.Decimal `json:"amountAllocated"`
	OutstandingAfter  decimal.Decimal `json:"outstandingAfter"`
	FullyPaid         bool            `json:"fullyPaid"`
}

type paymentView struct {
	ID              uuid.UUID        `json:"id"`
	CustomerID      uuid.UUID        `json:"customerId"`
	Amount          decimal.Decimal  `json:"amount"`
	AllocatedTotal  decimal.Decimal  `json:"allocatedTotal"`
	RemainingCredit decimal.Decimal  `json:"remainingCredit"`
	ReceivedAt      time.Time        `json:"receivedAt"`
	Reference       string           `json:"reference,omitempty"`
	FullyAllocated  bool             `json:"fullyAllocated"`
	Allocations     []allocationView `json:"allocations"`
}

func toRecordedView(p repo.PaymentRecord, result finance.AllocationResult) paymentView {
	view := paymentView{
		ID:              p.ID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		AllocatedTotal:  p.AllocatedTotal,
		RemainingCredit: p.RemainingCredit,
		ReceivedAt:      p.ReceivedAt,
		Reference:       p.Reference,
		FullyAllocated:  result.FullyAllocated,
		Allocations:     []allocationView{},
	}
	for _, alloc := range result.Allocations {
		view.Allocations = append(view.Allocations, allocationView{
			DocumentID:        alloc.DocumentID,
			DocumentNumber:    alloc.DocumentNumber,
			DocumentTotal:     alloc.DocumentTotal,
			PreviouslyPaid:    alloc.PreviouslyPaid,
			OutstandingBefore: alloc.OutstandingBefore,
			AmountAllocated:   alloc.AmountAllocated,
			OutstandingAfter:  alloc.OutstandingAfter,
			FullyPaid:         alloc.FullyPaid,
		})
	}
	return view
}

// Record accepts a payment and allocates it across outstanding documents.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid payment", nil)
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid customer id", nil)
		return
	}

	input := RecordInput{
		CustomerID: customerID,
		Amount:     req.Amount,
		Reference:  req.Reference,
	}
	if req.ReceivedAt != nil {
		input.ReceivedAt = *req.ReceivedAt
	}

	stored, result, err := h.Svc.Record(r.Context(), input)
	if err != nil {
		if errors.Is(err, finance.ErrInvalidPayment) {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "payment amount must not be negative", nil)
			return
		}
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": toRecordedView(stored, result)})
}

// Get returns a stored payment with its allocations.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payment id", nil)
		return
	}
	p, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

// Outstanding lists a customer's open documents, oldest first.
func (h *Handler) Outstanding(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(chi.URLParam(r, "customerId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid customer id", nil)
		return
	}
	docs, err := h.Svc.Outstanding(r.Context(), customerID)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	type outstandingView struct {
		DocumentID  uuid.UUID       `json:"documentId"`
		Number      string          `json:"number"`
		IssueDate   string          `json:"issueDate"`
		Total       decimal.Decimal `json:"total"`
		AmountPaid  decimal.Decimal `json:"amountPaid"`
		Outstanding decimal.Decimal `json:"outstanding"`
	}
	views := make([]outstandingView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, outstandingView{
			DocumentID:  doc.ID,
			Number:      doc.Number,
			IssueDate:   doc.IssueDate.Format("2006-01-02"),
			Total:       doc.Total,
			AmountPaid:  doc.AmountPaid,
			Outstanding: doc.Outstanding(),
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views})
}
