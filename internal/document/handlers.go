package document

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-erp/internal/common"
	"github.com/noah-isme/backend-erp/internal/finance"
	"github.com/noah-isme/backend-erp/internal/repo"
)

// Handler exposes document endpoints.
type Handler struct {
	Svc          *Service
	Validate     *validator.Validate
	DefaultLimit int
	MaxLimit     int
}

type createRequest struct {
	CustomerID string      `json:"customerId" validate:"required,uuid4"`
	Number     string      `json:"number" validate:"required,max=64"`
	Kind       string      `json:"kind" validate:"required,oneof=invoice credit_note receipt"`
	IssueDate  *time.Time  `json:"issueDate"`
	Currency   string      `json:"currency" validate:"omitempty,len=3"`
	Lines      []LineInput `json:"lines" validate:"required,min=1,dive"`
}

type previewRequest struct {
	Lines []LineInput `json:"lines" validate:"required,min=1,dive"`
}

type lineView struct {
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	NetAmount       decimal.Decimal `json:"netAmount"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	Total           decimal.Decimal `json:"total"`
}

type documentView struct {
	ID            uuid.UUID       `json:"id"`
	CustomerID    uuid.UUID       `json:"customerId"`
	Number        string          `json:"number"`
	Kind          string          `json:"kind"`
	Status        string          `json:"status"`
	IssueDate     string          `json:"issueDate"`
	Currency      string          `json:"currency"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	TotalNet      decimal.Decimal `json:"totalNet"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	Lines         []lineView      `json:"lines,omitempty"`
}

func toView(doc repo.DocumentRecord) documentView {
	view := documentView{
		ID:            doc.ID,
		CustomerID:    doc.CustomerID,
		Number:        doc.Number,
		Kind:          doc.Kind,
		Status:        doc.Status,
		IssueDate:     doc.IssueDate.Format("2006-01-02"),
		Currency:      doc.Currency,
		Subtotal:      doc.Subtotal,
		TotalDiscount: doc.TotalDiscount,
		TotalNet:      doc.TotalNet,
		TotalTax:      doc.TotalTax,
		GrandTotal:    doc.GrandTotal,
		AmountPaid:    doc.AmountPaid,
	}
	for _, line := range doc.Lines {
		view.Lines = append(view.Lines, lineView{
			Description:     line.Description,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			DiscountAmount:  line.DiscountAmount,
			NetAmount:       line.NetAmount,
			TaxRate:         line.TaxRate,
			TaxAmount:       line.TaxAmount,
			Total:           line.LineTotal,
		})
	}
	return view
}

type totalsView struct {
	ItemCount     int                    `json:"itemCount"`
	Subtotal      decimal.Decimal        `json:"subtotal"`
	TotalDiscount decimal.Decimal        `json:"totalDiscount"`
	TotalNet      decimal.Decimal        `json:"totalNet"`
	TaxBreakdown  []finance.TaxBreakdown `json:"taxBreakdown"`
	TotalTax      decimal.Decimal        `json:"totalTax"`
	GrandTotal    decimal.Decimal        `json:"grandTotal"`
}

func toTotalsView(totals finance.DocumentTotals) totalsView {
	breakdown := totals.TaxBreakdown
	if breakdown == nil {
		breakdown = []finance.TaxBreakdown{}
	}
	return totalsView{
		ItemCount:     totals.ItemCount,
		Subtotal:      totals.Subtotal,
		TotalDiscount: totals.TotalDiscount,
		TotalNet:      totals.TotalNet,
		TaxBreakdown:  breakdown,
		TotalTax:      totals.TotalTax,
		GrandTotal:    totals.GrandTotal,
	}
}

// Create computes and stores a new document.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid document", validationDetails(err))
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid customer id", nil)
		return
	}

	input := CreateInput{
		CustomerID: customerID,
		Number:     req.Number,
		Kind:       req.Kind,
		Currency:   req.Currency,
		Lines:      req.Lines,
	}
	if req.IssueDate != nil {
		input.IssueDate = *req.IssueDate
	}

	doc, err := h.Svc.Create(r.Context(), input)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "document number already exists", nil)
			return
		}
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": toView(doc)})
}

// Preview computes totals for the submitted lines without persisting.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid lines", validationDetails(err))
		return
	}
	totals, err := h.Svc.Preview(r.Context(), req.Lines)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toTotalsView(totals)})
}

// Get returns a single document with its lines.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid document id", nil)
		return
	}
	doc, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toView(doc)})
}

// List returns paginated documents, optionally filtered by customer and status.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, h.DefaultLimit, h.MaxLimit)
	filter := repo.DocumentListFilter{
		Limit:  int32(perPage),
		Offset: int32((page - 1) * perPage),
	}
	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid customer_id", nil)
			return
		}
		filter.CustomerID = &customerID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}

	docs, total, err := h.Svc.List(r.Context(), filter)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	views := make([]documentView, 0, len(docs))
	for _, doc := range docs {
		doc.Lines = nil
		views = append(views, toView(doc))
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       views,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: total},
	})
}

func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
