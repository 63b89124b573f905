// Package preview exposes stateless calculator endpoints for VAT,
// withholding, stamp duty and discounts.
package preview

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-erp/internal/common"
	"github.com/noah-isme/backend-erp/internal/finance"
	"github.com/noah-isme/backend-erp/internal/obs"
)

// Handler serves the calculator endpoints.
type Handler struct {
	DefaultVATRate         decimal.Decimal
	DefaultWithholdingRate decimal.Decimal
}

type amountRateRequest struct {
	Amount decimal.Decimal  `json:"amount"`
	Rate   *decimal.Decimal `json:"rate"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type cascadeRequest struct {
	Amount   decimal.Decimal   `json:"amount"`
	Percents []decimal.Decimal `json:"percents"`
}

func (h *Handler) vatRate(req amountRateRequest) decimal.Decimal {
	if req.Rate != nil {
		return *req.Rate
	}
	if !h.DefaultVATRate.IsZero() {
		return h.DefaultVATRate
	}
	return finance.DefaultVATRate
}

func (h *Handler) withholdingRate(req amountRateRequest) decimal.Decimal {
	if req.Rate != nil {
		return *req.Rate
	}
	if !h.DefaultWithholdingRate.IsZero() {
		return h.DefaultWithholdingRate
	}
	return finance.DefaultWithholdingRate
}

// VAT adds VAT on top of a net amount.
func (h *Handler) VAT(w http.ResponseWriter, r *http.Request) {
	var req amountRateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	observePreview("vat")
	common.JSON(w, http.StatusOK, map[string]any{"data": finance.VATFromNet(req.Amount, h.vatRate(req))})
}

// VATFromGross extracts the net amount and VAT from a gross amount.
func (h *Handler) VATFromGross(w http.ResponseWriter, r *http.Request) {
	var req amountRateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	result, err := finance.NetFromGross(req.Amount, h.vatRate(req))
	if err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "rate must be greater than -100", nil)
		return
	}
	observePreview("vat_from_gross")
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// Withholding computes withholding tax on a payable amount.
func (h *Handler) Withholding(w http.ResponseWriter, r *http.Request) {
	var req amountRateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	observePreview("withholding")
	common.JSON(w, http.StatusOK, map[string]any{"data": finance.Withholding(req.Amount, h.withholdingRate(req))})
}

// StampDuty computes stamp duty plus the OGA surcharge.
func (h *Handler) StampDuty(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	observePreview("stamp_duty")
	common.JSON(w, http.StatusOK, map[string]any{"data": finance.StampDuty(req.Amount)})
}

// Discount applies a single percentage discount.
func (h *Handler) Discount(w http.ResponseWriter, r *http.Request) {
	var req amountRateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	percent := decimal.Zero
	if req.Rate != nil {
		percent = *req.Rate
	}
	observePreview("discount")
	common.JSON(w, http.StatusOK, map[string]any{"data": finance.ApplyDiscount(req.Amount, percent)})
}

// DiscountCascade applies sequential discounts and reports the effective rate.
func (h *Handler) DiscountCascade(w http.ResponseWriter, r *http.Request) {
	var req cascadeRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	observePreview("discount_cascade")
	common.JSON(w, http.StatusOK, map[string]any{"data": finance.ApplyCascadingDiscounts(req.Amount, req.Percents)})
}

func observePreview(kind string) {
	if obs.TaxPreviewTotal == nil {
		return
	}
	obs.TaxPreviewTotal.WithLabelValues(kind).Inc()
}
