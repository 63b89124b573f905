// Package customer exposes minimal counterparty management.
package customer

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-erp/internal/common"
	"github.com/noah-isme/backend-erp/internal/repo"
)

// Store captures the persistence methods required by the handler.
type Store interface {
	Upsert(ctx context.Context, c repo.CustomerRecord) error
	Get(ctx context.Context, id uuid.UUID) (repo.CustomerRecord, error)
}

// Handler exposes customer endpoints.
type Handler struct {
	Customers Store
	Validate  *validator.Validate
}

type upsertRequest struct {
	ID    string `json:"id" validate:"omitempty,uuid4"`
	Name  string `json:"name" validate:"required,max=255"`
	TaxID string `json:"taxId" validate:"max=64"`
}

type customerView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	TaxID string    `json:"taxId,omitempty"`
}

// Upsert creates a customer, or updates it when an id is supplied.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid customer", nil)
		return
	}
	id := uuid.New()
	if req.ID != "" {
		parsed, err := uuid.Parse(req.ID)
		if err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid customer id", nil)
			return
		}
		id = parsed
	}
	record := repo.CustomerRecord{ID: id, Name: req.Name, TaxID: req.TaxID}
	if err := h.Customers.Upsert(r.Context(), record); err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": customerView{ID: record.ID, Name: record.Name, TaxID: record.TaxID}})
}

// Get returns a customer by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid customer id", nil)
		return
	}
	c, err := h.Customers.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "customer not found", nil)
			return
		}
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": customerView{ID: c.ID, Name: c.Name, TaxID: c.TaxID}})
}
