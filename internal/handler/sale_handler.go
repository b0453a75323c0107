package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// SaleHandler handles product sale override requests.
type SaleHandler struct {
	service service.SaleService
	logger  zerolog.Logger
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(service service.SaleService, logger zerolog.Logger) *SaleHandler {
	return &SaleHandler{
		service: service,
		logger:  logger.With().Str("handler", "sale").Logger(),
	}
}

// List handles GET /api/product-sales.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, r, http.StatusOK, sales, h.logger)
}

// ListActive handles GET /api/product-sales/active.
func (h *SaleHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.ListActive(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, r, http.StatusOK, sales, h.logger)
}

// GetByID handles GET /api/product-sales/{id}.
func (h *SaleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	sale, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, r, http.StatusOK, sale, h.logger)
}

// Create handles POST /api/product-sales.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	sale, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, r, http.StatusCreated, sale, h.logger)
}

// Update handles PUT /api/product-sales/{id}.
func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.UpdateSaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	sale, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, r, http.StatusOK, sale, h.logger)
}

// Delete handles DELETE /api/product-sales/{id}.
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
