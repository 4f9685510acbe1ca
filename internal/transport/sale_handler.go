package transport

import (
	"errors"
	"net/http"
	"strconv"

	"inventory-backoffice/internal/domain"
	"inventory-backoffice/internal/middleware"
	"inventory-backoffice/internal/repository"
	"inventory-backoffice/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UpdateSaleRequest represents the editable fields of an existing sale
type UpdateSaleRequest struct {
	CustomerName  string `json:"customerName" validate:"max=200"`
	CustomerEmail string `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone string `json:"customerPhone" validate:"max=50"`
	Notes         string `json:"notes" validate:"max=2000"`
	Status        string `json:"status" validate:"required,oneof=pending completed cancelled refunded"`
}

// SaleListResponse is one page of sales
type SaleListResponse struct {
	Data     []domain.Sale `json:"data"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

// SaleHandler handles HTTP requests for existing sales
type SaleHandler struct {
	saleService service.SaleService
	logger      *zap.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService service.SaleService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		logger:      logger,
	}
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/sales", h.List)
	r.Get("/api/sales/{saleID}", h.Get)
	r.Patch("/api/sales/{saleID}", h.UpdateDetails)
	r.Delete("/api/sales/{saleID}", h.Delete)
}

// List handles the sales listing with search, status filter and paging
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := repository.SaleQuery{
		Search: q.Get("search"),
		Status: q.Get("status"),
	}
	query.Page, _ = strconv.Atoi(q.Get("page"))
	query.PageSize, _ = strconv.Atoi(q.Get("pageSize"))

	sales, total, err := h.saleService.List(r.Context(), query)
	if err != nil {
		h.respondWithError(w, err, "failed to list sales")
		return
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > service.MaxPageSize {
		pageSize = service.DefaultPageSize
	}

	middleware.RespondWithJSON(w, http.StatusOK, SaleListResponse{
		Data:     sales,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Get returns one sale with its line items
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := saleID(w, r)
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(r.Context(), id)
	if err != nil {
		h.respondWithError(w, err, "failed to get sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

// UpdateDetails edits customer fields, notes and status of a sale
func (h *SaleHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := saleID(w, r)
	if !ok {
		return
	}

	var req UpdateSaleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Sale update validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sale, err := h.saleService.UpdateDetails(r.Context(), id, domain.SaleDetails{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
		Status:        req.Status,
	})
	if err != nil {
		h.respondWithError(w, err, "failed to update sale")
		return
	}

	h.logger.Info("Sale updated", zap.Int64("sale_id", id), zap.String("status", sale.Status))
	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

// Delete removes a sale record
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := saleID(w, r)
	if !ok {
		return
	}

	if err := h.saleService.Delete(r.Context(), id); err != nil {
		h.respondWithError(w, err, "failed to delete sale")
		return
	}

	h.logger.Info("Sale deleted", zap.Int64("sale_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func saleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sale ID")
		return 0, false
	}
	return id, true
}

func (h *SaleHandler) respondWithError(w http.ResponseWriter, err error, message string) {
	var apiErr *repository.APIError

	switch {
	case errors.Is(err, service.ErrInvalidSaleStatus):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrResourceNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "sale not found")
	case errors.As(err, &apiErr):
		h.logger.Error(message, zap.Error(err))
		middleware.RespondWithErrorDetails(w, http.StatusBadGateway, message, map[string]interface{}{
			"upstream_status": apiErr.StatusCode,
		})
	default:
		h.logger.Error(message, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, message)
	}
}
