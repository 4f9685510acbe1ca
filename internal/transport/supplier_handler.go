package transport

import (
	"net/http"
	"strconv"
	"strings"

	"inventory-backoffice/internal/domain"
	"inventory-backoffice/internal/middleware"
	"inventory-backoffice/internal/repository"
	"inventory-backoffice/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SupplierRequest is the body of a supplier create or edit
type SupplierRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	ContactPerson string `json:"contactPerson" validate:"required,max=200"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,max=50"`
	Address       string `json:"address" validate:"max=500"`
}

// SupplierListResponse is one page of suppliers
type SupplierListResponse struct {
	Data     []domain.Supplier `json:"data"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// SupplierHandler handles HTTP requests for suppliers
type SupplierHandler struct {
	supplierService service.SupplierService
	logger          *zap.Logger
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService service.SupplierService, logger *zap.Logger) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
		logger:          logger,
	}
}

// RegisterRoutes registers all supplier routes
func (h *SupplierHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/suppliers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{supplierID}", h.Get)
		r.Patch("/{supplierID}", h.Update)
		r.Delete("/{supplierID}", h.Delete)
	})
}

// List handles the supplier listing with name search and paging
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := repository.SupplierQuery{Search: q.Get("search")}
	query.Page, _ = strconv.Atoi(q.Get("page"))
	query.PageSize, _ = strconv.Atoi(q.Get("pageSize"))

	suppliers, total, err := h.supplierService.List(r.Context(), query)
	if err != nil {
		respondWithResourceError(w, h.logger, err, "supplier", "failed to list suppliers")
		return
	}

	page := max(query.Page, 1)
	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > service.MaxPageSize {
		pageSize = service.DefaultPageSize
	}

	middleware.RespondWithJSON(w, http.StatusOK, SupplierListResponse{
		Data:     suppliers,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Get returns one supplier
func (h *SupplierHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "supplierID", "supplier")
	if !ok {
		return
	}

	supplier, err := h.supplierService.GetByID(r.Context(), id)
	if err != nil {
		respondWithResourceError(w, h.logger, err, "supplier", "failed to get supplier")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, supplier)
}

// Create adds a supplier
func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SupplierRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	supplier, err := h.supplierService.Create(r.Context(), req.input())
	if err != nil {
		respondWithResourceError(w, h.logger, err, "supplier", "failed to create supplier")
		return
	}

	h.logger.Info("Supplier created", zap.Int64("supplier_id", supplier.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, supplier)
}

// Update replaces the editable fields of a supplier
func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "supplierID", "supplier")
	if !ok {
		return
	}

	var req SupplierRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	supplier, err := h.supplierService.Update(r.Context(), id, req.input())
	if err != nil {
		respondWithResourceError(w, h.logger, err, "supplier", "failed to update supplier")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, supplier)
}

// Delete removes a supplier
func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "supplierID", "supplier")
	if !ok {
		return
	}

	if err := h.supplierService.Delete(r.Context(), id); err != nil {
		respondWithResourceError(w, h.logger, err, "supplier", "failed to delete supplier")
		return
	}

	h.logger.Info("Supplier deleted", zap.Int64("supplier_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (req SupplierRequest) input() domain.SupplierInput {
	return domain.SupplierInput{
		Name:          strings.TrimSpace(req.Name),
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	}
}
