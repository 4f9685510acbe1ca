package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"inventory-backoffice/internal/domain"
	"inventory-backoffice/internal/middleware"
	"inventory-backoffice/internal/repository"
	"inventory-backoffice/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest is the body of a product create or edit
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity    *int            `json:"quantity" validate:"required,gte=0"`
	CategoryID  *int64          `json:"categoryId" validate:"omitempty,gt=0"`
	SupplierID  *int64          `json:"supplierId" validate:"omitempty,gt=0"`
}

func (req ProductRequest) input() domain.ProductInput {
	return domain.ProductInput{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Quantity:    *req.Quantity,
		CategoryID:  req.CategoryID,
		SupplierID:  req.SupplierID,
	}
}

// CategoryRequest is the body of a category create or edit; isActive defaults to true
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	IsActive    *bool  `json:"isActive"`
}

func (req CategoryRequest) input() domain.CategoryInput {
	input := domain.CategoryInput{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		input.IsActive = *req.IsActive
	}
	return input
}

// ProductListResponse is one page of products
type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int               `json:"total"`
}

// ProductResponse adds the stock classification the product list shows
type ProductResponse struct {
	domain.Product
	StockLevel string `json:"stockLevel"`
}

// CatalogHandler handles HTTP requests for products and categories
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/{productID}", h.GetProduct)
		r.Patch("/{productID}", h.UpdateProduct)
		r.Delete("/{productID}", h.DeleteProduct)
	})
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Get("/{categoryID}", h.GetCategory)
		r.Patch("/{categoryID}", h.UpdateCategory)
		r.Delete("/{categoryID}", h.DeleteCategory)
	})
}

// ListProducts handles product listing with search, category filter and sorting.
// sort takes the form field or field,DESC.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := repository.ProductQuery{Search: q.Get("search")}
	query.Page, _ = strconv.Atoi(q.Get("page"))
	query.PageSize, _ = strconv.Atoi(q.Get("pageSize"))

	if raw := q.Get("categoryId"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
			return
		}
		query.CategoryID = &categoryID
	}
	if raw := q.Get("sort"); raw != "" {
		field, order, _ := strings.Cut(raw, ",")
		query.SortBy = field
		query.SortOrder = repository.SortOrder(strings.ToUpper(order))
	}

	products, total, err := h.catalogService.ListProducts(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to list products")
		return
	}

	response := ProductListResponse{Data: make([]ProductResponse, 0, len(products)), Total: total}
	for _, p := range products {
		response.Data = append(response.Data, ProductResponse{Product: p, StockLevel: stockLevel(p)})
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// GetProduct returns one product
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID", "product")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		respondWithResourceError(w, h.logger, err, "product", "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductResponse{Product: *product, StockLevel: stockLevel(*product)})
}

// CreateProduct adds a product to the catalog
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), req.input())
	if err != nil {
		respondWithResourceError(w, h.logger, err, "product", "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.Int64("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, ProductResponse{Product: *product, StockLevel: stockLevel(*product)})
}

// UpdateProduct replaces the editable fields of a product
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID", "product")
	if !ok {
		return
	}

	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, req.input())
	if err != nil {
		respondWithResourceError(w, h.logger, err, "product", "failed to update product")
		return
	}

	h.logger.Info("Product updated", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, ProductResponse{Product: *product, StockLevel: stockLevel(*product)})
}

// DeleteProduct removes a product
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID", "product")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		respondWithResourceError(w, h.logger, err, "product", "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ListCategories returns every category
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// GetCategory returns one category
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "categoryID", "category")
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(r.Context(), id)
	if err != nil {
		respondWithResourceError(w, h.logger, err, "category", "failed to get category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// CreateCategory adds a category
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), req.input())
	if err != nil {
		respondWithResourceError(w, h.logger, err, "category", "failed to create category")
		return
	}

	h.logger.Info("Category created", zap.Int64("category_id", category.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// UpdateCategory replaces the editable fields of a category
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "categoryID", "category")
	if !ok {
		return
	}

	var req CategoryRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	category, err := h.catalogService.UpdateCategory(r.Context(), id, req.input())
	if err != nil {
		respondWithResourceError(w, h.logger, err, "category", "failed to update category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// DeleteCategory removes a category
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "categoryID", "category")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(r.Context(), id); err != nil {
		respondWithResourceError(w, h.logger, err, "category", "failed to delete category")
		return
	}

	h.logger.Info("Category deleted", zap.Int64("category_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func stockLevel(p domain.Product) string {
	switch {
	case p.IsOutOfStock():
		return "out_of_stock"
	case p.IsLowStock():
		return "low_stock"
	default:
		return "in_stock"
	}
}

// pathID parses a positive record ID from the URL
func pathID(w http.ResponseWriter, r *http.Request, param, entity string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+entity+" ID")
		return 0, false
	}
	return id, true
}

// decodeRequest decodes and validates a write body, answering 400 on failure
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// respondWithResourceError maps back-office record errors to HTTP responses
func respondWithResourceError(w http.ResponseWriter, logger *zap.Logger, err error, entity, message string) {
	var apiErr *repository.APIError

	switch {
	case errors.Is(err, repository.ErrResourceNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrSupplierNotFound):
		middleware.RespondWithErrorCode(w, http.StatusNotFound, "not_found", entity+" not found", nil)
	case errors.Is(err, repository.ErrResourceConflict),
		errors.Is(err, repository.ErrCategoryAlreadyExists),
		errors.Is(err, repository.ErrSupplierAlreadyExists):
		middleware.RespondWithErrorCode(w, http.StatusConflict, "duplicate_resource", "a "+entity+" with this name already exists", nil)
	case errors.Is(err, service.ErrUnknownCategory):
		middleware.RespondWithErrorCode(w, http.StatusUnprocessableEntity, "unknown_category", err.Error(), nil)
	case errors.As(err, &apiErr):
		logger.Error(message, zap.Error(err))
		middleware.RespondWithErrorDetails(w, http.StatusBadGateway, message, map[string]interface{}{
			"upstream_status": apiErr.StatusCode,
		})
	default:
		logger.Error(message, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, message)
	}
}
