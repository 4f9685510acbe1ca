package transport

import (
	"errors"
	"net/http"
	"strconv"

	"inventory-backoffice/internal/composer"
	"inventory-backoffice/internal/domain"
	"inventory-backoffice/internal/middleware"
	"inventory-backoffice/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CustomerRequest sets the customer fields and notes of a draft
type CustomerRequest struct {
	CustomerName  string `json:"customerName" validate:"max=200"`
	CustomerEmail string `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone string `json:"customerPhone" validate:"max=50"`
	Notes         string `json:"notes" validate:"max=2000"`
}

// AdjustmentsRequest sets the sale-level percentages; omitted fields are left unchanged
type AdjustmentsRequest struct {
	TaxPercent      decimal.NullDecimal `json:"taxPercent"`
	DiscountPercent decimal.NullDecimal `json:"discountPercent"`
}

// AddLineRequest appends a product to the draft
type AddLineRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

// UpdateLineRequest changes the quantity and/or discount of one line
type UpdateLineRequest struct {
	Quantity *int                `json:"quantity" validate:"omitempty,gte=1"`
	Discount decimal.NullDecimal `json:"discount" validate:"omitempty,gte=0"`
}

// DraftResponse is the current state of a composition session
type DraftResponse struct {
	ID       string                   `json:"id"`
	State    string                   `json:"state"`
	Draft    composer.Draft           `json:"draft"`
	Totals   composer.Totals          `json:"totals"`
	Products []ProductSnapshotPayload `json:"products,omitempty"`
}

// ProductSnapshotPayload is a product the draft can be built from
type ProductSnapshotPayload struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	AvailableQuantity int             `json:"availableQuantity"`
}

// SubmitResponse is returned once the sale was created upstream
type SubmitResponse struct {
	Sale     *domain.Sale `json:"sale"`
	Redirect string       `json:"redirect"`
}

// SaleDraftHandler handles HTTP requests for sale composition
type SaleDraftHandler struct {
	compositionService service.CompositionService
	logger             *zap.Logger
}

// NewSaleDraftHandler creates a new SaleDraftHandler
func NewSaleDraftHandler(compositionService service.CompositionService, logger *zap.Logger) *SaleDraftHandler {
	return &SaleDraftHandler{
		compositionService: compositionService,
		logger:             logger,
	}
}

// RegisterRoutes registers all sale draft routes
func (h *SaleDraftHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sales/drafts", func(r chi.Router) {
		r.Post("/", h.Start)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Discard)
			r.Put("/customer", h.SetCustomer)
			r.Put("/adjustments", h.SetAdjustments)
			r.Post("/lines", h.AddLine)
			r.Patch("/lines/{index}", h.UpdateLine)
			r.Delete("/lines/{index}", h.RemoveLine)
			r.Post("/submit", h.Submit)
		})
	})
}

// Start opens a composition session over a fresh product snapshot
func (h *SaleDraftHandler) Start(w http.ResponseWriter, r *http.Request) {
	session, err := h.compositionService.Start(r.Context())
	if err != nil {
		h.logger.Error("Failed to start sale composition", zap.Error(err))
		middleware.RespondWithErrorCode(w, http.StatusBadGateway, "catalog_unavailable", "failed to load products", nil)
		return
	}

	response := newDraftResponse(session)
	for _, p := range session.Engine.Catalog() {
		response.Products = append(response.Products, ProductSnapshotPayload(p))
	}

	middleware.RespondWithJSON(w, http.StatusCreated, response)
}

// Get returns the draft, its totals and state
func (h *SaleDraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newDraftResponse(session))
}

// Discard abandons the draft
func (h *SaleDraftHandler) Discard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.compositionService.Discard(id); err != nil {
		h.respondWithError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetCustomer replaces the customer fields and notes
func (h *SaleDraftHandler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Engine.SetCustomer(req.CustomerName, req.CustomerEmail, req.CustomerPhone); err != nil {
		h.respondWithError(w, err)
		return
	}
	if err := session.Engine.SetNotes(req.Notes); err != nil {
		h.respondWithError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newDraftResponse(session))
}

// SetAdjustments sets the tax and/or discount percentage
func (h *SaleDraftHandler) SetAdjustments(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentsRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if req.TaxPercent.Valid {
		if err := session.Engine.SetTaxPercent(req.TaxPercent.Decimal); err != nil {
			h.respondWithError(w, err)
			return
		}
	}
	if req.DiscountPercent.Valid {
		if err := session.Engine.SetDiscountPercent(req.DiscountPercent.Decimal); err != nil {
			h.respondWithError(w, err)
			return
		}
	}

	middleware.RespondWithJSON(w, http.StatusOK, newDraftResponse(session))
}

// AddLine appends a product line priced from the snapshot
func (h *SaleDraftHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req AddLineRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	line, err := session.Engine.AddLine(req.ProductID, req.Quantity)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.logger.Debug("Line added",
		zap.String("session_id", session.ID.String()),
		zap.Int64("product_id", line.ProductID),
		zap.Int("quantity", line.Quantity),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, newDraftResponse(session))
}

// UpdateLine changes quantity first, then discount
func (h *SaleDraftHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var req UpdateLineRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Quantity == nil && !req.Discount.Valid {
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity or discount is required")
		return
	}
	index, ok := lineIndex(w, r)
	if !ok {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if req.Quantity != nil {
		if _, err := session.Engine.UpdateLineQuantity(index, *req.Quantity); err != nil {
			h.respondWithError(w, err)
			return
		}
	}
	if req.Discount.Valid {
		if _, err := session.Engine.UpdateLineDiscount(index, req.Discount.Decimal); err != nil {
			h.respondWithError(w, err)
			return
		}
	}

	middleware.RespondWithJSON(w, http.StatusOK, newDraftResponse(session))
}

// RemoveLine deletes one line by position
func (h *SaleDraftHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	index, ok := lineIndex(w, r)
	if !ok {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Engine.RemoveLine(index); err != nil {
		h.respondWithError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newDraftResponse(session))
}

// Submit creates the sale upstream and returns where the UI should go next
func (h *SaleDraftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	sale, session, err := h.compositionService.Submit(r.Context(), id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	redirect := session.Navigator.Location()
	w.Header().Set("Location", redirect)
	middleware.RespondWithJSON(w, http.StatusCreated, SubmitResponse{
		Sale:     sale,
		Redirect: redirect,
	})
}

func (h *SaleDraftHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		h.logger.Debug("Draft request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *SaleDraftHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid draft ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *SaleDraftHandler) session(w http.ResponseWriter, r *http.Request) (*service.CompositionSession, bool) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return nil, false
	}

	session, err := h.compositionService.Get(id)
	if err != nil {
		h.respondWithError(w, err)
		return nil, false
	}
	return session, true
}

func lineIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid line index")
		return 0, false
	}
	return index, true
}

func newDraftResponse(session *service.CompositionSession) DraftResponse {
	return DraftResponse{
		ID:     session.ID.String(),
		State:  session.Engine.State().String(),
		Draft:  session.Engine.Draft(),
		Totals: session.Engine.Totals(),
	}
}

// respondWithError maps composition errors onto HTTP statuses
func (h *SaleDraftHandler) respondWithError(w http.ResponseWriter, err error) {
	var stockErr *composer.InsufficientStockError
	var subErr *composer.SubmissionError

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		middleware.RespondWithErrorCode(w, http.StatusNotFound, "draft_not_found", "sale draft not found", nil)
	case errors.As(err, &stockErr):
		middleware.RespondWithErrorCode(w, http.StatusUnprocessableEntity, "insufficient_stock", stockErr.Error(), map[string]interface{}{
			"product_id":   stockErr.ProductID,
			"product_name": stockErr.ProductName,
			"available":    stockErr.Available,
			"requested":    stockErr.Requested,
		})
	case errors.Is(err, composer.ErrEmptySale):
		middleware.RespondWithErrorCode(w, http.StatusUnprocessableEntity, "empty_sale", "add at least one product to the sale", nil)
	case errors.Is(err, composer.ErrIndexOutOfRange):
		middleware.RespondWithErrorCode(w, http.StatusNotFound, "line_not_found", err.Error(), nil)
	case errors.Is(err, composer.ErrUnknownProduct),
		errors.Is(err, composer.ErrInvalidQuantity),
		errors.Is(err, composer.ErrInvalidDiscount),
		errors.Is(err, composer.ErrDiscountTooLarge):
		middleware.RespondWithErrorCode(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.Is(err, composer.ErrSubmitInProgress):
		middleware.RespondWithErrorCode(w, http.StatusConflict, "submit_in_progress", err.Error(), nil)
	case errors.Is(err, composer.ErrSaleConsumed), errors.Is(err, composer.ErrDraftDiscarded):
		middleware.RespondWithErrorCode(w, http.StatusConflict, "draft_closed", err.Error(), nil)
	case errors.As(err, &subErr):
		h.logger.Warn("Sale submission rejected upstream",
			zap.Int("upstream_status", subErr.StatusCode),
			zap.Error(err),
		)
		if errors.Is(err, composer.ErrDuplicateResource) {
			middleware.RespondWithErrorCode(w, http.StatusConflict, "duplicate_sale", subErr.Error(), nil)
			return
		}
		middleware.RespondWithErrorCode(w, http.StatusBadGateway, "submission_failed", subErr.Error(), map[string]interface{}{
			"upstream_status": subErr.StatusCode,
		})
	default:
		h.logger.Error("Sale draft request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
