// Package composer builds a multi-line sale against a product snapshot and
// hands the finished sale to the resource client.
package composer

import (
	"context"
	"fmt"
	"sync"

	"inventory-backoffice/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesResource is the resource name sales are created under
const SalesResource = "sales"

// State is the lifecycle position of a draft
type State int

const (
	StateEmpty State = iota
	StateBuilding
	StateSubmitting
	StateSubmitted
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilding:
		return "building"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateDiscarded:
		return "discarded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ResourceCreator creates a record of the named resource and decodes the
// created record into out
type ResourceCreator interface {
	Create(ctx context.Context, resource string, payload any, out any) error
}

// Navigator moves the caller to a resource listing after a successful mutation
type Navigator interface {
	List(resource string)
}

// Engine holds one sale draft and the product snapshot it is checked against.
// The mutex is never held across the collaborator call in Submit; while a
// submission is outstanding every mutation is rejected with ErrSubmitInProgress.
type Engine struct {
	mu sync.Mutex

	catalog  []domain.ProductSnapshot
	products map[int64]domain.ProductSnapshot

	draft  Draft
	totals Totals

	submitting bool
	submitted  bool
	discarded  bool

	creator        ResourceCreator
	navigator      Navigator
	logger         *zap.Logger
	stockPolicy    StockPolicy
	discountPolicy DiscountPolicy
}

// New creates an engine with an empty draft. The snapshot is copied and
// treated as immutable for the engine's lifetime.
func New(
	snapshot []domain.ProductSnapshot,
	creator ResourceCreator,
	navigator Navigator,
	logger *zap.Logger,
	opts ...Option,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog := make([]domain.ProductSnapshot, len(snapshot))
	copy(catalog, snapshot)

	products := make(map[int64]domain.ProductSnapshot, len(catalog))
	for _, p := range catalog {
		products[p.ID] = p
	}

	e := &Engine{
		catalog:   catalog,
		products:  products,
		draft:     Draft{Lines: []Line{}},
		creator:   creator,
		navigator: navigator,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.totals = ComputeTotals(e.draft)

	return e
}

// Catalog returns the product snapshot the draft is validated against
func (e *Engine) Catalog() []domain.ProductSnapshot {
	out := make([]domain.ProductSnapshot, len(e.catalog))
	copy(out, e.catalog)
	return out
}

// Draft returns a copy of the current draft
func (e *Engine) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.clone()
}

// Totals returns the totals derived after the last mutation
func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totals
}

// State returns the draft lifecycle state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	switch {
	case e.discarded:
		return StateDiscarded
	case e.submitted:
		return StateSubmitted
	case e.submitting:
		return StateSubmitting
	case len(e.draft.Lines) == 0:
		return StateEmpty
	default:
		return StateBuilding
	}
}

// AddLine appends a line for productID with the snapshot unit price.
// The snapshot quantity is never decremented.
func (e *Engine) AddLine(productID int64, quantity int) (Line, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutableLocked(); err != nil {
		return Line{}, err
	}
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}

	product, ok := e.products[productID]
	if !ok {
		return Line{}, fmt.Errorf("%w: %d", ErrUnknownProduct, productID)
	}

	if err := e.checkStockLocked(product, quantity, -1); err != nil {
		return Line{}, err
	}

	line := Line{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.UnitPrice,
		Discount:    decimal.Zero,
	}
	line.recompute()

	e.draft.Lines = append(e.draft.Lines, line)
	e.recomputeLocked()

	return line, nil
}

// RemoveLine drops the line at index
func (e *Engine) RemoveLine(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutableLocked(); err != nil {
		return err
	}
	if err := e.checkIndexLocked(index); err != nil {
		return err
	}

	lines := make([]Line, 0, len(e.draft.Lines)-1)
	lines = append(lines, e.draft.Lines[:index]...)
	lines = append(lines, e.draft.Lines[index+1:]...)
	e.draft.Lines = lines
	e.recomputeLocked()

	return nil
}

// UpdateLineQuantity sets the quantity of the line at index. Nothing changes on failure.
func (e *Engine) UpdateLineQuantity(index, quantity int) (Line, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutableLocked(); err != nil {
		return Line{}, err
	}
	if err := e.checkIndexLocked(index); err != nil {
		return Line{}, err
	}
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}

	line := e.draft.Lines[index]
	product, ok := e.products[line.ProductID]
	if !ok {
		return Line{}, fmt.Errorf("%w: %d", ErrUnknownProduct, line.ProductID)
	}
	if err := e.checkStockLocked(product, quantity, index); err != nil {
		return Line{}, err
	}

	line.Quantity = quantity
	if e.discountPolicy == DiscountCapped && line.Discount.GreaterThan(line.Gross()) {
		return Line{}, ErrDiscountTooLarge
	}
	line.recompute()

	e.draft.Lines[index] = line
	e.recomputeLocked()

	return line, nil
}

// UpdateLineDiscount sets the absolute discount of the line at index
func (e *Engine) UpdateLineDiscount(index int, discount decimal.Decimal) (Line, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutableLocked(); err != nil {
		return Line{}, err
	}
	if err := e.checkIndexLocked(index); err != nil {
		return Line{}, err
	}
	if discount.IsNegative() {
		return Line{}, ErrInvalidDiscount
	}

	line := e.draft.Lines[index]
	if e.discountPolicy == DiscountCapped && discount.GreaterThan(line.Gross()) {
		return Line{}, ErrDiscountTooLarge
	}

	line.Discount = discount
	line.recompute()

	e.draft.Lines[index] = line
	e.recomputeLocked()

	return line, nil
}

// SetTaxPercent sets the sale-level tax percentage. Any value is accepted.
func (e *Engine) SetTaxPercent(value decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutableLocked(); err != nil {
		return err
	}
	e.draft.TaxPercent = value
	e.recomputeLocked()
	return nil
}

// SetDiscountPercent sets the sale-level discount percentage. Any value is accepted.
func (e *Engine) SetDiscountPercent(value decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutableLocked(); err != nil {
		return err
	}
	e.draft.DiscountPercent = value
	e.recomputeLocked()
	return nil
}

// SetCustomer replaces the customer contact fields
func (e *Engine) SetCustomer(name, email, phone string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutableLocked(); err != nil {
		return err
	}
	e.draft.CustomerName = name
	e.draft.CustomerEmail = email
	e.draft.CustomerPhone = phone
	return nil
}

// SetNotes replaces the free-text sale notes
func (e *Engine) SetNotes(notes string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutableLocked(); err != nil {
		return err
	}
	e.draft.Notes = notes
	return nil
}

// Discard abandons the draft. A submission still in flight is dropped when it returns.
func (e *Engine) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.submitted {
		return
	}
	e.discarded = true
}

// Submit re-checks stock against the snapshot, builds the payload and creates
// the sale through the resource client. On failure the draft is kept so the
// caller can fix it and retry; on success the draft is consumed.
func (e *Engine) Submit(ctx context.Context) (*domain.Sale, error) {
	e.mu.Lock()
	if err := e.mutableLocked(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if len(e.draft.Lines) == 0 {
		e.mu.Unlock()
		return nil, ErrEmptySale
	}
	if err := e.validateStockLocked(); err != nil {
		e.mu.Unlock()
		return nil, err
	}

	payload := buildPayload(e.draft, e.totals)
	e.submitting = true
	e.mu.Unlock()

	e.logger.Debug("Submitting sale",
		zap.Int("lines", len(payload.SaleItems)),
		zap.Float64("total", payload.Total),
	)

	var sale domain.Sale
	err := e.creator.Create(ctx, SalesResource, payload, &sale)

	e.mu.Lock()
	e.submitting = false

	if e.discarded {
		e.mu.Unlock()
		e.logger.Warn("Dropping submission result for discarded draft",
			zap.Int64("sale_id", sale.ID),
			zap.Error(err),
		)
		return nil, ErrDraftDiscarded
	}

	if err != nil {
		e.mu.Unlock()
		subErr := newSubmissionError(err)
		e.logger.Error("Sale submission failed",
			zap.Int("status", subErr.StatusCode),
			zap.Error(err),
		)
		return nil, subErr
	}

	e.submitted = true
	e.mu.Unlock()

	e.logger.Info("Sale submitted",
		zap.Int64("sale_id", sale.ID),
		zap.String("sale_number", sale.SaleNumber),
	)

	if e.navigator != nil {
		e.navigator.List(SalesResource)
	}

	return &sale, nil
}

func (e *Engine) mutableLocked() error {
	switch {
	case e.discarded:
		return ErrDraftDiscarded
	case e.submitted:
		return ErrSaleConsumed
	case e.submitting:
		return ErrSubmitInProgress
	}
	return nil
}

func (e *Engine) checkIndexLocked(index int) error {
	if index < 0 || index >= len(e.draft.Lines) {
		return fmt.Errorf("%w: %d (lines: %d)", ErrIndexOutOfRange, index, len(e.draft.Lines))
	}
	return nil
}

// checkStockLocked compares quantity with the snapshot. Under StockLedger the
// quantities of the other lines of the same product are added; skip is the
// index of the line being replaced, or -1.
func (e *Engine) checkStockLocked(product domain.ProductSnapshot, quantity, skip int) error {
	requested := quantity
	if e.stockPolicy == StockLedger {
		for i, line := range e.draft.Lines {
			if i != skip && line.ProductID == product.ID {
				requested += line.Quantity
			}
		}
	}

	if requested > product.AvailableQuantity {
		return &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.AvailableQuantity,
			Requested:   requested,
		}
	}
	return nil
}

// validateStockLocked re-checks every line and reports the first offending product
func (e *Engine) validateStockLocked() error {
	reserved := make(map[int64]int, len(e.draft.Lines))

	for _, line := range e.draft.Lines {
		product, ok := e.products[line.ProductID]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownProduct, line.ProductID)
		}

		requested := line.Quantity
		if e.stockPolicy == StockLedger {
			reserved[line.ProductID] += line.Quantity
			requested = reserved[line.ProductID]
		}

		if requested > product.AvailableQuantity {
			return &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.AvailableQuantity,
				Requested:   requested,
			}
		}
	}
	return nil
}

func (e *Engine) recomputeLocked() {
	e.totals = ComputeTotals(e.draft)
}
