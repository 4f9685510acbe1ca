package composer

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrIndexOutOfRange   = errors.New("line index out of range")
	ErrEmptySale         = errors.New("sale has no line items")
	ErrDuplicateResource = errors.New("sale already exists")
	ErrSubmissionFailed  = errors.New("sale submission failed")

	ErrUnknownProduct   = errors.New("product not found in catalog snapshot")
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrInvalidDiscount  = errors.New("discount must not be negative")
	ErrDiscountTooLarge = errors.New("discount exceeds line value")
	ErrSubmitInProgress = errors.New("sale submission already in progress")
	ErrSaleConsumed     = errors.New("sale was already submitted")
	ErrDraftDiscarded   = errors.New("sale draft was discarded")
)

// InsufficientStockError reports a quantity the snapshot cannot cover.
// Available is the snapshot quantity the caller can show to the user.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: only %d available, %d requested",
		e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// SubmissionError wraps a failure returned by the resource collaborator.
// Kind is ErrDuplicateResource for a 409 Conflict and ErrSubmissionFailed otherwise;
// Err is the collaborator error, unchanged.
type SubmissionError struct {
	Kind       error
	StatusCode int
	Message    string
	Err        error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("error creating sale: %s", e.Message)
}

func (e *SubmissionError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// statusCoder is implemented by collaborator errors that carry an HTTP status
type statusCoder interface {
	Status() int
}

func newSubmissionError(err error) *SubmissionError {
	subErr := &SubmissionError{
		Kind:    ErrSubmissionFailed,
		Message: err.Error(),
		Err:     err,
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		subErr.StatusCode = sc.Status()
		if subErr.StatusCode == 409 {
			subErr.Kind = ErrDuplicateResource
		}
	}

	return subErr
}
