package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"inventory-backoffice/internal/domain"
)

const suppliersResource = "suppliers"

var (
	ErrSupplierNotFound      = errors.New("supplier not found")
	ErrSupplierAlreadyExists = errors.New("supplier with this name already exists")
)

// SupplierQuery filters a supplier listing
type SupplierQuery struct {
	Search   string
	Page     int
	PageSize int
}

// SupplierRepository defines supplier data access over the resource client
type SupplierRepository interface {
	List(ctx context.Context, query SupplierQuery) ([]domain.Supplier, int, error)
	FindByID(ctx context.Context, id int64) (*domain.Supplier, error)
	Create(ctx context.Context, input domain.SupplierInput) (*domain.Supplier, error)
	Update(ctx context.Context, id int64, input domain.SupplierInput) (*domain.Supplier, error)
	Delete(ctx context.Context, id int64) error
}

type supplierRepository struct {
	client ResourceClient
}

// NewSupplierRepository creates a new instance of SupplierRepository
func NewSupplierRepository(client ResourceClient) SupplierRepository {
	return &supplierRepository{client: client}
}

// List retrieves suppliers filtered by name
func (r *supplierRepository) List(ctx context.Context, query SupplierQuery) ([]domain.Supplier, int, error) {
	params := ListParams{Page: query.Page, PageSize: query.PageSize}
	if params.PageSize <= 0 {
		params.PageSize = 10
	}
	if query.Search != "" {
		params.Filters = append(params.Filters, Filter{Field: "name", Operator: OperatorContains, Value: query.Search})
	}

	suppliers := []domain.Supplier{}
	total, err := r.client.List(ctx, suppliersResource, params, &suppliers)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list suppliers: %w", err)
	}

	return suppliers, total, nil
}

// FindByID retrieves a supplier by ID
func (r *supplierRepository) FindByID(ctx context.Context, id int64) (*domain.Supplier, error) {
	supplier := &domain.Supplier{}
	if err := r.client.Get(ctx, suppliersResource, strconv.FormatInt(id, 10), supplier); err != nil {
		return nil, supplierError("find", err)
	}
	return supplier, nil
}

// Create adds a new supplier
func (r *supplierRepository) Create(ctx context.Context, input domain.SupplierInput) (*domain.Supplier, error) {
	supplier := &domain.Supplier{}
	if err := r.client.Create(ctx, suppliersResource, input, supplier); err != nil {
		return nil, supplierError("create", err)
	}
	return supplier, nil
}

// Update replaces the writable fields of a supplier
func (r *supplierRepository) Update(ctx context.Context, id int64, input domain.SupplierInput) (*domain.Supplier, error) {
	supplier := &domain.Supplier{}
	if err := r.client.Update(ctx, suppliersResource, strconv.FormatInt(id, 10), input, supplier); err != nil {
		return nil, supplierError("update", err)
	}
	return supplier, nil
}

// Delete removes a supplier
func (r *supplierRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, suppliersResource, strconv.FormatInt(id, 10)); err != nil {
		return supplierError("delete", err)
	}
	return nil
}

func supplierError(op string, err error) error {
	switch {
	case errors.Is(err, ErrResourceNotFound):
		return ErrSupplierNotFound
	case errors.Is(err, ErrResourceConflict):
		return ErrSupplierAlreadyExists
	}
	return fmt.Errorf("failed to %s supplier: %w", op, err)
}
