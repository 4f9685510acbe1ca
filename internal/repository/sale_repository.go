package repository

import (
	"context"
	"fmt"
	"strconv"

	"inventory-backoffice/internal/domain"
)

const salesResource = "sales"

// SaleQuery filters a sale listing
type SaleQuery struct {
	Search   string
	Status   string
	Page     int
	PageSize int
}

// SaleRepository defines sale data access over the resource client
type SaleRepository interface {
	List(ctx context.Context, query SaleQuery) ([]domain.Sale, int, error)
	FindByID(ctx context.Context, id int64) (*domain.Sale, error)
	UpdateDetails(ctx context.Context, id int64, details domain.SaleDetails) (*domain.Sale, error)
	Delete(ctx context.Context, id int64) error
}

type saleRepository struct {
	client ResourceClient
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(client ResourceClient) SaleRepository {
	return &saleRepository{client: client}
}

// List retrieves sales, newest first, filtered by sale number and status
func (r *saleRepository) List(ctx context.Context, query SaleQuery) ([]domain.Sale, int, error) {
	params := ListParams{
		Page:     query.Page,
		PageSize: query.PageSize,
		Sorters:  []Sorter{{Field: "createdAt", Order: SortOrderDesc}},
	}
	if params.PageSize <= 0 {
		params.PageSize = 10
	}
	if query.Search != "" {
		params.Filters = append(params.Filters, Filter{Field: "saleNumber", Operator: OperatorContains, Value: query.Search})
	}
	if query.Status != "" {
		params.Filters = append(params.Filters, Filter{Field: "status", Operator: OperatorEq, Value: query.Status})
	}

	sales := []domain.Sale{}
	total, err := r.client.List(ctx, salesResource, params, &sales)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}

	return sales, total, nil
}

// FindByID retrieves a sale with its line items
func (r *saleRepository) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	sale := &domain.Sale{}
	if err := r.client.Get(ctx, salesResource, strconv.FormatInt(id, 10), sale); err != nil {
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}
	return sale, nil
}

// UpdateDetails sends only the sale metadata; line items are never resent
func (r *saleRepository) UpdateDetails(ctx context.Context, id int64, details domain.SaleDetails) (*domain.Sale, error) {
	sale := &domain.Sale{}
	if err := r.client.Update(ctx, salesResource, strconv.FormatInt(id, 10), details, sale); err != nil {
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}
	return sale, nil
}

// Delete removes a sale record
func (r *saleRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, salesResource, strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	return nil
}
