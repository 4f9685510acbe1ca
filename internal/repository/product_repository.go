package repository

import (
	"context"
	"fmt"
	"strconv"

	"inventory-backoffice/internal/domain"
)

const (
	productsResource = "products"

	// snapshotPageSize matches the page size the sale screen loads the catalog with
	snapshotPageSize = 1000
)

// ProductQuery filters a product listing
type ProductQuery struct {
	Search     string
	CategoryID *int64
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  SortOrder
}

// ProductRepository defines product data access over the resource client
type ProductRepository interface {
	Snapshot(ctx context.Context) ([]domain.ProductSnapshot, error)
	List(ctx context.Context, query ProductQuery) ([]domain.Product, int, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, input domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

// productPayload is the product write body; the backend expects numeric prices
type productPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	CategoryID  *int64  `json:"categoryId,omitempty"`
	SupplierID  *int64  `json:"supplierId,omitempty"`
}

func newProductPayload(input domain.ProductInput) productPayload {
	return productPayload{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price.InexactFloat64(),
		Quantity:    input.Quantity,
		CategoryID:  input.CategoryID,
		SupplierID:  input.SupplierID,
	}
}

type productRepository struct {
	client ResourceClient
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(client ResourceClient) ProductRepository {
	return &productRepository{client: client}
}

// Snapshot loads the catalog a sale composition session is checked against
func (r *productRepository) Snapshot(ctx context.Context) ([]domain.ProductSnapshot, error) {
	var products []domain.Product
	if _, err := r.client.List(ctx, productsResource, ListParams{Page: 1, PageSize: snapshotPageSize}, &products); err != nil {
		return nil, fmt.Errorf("failed to load product snapshot: %w", err)
	}

	snapshot := make([]domain.ProductSnapshot, 0, len(products))
	for _, p := range products {
		snapshot = append(snapshot, p.Snapshot())
	}
	return snapshot, nil
}

// List retrieves products with optional name search, category filter and sorting
func (r *productRepository) List(ctx context.Context, query ProductQuery) ([]domain.Product, int, error) {
	validSortFields := map[string]bool{
		"name":      true,
		"price":     true,
		"quantity":  true,
		"createdAt": true,
	}

	params := ListParams{Page: query.Page, PageSize: query.PageSize}
	if params.PageSize <= 0 {
		params.PageSize = 10
	}

	if query.Search != "" {
		params.Filters = append(params.Filters, Filter{Field: "name", Operator: OperatorContains, Value: query.Search})
	}
	if query.CategoryID != nil {
		params.Filters = append(params.Filters, Filter{Field: "categoryId", Operator: OperatorEq, Value: strconv.FormatInt(*query.CategoryID, 10)})
	}
	if validSortFields[query.SortBy] {
		params.Sorters = append(params.Sorters, Sorter{Field: query.SortBy, Order: query.SortOrder})
	}

	products := []domain.Product{}
	total, err := r.client.List(ctx, productsResource, params, &products)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	product := &domain.Product{}
	if err := r.client.Get(ctx, productsResource, strconv.FormatInt(id, 10), product); err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// Create adds a new product; a duplicate name surfaces as ErrResourceConflict
func (r *productRepository) Create(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	product := &domain.Product{}
	if err := r.client.Create(ctx, productsResource, newProductPayload(input), product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update replaces the writable fields of a product
func (r *productRepository) Update(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error) {
	product := &domain.Product{}
	if err := r.client.Update(ctx, productsResource, strconv.FormatInt(id, 10), newProductPayload(input), product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// Delete removes a product
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, productsResource, strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
