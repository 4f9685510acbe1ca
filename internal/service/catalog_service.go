package service

import (
	"context"
	"errors"
	"fmt"

	"inventory-backoffice/internal/domain"
	"inventory-backoffice/internal/repository"
)

var (
	ErrUnknownCategory = errors.New("referenced category does not exist")
)

// CatalogService defines the interface for product and category management
type CatalogService interface {
	ListProducts(ctx context.Context, query repository.ProductQuery) ([]domain.Product, int, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, input domain.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, input domain.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *catalogService) ListProducts(ctx context.Context, query repository.ProductQuery) ([]domain.Product, int, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 || query.PageSize > MaxPageSize {
		query.PageSize = DefaultPageSize
	}
	if query.SortOrder == "" {
		query.SortOrder = repository.SortOrderAsc
	}

	return s.productRepo.List(ctx, query)
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// CreateProduct adds a product after checking its category exists
func (s *catalogService) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	return s.productRepo.Create(ctx, input)
}

// UpdateProduct replaces a product's fields after checking its category exists
func (s *catalogService) UpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error) {
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	return s.productRepo.Update(ctx, id, input)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	return s.productRepo.Delete(ctx, id)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *catalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

func (s *catalogService) CreateCategory(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	return s.categoryRepo.Create(ctx, input)
}

func (s *catalogService) UpdateCategory(ctx context.Context, id int64, input domain.CategoryInput) (*domain.Category, error) {
	return s.categoryRepo.Update(ctx, id, input)
}

func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *catalogService) checkCategory(ctx context.Context, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrUnknownCategory
		}
		return fmt.Errorf("failed to check category: %w", err)
	}
	return nil
}
