package service

import (
	"context"

	"inventory-backoffice/internal/domain"
	"inventory-backoffice/internal/repository"
)

// SupplierService defines the interface for supplier management
type SupplierService interface {
	List(ctx context.Context, query repository.SupplierQuery) ([]domain.Supplier, int, error)
	GetByID(ctx context.Context, id int64) (*domain.Supplier, error)
	Create(ctx context.Context, input domain.SupplierInput) (*domain.Supplier, error)
	Update(ctx context.Context, id int64, input domain.SupplierInput) (*domain.Supplier, error)
	Delete(ctx context.Context, id int64) error
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
}

// NewSupplierService creates a new instance of SupplierService
func NewSupplierService(supplierRepo repository.SupplierRepository) SupplierService {
	return &supplierService{supplierRepo: supplierRepo}
}

// List returns a page of suppliers filtered by name
func (s *supplierService) List(ctx context.Context, query repository.SupplierQuery) ([]domain.Supplier, int, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 || query.PageSize > MaxPageSize {
		query.PageSize = DefaultPageSize
	}

	return s.supplierRepo.List(ctx, query)
}

func (s *supplierService) GetByID(ctx context.Context, id int64) (*domain.Supplier, error) {
	return s.supplierRepo.FindByID(ctx, id)
}

func (s *supplierService) Create(ctx context.Context, input domain.SupplierInput) (*domain.Supplier, error) {
	return s.supplierRepo.Create(ctx, input)
}

func (s *supplierService) Update(ctx context.Context, id int64, input domain.SupplierInput) (*domain.Supplier, error) {
	return s.supplierRepo.Update(ctx, id, input)
}

func (s *supplierService) Delete(ctx context.Context, id int64) error {
	return s.supplierRepo.Delete(ctx, id)
}
