package service

import (
	"context"
	"errors"
	"fmt"

	"inventory-backoffice/internal/domain"
	"inventory-backoffice/internal/repository"
)

const (
	// DefaultPageSize is the page size of the back-office listings
	DefaultPageSize = 10
	// MaxPageSize bounds a requested page size
	MaxPageSize = 100
)

var (
	ErrInvalidSaleStatus = errors.New("invalid sale status")
)

// SaleService defines the interface for back-office sale operations
type SaleService interface {
	List(ctx context.Context, query repository.SaleQuery) ([]domain.Sale, int, error)
	GetByID(ctx context.Context, id int64) (*domain.Sale, error)
	UpdateDetails(ctx context.Context, id int64, details domain.SaleDetails) (*domain.Sale, error)
	Delete(ctx context.Context, id int64) error
}

type saleService struct {
	saleRepo repository.SaleRepository
}

// NewSaleService creates a new instance of SaleService
func NewSaleService(saleRepo repository.SaleRepository) SaleService {
	return &saleService{saleRepo: saleRepo}
}

// List returns a page of sales, filtered by sale number and status
func (s *saleService) List(ctx context.Context, query repository.SaleQuery) ([]domain.Sale, int, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 || query.PageSize > MaxPageSize {
		query.PageSize = DefaultPageSize
	}
	if query.Status != "" && !domain.IsValidSaleStatus(query.Status) {
		return nil, 0, ErrInvalidSaleStatus
	}

	return s.saleRepo.List(ctx, query)
}

// GetByID retrieves a sale with its line items
func (s *saleService) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	return sale, nil
}

// UpdateDetails changes the customer fields, notes and status of a sale
func (s *saleService) UpdateDetails(ctx context.Context, id int64, details domain.SaleDetails) (*domain.Sale, error) {
	if !domain.IsValidSaleStatus(details.Status) {
		return nil, ErrInvalidSaleStatus
	}

	sale, err := s.saleRepo.UpdateDetails(ctx, id, details)
	if err != nil {
		return nil, fmt.Errorf("failed to update sale details: %w", err)
	}
	return sale, nil
}

// Delete removes a sale record upstream
func (s *saleService) Delete(ctx context.Context, id int64) error {
	if err := s.saleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	return nil
}
