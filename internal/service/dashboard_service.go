package service

import (
	"context"
	"encoding/json"
	"fmt"

	"inventory-backoffice/internal/domain"
	"inventory-backoffice/internal/repository"
)

// dashboardPageSize is how many records the dashboard loads per resource.
// Backends answering with a bare array report the loaded length as the total.
const dashboardPageSize = 1000

// DashboardService defines the interface for back-office statistics
type DashboardService interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

type dashboardService struct {
	client repository.ResourceClient
}

// NewDashboardService creates a new instance of DashboardService
func NewDashboardService(client repository.ResourceClient) DashboardService {
	return &dashboardService{client: client}
}

// Stats counts records per resource and classifies product stock levels
func (s *dashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}

	var products []domain.Product
	total, err := s.client.List(ctx, "products", repository.ListParams{Page: 1, PageSize: dashboardPageSize}, &products)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	stats.TotalProducts = total
	for _, p := range products {
		switch {
		case p.IsOutOfStock():
			stats.OutOfStockProducts++
		case p.IsLowStock():
			stats.LowStockProducts++
		}
	}

	counters := []struct {
		resource string
		target   *int
	}{
		{"sales", &stats.TotalSales},
		{"orders", &stats.TotalOrders},
		{"suppliers", &stats.TotalSuppliers},
		{"categories", &stats.TotalCategories},
	}

	for _, c := range counters {
		var records []json.RawMessage
		total, err := s.client.List(ctx, c.resource, repository.ListParams{Page: 1, PageSize: dashboardPageSize}, &records)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.resource, err)
		}
		*c.target = total
	}

	return stats, nil
}
