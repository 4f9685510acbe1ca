package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"inventory-backoffice/internal/domain"
	"inventory-backoffice/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSaleRepository struct {
	lastQuery   repository.SaleQuery
	lastDetails domain.SaleDetails
	sales       map[int64]*domain.Sale
}

func newMockSaleRepository() *mockSaleRepository {
	return &mockSaleRepository{sales: map[int64]*domain.Sale{
		7: {ID: 7, SaleNumber: "SAL-0007", Status: domain.SaleStatusCompleted},
	}}
}

func (m *mockSaleRepository) List(ctx context.Context, query repository.SaleQuery) ([]domain.Sale, int, error) {
	m.lastQuery = query
	return []domain.Sale{*m.sales[7]}, 1, nil
}

func (m *mockSaleRepository) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, ok := m.sales[id]
	if !ok {
		return nil, repository.ErrResourceNotFound
	}
	return sale, nil
}

func (m *mockSaleRepository) UpdateDetails(ctx context.Context, id int64, details domain.SaleDetails) (*domain.Sale, error) {
	m.lastDetails = details
	sale, ok := m.sales[id]
	if !ok {
		return nil, repository.ErrResourceNotFound
	}
	sale.Status = details.Status
	sale.Notes = details.Notes
	return sale, nil
}

func (m *mockSaleRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.sales[id]; !ok {
		return repository.ErrResourceNotFound
	}
	delete(m.sales, id)
	return nil
}

func TestSaleListNormalizesPaging(t *testing.T) {
	repo := newMockSaleRepository()
	svc := NewSaleService(repo)

	_, total, err := svc.List(context.Background(), repository.SaleQuery{Page: 0, PageSize: 500, Search: "SAL"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, repo.lastQuery.Page)
	assert.Equal(t, DefaultPageSize, repo.lastQuery.PageSize)
	assert.Equal(t, "SAL", repo.lastQuery.Search)
}

func TestSaleListRejectsUnknownStatus(t *testing.T) {
	svc := NewSaleService(newMockSaleRepository())

	_, _, err := svc.List(context.Background(), repository.SaleQuery{Status: "shipped"})
	assert.ErrorIs(t, err, ErrInvalidSaleStatus)
}

func TestSaleGetByIDWrapsNotFound(t *testing.T) {
	svc := NewSaleService(newMockSaleRepository())

	sale, err := svc.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "SAL-0007", sale.SaleNumber)

	_, err = svc.GetByID(context.Background(), 99)
	assert.True(t, errors.Is(err, repository.ErrResourceNotFound))
}

func TestSaleUpdateDetails(t *testing.T) {
	repo := newMockSaleRepository()
	svc := NewSaleService(repo)

	sale, err := svc.UpdateDetails(context.Background(), 7, domain.SaleDetails{
		CustomerName: "Ada",
		Notes:        "picked up",
		Status:       domain.SaleStatusRefunded,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusRefunded, sale.Status)
	assert.Equal(t, "Ada", repo.lastDetails.CustomerName)

	_, err = svc.UpdateDetails(context.Background(), 7, domain.SaleDetails{Status: "lost"})
	assert.ErrorIs(t, err, ErrInvalidSaleStatus)
}

// Feature: sale-composition, Property 5: Sale detail updates never carry line items
func TestProperty_SaleDetailsCarryNoLineItems(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("encoded details only contain metadata fields", prop.ForAll(
		func(name, notes string, statusIdx int) bool {
			statuses := []string{
				domain.SaleStatusPending,
				domain.SaleStatusCompleted,
				domain.SaleStatusCancelled,
				domain.SaleStatusRefunded,
			}
			details := domain.SaleDetails{CustomerName: name, Notes: notes, Status: statuses[statusIdx]}

			body, err := json.Marshal(details)
			if err != nil {
				return false
			}
			var fields map[string]any
			if err := json.Unmarshal(body, &fields); err != nil {
				return false
			}
			_, hasItems := fields["saleItems"]
			return !hasItems && reflect.DeepEqual(fields["status"], statuses[statusIdx])
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSaleDelete(t *testing.T) {
	repo := newMockSaleRepository()
	svc := NewSaleService(repo)

	require.NoError(t, svc.Delete(context.Background(), 7))
	assert.Empty(t, repo.sales)

	err := svc.Delete(context.Background(), 7)
	assert.ErrorIs(t, err, repository.ErrResourceNotFound)
}
