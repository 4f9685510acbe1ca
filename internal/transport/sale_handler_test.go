package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"inventory-backoffice/internal/domain"
	"inventory-backoffice/internal/repository"
	"inventory-backoffice/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSaleRepository struct {
	sales     map[int64]*domain.Sale
	lastQuery repository.SaleQuery
	failWith  error
}

func (m *mockSaleRepository) List(ctx context.Context, query repository.SaleQuery) ([]domain.Sale, int, error) {
	m.lastQuery = query
	if m.failWith != nil {
		return nil, 0, m.failWith
	}
	var out []domain.Sale
	for _, s := range m.sales {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockSaleRepository) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, ok := m.sales[id]
	if !ok {
		return nil, &repository.APIError{Method: "GET", Resource: "sales", StatusCode: http.StatusNotFound, Message: "Not Found"}
	}
	return sale, nil
}

func (m *mockSaleRepository) UpdateDetails(ctx context.Context, id int64, details domain.SaleDetails) (*domain.Sale, error) {
	sale, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.CustomerName = details.CustomerName
	sale.Notes = details.Notes
	sale.Status = details.Status
	return sale, nil
}

func (m *mockSaleRepository) Delete(ctx context.Context, id int64) error {
	if _, err := m.FindByID(ctx, id); err != nil {
		return err
	}
	delete(m.sales, id)
	return nil
}

func newTestSaleRouter(repo *mockSaleRepository) http.Handler {
	r := chi.NewRouter()
	NewSaleHandler(service.NewSaleService(repo), zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestListSales(t *testing.T) {
	repo := &mockSaleRepository{sales: map[int64]*domain.Sale{
		1: {ID: 1, SaleNumber: "SAL-0001", Status: domain.SaleStatusCompleted},
	}}
	h := newTestSaleRouter(repo)

	w := doJSON(t, h, http.MethodGet, "/api/sales?search=SAL&status=completed&page=2&pageSize=25", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body SaleListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 25, body.PageSize)
	assert.Equal(t, "SAL", repo.lastQuery.Search)
	assert.Equal(t, "completed", repo.lastQuery.Status)

	w = doJSON(t, h, http.MethodGet, "/api/sales?status=shipped", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSalesUpstreamFailure(t *testing.T) {
	repo := &mockSaleRepository{failWith: &repository.APIError{Method: "GET", Resource: "sales", StatusCode: http.StatusServiceUnavailable}}
	h := newTestSaleRouter(repo)

	w := doJSON(t, h, http.MethodGet, "/api/sales", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, float64(http.StatusServiceUnavailable), decodeError(t, w).Details["upstream_status"])
}

func TestUpdateSaleDetails(t *testing.T) {
	repo := &mockSaleRepository{sales: map[int64]*domain.Sale{
		4: {ID: 4, SaleNumber: "SAL-0004", Status: domain.SaleStatusPending},
	}}
	h := newTestSaleRouter(repo)

	w := doJSON(t, h, http.MethodPatch, "/api/sales/4", UpdateSaleRequest{CustomerName: "Grace", Status: domain.SaleStatusCancelled})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sale domain.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sale))
	assert.Equal(t, domain.SaleStatusCancelled, sale.Status)
	assert.Equal(t, "Grace", sale.CustomerName)

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
	}{
		{"unknown status", "/api/sales/4", map[string]string{"status": "lost"}, http.StatusBadRequest},
		{"missing status", "/api/sales/4", map[string]string{"notes": "x"}, http.StatusBadRequest},
		{"line items are not editable", "/api/sales/4", map[string]interface{}{"status": "completed", "saleItems": []int{1}}, http.StatusBadRequest},
		{"bad id", "/api/sales/abc", UpdateSaleRequest{Status: domain.SaleStatusCompleted}, http.StatusBadRequest},
		{"unknown sale", "/api/sales/99", UpdateSaleRequest{Status: domain.SaleStatusCompleted}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPatch, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestGetSale(t *testing.T) {
	repo := &mockSaleRepository{sales: map[int64]*domain.Sale{
		9: {ID: 9, SaleNumber: "SAL-0009", SaleItems: []domain.SaleItem{{ProductID: 1, Quantity: 2}}},
	}}
	h := newTestSaleRouter(repo)

	w := doJSON(t, h, http.MethodGet, "/api/sales/9", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var sale domain.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sale))
	assert.Len(t, sale.SaleItems, 1)

	w = doJSON(t, h, http.MethodGet, "/api/sales/10", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSale(t *testing.T) {
	repo := &mockSaleRepository{sales: map[int64]*domain.Sale{
		3: {ID: 3, SaleNumber: "SAL-0003", Status: domain.SaleStatusCancelled},
	}}
	h := newTestSaleRouter(repo)

	w := doJSON(t, h, http.MethodDelete, "/api/sales/3", nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	assert.Empty(t, repo.sales)

	w = doJSON(t, h, http.MethodDelete, "/api/sales/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodDelete, "/api/sales/x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteSaleThroughResourceClient(t *testing.T) {
	backend, client := newRecordBackend(t)
	id := backend.seed("sales", map[string]any{"saleNumber": "SAL-0012", "status": "completed"})

	r := chi.NewRouter()
	NewSaleHandler(service.NewSaleService(repository.NewSaleRepository(client)), zap.NewNop()).RegisterRoutes(r)

	w := doJSON(t, r, http.MethodDelete, "/api/sales/"+strconv.FormatInt(id, 10), nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	assert.Equal(t, 0, backend.count("sales"))
}
