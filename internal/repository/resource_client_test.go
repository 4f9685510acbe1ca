package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"inventory-backoffice/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) ResourceClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewResourceClient(srv.URL+"/", 5*time.Second, zap.NewNop())
}

func TestListParamsEncode(t *testing.T) {
	params := ListParams{
		Page:     2,
		PageSize: 10,
		Filters: []Filter{
			{Field: "name", Operator: OperatorContains, Value: "bolt"},
			{Field: "status", Operator: OperatorEq, Value: "completed"},
			{Field: "ignored", Operator: OperatorEq, Value: "  "},
		},
		Sorters: []Sorter{{Field: "createdAt", Order: SortOrderDesc}},
	}

	values, err := url.ParseQuery(params.Encode())
	require.NoError(t, err)

	assert.Equal(t, "10", values.Get("limit"))
	assert.Equal(t, "2", values.Get("page"))
	assert.Equal(t, []string{"name||$cont||bolt", "status||$eq||completed"}, values["filter"])
	assert.Equal(t, []string{"createdAt,DESC"}, values["sort"])
}

func TestListParamsEncodeWithoutPagination(t *testing.T) {
	assert.Equal(t, "", ListParams{}.Encode())
}

func TestListDecodesPageEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":[{"id":1,"name":"Bolt","price":"0.25","quantity":40},{"id":2,"name":"Nut","price":0.1,"quantity":0}],"count":2,"total":57,"page":1,"pageCount":29}`)
	})

	var products []domain.Product
	total, err := client.List(context.Background(), "products", ListParams{Page: 1, PageSize: 1000}, &products)
	require.NoError(t, err)

	assert.Equal(t, 57, total)
	require.Len(t, products, 2)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("0.25")))
	assert.True(t, products[1].Price.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, 0, products[1].Quantity)
}

func TestListDecodesBareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":1,"name":"Tools"},{"id":2,"name":"Paint"},{"id":3,"name":"Garden"}]`)
	})

	var categories []domain.Category
	total, err := client.List(context.Background(), "categories", ListParams{}, &categories)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, categories, 3)
}

func TestCreatePostsPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sales", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "completed", payload["status"])

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":12,"saleNumber":"SAL-0012","status":"completed","total":"27.50"}`)
	})

	var sale domain.Sale
	err := client.Create(context.Background(), "sales", map[string]any{"status": "completed"}, &sale)
	require.NoError(t, err)
	assert.Equal(t, int64(12), sale.ID)
	assert.Equal(t, "SAL-0012", sale.SaleNumber)
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("27.5")))
}

func TestGetUnwrapsDataEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sales/4", r.URL.Path)
		io.WriteString(w, `{"data":{"id":4,"saleNumber":"SAL-0004"}}`)
	})

	var sale domain.Sale
	require.NoError(t, client.Get(context.Background(), "sales", "4", &sale))
	assert.Equal(t, "SAL-0004", sale.SaleNumber)
}

func TestUpdateAndDelete(t *testing.T) {
	var methods []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		assert.Equal(t, "/suppliers/9", r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusOK)
			return
		}
		io.WriteString(w, `{"id":9}`)
	})

	var out map[string]any
	require.NoError(t, client.Update(context.Background(), "suppliers", "9", map[string]string{"name": "ACME"}, &out))
	require.NoError(t, client.Delete(context.Background(), "suppliers", "9"))
	assert.Equal(t, []string{http.MethodPatch, http.MethodDelete}, methods)
}

func TestErrorResponsesBecomeAPIErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantIs      error
	}{
		{"conflict with message", http.StatusConflict, `{"statusCode":409,"message":"Sale number already exists","error":"Conflict"}`, "Sale number already exists", ErrResourceConflict},
		{"validation list", http.StatusBadRequest, `{"statusCode":400,"message":["quantity must be positive","total must be a number"],"error":"Bad Request"}`, "quantity must be positive; total must be a number", nil},
		{"not found", http.StatusNotFound, `{"statusCode":404,"error":"Not Found"}`, "Not Found", ErrResourceNotFound},
		{"plain text", http.StatusBadGateway, `upstream unavailable`, "upstream unavailable", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			err := client.Create(context.Background(), "sales", map[string]any{}, nil)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status())
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestTransportErrorIsWrapped(t *testing.T) {
	client := NewResourceClient("http://127.0.0.1:1", time.Second, zap.NewNop())

	err := client.Delete(context.Background(), "products", "1")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
