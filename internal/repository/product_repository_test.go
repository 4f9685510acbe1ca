package repository

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductSnapshotProjectsCatalog(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))
		io.WriteString(w, `{"data":[{"id":1,"name":"Hammer","price":"12.90","quantity":3},{"id":2,"name":"Saw","price":"20","quantity":-2}],"total":2}`)
	})

	snapshot, err := NewProductRepository(client).Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot, 2)

	assert.Equal(t, "Hammer", snapshot[0].Name)
	assert.True(t, snapshot[0].UnitPrice.Equal(decimal.RequireFromString("12.9")))
	assert.Equal(t, 3, snapshot[0].AvailableQuantity)
	assert.Equal(t, 0, snapshot[1].AvailableQuantity, "negative stock is reported as zero")
}

func TestProductListBuildsFilters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, []string{"name||$cont||drill", "categoryId||$eq||4"}, query["filter"])
		assert.Equal(t, "price,ASC", query.Get("sort"))
		assert.Equal(t, "10", query.Get("limit"))
		io.WriteString(w, `{"data":[{"id":8,"name":"Drill","price":"89.00","quantity":2}],"total":1}`)
	})

	categoryID := int64(4)
	products, total, err := NewProductRepository(client).List(context.Background(), ProductQuery{
		Search:     "drill",
		CategoryID: &categoryID,
		SortBy:     "price",
		SortOrder:  SortOrderAsc,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, int64(8), products[0].ID)
}

func TestProductListIgnoresUnknownSortField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query()["sort"])
		io.WriteString(w, `[]`)
	})

	products, total, err := NewProductRepository(client).List(context.Background(), ProductQuery{SortBy: "password"})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, products)
}

func TestSaleListFiltersByNumberAndStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "/sales", r.URL.Path)
		assert.Equal(t, []string{"saleNumber||$cont||0042", "status||$eq||refunded"}, query["filter"])
		assert.Equal(t, "createdAt,DESC", query.Get("sort"))
		io.WriteString(w, `{"data":[{"id":42,"saleNumber":"SAL-0042","status":"refunded"}],"total":1}`)
	})

	sales, total, err := NewSaleRepository(client).List(context.Background(), SaleQuery{Search: "0042", Status: "refunded"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, sales, 1)
	assert.Equal(t, "SAL-0042", sales[0].SaleNumber)
}
