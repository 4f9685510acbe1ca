package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the quantity below which an in-stock product counts as low stock
const LowStockThreshold = 5

// Product represents a product record as served by the inventory backend
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	CategoryID  *int64          `json:"categoryId,omitempty"`
	SupplierID  *int64          `json:"supplierId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// IsOutOfStock reports whether the product has no units left
func (p Product) IsOutOfStock() bool {
	return p.Quantity <= 0
}

// IsLowStock reports whether the product is in stock but under the low stock threshold
func (p Product) IsLowStock() bool {
	return p.Quantity > 0 && p.Quantity < LowStockThreshold
}

// ProductSnapshot is the read-only view of a product used while composing a sale
type ProductSnapshot struct {
	ID                int64
	Name              string
	UnitPrice         decimal.Decimal
	AvailableQuantity int
}

// Snapshot projects the product into the fields a sale composition needs
func (p Product) Snapshot() ProductSnapshot {
	available := p.Quantity
	if available < 0 {
		available = 0
	}
	return ProductSnapshot{
		ID:                p.ID,
		Name:              p.Name,
		UnitPrice:         p.Price,
		AvailableQuantity: available,
	}
}

// ProductInput is the writable part of a product
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	CategoryID  *int64          `json:"categoryId,omitempty"`
	SupplierID  *int64          `json:"supplierId,omitempty"`
}

// Category represents a product category
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CategoryInput is the writable part of a category
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}
