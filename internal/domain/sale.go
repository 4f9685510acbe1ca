package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale statuses accepted by the inventory backend
const (
	SaleStatusPending   = "pending"
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
	SaleStatusRefunded  = "refunded"
)

// IsValidSaleStatus reports whether status is one the backend accepts
func IsValidSaleStatus(status string) bool {
	switch status {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusCancelled, SaleStatusRefunded:
		return true
	default:
		return false
	}
}

// Sale is a submitted sale record. Its lifecycle is owned by the backend.
type Sale struct {
	ID            int64           `json:"id"`
	SaleNumber    string          `json:"saleNumber"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerPhone string          `json:"customerPhone"`
	Notes         string          `json:"notes"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	SaleItems     []SaleItem      `json:"saleItems,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// SaleItem is one line of a submitted sale
type SaleItem struct {
	ID         int64           `json:"id,omitempty"`
	ProductID  int64           `json:"productId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Discount   decimal.Decimal `json:"discount"`
}

// SaleDetails holds the sale fields that may change after creation.
// Line items are immutable once the sale exists.
type SaleDetails struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	Notes         string `json:"notes"`
	Status        string `json:"status"`
}
