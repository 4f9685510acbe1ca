package composer

import "inventory-backoffice/internal/domain"

// SalePayload is the wire shape handed to the resource client on submission
type SalePayload struct {
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail"`
	CustomerPhone string            `json:"customerPhone"`
	Notes         string            `json:"notes"`
	Subtotal      float64           `json:"subtotal"`
	Tax           float64           `json:"tax"`
	Discount      float64           `json:"discount"`
	Total         float64           `json:"total"`
	Status        string            `json:"status"`
	SaleItems     []SaleItemPayload `json:"saleItems"`
}

// SaleItemPayload is one submitted line
type SaleItemPayload struct {
	ProductID  int64   `json:"productId"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
	Discount   float64 `json:"discount"`
}

// buildPayload converts the draft into its submission shape.
// Tax and discount carry the draft percentages, as the backend expects.
func buildPayload(d Draft, totals Totals) SalePayload {
	items := make([]SaleItemPayload, 0, len(d.Lines))
	for _, line := range d.Lines {
		items = append(items, SaleItemPayload{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice.InexactFloat64(),
			TotalPrice: line.LineTotal.InexactFloat64(),
			Discount:   line.Discount.InexactFloat64(),
		})
	}

	return SalePayload{
		CustomerName:  d.CustomerName,
		CustomerEmail: d.CustomerEmail,
		CustomerPhone: d.CustomerPhone,
		Notes:         d.Notes,
		Subtotal:      totals.Subtotal.InexactFloat64(),
		Tax:           d.TaxPercent.InexactFloat64(),
		Discount:      d.DiscountPercent.InexactFloat64(),
		Total:         totals.Total.InexactFloat64(),
		Status:        domain.SaleStatusCompleted,
		SaleItems:     items,
	}
}
