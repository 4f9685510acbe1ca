package composer

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Line is one product entry of a sale draft.
// UnitPrice is copied from the snapshot when the line is added and never changes.
type Line struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// Gross returns unitPrice * quantity, before the line discount
func (l Line) Gross() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l *Line) recompute() {
	l.LineTotal = l.Gross().Sub(l.Discount)
}

// Draft is the in-progress, unsaved sale
type Draft struct {
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	Notes           string          `json:"notes"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Lines           []Line          `json:"lines"`
}

func (d Draft) clone() Draft {
	c := d
	c.Lines = make([]Line, len(d.Lines))
	copy(c.Lines, d.Lines)
	return c
}

// Totals are the amounts derived from a draft
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
}

// ComputeTotals derives subtotal, tax, discount and total from the draft lines
// and percentages. The result is not clamped: a total below zero is returned as is.
func ComputeTotals(d Draft) Totals {
	subtotal := decimal.Zero
	for _, line := range d.Lines {
		subtotal = subtotal.Add(line.LineTotal)
	}

	taxAmount := subtotal.Mul(d.TaxPercent).Div(hundred)
	discountAmount := subtotal.Mul(d.DiscountPercent).Div(hundred)

	return Totals{
		Subtotal:       subtotal,
		TaxAmount:      taxAmount,
		DiscountAmount: discountAmount,
		Total:          subtotal.Add(taxAmount).Sub(discountAmount),
	}
}
