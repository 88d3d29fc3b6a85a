package cart

import (
	"github.com/shopspring/decimal"
)

// ShippingFee is charged once for any non-empty cart.
var ShippingFee = decimal.RequireFromString("5.99")

// Product is the client-side product record handed to AddItem.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description,omitempty"`
}

// LineItem is one product entry in the cart together with its quantity.
type LineItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
}

// LineTotal is price × quantity.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func newLineItem(p Product) LineItem {
	return LineItem{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.Image,
		Description: p.Description,
		Quantity:    1,
	}
}
