package dto

import "github.com/shopspring/decimal"

type AddToCartRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	VariantID *string `json:"variant_id" validate:"omitempty,uuid"`
	Quantity  int     `json:"quantity"   validate:"required,min=1"`
}

// UpdateCartItemRequest sets an absolute quantity; zero or less removes the line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	VariantID    *string         `json:"variant_id,omitempty"`
	ProductName  string          `json:"product_name"`
	VariantLabel *string         `json:"variant_label,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	Available    int             `json:"available"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
}
