package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CheckoutRequest completes the caller's cart. TaxRate is a percentage and
// overrides the shop setting when present.
type CheckoutRequest struct {
	Discount       decimal.Decimal  `json:"discount"        validate:"min=0"`
	TaxRate        *decimal.Decimal `json:"tax_rate"`
	PaymentMethod  string           `json:"payment_method"  validate:"required,oneof=cash card transfer ewallet"`
	AmountReceived decimal.Decimal  `json:"amount_received" validate:"min=0"`
	CustomerID     *string          `json:"customer_id"     validate:"omitempty,uuid"`
	Notes          *string          `json:"notes"           validate:"omitempty,max=500"`
}

type CancelSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=300"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

type SaleFilter struct {
	From   string `form:"from"               validate:"omitempty,datetime=2006-01-02"` // inclusive
	To     string `form:"to"                 validate:"omitempty,datetime=2006-01-02"` // inclusive
	Status string `form:"status,default=all" validate:"omitempty,oneof=completed cancelled all"`
	UserID string `form:"user_id"            validate:"omitempty,uuid"`
	Page   int    `form:"page,default=1"     validate:"min=1"`
	Limit  int    `form:"limit,default=50"   validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID     string          `json:"product_id"`
	VariantID     *string         `json:"variant_id,omitempty"`
	ProductName   string          `json:"product_name"`
	VariantLabel  *string         `json:"variant_label,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID             string             `json:"id"`
	InvoiceNumber  string             `json:"invoice_number"`
	DeviceID       string             `json:"device_id,omitempty"`
	UserID         string             `json:"user_id"`
	CustomerID     *string            `json:"customer_id,omitempty"`
	Items          []SaleItemResponse `json:"items"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Discount       decimal.Decimal    `json:"discount"`
	TaxRate        decimal.Decimal    `json:"tax_rate"`
	Tax            decimal.Decimal    `json:"tax"`
	Total          decimal.Decimal    `json:"total"`
	PaymentMethod  string             `json:"payment_method"`
	AmountReceived decimal.Decimal    `json:"amount_received"`
	Change         decimal.Decimal    `json:"change"`
	Status         string             `json:"status"`
	Notes          *string            `json:"notes,omitempty"`
	CancelledAt    *string            `json:"cancelled_at,omitempty"`
	CancelReason   *string            `json:"cancel_reason,omitempty"`
	CreatedAt      string             `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
