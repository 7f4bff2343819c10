package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name        string          `json:"name"        validate:"required,min=2,max=200"`
	Description *string         `json:"description"`
	Barcode     *string         `json:"barcode"     validate:"omitempty,min=4,max=64"`
	Identifier  *string         `json:"identifier"  validate:"omitempty,max=64"`
	Price       decimal.Decimal `json:"price"       validate:"min=0"`
	Cost        decimal.Decimal `json:"cost"        validate:"min=0"`
	Stock       int             `json:"stock"       validate:"min=0"`
	MinStock    int             `json:"min_stock"   validate:"min=0"`
	Unit        string          `json:"unit"`
	CategoryID  *string         `json:"category_id" validate:"omitempty,uuid"`
	SupplierID  *string         `json:"supplier_id" validate:"omitempty,uuid"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=2,max=200"`
	Description *string          `json:"description"`
	Barcode     *string          `json:"barcode"     validate:"omitempty,min=4,max=64"`
	Identifier  *string          `json:"identifier"  validate:"omitempty,max=64"`
	Price       *decimal.Decimal `json:"price"`
	Cost        *decimal.Decimal `json:"cost"`
	MinStock    *int             `json:"min_stock"   validate:"omitempty,min=0"`
	Unit        *string          `json:"unit"`
	CategoryID  *string          `json:"category_id" validate:"omitempty,uuid"`
	SupplierID  *string          `json:"supplier_id" validate:"omitempty,uuid"`
}

type CreateVariantRequest struct {
	Type       string          `json:"type"        validate:"required,max=40"`
	Label      string          `json:"label"       validate:"required,max=120"`
	Value      string          `json:"value"       validate:"required,max=120"`
	Barcode    *string         `json:"barcode"     validate:"omitempty,min=4,max=64"`
	Stock      int             `json:"stock"       validate:"min=0"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

type UpdateVariantRequest struct {
	Label      *string          `json:"label"       validate:"omitempty,max=120"`
	Value      *string          `json:"value"       validate:"omitempty,max=120"`
	Barcode    *string          `json:"barcode"     validate:"omitempty,min=4,max=64"`
	PriceDelta *decimal.Decimal `json:"price_delta"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Query      string `form:"q"`
	Barcode    string `form:"barcode"`
	CategoryID string `form:"category_id"`
	SupplierID string `form:"supplier_id"`
	Active     string `form:"active"` // "false" = inactive only, "all" = both, default active
	LowStock   bool   `form:"low_stock"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	Barcode     *string           `json:"barcode,omitempty"`
	Identifier  *string           `json:"identifier,omitempty"`
	Price       decimal.Decimal   `json:"price"`
	Cost        decimal.Decimal   `json:"cost"`
	Stock       int               `json:"stock"`
	MinStock    int               `json:"min_stock"`
	LowStock    bool              `json:"low_stock"`
	Unit        string            `json:"unit"`
	CategoryID  *string           `json:"category_id,omitempty"`
	SupplierID  *string           `json:"supplier_id,omitempty"`
	Active      bool              `json:"active"`
	SyncStatus  string            `json:"sync_status"`
	UpdatedAt   string            `json:"updated_at"`
	Variants    []VariantResponse `json:"variants,omitempty"`
}

type VariantResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Type       string          `json:"type"`
	Label      string          `json:"label"`
	Value      string          `json:"value"`
	Barcode    *string         `json:"barcode,omitempty"`
	Stock      int             `json:"stock"`
	PriceDelta decimal.Decimal `json:"price_delta"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Active     bool            `json:"active"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type PriceChangeResponse struct {
	ID          string          `json:"id"`
	CostBefore  decimal.Decimal `json:"cost_before"`
	CostAfter   decimal.Decimal `json:"cost_after"`
	PriceBefore decimal.Decimal `json:"price_before"`
	PriceAfter  decimal.Decimal `json:"price_after"`
	Reason      string          `json:"reason"`
	CreatedAt   string          `json:"created_at"`
}
