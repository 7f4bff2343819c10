package dto

import "github.com/shopspring/decimal"

// AdjustStockRequest either applies Delta or, when Count is set, replaces
// the stock with a physical count.
type AdjustStockRequest struct {
	VariantID *string `json:"variant_id" validate:"omitempty,uuid"`
	Delta     int     `json:"delta"`
	Count     *int    `json:"count"      validate:"omitempty,min=0"`
	Reason    string  `json:"reason"     validate:"required,min=3,max=300"`
}

// ReceiveStockRequest books a purchase from a supplier.
type ReceiveStockRequest struct {
	VariantID *string          `json:"variant_id" validate:"omitempty,uuid"`
	Quantity  int              `json:"quantity"   validate:"required,min=1"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
	Reference string           `json:"reference"  validate:"max=120"`
}

type MovementFilter struct {
	ProductID string `form:"product_id"`
	Type      string `form:"type"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type StockMovementResponse struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name,omitempty"`
	VariantID     *string `json:"variant_id,omitempty"`
	Type          string  `json:"type"`
	Quantity      int     `json:"quantity"`
	PreviousStock int     `json:"previous_stock"`
	NewStock      int     `json:"new_stock"`
	Reason        string  `json:"reason"`
	ReferenceID   *string `json:"reference_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type MovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type LowStockItem struct {
	ProductID    string  `json:"product_id"`
	VariantID    *string `json:"variant_id,omitempty"`
	Name         string  `json:"name"`
	VariantLabel *string `json:"variant_label,omitempty"`
	Stock        int     `json:"stock"`
	MinStock     int     `json:"min_stock"`
}
