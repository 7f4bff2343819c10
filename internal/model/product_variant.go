package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is a sellable option of a product (a colour, a size).
// It keeps its own stock; its unit price is the product price plus PriceDelta.
type ProductVariant struct {
	ID         uuid.UUID       `gorm:"type:varchar(36);primaryKey"`
	ProductID  uuid.UUID       `gorm:"type:varchar(36);not null;index"`
	Type       string          `gorm:"not null"` // color | size | ...
	Label      string          `gorm:"not null"`
	Value      string          `gorm:"not null"`
	Barcode    *string         `gorm:"uniqueIndex"`
	Stock      int             `gorm:"not null;default:0"`
	PriceDelta decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Active     bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ProductVariant) TableName() string { return "product_variants" }
