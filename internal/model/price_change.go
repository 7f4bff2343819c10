package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceChange records every change of a product's cost or price.
// Rows are immutable.
type PriceChange struct {
	ID          uuid.UUID       `gorm:"type:varchar(36);primaryKey"`
	ProductID   uuid.UUID       `gorm:"type:varchar(36);not null;index"`
	CostBefore  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CostAfter   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PriceBefore decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PriceAfter  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Reason      string          `gorm:"not null"` // manual | purchase | sync
	UserID      *uuid.UUID      `gorm:"type:varchar(36)"`
	CreatedAt   time.Time
}

func (PriceChange) TableName() string { return "price_changes" }
