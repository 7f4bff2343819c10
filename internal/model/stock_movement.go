package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MovementSale       = "sale"
	MovementPurchase   = "purchase"
	MovementAdjustment = "adjustment"
	MovementReturn     = "return"
)

// StockMovement is an append-only ledger row. NewStock always equals
// PreviousStock + Quantity and is never negative.
type StockMovement struct {
	ID            uuid.UUID  `gorm:"type:varchar(36);primaryKey"`
	ProductID     uuid.UUID  `gorm:"type:varchar(36);not null;index"`
	VariantID     *uuid.UUID `gorm:"type:varchar(36)"`
	Type          string     `gorm:"not null"`
	Quantity      int        `gorm:"not null"` // positive = in, negative = out
	PreviousStock int        `gorm:"not null"`
	NewStock      int        `gorm:"not null"`
	Reason        string
	ReferenceID   *uuid.UUID `gorm:"type:varchar(36)"` // sale id when applicable
	UserID        *uuid.UUID `gorm:"type:varchar(36)"`
	CreatedAt     time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (StockMovement) TableName() string { return "stock_movements" }
