package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SyncStatusSynced  = "synced"
	SyncStatusPending = "pending"
	SyncStatusFailed  = "failed"
)

// Product is a sellable catalog item. Barcode is what the scanner reads;
// Identifier is the business-assigned SKU.
type Product struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	Name        string    `gorm:"not null"`
	Description *string
	Barcode     *string         `gorm:"uniqueIndex"`
	Identifier  *string         `gorm:"uniqueIndex"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Cost        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	MinStock    int             `gorm:"not null;default:0"`
	Unit        string          `gorm:"not null;default:'unit'"`
	CategoryID  *uuid.UUID      `gorm:"type:varchar(36);index"`
	SupplierID  *uuid.UUID      `gorm:"type:varchar(36);index"`
	Active      bool            `gorm:"not null;default:true"`
	SyncStatus  string          `gorm:"not null;default:'pending'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Category *Category        `gorm:"foreignKey:CategoryID"`
	Supplier *Supplier        `gorm:"foreignKey:SupplierID"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string { return "products" }

// IsLowStock reports stock at or below the configured minimum.
func (p *Product) IsLowStock() bool { return p.Stock <= p.MinStock }
