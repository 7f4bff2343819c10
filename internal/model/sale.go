package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SaleCompleted = "completed"
	SaleCancelled = "cancelled"

	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentEWallet  = "ewallet"
)

// Sale is immutable once completed except for the cancellation fields.
// Total always equals Subtotal - Discount + Tax.
// DeviceID is empty for sales rung up on this installation and holds the
// pushing device for sales received through sync.
type Sale struct {
	ID             uuid.UUID       `gorm:"type:varchar(36);primaryKey"`
	DeviceID       string          `gorm:"not null;default:'';uniqueIndex:idx_sales_device_invoice,priority:1"`
	InvoiceNumber  string          `gorm:"not null;uniqueIndex:idx_sales_device_invoice,priority:2"`
	UserID         uuid.UUID       `gorm:"type:varchar(36);not null;index"`
	CustomerID     *uuid.UUID      `gorm:"type:varchar(36);index"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Discount       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TaxRate        decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	Tax            decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PaymentMethod  string          `gorm:"not null"`
	AmountReceived decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Change         decimal.Decimal `gorm:"column:change_amount;type:numeric(14,2);not null;default:0"`
	Status         string          `gorm:"not null;default:'completed';index"`
	Notes          *string
	CancelledAt    *time.Time
	CancelledBy    *uuid.UUID `gorm:"type:varchar(36)"`
	CancelReason   *string
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time

	Items    []SaleItem `gorm:"foreignKey:SaleID"`
	User     *User      `gorm:"foreignKey:UserID"`
	Customer *Customer  `gorm:"foreignKey:CustomerID"`
}

func (Sale) TableName() string { return "sales" }

// SaleItem snapshots the product at sale time; later catalog edits never
// touch these values.
type SaleItem struct {
	ID            uuid.UUID  `gorm:"type:varchar(36);primaryKey"`
	SaleID        uuid.UUID  `gorm:"type:varchar(36);not null;index"`
	ProductID     uuid.UUID  `gorm:"type:varchar(36);not null;index"`
	VariantID     *uuid.UUID `gorm:"type:varchar(36)"`
	ProductName   string     `gorm:"not null"`
	VariantLabel  *string
	Quantity      int             `gorm:"not null"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
}

func (SaleItem) TableName() string { return "sale_items" }
