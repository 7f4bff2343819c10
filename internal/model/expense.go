package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is money paid out of the till (rent, supplies, ...).
type Expense struct {
	ID          uuid.UUID       `gorm:"type:varchar(36);primaryKey"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Category    string          `gorm:"not null"`
	Description string
	PaidInCash  bool      `gorm:"not null;default:true"`
	SpentOn     string    `gorm:"type:varchar(10);not null;index"` // YYYY-MM-DD
	UserID      uuid.UUID `gorm:"type:varchar(36);not null"`
	CreatedAt   time.Time
}

func (Expense) TableName() string { return "expenses" }
