package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyCashSummary aggregates one business day of the till.
// ExpectedCash = OpeningCash + CashSales - CashExpenses.
type DailyCashSummary struct {
	ID           uuid.UUID        `gorm:"type:varchar(36);primaryKey"`
	Date         string           `gorm:"column:business_date;type:varchar(10);uniqueIndex;not null"` // YYYY-MM-DD
	OpeningCash  decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0"`
	CashSales    decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0"`
	NonCashSales decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0"`
	CashExpenses decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0"`
	SalesCount   int              `gorm:"not null;default:0"`
	ClosingCount *decimal.Decimal `gorm:"type:numeric(14,2)"`
	Difference   *decimal.Decimal `gorm:"type:numeric(14,2)"`
	ClosedAt     *time.Time
	ClosedBy     *uuid.UUID `gorm:"type:varchar(36)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (DailyCashSummary) TableName() string { return "daily_cash_summaries" }

func (d *DailyCashSummary) ExpectedCash() decimal.Decimal {
	return d.OpeningCash.Add(d.CashSales).Sub(d.CashExpenses)
}
