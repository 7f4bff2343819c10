package dto

import "github.com/shopspring/decimal"

type OpenDayRequest struct {
	OpeningCash decimal.Decimal `json:"opening_cash" validate:"min=0"`
}

type CloseDayRequest struct {
	CountedCash decimal.Decimal `json:"counted_cash" validate:"min=0"`
}

type DailySummaryResponse struct {
	Date         string           `json:"date"`
	OpeningCash  decimal.Decimal  `json:"opening_cash"`
	CashSales    decimal.Decimal  `json:"cash_sales"`
	NonCashSales decimal.Decimal  `json:"non_cash_sales"`
	CashExpenses decimal.Decimal  `json:"cash_expenses"`
	SalesCount   int              `json:"sales_count"`
	ExpectedCash decimal.Decimal  `json:"expected_cash"`
	ClosingCount *decimal.Decimal `json:"closing_count,omitempty"`
	Difference   *decimal.Decimal `json:"difference,omitempty"`
	Closed       bool             `json:"closed"`
}
