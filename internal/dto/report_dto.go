package dto

import "github.com/shopspring/decimal"

type ReportRange struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to"   validate:"required,datetime=2006-01-02"`
}

// DateFilter is an optional inclusive day range for list endpoints.
type DateFilter struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   validate:"omitempty,datetime=2006-01-02"`
}

type DailySales struct {
	Date    string          `json:"date"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

type TopProduct struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type SalesStatsResponse struct {
	From            string                     `json:"from"`
	To              string                     `json:"to"`
	SalesCount      int                        `json:"sales_count"`
	CancelledCount  int                        `json:"cancelled_count"`
	Revenue         decimal.Decimal            `json:"revenue"`
	Discounts       decimal.Decimal            `json:"discounts"`
	Tax             decimal.Decimal            `json:"tax"`
	CostOfGoods     decimal.Decimal            `json:"cost_of_goods"`
	GrossProfit     decimal.Decimal            `json:"gross_profit"`
	AverageTicket   decimal.Decimal            `json:"average_ticket"`
	ByPaymentMethod map[string]decimal.Decimal `json:"by_payment_method"`
	Daily           []DailySales               `json:"daily"`
	TopProducts     []TopProduct               `json:"top_products"`
	Expenses        decimal.Decimal            `json:"expenses"`
	NetProfit       decimal.Decimal            `json:"net_profit"`
}

type ExportRequest struct {
	Kind   string `json:"kind"   validate:"required,oneof=sales products"`
	Format string `json:"format" validate:"required,oneof=csv xlsx"`
	From   string `json:"from"   validate:"omitempty,datetime=2006-01-02"`
	To     string `json:"to"     validate:"omitempty,datetime=2006-01-02"`
	Email  string `json:"email"  validate:"omitempty,email"`
}

type ExportFile struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
}
