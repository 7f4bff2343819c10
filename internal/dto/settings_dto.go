package dto

import "github.com/shopspring/decimal"

type SettingsResponse struct {
	StoreName      string          `json:"store_name"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	Currency       string          `json:"currency"`
	ReceiptFooter  string          `json:"receipt_footer"`
	LowStockAlerts bool            `json:"low_stock_alerts"`
}

type UpdateSettingsRequest struct {
	StoreName      *string          `json:"store_name"     validate:"omitempty,min=1,max=120"`
	TaxRate        *decimal.Decimal `json:"tax_rate"`
	Currency       *string          `json:"currency"       validate:"omitempty,len=3"`
	ReceiptFooter  *string          `json:"receipt_footer" validate:"omitempty,max=200"`
	LowStockAlerts *bool            `json:"low_stock_alerts"`
}
