package model

import "time"

const (
	SettingStoreName      = "store_name"
	SettingTaxRate        = "tax_rate"
	SettingCurrency       = "currency"
	SettingReceiptFooter  = "receipt_footer"
	SettingLowStockAlerts = "low_stock_alerts"
)

// Setting is a key/value store for shop-wide options.
type Setting struct {
	Key       string `gorm:"column:name;primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (Setting) TableName() string { return "settings" }
