package dto

import "github.com/shopspring/decimal"

type CustomerRequest struct {
	Name    string  `json:"name"    validate:"required,min=2,max=160"`
	Phone   *string `json:"phone"   validate:"omitempty,max=40"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	TaxID   *string `json:"tax_id"  validate:"omitempty,max=40"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type CustomerResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	TaxID   *string `json:"tax_id,omitempty"`
	Address *string `json:"address,omitempty"`
	Notes   *string `json:"notes,omitempty"`
	Active  bool    `json:"active"`
}

type ExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"       validate:"gt=0"`
	Category    string          `json:"category"     validate:"required,max=60"`
	Description string          `json:"description"  validate:"max=500"`
	PaidInCash  *bool           `json:"paid_in_cash"`
	SpentOn     string          `json:"spent_on"     validate:"omitempty,datetime=2006-01-02"`
}

type ExpenseResponse struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	PaidInCash  bool            `json:"paid_in_cash"`
	SpentOn     string          `json:"spent_on"`
	UserID      string          `json:"user_id"`
}
