package service

import (
	"context"
	"strconv"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/infra"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"

	"github.com/shopspring/decimal"
)

type SettingsService interface {
	Get(ctx context.Context) (*dto.SettingsResponse, error)
	Update(ctx context.Context, req dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
	TaxRate(ctx context.Context) (decimal.Decimal, error)
	ReceiptHeader(ctx context.Context) (infra.ReceiptHeader, error)
}

type settingsService struct {
	repo repository.SettingRepository
}

func NewSettingsService(repo repository.SettingRepository) SettingsService {
	return &settingsService{repo: repo}
}

func settingsFromMap(m map[string]string) *dto.SettingsResponse {
	rate, err := decimal.NewFromString(m[model.SettingTaxRate])
	if err != nil {
		rate = decimal.Zero
	}
	alerts, err := strconv.ParseBool(m[model.SettingLowStockAlerts])
	if err != nil {
		alerts = true
	}
	currency := m[model.SettingCurrency]
	if currency == "" {
		currency = "PYG"
	}
	return &dto.SettingsResponse{
		StoreName:      m[model.SettingStoreName],
		TaxRate:        rate,
		Currency:       currency,
		ReceiptFooter:  m[model.SettingReceiptFooter],
		LowStockAlerts: alerts,
	}
}

func (s *settingsService) Get(ctx context.Context) (*dto.SettingsResponse, error) {
	m, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	return settingsFromMap(m), nil
}

func (s *settingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	values := map[string]string{}
	if req.StoreName != nil {
		values[model.SettingStoreName] = *req.StoreName
	}
	if req.TaxRate != nil {
		if req.TaxRate.IsNegative() || req.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, ErrInvalidTaxRate
		}
		values[model.SettingTaxRate] = req.TaxRate.String()
	}
	if req.Currency != nil {
		values[model.SettingCurrency] = *req.Currency
	}
	if req.ReceiptFooter != nil {
		values[model.SettingReceiptFooter] = *req.ReceiptFooter
	}
	if req.LowStockAlerts != nil {
		values[model.SettingLowStockAlerts] = strconv.FormatBool(*req.LowStockAlerts)
	}
	if err := s.repo.Set(ctx, values); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

func (s *settingsService) TaxRate(ctx context.Context) (decimal.Decimal, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return st.TaxRate, nil
}

func (s *settingsService) ReceiptHeader(ctx context.Context) (infra.ReceiptHeader, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return infra.ReceiptHeader{}, err
	}
	return infra.ReceiptHeader{StoreName: st.StoreName, Currency: st.Currency, Footer: st.ReceiptFooter}, nil
}
