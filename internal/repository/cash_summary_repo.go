package repository

import (
	"context"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashSummaryRepository maintains one DailyCashSummary row per business day.
// Sales and expenses adjust the running totals inside their own transaction.
type CashSummaryRepository interface {
	FindByDate(ctx context.Context, date string) (*model.DailyCashSummary, error)
	List(ctx context.Context, from, to string) ([]model.DailyCashSummary, error)
	GetOrCreateTx(tx *gorm.DB, date string) (*model.DailyCashSummary, error)
	AddSaleTx(tx *gorm.DB, date string, amount decimal.Decimal, cash bool, count int) error
	AddExpenseTx(tx *gorm.DB, date string, amount decimal.Decimal) error
	SaveTx(tx *gorm.DB, s *model.DailyCashSummary) error
	DB() *gorm.DB
}

type cashSummaryRepo struct{ db *gorm.DB }

func NewCashSummaryRepository(db *gorm.DB) CashSummaryRepository { return &cashSummaryRepo{db: db} }

func (r *cashSummaryRepo) DB() *gorm.DB { return r.db }

func (r *cashSummaryRepo) FindByDate(ctx context.Context, date string) (*model.DailyCashSummary, error) {
	var s model.DailyCashSummary
	err := r.db.WithContext(ctx).Where("business_date = ?", date).First(&s).Error
	return &s, err
}

func (r *cashSummaryRepo) List(ctx context.Context, from, to string) ([]model.DailyCashSummary, error) {
	var out []model.DailyCashSummary
	err := r.db.WithContext(ctx).
		Where("business_date >= ? AND business_date <= ?", from, to).
		Order("business_date ASC").Find(&out).Error
	return out, err
}

func (r *cashSummaryRepo) GetOrCreateTx(tx *gorm.DB, date string) (*model.DailyCashSummary, error) {
	var s model.DailyCashSummary
	err := tx.Where("business_date = ?", date).
		Attrs(model.DailyCashSummary{Date: date}).
		FirstOrCreate(&s).Error
	return &s, err
}

// AddSaleTx adds amount to the day's cash or non-cash sales. Cancellations
// pass a negative amount and count.
func (r *cashSummaryRepo) AddSaleTx(tx *gorm.DB, date string, amount decimal.Decimal, cash bool, count int) error {
	s, err := r.GetOrCreateTx(tx, date)
	if err != nil {
		return err
	}
	col := "non_cash_sales"
	if cash {
		col = "cash_sales"
	}
	return tx.Model(&model.DailyCashSummary{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		col:           gorm.Expr(col+" + ?", amount),
		"sales_count": gorm.Expr("sales_count + ?", count),
	}).Error
}

func (r *cashSummaryRepo) AddExpenseTx(tx *gorm.DB, date string, amount decimal.Decimal) error {
	s, err := r.GetOrCreateTx(tx, date)
	if err != nil {
		return err
	}
	return tx.Model(&model.DailyCashSummary{}).Where("id = ?", s.ID).
		Update("cash_expenses", gorm.Expr("cash_expenses + ?", amount)).Error
}

func (r *cashSummaryRepo) SaveTx(tx *gorm.DB, s *model.DailyCashSummary) error {
	return tx.Save(s).Error
}
