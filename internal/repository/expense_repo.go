package repository

import (
	"context"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExpenseRepository interface {
	CreateTx(tx *gorm.DB, e *model.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	UpsertTx(tx *gorm.DB, e *model.Expense) error
	// List returns expenses spent in [from, to] (YYYY-MM-DD, inclusive).
	List(ctx context.Context, from, to string) ([]model.Expense, error)
	DB() *gorm.DB
}

type expenseRepo struct{ db *gorm.DB }

func NewExpenseRepository(db *gorm.DB) ExpenseRepository { return &expenseRepo{db: db} }

func (r *expenseRepo) DB() *gorm.DB { return r.db }

func (r *expenseRepo) CreateTx(tx *gorm.DB, e *model.Expense) error {
	return tx.Create(e).Error
}

func (r *expenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var e model.Expense
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	return &e, err
}

func (r *expenseRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Where("id = ?", id).Delete(&model.Expense{}).Error
}

func (r *expenseRepo) List(ctx context.Context, from, to string) ([]model.Expense, error) {
	var out []model.Expense
	q := r.db.WithContext(ctx)
	if from != "" {
		q = q.Where("spent_on >= ?", from)
	}
	if to != "" {
		q = q.Where("spent_on <= ?", to)
	}
	err := q.Order("spent_on DESC, created_at DESC").Find(&out).Error
	return out, err
}

func (r *expenseRepo) UpsertTx(tx *gorm.DB, e *model.Expense) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(e).Error
}
