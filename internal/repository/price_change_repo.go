package repository

import (
	"context"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PriceChangeRepository interface {
	CreateTx(tx *gorm.DB, pc *model.PriceChange) error
	ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.PriceChange, error)
}

type priceChangeRepo struct{ db *gorm.DB }

func NewPriceChangeRepository(db *gorm.DB) PriceChangeRepository { return &priceChangeRepo{db: db} }

func (r *priceChangeRepo) CreateTx(tx *gorm.DB, pc *model.PriceChange) error {
	return tx.Create(pc).Error
}

func (r *priceChangeRepo) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.PriceChange, error) {
	var out []model.PriceChange
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
