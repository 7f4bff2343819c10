package repository

import (
	"context"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CartItem, error)
	FindLine(ctx context.Context, userID, productID uuid.UUID, variantID *uuid.UUID) (*model.CartItem, error)
	Create(ctx context.Context, item *model.CartItem) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, qty int) error
	Delete(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error

	ListByUserTx(tx *gorm.DB, userID uuid.UUID) ([]model.CartItem, error)
	ClearTx(tx *gorm.DB, userID uuid.UUID) error
}

type cartRepo struct{ db *gorm.DB }

func NewCartRepository(db *gorm.DB) CartRepository { return &cartRepo{db: db} }

func cartQuery(db *gorm.DB, userID uuid.UUID) *gorm.DB {
	return db.Preload("Product").Preload("Variant").
		Where("user_id = ?", userID).Order("created_at ASC")
}

func (r *cartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	var items []model.CartItem
	err := cartQuery(r.db.WithContext(ctx), userID).Find(&items).Error
	return items, err
}

func (r *cartRepo) ListByUserTx(tx *gorm.DB, userID uuid.UUID) ([]model.CartItem, error) {
	var items []model.CartItem
	err := cartQuery(tx, userID).Find(&items).Error
	return items, err
}

func (r *cartRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).Preload("Product").Preload("Variant").Where("id = ?", id).First(&item).Error
	return &item, err
}

// FindLine returns the line for a product (and variant) so that adding the
// same item twice increments quantity instead of duplicating the row.
func (r *cartRepo) FindLine(ctx context.Context, userID, productID uuid.UUID, variantID *uuid.UUID) (*model.CartItem, error) {
	var item model.CartItem
	q := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID)
	if variantID == nil {
		q = q.Where("variant_id IS NULL")
	} else {
		q = q.Where("variant_id = ?", *variantID)
	}
	err := q.First(&item).Error
	return &item, err
}

func (r *cartRepo) Create(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Omit("Product", "Variant").Create(item).Error
}

func (r *cartRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).Model(&model.CartItem{}).Where("id = ?", id).Update("quantity", qty).Error
}

func (r *cartRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.CartItem{}).Error
}

func (r *cartRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.ClearTx(r.db.WithContext(ctx), userID)
}

func (r *cartRepo) ClearTx(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error
}
