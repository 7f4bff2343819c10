package repository

import (
	"context"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VariantRepository interface {
	Create(ctx context.Context, v *model.ProductVariant) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.ProductVariant, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error)
	Update(ctx context.Context, v *model.ProductVariant) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	CreateTx(tx *gorm.DB, v *model.ProductVariant) error
	UpdateTx(tx *gorm.DB, v *model.ProductVariant) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.ProductVariant, error)
	SetStockTx(tx *gorm.DB, id uuid.UUID, stock int) error
	UpsertTx(tx *gorm.DB, v *model.ProductVariant) error
}

type variantRepo struct{ db *gorm.DB }

func NewVariantRepository(db *gorm.DB) VariantRepository { return &variantRepo{db: db} }

func (r *variantRepo) Create(ctx context.Context, v *model.ProductVariant) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *variantRepo) CreateTx(tx *gorm.DB, v *model.ProductVariant) error {
	return tx.Create(v).Error
}

func (r *variantRepo) UpdateTx(tx *gorm.DB, v *model.ProductVariant) error {
	return tx.Save(v).Error
}

func (r *variantRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *variantRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.ProductVariant, error) {
	var v model.ProductVariant
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *variantRepo) FindByBarcode(ctx context.Context, barcode string) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).Where("barcode = ? AND active = ?", barcode, true).First(&v).Error
	return &v, err
}

func (r *variantRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error) {
	var vs []model.ProductVariant
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("label ASC").Find(&vs).Error
	return vs, err
}

func (r *variantRepo) Update(ctx context.Context, v *model.ProductVariant) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *variantRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.ProductVariant{}).Where("id = ?", id).Update("active", active).Error
}

func (r *variantRepo) SetStockTx(tx *gorm.DB, id uuid.UUID, stock int) error {
	return tx.Model(&model.ProductVariant{}).Where("id = ?", id).Update("stock", stock).Error
}

func (r *variantRepo) UpsertTx(tx *gorm.DB, v *model.ProductVariant) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(v).Error
}
