package repository

import (
	"context"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SupplierRepository interface {
	Create(ctx context.Context, s *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, includeInactive bool) ([]model.Supplier, error)
	Update(ctx context.Context, s *model.Supplier) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	CountProducts(ctx context.Context, id uuid.UUID) (int64, error)

	SaveTx(tx *gorm.DB, s *model.Supplier) error
	UpsertTx(tx *gorm.DB, s *model.Supplier) error
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *supplierRepo) List(ctx context.Context, includeInactive bool) ([]model.Supplier, error) {
	var out []model.Supplier
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	err := q.Order("name ASC").Find(&out).Error
	return out, err
}

func (r *supplierRepo) Update(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *supplierRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.Supplier{}).Where("id = ?", id).Update("active", active).Error
}

func (r *supplierRepo) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("supplier_id = ? AND active = ?", id, true).Count(&n).Error
	return n, err
}

func (r *supplierRepo) SaveTx(tx *gorm.DB, s *model.Supplier) error {
	return tx.Save(s).Error
}

// UpsertTx inserts or overwrites the row with the same id.
func (r *supplierRepo) UpsertTx(tx *gorm.DB, s *model.Supplier) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(s).Error
}
