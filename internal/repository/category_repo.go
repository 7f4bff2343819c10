package repository

import (
	"context"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	List(ctx context.Context, includeInactive bool) ([]model.Category, error)
	Update(ctx context.Context, c *model.Category) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	SaveTx(tx *gorm.DB, c *model.Category) error
	UpsertTx(tx *gorm.DB, c *model.Category) error
}

type categoryRepo struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository { return &categoryRepo{db: db} }

func (r *categoryRepo) Create(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *categoryRepo) List(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	var cats []model.Category
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	err := q.Order("name ASC").Find(&cats).Error
	return cats, err
}

func (r *categoryRepo) Update(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoryRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Update("active", active).Error
}

func (r *categoryRepo) SaveTx(tx *gorm.DB, c *model.Category) error {
	return tx.Save(c).Error
}

// UpsertTx inserts or overwrites the row with the same id.
func (r *categoryRepo) UpsertTx(tx *gorm.DB, c *model.Category) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(c).Error
}
