package repository

import (
	"context"
	"strings"

	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	Search(ctx context.Context, query string, limit int) ([]model.Customer, error)
	Update(ctx context.Context, c *model.Customer) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	SaveTx(tx *gorm.DB, c *model.Customer) error
	UpsertTx(tx *gorm.DB, c *model.Customer) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *customerRepo) Search(ctx context.Context, query string, limit int) ([]model.Customer, error) {
	var out []model.Customer
	q := r.db.WithContext(ctx).Where("active = ?", true)
	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR phone = ? OR tax_id = ?", like, query, query)
	}
	err := q.Order("name ASC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *customerRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", id).Update("active", active).Error
}

func (r *customerRepo) SaveTx(tx *gorm.DB, c *model.Customer) error {
	return tx.Save(c).Error
}

// UpsertTx inserts or overwrites the row with the same id.
func (r *customerRepo) UpsertTx(tx *gorm.DB, c *model.Customer) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(c).Error
}
