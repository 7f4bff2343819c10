package repository

import (
	"context"
	"strings"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	FindByIdentifier(ctx context.Context, identifier string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	LowStock(ctx context.Context) ([]model.Product, error)
	UpdatedSince(ctx context.Context, since time.Time, limit int) ([]model.Product, error)
	MarkSyncStatus(ctx context.Context, ids []uuid.UUID, status string) error

	// Used inside transactions; callers must pass the tx instance
	CreateTx(tx *gorm.DB, p *model.Product) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	UpdateTx(tx *gorm.DB, p *model.Product) error
	SetStockTx(tx *gorm.DB, id uuid.UUID, stock int) error
	UpsertTx(tx *gorm.DB, p *model.Product) error
	ReplaceTx(tx *gorm.DB, p *model.Product) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Create(p).Error
}

func activeVariants(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true).Order("label ASC")
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Variants", activeVariants).Where("id = ?", id).First(&p).Error
	return &p, err
}

// FindByIDTx reads the row inside tx; on postgres the row is locked until
// the transaction ends.
func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Variants", activeVariants).
		Where("barcode = ? AND active = ?", barcode, true).First(&p).Error
	return &p, err
}

func (r *productRepo) FindByIdentifier(ctx context.Context, identifier string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Variants", activeVariants).
		Where("identifier = ? AND active = ?", identifier, true).First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	// Active filter: "false" = inactive, "all" = both, anything else = active (default)
	switch filter.Active {
	case "false":
		q = q.Where("active = ?", false)
	case "all":
	default:
		q = q.Where("active = ?", true)
	}

	if filter.Barcode != "" {
		q = q.Where("barcode = ?", filter.Barcode)
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR barcode = ? OR identifier = ?", like, filter.Query, filter.Query)
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.SupplierID != "" {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.LowStock {
		q = q.Where("stock <= min_stock")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Variants", activeVariants).
		Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

// LowStock returns active products at or below their minimum, including
// products that only have a variant running low.
func (r *productRepo) LowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Variants", activeVariants).
		Where("active = ?", true).
		Where("stock <= min_stock OR id IN (?)",
			r.db.Model(&model.ProductVariant{}).Select("product_id").
				Where("active = ? AND stock <= ?", true, 0)).
		Order("stock ASC, name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) UpdatedSince(ctx context.Context, since time.Time, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Variants").
		Where("updated_at > ?", since).
		Order("updated_at ASC").Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) MarkSyncStatus(ctx context.Context, ids []uuid.UUID, status string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id IN ?", ids).
		UpdateColumn("sync_status", status).Error
}

func (r *productRepo) UpdateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Omit(clause.Associations).Save(p).Error
}

func (r *productRepo) SetStockTx(tx *gorm.DB, id uuid.UUID, stock int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"stock":       stock,
		"sync_status": model.SyncStatusPending,
	}).Error
}

// UpsertTx writes a product received from another device or the remote
// service, keeping whichever copy was updated last.
func (r *productRepo) UpsertTx(tx *gorm.DB, p *model.Product) error {
	var existing model.Product
	err := tx.Where("id = ?", p.ID).First(&existing).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		return tx.Omit(clause.Associations).Create(p).Error
	case err != nil:
		return err
	case existing.UpdatedAt.After(p.UpdatedAt):
		return nil
	}
	return tx.Omit(clause.Associations).Save(p).Error
}

// ReplaceTx writes p as given, overwriting any local row with the same id.
func (r *productRepo) ReplaceTx(tx *gorm.DB, p *model.Product) error {
	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error
}
