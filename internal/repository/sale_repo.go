package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	ExistsTx(tx *gorm.DB, id uuid.UUID) (bool, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error)
	NextInvoiceNumberTx(tx *gorm.DB, at time.Time) (string, error)
	UpdateCancellationTx(tx *gorm.DB, s *model.Sale) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Omit("User", "Customer").Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *saleRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := tx.Preload("Items").Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *saleRepo) ExistsTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.Sale{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// dayBounds turns inclusive YYYY-MM-DD dates into a half-open UTC range.
func dayBounds(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return start, end, fmt.Errorf("invalid from date: %w", err)
		}
		start = t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return start, end, fmt.Errorf("invalid to date: %w", err)
		}
		end = t.AddDate(0, 0, 1)
	}
	return start, end, nil
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	start, end, err := dayBounds(filter.From, filter.To)
	if err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if !start.IsZero() {
		q = q.Where("created_at >= ?", start)
	}
	if !end.IsZero() {
		q = q.Where("created_at < ?", end)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err = q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}

// ListBetween returns every sale (any status) created in [from, to).
func (r *saleRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Preload("Items").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

// NextInvoiceNumberTx returns INV-YYYYMMDD-NNNN, numbering from 1 each day.
// Only local sales count; pushed sales keep their device's own sequence.
// It must run in the same transaction that inserts the sale.
func (r *saleRepo) NextInvoiceNumberTx(tx *gorm.DB, at time.Time) (string, error) {
	prefix := "INV-" + at.UTC().Format("20060102") + "-"
	var last string
	err := tx.Model(&model.Sale{}).
		Where("device_id = ? AND invoice_number LIKE ?", "", prefix+"%").
		Order("invoice_number DESC").Limit(1).
		Pluck("invoice_number", &last).Error
	if err != nil {
		return "", err
	}
	seq := 1
	if last != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("malformed invoice number %q", last)
		}
		seq = n + 1
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func (r *saleRepo) UpdateCancellationTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Model(&model.Sale{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"status":        s.Status,
		"cancelled_at":  s.CancelledAt,
		"cancelled_by":  s.CancelledBy,
		"cancel_reason": s.CancelReason,
	}).Error
}
