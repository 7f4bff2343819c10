package repository

import (
	"context"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, filter dto.NotificationFilter) ([]model.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) error
	UnreadCount(ctx context.Context) (int64, error)
}

type notificationRepo struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) List(ctx context.Context, filter dto.NotificationFilter) ([]model.Notification, error) {
	var out []model.Notification
	q := r.db.WithContext(ctx)
	if filter.Channel != "" {
		q = q.Where("channel = ?", filter.Channel)
	}
	if filter.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).Where("is_read = ?", false).Update("is_read", true).Error
}

func (r *notificationRepo) UnreadCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).Where("is_read = ?", false).Count(&n).Error
	return n, err
}
