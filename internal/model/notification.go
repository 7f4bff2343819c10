package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChannelStockAlerts = "stock_alerts"
	ChannelSyncStatus  = "sync_status"
	ChannelSales       = "sales"
	ChannelGeneral     = "general"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	Channel   string    `gorm:"not null;index"`
	Title     string    `gorm:"not null"`
	Message   string    `gorm:"not null"`
	Read      bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt time.Time
}

func (Notification) TableName() string { return "notifications" }
