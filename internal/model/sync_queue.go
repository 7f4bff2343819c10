package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	SyncCreate = "create"
	SyncUpdate = "update"
	SyncDelete = "delete"

	EntityProduct  = "product"
	EntityVariant  = "variant"
	EntityCategory = "category"
	EntitySupplier = "supplier"
	EntityCustomer = "customer"
	EntitySale     = "sale"
	EntityExpense  = "expense"
)

// SyncQueueEntry is a local mutation waiting to be pushed to the remote
// service. Payload is the JSON snapshot of the entity at enqueue time.
type SyncQueueEntry struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	EntityType string    `gorm:"not null;index"`
	EntityID   uuid.UUID `gorm:"type:varchar(36);not null"`
	Operation  string    `gorm:"not null"`
	Payload    string    `gorm:"type:text;not null"`
	Status     string    `gorm:"not null;default:'pending';index"`
	RetryCount int       `gorm:"not null;default:0"`
	LastError  *string
	SyncedAt   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (SyncQueueEntry) TableName() string { return "sync_queue" }
