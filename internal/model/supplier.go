package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier represents a vendor products are bought from.
type Supplier struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null"`
	ContactName *string
	Phone       *string
	Email       *string
	Address     *string
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Supplier) TableName() string { return "suppliers" }
