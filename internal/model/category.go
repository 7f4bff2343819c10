package model

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies products.
type Category struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description *string
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Category) TableName() string { return "categories" }
