package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a pre-sale line owned by one user. A line never holds a
// quantity below one; setting it to zero removes the row.
type CartItem struct {
	ID        uuid.UUID  `gorm:"type:varchar(36);primaryKey"`
	UserID    uuid.UUID  `gorm:"type:varchar(36);not null;index"`
	ProductID uuid.UUID  `gorm:"type:varchar(36);not null"`
	VariantID *uuid.UUID `gorm:"type:varchar(36)"`
	Quantity  int        `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Product *Product        `gorm:"foreignKey:ProductID"`
	Variant *ProductVariant `gorm:"foreignKey:VariantID"`
}

func (CartItem) TableName() string { return "cart_items" }
