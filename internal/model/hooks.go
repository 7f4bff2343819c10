package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Primary keys are generated client-side so rows created offline keep their
// identity when pushed to the remote service.

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *Product) BeforeCreate(*gorm.DB) error          { assignID(&m.ID); return nil }
func (m *ProductVariant) BeforeCreate(*gorm.DB) error   { assignID(&m.ID); return nil }
func (m *Category) BeforeCreate(*gorm.DB) error         { assignID(&m.ID); return nil }
func (m *Supplier) BeforeCreate(*gorm.DB) error         { assignID(&m.ID); return nil }
func (m *PriceChange) BeforeCreate(*gorm.DB) error      { assignID(&m.ID); return nil }
func (m *CartItem) BeforeCreate(*gorm.DB) error         { assignID(&m.ID); return nil }
func (m *Sale) BeforeCreate(*gorm.DB) error             { assignID(&m.ID); return nil }
func (m *SaleItem) BeforeCreate(*gorm.DB) error         { assignID(&m.ID); return nil }
func (m *StockMovement) BeforeCreate(*gorm.DB) error    { assignID(&m.ID); return nil }
func (m *User) BeforeCreate(*gorm.DB) error             { assignID(&m.ID); return nil }
func (m *SyncQueueEntry) BeforeCreate(*gorm.DB) error   { assignID(&m.ID); return nil }
func (m *Customer) BeforeCreate(*gorm.DB) error         { assignID(&m.ID); return nil }
func (m *Expense) BeforeCreate(*gorm.DB) error          { assignID(&m.ID); return nil }
func (m *DailyCashSummary) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *Notification) BeforeCreate(*gorm.DB) error     { assignID(&m.ID); return nil }
