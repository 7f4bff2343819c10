package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ─── Wire format shared by the device client and the remote service ─────────

type SyncEntry struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Operation  string          `json:"operation"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  string          `json:"created_at"`
}

type SyncPushRequest struct {
	DeviceID string      `json:"device_id" validate:"required,max=64"`
	Entries  []SyncEntry `json:"entries" validate:"required,dive"`
}

type SyncRejection struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type SyncPushResponse struct {
	Accepted []string        `json:"accepted"`
	Rejected []SyncRejection `json:"rejected"`
}

// ProductPayload is the product snapshot carried in sync entries and
// returned by pull.
type ProductPayload struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Barcode     *string          `json:"barcode,omitempty"`
	Identifier  *string          `json:"identifier,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	Cost        decimal.Decimal  `json:"cost"`
	Stock       int              `json:"stock"`
	MinStock    int              `json:"min_stock"`
	Unit        string           `json:"unit"`
	CategoryID  *string          `json:"category_id,omitempty"`
	SupplierID  *string          `json:"supplier_id,omitempty"`
	Active      bool             `json:"active"`
	UpdatedAt   string           `json:"updated_at"`
	Variants    []VariantPayload `json:"variants,omitempty"`
}

type VariantPayload struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Type       string          `json:"type"`
	Label      string          `json:"label"`
	Value      string          `json:"value"`
	Barcode    *string         `json:"barcode,omitempty"`
	Stock      int             `json:"stock"`
	PriceDelta decimal.Decimal `json:"price_delta"`
	Active     bool            `json:"active"`
}

type SyncPullResponse struct {
	Products   []ProductPayload `json:"products"`
	ServerTime string           `json:"server_time"`
}

// ─── Device-side status ──────────────────────────────────────────────────────

type SyncStatusResponse struct {
	Pending    int64   `json:"pending"`
	Failed     int64   `json:"failed"`
	LastSyncAt *string `json:"last_sync_at,omitempty"`
	RemoteURL  string  `json:"remote_url"`
	Breaker    string  `json:"breaker"`
}

type SyncResultResponse struct {
	Pushed   int `json:"pushed"`
	Failed   int `json:"failed"`
	Retrying int `json:"retrying"`
	Pulled   int `json:"pulled"`
}

type RemoteConfigRequest struct {
	BaseURL string `json:"base_url" validate:"required,url"`
}
