package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNoStockChange = errors.New("adjustment does not change the stock")

type InventoryService interface {
	Adjust(ctx context.Context, sess session.Session, productID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockMovementResponse, error)
	Receive(ctx context.Context, sess session.Session, productID uuid.UUID, req dto.ReceiveStockRequest) (*dto.StockMovementResponse, error)
	Movements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
	LowStock(ctx context.Context) ([]dto.LowStockItem, error)
	// ScanLowStock raises one stock alert listing every low item. It is the
	// body of the periodic low-stock job.
	ScanLowStock(ctx context.Context) (int, error)
}

// stockRepos is what a stock change touches.
type stockRepos struct {
	products  repository.ProductRepository
	variants  repository.VariantRepository
	movements repository.StockMovementRepository
	syncQueue repository.SyncQueueRepository
}

// moveStock applies delta to a product, or to one of its variants, inside
// tx and appends the ledger row. Stock never goes below zero: outgoing
// quantities are clamped and the movement records the change actually made.
// crossed reports that the item reached its low-stock threshold with this change.
func moveStock(tx *gorm.DB, r stockRepos, sess session.Session, productID uuid.UUID, variantID *uuid.UUID, delta int, kind, reason string, ref *uuid.UUID) (mov *model.StockMovement, crossed bool, err error) {
	var userID *uuid.UUID
	if sess.UserID != uuid.Nil {
		id := sess.UserID
		userID = &id
	}

	if variantID != nil {
		v, err := r.variants.FindByIDTx(tx, *variantID)
		if err != nil {
			return nil, false, notFound(err)
		}
		prev := v.Stock
		next := max(prev+delta, 0)
		if err := r.variants.SetStockTx(tx, v.ID, next); err != nil {
			return nil, false, err
		}
		v.Stock = next
		mov = &model.StockMovement{
			ProductID: productID, VariantID: variantID, Type: kind,
			Quantity: next - prev, PreviousStock: prev, NewStock: next,
			Reason: reason, ReferenceID: ref, UserID: userID,
		}
		if err := r.movements.CreateTx(tx, mov); err != nil {
			return nil, false, err
		}
		if err := enqueueSync(tx, r.syncQueue, model.EntityVariant, v.ID, model.SyncUpdate, variantPayload(v)); err != nil {
			return nil, false, err
		}
		return mov, prev > 0 && next == 0, nil
	}

	p, err := r.products.FindByIDTx(tx, productID)
	if err != nil {
		return nil, false, notFound(err)
	}
	prev := p.Stock
	next := max(prev+delta, 0)
	if err := r.products.SetStockTx(tx, p.ID, next); err != nil {
		return nil, false, err
	}
	p.Stock = next
	p.SyncStatus = model.SyncStatusPending
	mov = &model.StockMovement{
		ProductID: productID, Type: kind,
		Quantity: next - prev, PreviousStock: prev, NewStock: next,
		Reason: reason, ReferenceID: ref, UserID: userID,
	}
	if err := r.movements.CreateTx(tx, mov); err != nil {
		return nil, false, err
	}
	if err := enqueueSync(tx, r.syncQueue, model.EntityProduct, p.ID, model.SyncUpdate, productPayload(p)); err != nil {
		return nil, false, err
	}
	return mov, prev > p.MinStock && next <= p.MinStock, nil
}

type inventoryService struct {
	stockRepos
	priceRepo     repository.PriceChangeRepository
	settings      SettingsService
	notifications NotificationService
}

func NewInventoryService(
	products repository.ProductRepository,
	variants repository.VariantRepository,
	movements repository.StockMovementRepository,
	syncQueue repository.SyncQueueRepository,
	priceRepo repository.PriceChangeRepository,
	settings SettingsService,
	notifications NotificationService,
) InventoryService {
	return &inventoryService{
		stockRepos:    stockRepos{products: products, variants: variants, movements: movements, syncQueue: syncQueue},
		priceRepo:     priceRepo,
		settings:      settings,
		notifications: notifications,
	}
}

func movementToResponse(m *model.StockMovement) *dto.StockMovementResponse {
	resp := &dto.StockMovementResponse{
		ID:            m.ID.String(),
		ProductID:     m.ProductID.String(),
		VariantID:     uuidString(m.VariantID),
		Type:          m.Type,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Reason:        m.Reason,
		ReferenceID:   uuidString(m.ReferenceID),
		CreatedAt:     formatTime(m.CreatedAt),
	}
	if m.Product != nil {
		resp.ProductName = m.Product.Name
	}
	return resp
}

// currentStock reads the stock an adjustment starts from.
func (s *inventoryService) currentStock(tx *gorm.DB, productID uuid.UUID, variantID *uuid.UUID) (string, int, error) {
	p, err := s.products.FindByIDTx(tx, productID)
	if err != nil {
		return "", 0, notFound(err)
	}
	if variantID == nil {
		return p.Name, p.Stock, nil
	}
	v, err := s.variants.FindByIDTx(tx, *variantID)
	if err != nil {
		return "", 0, notFound(err)
	}
	if v.ProductID != p.ID {
		return "", 0, ErrNotFound
	}
	return p.Name + " " + v.Label, v.Stock, nil
}

// Adjust corrects stock by a delta or to a physical count. Unlike a sale,
// an adjustment that would go below zero is rejected, not clamped.
func (s *inventoryService) Adjust(ctx context.Context, sess session.Session, productID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockMovementResponse, error) {
	variantID, err := parseOptionalUUID(req.VariantID)
	if err != nil {
		return nil, err
	}
	var mov *model.StockMovement
	err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		name, stock, err := s.currentStock(tx, productID, variantID)
		if err != nil {
			return err
		}
		delta := req.Delta
		if req.Count != nil {
			delta = *req.Count - stock
		}
		if delta == 0 {
			return ErrNoStockChange
		}
		if stock+delta < 0 {
			return &InsufficientStockError{Product: name, Available: stock, Requested: -delta}
		}
		mov, _, err = moveStock(tx, s.stockRepos, sess, productID, variantID, delta, model.MovementAdjustment, req.Reason, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movementToResponse(mov), nil
}

// Receive books a purchase. A new unit cost updates the product cost and
// is recorded in the price history.
func (s *inventoryService) Receive(ctx context.Context, sess session.Session, productID uuid.UUID, req dto.ReceiveStockRequest) (*dto.StockMovementResponse, error) {
	variantID, err := parseOptionalUUID(req.VariantID)
	if err != nil {
		return nil, err
	}
	reason := "purchase"
	if req.Reference != "" {
		reason = fmt.Sprintf("purchase %s", req.Reference)
	}
	var mov *model.StockMovement
	err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		if _, _, err := s.currentStock(tx, productID, variantID); err != nil {
			return err
		}
		if req.UnitCost != nil {
			if err := s.updateCost(tx, sess, productID, *req.UnitCost); err != nil {
				return err
			}
		}
		var err error
		mov, _, err = moveStock(tx, s.stockRepos, sess, productID, variantID, req.Quantity, model.MovementPurchase, reason, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movementToResponse(mov), nil
}

func (s *inventoryService) updateCost(tx *gorm.DB, sess session.Session, productID uuid.UUID, cost decimal.Decimal) error {
	p, err := s.products.FindByIDTx(tx, productID)
	if err != nil {
		return notFound(err)
	}
	if p.Cost.Equal(cost) {
		return nil
	}
	change := &model.PriceChange{
		ProductID:   p.ID,
		CostBefore:  p.Cost,
		CostAfter:   cost,
		PriceBefore: p.Price,
		PriceAfter:  p.Price,
		Reason:      "purchase",
		UserID:      &sess.UserID,
	}
	p.Cost = cost
	if err := s.products.UpdateTx(tx, p); err != nil {
		return err
	}
	return s.priceRepo.CreateTx(tx, change)
}

func (s *inventoryService) Movements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	rows, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.StockMovementResponse, len(rows))
	for i := range rows {
		data[i] = *movementToResponse(&rows[i])
	}
	return &dto.MovementListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// LowStock lists products at or below their minimum and sold-out variants.
func (s *inventoryService) LowStock(ctx context.Context) ([]dto.LowStockItem, error) {
	products, err := s.products.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := []dto.LowStockItem{}
	for _, p := range products {
		if p.IsLowStock() {
			out = append(out, dto.LowStockItem{
				ProductID: p.ID.String(), Name: p.Name, Stock: p.Stock, MinStock: p.MinStock,
			})
		}
		for _, v := range p.Variants {
			if v.Stock > 0 {
				continue
			}
			label := v.Label
			out = append(out, dto.LowStockItem{
				ProductID: p.ID.String(), VariantID: uuidString(&v.ID), Name: p.Name,
				VariantLabel: &label, Stock: v.Stock, MinStock: p.MinStock,
			})
		}
	}
	return out, nil
}

func (s *inventoryService) ScanLowStock(ctx context.Context) (int, error) {
	items, err := s.LowStock(ctx)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 || s.notifications == nil {
		return len(items), nil
	}
	if s.settings != nil {
		st, err := s.settings.Get(ctx)
		if err != nil {
			return 0, err
		}
		if !st.LowStockAlerts {
			return len(items), nil
		}
	}

	var b strings.Builder
	for i, it := range items {
		if i == 10 {
			fmt.Fprintf(&b, "... and %d more\n", len(items)-i)
			break
		}
		name := it.Name
		if it.VariantLabel != nil {
			name += " (" + *it.VariantLabel + ")"
		}
		fmt.Fprintf(&b, "%s: %d left (min %d)\n", name, it.Stock, it.MinStock)
	}
	s.notifications.Notify(ctx, model.ChannelStockAlerts,
		fmt.Sprintf("%d products low on stock", len(items)), strings.TrimSpace(b.String()))
	return len(items), nil
}
