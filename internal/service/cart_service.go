package service

import (
	"context"
	"errors"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartService manages the pre-sale lines of each user. A line never holds
// more units than are on hand when it is written.
type CartService interface {
	Get(ctx context.Context, sess session.Session) (*dto.CartResponse, error)
	Add(ctx context.Context, sess session.Session, req dto.AddToCartRequest) (*dto.CartResponse, error)
	AddProduct(ctx context.Context, sess session.Session, productID uuid.UUID, variantID *uuid.UUID, qty int) (*dto.CartResponse, error)
	UpdateQuantity(ctx context.Context, sess session.Session, itemID uuid.UUID, qty int) (*dto.CartResponse, error)
	Remove(ctx context.Context, sess session.Session, itemID uuid.UUID) (*dto.CartResponse, error)
	Clear(ctx context.Context, sess session.Session) error
}

type cartService struct {
	repo     repository.CartRepository
	products repository.ProductRepository
	variants repository.VariantRepository
}

func NewCartService(repo repository.CartRepository, products repository.ProductRepository, variants repository.VariantRepository) CartService {
	return &cartService{repo: repo, products: products, variants: variants}
}

// lineInfo is what a cart line sells: name, unit price and units available.
type lineInfo struct {
	name         string
	variantLabel *string
	unitPrice    decimal.Decimal
	available    int
	active       bool
}

func describeLine(p *model.Product, v *model.ProductVariant) lineInfo {
	info := lineInfo{name: p.Name, unitPrice: p.Price, available: p.Stock, active: p.Active}
	if v != nil {
		label := v.Label
		info.variantLabel = &label
		info.unitPrice = p.Price.Add(v.PriceDelta)
		info.available = v.Stock
		info.active = p.Active && v.Active
	}
	return info
}

func cartToResponse(items []model.CartItem) *dto.CartResponse {
	resp := &dto.CartResponse{Items: make([]dto.CartItemResponse, 0, len(items)), Subtotal: decimal.Zero}
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		info := describeLine(it.Product, it.Variant)
		sub := info.unitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		resp.Items = append(resp.Items, dto.CartItemResponse{
			ID:           it.ID.String(),
			ProductID:    it.ProductID.String(),
			VariantID:    uuidString(it.VariantID),
			ProductName:  info.name,
			VariantLabel: info.variantLabel,
			UnitPrice:    info.unitPrice,
			Quantity:     it.Quantity,
			Available:    info.available,
			Subtotal:     sub,
		})
		resp.ItemCount += it.Quantity
		resp.Subtotal = resp.Subtotal.Add(sub)
	}
	return resp
}

func (s *cartService) Get(ctx context.Context, sess session.Session) (*dto.CartResponse, error) {
	items, err := s.repo.ListByUser(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return cartToResponse(items), nil
}

func (s *cartService) Add(ctx context.Context, sess session.Session, req dto.AddToCartRequest) (*dto.CartResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, err
	}
	variantID, err := parseOptionalUUID(req.VariantID)
	if err != nil {
		return nil, err
	}
	return s.AddProduct(ctx, sess, productID, variantID, req.Quantity)
}

func (s *cartService) resolve(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (lineInfo, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return lineInfo{}, notFound(err)
	}
	var v *model.ProductVariant
	if variantID != nil {
		v, err = s.variants.FindByID(ctx, *variantID)
		if err != nil {
			return lineInfo{}, notFound(err)
		}
		if v.ProductID != p.ID {
			return lineInfo{}, ErrNotFound
		}
	}
	info := describeLine(p, v)
	if !info.active {
		return lineInfo{}, ErrInactiveProduct
	}
	return info, nil
}

// AddProduct merges into an existing line for the same product and variant.
func (s *cartService) AddProduct(ctx context.Context, sess session.Session, productID uuid.UUID, variantID *uuid.UUID, qty int) (*dto.CartResponse, error) {
	if qty < 1 {
		qty = 1
	}
	info, err := s.resolve(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}

	line, err := s.repo.FindLine(ctx, sess.UserID, productID, variantID)
	switch {
	case err == nil:
		want := line.Quantity + qty
		if want > info.available {
			return nil, &InsufficientStockError{Product: info.name, Available: info.available, Requested: want}
		}
		if err := s.repo.UpdateQuantity(ctx, line.ID, want); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if qty > info.available {
			return nil, &InsufficientStockError{Product: info.name, Available: info.available, Requested: qty}
		}
		item := &model.CartItem{UserID: sess.UserID, ProductID: productID, VariantID: variantID, Quantity: qty}
		if err := s.repo.Create(ctx, item); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return s.Get(ctx, sess)
}

// UpdateQuantity sets an absolute quantity; zero or less removes the line.
func (s *cartService) UpdateQuantity(ctx context.Context, sess session.Session, itemID uuid.UUID, qty int) (*dto.CartResponse, error) {
	item, err := s.ownedLine(ctx, sess, itemID)
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		if err := s.repo.Delete(ctx, item.ID); err != nil {
			return nil, err
		}
		return s.Get(ctx, sess)
	}
	info, err := s.resolve(ctx, item.ProductID, item.VariantID)
	if err != nil {
		return nil, err
	}
	if qty > info.available {
		return nil, &InsufficientStockError{Product: info.name, Available: info.available, Requested: qty}
	}
	if err := s.repo.UpdateQuantity(ctx, item.ID, qty); err != nil {
		return nil, err
	}
	return s.Get(ctx, sess)
}

func (s *cartService) Remove(ctx context.Context, sess session.Session, itemID uuid.UUID) (*dto.CartResponse, error) {
	item, err := s.ownedLine(ctx, sess, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return nil, err
	}
	return s.Get(ctx, sess)
}

func (s *cartService) Clear(ctx context.Context, sess session.Session) error {
	return s.repo.Clear(ctx, sess.UserID)
}

// ownedLine hides other users' lines behind ErrNotFound.
func (s *cartService) ownedLine(ctx context.Context, sess session.Session, itemID uuid.UUID) (*model.CartItem, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err)
	}
	if item.UserID != sess.UserID {
		return nil, ErrNotFound
	}
	return item, nil
}
