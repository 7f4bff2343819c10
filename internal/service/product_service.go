package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductService interface {
	Create(ctx context.Context, sess session.Session, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	GetByIdentifier(ctx context.Context, identifier string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, sess session.Session, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	PriceHistory(ctx context.Context, id uuid.UUID) ([]dto.PriceChangeResponse, error)

	AddVariant(ctx context.Context, sess session.Session, productID uuid.UUID, req dto.CreateVariantRequest) (*dto.VariantResponse, error)
	ListVariants(ctx context.Context, productID uuid.UUID) ([]dto.VariantResponse, error)
	UpdateVariant(ctx context.Context, variantID uuid.UUID, req dto.UpdateVariantRequest) (*dto.VariantResponse, error)
	DeactivateVariant(ctx context.Context, variantID uuid.UUID) error

	// Lookup resolves a scanned code: product barcode first, then the
	// product identifier, then a variant barcode. variant is nil unless the
	// code named a variant.
	Lookup(ctx context.Context, code string) (product *model.Product, variant *model.ProductVariant, err error)
}

type productService struct {
	repo       repository.ProductRepository
	variants   repository.VariantRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	movements  repository.StockMovementRepository
	priceRepo  repository.PriceChangeRepository
	syncQueue  repository.SyncQueueRepository
}

func NewProductService(
	repo repository.ProductRepository,
	variants repository.VariantRepository,
	categories repository.CategoryRepository,
	suppliers repository.SupplierRepository,
	priceRepo repository.PriceChangeRepository,
	movements repository.StockMovementRepository,
	syncQueue repository.SyncQueueRepository,
) ProductService {
	return &productService{
		repo:       repo,
		variants:   variants,
		categories: categories,
		suppliers:  suppliers,
		priceRepo:  priceRepo,
		movements:  movements,
		syncQueue:  syncQueue,
	}
}

// ── Mapping ─────────────────────────────────────────────────────────────────

func variantToResponse(v *model.ProductVariant, basePrice decimal.Decimal) dto.VariantResponse {
	return dto.VariantResponse{
		ID:         v.ID.String(),
		ProductID:  v.ProductID.String(),
		Type:       v.Type,
		Label:      v.Label,
		Value:      v.Value,
		Barcode:    v.Barcode,
		Stock:      v.Stock,
		PriceDelta: v.PriceDelta,
		UnitPrice:  basePrice.Add(v.PriceDelta),
		Active:     v.Active,
	}
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Barcode:     p.Barcode,
		Identifier:  p.Identifier,
		Price:       p.Price,
		Cost:        p.Cost,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		LowStock:    p.IsLowStock(),
		Unit:        p.Unit,
		CategoryID:  uuidString(p.CategoryID),
		SupplierID:  uuidString(p.SupplierID),
		Active:      p.Active,
		SyncStatus:  p.SyncStatus,
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
	for i := range p.Variants {
		resp.Variants = append(resp.Variants, variantToResponse(&p.Variants[i], p.Price))
	}
	return resp
}

func variantPayload(v *model.ProductVariant) dto.VariantPayload {
	return dto.VariantPayload{
		ID:         v.ID.String(),
		ProductID:  v.ProductID.String(),
		Type:       v.Type,
		Label:      v.Label,
		Value:      v.Value,
		Barcode:    v.Barcode,
		Stock:      v.Stock,
		PriceDelta: v.PriceDelta,
		Active:     v.Active,
	}
}

func productPayload(p *model.Product) dto.ProductPayload {
	out := dto.ProductPayload{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Barcode:     p.Barcode,
		Identifier:  p.Identifier,
		Price:       p.Price,
		Cost:        p.Cost,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		Unit:        p.Unit,
		CategoryID:  uuidString(p.CategoryID),
		SupplierID:  uuidString(p.SupplierID),
		Active:      p.Active,
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
	for i := range p.Variants {
		out.Variants = append(out.Variants, variantPayload(&p.Variants[i]))
	}
	return out
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// ── Products ────────────────────────────────────────────────────────────────

func (s *productService) resolveRefs(ctx context.Context, categoryID, supplierID *string) (*uuid.UUID, *uuid.UUID, error) {
	cat, err := parseOptionalUUID(categoryID)
	if err != nil {
		return nil, nil, err
	}
	if cat != nil {
		if _, err := s.categories.FindByID(ctx, *cat); err != nil {
			return nil, nil, notFound(err)
		}
	}
	sup, err := parseOptionalUUID(supplierID)
	if err != nil {
		return nil, nil, err
	}
	if sup != nil {
		if _, err := s.suppliers.FindByID(ctx, *sup); err != nil {
			return nil, nil, notFound(err)
		}
	}
	return cat, sup, nil
}

func (s *productService) Create(ctx context.Context, sess session.Session, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	cat, sup, err := s.resolveRefs(ctx, req.CategoryID, req.SupplierID)
	if err != nil {
		return nil, err
	}
	unit := req.Unit
	if unit == "" {
		unit = "unit"
	}
	p := &model.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Barcode:     emptyToNil(req.Barcode),
		Identifier:  emptyToNil(req.Identifier),
		Price:       req.Price,
		Cost:        req.Cost,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		Unit:        unit,
		CategoryID:  cat,
		SupplierID:  sup,
		Active:      true,
		SyncStatus:  model.SyncStatusPending,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			return uniqueViolation(err)
		}
		if req.Stock > 0 {
			mov := &model.StockMovement{
				ProductID:     p.ID,
				Type:          model.MovementPurchase,
				Quantity:      req.Stock,
				PreviousStock: 0,
				NewStock:      req.Stock,
				Reason:        "initial stock",
				UserID:        &sess.UserID,
			}
			if err := s.movements.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return enqueueSync(tx, s.syncQueue, model.EntityProduct, p.ID, model.SyncCreate, productPayload(p))
	})
	if err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return productToResponse(p), nil
}

func (s *productService) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, notFound(err)
	}
	return productToResponse(p), nil
}

func (s *productService) GetByIdentifier(ctx context.Context, identifier string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, notFound(err)
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, len(products))
	for i := range products {
		data[i] = *productToResponse(&products[i])
	}
	return &dto.ProductListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *productService) Update(ctx context.Context, sess session.Session, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	cat, sup, err := s.resolveRefs(ctx, req.CategoryID, req.SupplierID)
	if err != nil {
		return nil, err
	}

	var p *model.Product
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		p, err = s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFound(err)
		}
		costBefore, priceBefore := p.Cost, p.Price

		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			p.Description = req.Description
		}
		if req.Barcode != nil {
			p.Barcode = emptyToNil(req.Barcode)
		}
		if req.Identifier != nil {
			p.Identifier = emptyToNil(req.Identifier)
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.Cost != nil {
			p.Cost = *req.Cost
		}
		if req.MinStock != nil {
			p.MinStock = *req.MinStock
		}
		if req.Unit != nil && *req.Unit != "" {
			p.Unit = *req.Unit
		}
		if req.CategoryID != nil {
			p.CategoryID = cat
		}
		if req.SupplierID != nil {
			p.SupplierID = sup
		}
		p.SyncStatus = model.SyncStatusPending

		if err := s.repo.UpdateTx(tx, p); err != nil {
			return uniqueViolation(err)
		}
		if !costBefore.Equal(p.Cost) || !priceBefore.Equal(p.Price) {
			if err := s.priceRepo.CreateTx(tx, &model.PriceChange{
				ProductID:   p.ID,
				CostBefore:  costBefore,
				CostAfter:   p.Cost,
				PriceBefore: priceBefore,
				PriceAfter:  p.Price,
				Reason:      "manual",
				UserID:      &sess.UserID,
			}); err != nil {
				return err
			}
		}
		return enqueueSync(tx, s.syncQueue, model.EntityProduct, p.ID, model.SyncUpdate, productPayload(p))
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, p.ID)
}

func (s *productService) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFound(err)
		}
		p.Active = active
		p.SyncStatus = model.SyncStatusPending
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return err
		}
		op := model.SyncUpdate
		if !active {
			op = model.SyncDelete
		}
		return enqueueSync(tx, s.syncQueue, model.EntityProduct, p.ID, op, productPayload(p))
	})
}

// Deactivate is the soft delete: the row stays so sale history keeps its references.
func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *productService) PriceHistory(ctx context.Context, id uuid.UUID) ([]dto.PriceChangeResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFound(err)
	}
	rows, err := s.priceRepo.ListByProduct(ctx, id, 100)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PriceChangeResponse, len(rows))
	for i, pc := range rows {
		out[i] = dto.PriceChangeResponse{
			ID:          pc.ID.String(),
			CostBefore:  pc.CostBefore,
			CostAfter:   pc.CostAfter,
			PriceBefore: pc.PriceBefore,
			PriceAfter:  pc.PriceAfter,
			Reason:      pc.Reason,
			CreatedAt:   formatTime(pc.CreatedAt),
		}
	}
	return out, nil
}

// ── Variants ────────────────────────────────────────────────────────────────

func (s *productService) AddVariant(ctx context.Context, sess session.Session, productID uuid.UUID, req dto.CreateVariantRequest) (*dto.VariantResponse, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound(err)
	}
	v := &model.ProductVariant{
		ProductID:  productID,
		Type:       req.Type,
		Label:      req.Label,
		Value:      req.Value,
		Barcode:    emptyToNil(req.Barcode),
		Stock:      req.Stock,
		PriceDelta: req.PriceDelta,
		Active:     true,
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.variants.CreateTx(tx, v); err != nil {
			return uniqueViolation(err)
		}
		if req.Stock > 0 {
			if err := s.movements.CreateTx(tx, &model.StockMovement{
				ProductID:     productID,
				VariantID:     &v.ID,
				Type:          model.MovementPurchase,
				Quantity:      req.Stock,
				PreviousStock: 0,
				NewStock:      req.Stock,
				Reason:        "initial stock",
				UserID:        &sess.UserID,
			}); err != nil {
				return err
			}
		}
		return enqueueSync(tx, s.syncQueue, model.EntityVariant, v.ID, model.SyncCreate, variantPayload(v))
	})
	if err != nil {
		return nil, err
	}
	resp := variantToResponse(v, p.Price)
	return &resp, nil
}

func (s *productService) ListVariants(ctx context.Context, productID uuid.UUID) ([]dto.VariantResponse, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound(err)
	}
	vs, err := s.variants.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VariantResponse, len(vs))
	for i := range vs {
		out[i] = variantToResponse(&vs[i], p.Price)
	}
	return out, nil
}

func (s *productService) UpdateVariant(ctx context.Context, variantID uuid.UUID, req dto.UpdateVariantRequest) (*dto.VariantResponse, error) {
	v, err := s.variants.FindByID(ctx, variantID)
	if err != nil {
		return nil, notFound(err)
	}
	if req.Label != nil {
		v.Label = *req.Label
	}
	if req.Value != nil {
		v.Value = *req.Value
	}
	if req.Barcode != nil {
		v.Barcode = emptyToNil(req.Barcode)
	}
	if req.PriceDelta != nil {
		v.PriceDelta = *req.PriceDelta
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.variants.UpdateTx(tx, v); err != nil {
			return uniqueViolation(err)
		}
		return enqueueSync(tx, s.syncQueue, model.EntityVariant, v.ID, model.SyncUpdate, variantPayload(v))
	})
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, v.ProductID)
	if err != nil {
		return nil, notFound(err)
	}
	resp := variantToResponse(v, p.Price)
	return &resp, nil
}

func (s *productService) DeactivateVariant(ctx context.Context, variantID uuid.UUID) error {
	v, err := s.variants.FindByID(ctx, variantID)
	if err != nil {
		return notFound(err)
	}
	v.Active = false
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.variants.UpdateTx(tx, v); err != nil {
			return err
		}
		return enqueueSync(tx, s.syncQueue, model.EntityVariant, v.ID, model.SyncDelete, variantPayload(v))
	})
}

func (s *productService) Lookup(ctx context.Context, code string) (*model.Product, *model.ProductVariant, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil, ErrNotFound
	}
	p, err := s.repo.FindByBarcode(ctx, code)
	if err == nil {
		return p, nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}
	p, err = s.repo.FindByIdentifier(ctx, code)
	if err == nil {
		return p, nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}
	v, err := s.variants.FindByBarcode(ctx, code)
	if err != nil {
		return nil, nil, notFound(err)
	}
	p, err = s.repo.FindByID(ctx, v.ProductID)
	if err != nil {
		return nil, nil, notFound(err)
	}
	if !p.Active {
		return nil, nil, ErrNotFound
	}
	return p, v, nil
}
