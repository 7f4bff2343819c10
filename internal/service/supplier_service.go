package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierService interface {
	Create(ctx context.Context, req dto.SupplierRequest) (*dto.SupplierResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.SupplierResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.SupplierRequest) (*dto.SupplierResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type supplierService struct {
	repo      repository.SupplierRepository
	syncQueue repository.SyncQueueRepository
	db        *gorm.DB
}

func NewSupplierService(repo repository.SupplierRepository, syncQueue repository.SyncQueueRepository, db *gorm.DB) SupplierService {
	return &supplierService{repo: repo, syncQueue: syncQueue, db: db}
}

func supplierToResponse(s *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:          s.ID.String(),
		Name:        s.Name,
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Email:       s.Email,
		Address:     s.Address,
		Active:      s.Active,
	}
}

func (s *supplierService) save(ctx context.Context, sup *model.Supplier, op string) error {
	return runTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.repo.SaveTx(tx, sup); err != nil {
			return uniqueViolation(err)
		}
		return enqueueSync(tx, s.syncQueue, model.EntitySupplier, sup.ID, op, supplierToResponse(sup))
	})
}

func (s *supplierService) Create(ctx context.Context, req dto.SupplierRequest) (*dto.SupplierResponse, error) {
	sup := &model.Supplier{
		Name:        strings.TrimSpace(req.Name),
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		Active:      true,
	}
	if err := s.save(ctx, sup, model.SyncCreate); err != nil {
		return nil, err
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) List(ctx context.Context, includeInactive bool) ([]dto.SupplierResponse, error) {
	rows, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, len(rows))
	for i := range rows {
		out[i] = *supplierToResponse(&rows[i])
	}
	return out, nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req dto.SupplierRequest) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	sup.Name = strings.TrimSpace(req.Name)
	sup.ContactName = req.ContactName
	sup.Phone = req.Phone
	sup.Email = req.Email
	sup.Address = req.Address
	if err := s.save(ctx, sup, model.SyncUpdate); err != nil {
		return nil, err
	}
	return supplierToResponse(sup), nil
}

// Deactivate refuses suppliers still referenced by active products.
func (s *supplierService) Deactivate(ctx context.Context, id uuid.UUID) error {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	n, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: supplier has %d active products", ErrConflict, n)
	}
	sup.Active = false
	return s.save(ctx, sup, model.SyncDelete)
}
