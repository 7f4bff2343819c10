package service

import (
	"context"
	"strings"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerService interface {
	Create(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	Search(ctx context.Context, query string) ([]dto.CustomerResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	repo      repository.CustomerRepository
	syncQueue repository.SyncQueueRepository
	db        *gorm.DB
}

func NewCustomerService(repo repository.CustomerRepository, syncQueue repository.SyncQueueRepository, db *gorm.DB) CustomerService {
	return &customerService{repo: repo, syncQueue: syncQueue, db: db}
}

func customerToResponse(c *model.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:      c.ID.String(),
		Name:    c.Name,
		Phone:   c.Phone,
		Email:   c.Email,
		TaxID:   c.TaxID,
		Address: c.Address,
		Notes:   c.Notes,
		Active:  c.Active,
	}
}

func (s *customerService) save(ctx context.Context, c *model.Customer, op string) error {
	return runTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.repo.SaveTx(tx, c); err != nil {
			return err
		}
		return enqueueSync(tx, s.syncQueue, model.EntityCustomer, c.ID, op, customerToResponse(c))
	})
}

func applyCustomer(c *model.Customer, req dto.CustomerRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Phone = req.Phone
	c.Email = req.Email
	c.TaxID = req.TaxID
	c.Address = req.Address
	c.Notes = req.Notes
}

func (s *customerService) Create(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c := &model.Customer{Active: true}
	applyCustomer(c, req)
	if err := s.save(ctx, c, model.SyncCreate); err != nil {
		return nil, err
	}
	return customerToResponse(c), nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return customerToResponse(c), nil
}

func (s *customerService) Search(ctx context.Context, query string) ([]dto.CustomerResponse, error) {
	rows, err := s.repo.Search(ctx, strings.TrimSpace(query), 100)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, len(rows))
	for i := range rows {
		out[i] = *customerToResponse(&rows[i])
	}
	return out, nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	applyCustomer(c, req)
	if err := s.save(ctx, c, model.SyncUpdate); err != nil {
		return nil, err
	}
	return customerToResponse(c), nil
}

func (s *customerService) Deactivate(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	c.Active = false
	return s.save(ctx, c, model.SyncDelete)
}
