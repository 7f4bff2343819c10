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

type CategoryService interface {
	Create(ctx context.Context, req dto.CategoryRequest) (dto.CategoryResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.CategoryRequest) (dto.CategoryResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo      repository.CategoryRepository
	syncQueue repository.SyncQueueRepository
	db        *gorm.DB
}

func NewCategoryService(repo repository.CategoryRepository, syncQueue repository.SyncQueueRepository, db *gorm.DB) CategoryService {
	return &categoryService{repo: repo, syncQueue: syncQueue, db: db}
}

func mapCategory(c *model.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		Active:      c.Active,
	}
}

func (s *categoryService) Create(ctx context.Context, req dto.CategoryRequest) (dto.CategoryResponse, error) {
	c := &model.Category{Name: strings.TrimSpace(req.Name), Description: req.Description, Active: true}
	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.repo.SaveTx(tx, c); err != nil {
			return uniqueViolation(err)
		}
		return enqueueSync(tx, s.syncQueue, model.EntityCategory, c.ID, model.SyncCreate, mapCategory(c))
	})
	if err != nil {
		return dto.CategoryResponse{}, err
	}
	return mapCategory(c), nil
}

func (s *categoryService) List(ctx context.Context, includeInactive bool) ([]dto.CategoryResponse, error) {
	cats, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, len(cats))
	for i := range cats {
		out[i] = mapCategory(&cats[i])
	}
	return out, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req dto.CategoryRequest) (dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.CategoryResponse{}, notFound(err)
	}
	c.Name = strings.TrimSpace(req.Name)
	c.Description = req.Description
	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.repo.SaveTx(tx, c); err != nil {
			return uniqueViolation(err)
		}
		return enqueueSync(tx, s.syncQueue, model.EntityCategory, c.ID, model.SyncUpdate, mapCategory(c))
	})
	if err != nil {
		return dto.CategoryResponse{}, err
	}
	return mapCategory(c), nil
}

func (s *categoryService) Deactivate(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	c.Active = false
	return runTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.repo.SaveTx(tx, c); err != nil {
			return err
		}
		return enqueueSync(tx, s.syncQueue, model.EntityCategory, c.ID, model.SyncDelete, mapCategory(c))
	})
}
