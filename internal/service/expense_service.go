package service

import (
	"context"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseService interface {
	Create(ctx context.Context, sess session.Session, req dto.ExpenseRequest) (*dto.ExpenseResponse, error)
	List(ctx context.Context, from, to string) ([]dto.ExpenseResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type expenseService struct {
	repo      repository.ExpenseRepository
	cash      repository.CashSummaryRepository
	syncQueue repository.SyncQueueRepository
	now       func() time.Time
}

func NewExpenseService(repo repository.ExpenseRepository, cash repository.CashSummaryRepository, syncQueue repository.SyncQueueRepository) ExpenseService {
	return &expenseService{repo: repo, cash: cash, syncQueue: syncQueue, now: time.Now}
}

func expenseToResponse(e *model.Expense) *dto.ExpenseResponse {
	return &dto.ExpenseResponse{
		ID:          e.ID.String(),
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		PaidInCash:  e.PaidInCash,
		SpentOn:     e.SpentOn,
		UserID:      e.UserID.String(),
	}
}

// Create books an expense; cash expenses lower the expected till amount of
// the day they were spent on.
func (s *expenseService) Create(ctx context.Context, sess session.Session, req dto.ExpenseRequest) (*dto.ExpenseResponse, error) {
	e := &model.Expense{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		PaidInCash:  req.PaidInCash == nil || *req.PaidInCash,
		SpentOn:     req.SpentOn,
		UserID:      sess.UserID,
	}
	if e.SpentOn == "" {
		e.SpentOn = businessDate(s.now())
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, e); err != nil {
			return err
		}
		if e.PaidInCash {
			if err := s.cash.AddExpenseTx(tx, e.SpentOn, e.Amount); err != nil {
				return err
			}
		}
		return enqueueSync(tx, s.syncQueue, model.EntityExpense, e.ID, model.SyncCreate, expenseToResponse(e))
	})
	if err != nil {
		return nil, err
	}
	return expenseToResponse(e), nil
}

func (s *expenseService) List(ctx context.Context, from, to string) ([]dto.ExpenseResponse, error) {
	rows, err := s.repo.List(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpenseResponse, len(rows))
	for i := range rows {
		out[i] = *expenseToResponse(&rows[i])
	}
	return out, nil
}

func (s *expenseService) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.DeleteTx(tx, e.ID); err != nil {
			return err
		}
		if e.PaidInCash {
			if err := s.cash.AddExpenseTx(tx, e.SpentOn, e.Amount.Neg()); err != nil {
				return err
			}
		}
		return enqueueSync(tx, s.syncQueue, model.EntityExpense, e.ID, model.SyncDelete, expenseToResponse(e))
	})
}
