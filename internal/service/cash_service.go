package service

import (
	"context"
	"errors"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashService exposes the daily till summary. Sales and expenses update the
// running totals; the user only sets the opening amount and the final count.
type CashService interface {
	Today(ctx context.Context) (*dto.DailySummaryResponse, error)
	Get(ctx context.Context, date string) (*dto.DailySummaryResponse, error)
	List(ctx context.Context, from, to string) ([]dto.DailySummaryResponse, error)
	Open(ctx context.Context, req dto.OpenDayRequest) (*dto.DailySummaryResponse, error)
	Close(ctx context.Context, sess session.Session, req dto.CloseDayRequest) (*dto.DailySummaryResponse, error)
}

type cashService struct {
	repo          repository.CashSummaryRepository
	notifications NotificationService
	now           func() time.Time
}

func NewCashService(repo repository.CashSummaryRepository, notifications NotificationService) CashService {
	return &cashService{repo: repo, notifications: notifications, now: time.Now}
}

func summaryToResponse(s *model.DailyCashSummary) *dto.DailySummaryResponse {
	return &dto.DailySummaryResponse{
		Date:         s.Date,
		OpeningCash:  s.OpeningCash,
		CashSales:    s.CashSales,
		NonCashSales: s.NonCashSales,
		CashExpenses: s.CashExpenses,
		SalesCount:   s.SalesCount,
		ExpectedCash: s.ExpectedCash(),
		ClosingCount: s.ClosingCount,
		Difference:   s.Difference,
		Closed:       s.ClosedAt != nil,
	}
}

func emptySummary(date string) *dto.DailySummaryResponse {
	return summaryToResponse(&model.DailyCashSummary{Date: date})
}

func (s *cashService) Today(ctx context.Context) (*dto.DailySummaryResponse, error) {
	return s.Get(ctx, businessDate(s.now()))
}

func (s *cashService) Get(ctx context.Context, date string) (*dto.DailySummaryResponse, error) {
	row, err := s.repo.FindByDate(ctx, date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return emptySummary(date), nil
	}
	if err != nil {
		return nil, err
	}
	return summaryToResponse(row), nil
}

func (s *cashService) List(ctx context.Context, from, to string) ([]dto.DailySummaryResponse, error) {
	rows, err := s.repo.List(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DailySummaryResponse, len(rows))
	for i := range rows {
		out[i] = *summaryToResponse(&rows[i])
	}
	return out, nil
}

func (s *cashService) Open(ctx context.Context, req dto.OpenDayRequest) (*dto.DailySummaryResponse, error) {
	var row *model.DailyCashSummary
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		row, err = s.repo.GetOrCreateTx(tx, businessDate(s.now()))
		if err != nil {
			return err
		}
		if row.ClosedAt != nil {
			return ErrDayClosed
		}
		row.OpeningCash = req.OpeningCash
		return s.repo.SaveTx(tx, row)
	})
	if err != nil {
		return nil, err
	}
	return summaryToResponse(row), nil
}

// Close records the counted cash and the difference against the expected amount.
func (s *cashService) Close(ctx context.Context, sess session.Session, req dto.CloseDayRequest) (*dto.DailySummaryResponse, error) {
	var row *model.DailyCashSummary
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		row, err = s.repo.GetOrCreateTx(tx, businessDate(s.now()))
		if err != nil {
			return err
		}
		if row.ClosedAt != nil {
			return ErrDayClosed
		}
		now := s.now().UTC()
		counted := req.CountedCash
		diff := counted.Sub(row.ExpectedCash())
		by := sess.UserID
		row.ClosingCount = &counted
		row.Difference = &diff
		row.ClosedAt = &now
		row.ClosedBy = &by
		return s.repo.SaveTx(tx, row)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("date", row.Date).Str("difference", row.Difference.String()).Msg("business day closed")
	if s.notifications != nil && !row.Difference.Equal(decimal.Zero) {
		s.notifications.Notify(ctx, model.ChannelGeneral, "Cash difference on "+row.Date,
			"Counted cash differs from expected by "+row.Difference.String())
	}
	return summaryToResponse(row), nil
}
