package service

import (
	"context"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Mailer delivers email notifications. *infra.Mailer satisfies it.
type Mailer interface {
	Enabled() bool
	Send(to, subject, body string, attachments ...string) error
}

// NotificationService persists notifications per channel and fans stock and
// sync alerts out to the owner's email when SMTP is configured.
type NotificationService interface {
	Notify(ctx context.Context, channel, title, message string)
	List(ctx context.Context, filter dto.NotificationFilter) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) error
	UnreadCount(ctx context.Context) (int64, error)
}

type notificationService struct {
	repo    repository.NotificationRepository
	mailer  Mailer
	emailTo string
}

func NewNotificationService(repo repository.NotificationRepository, mailer Mailer, emailTo string) NotificationService {
	return &notificationService{repo: repo, mailer: mailer, emailTo: emailTo}
}

func (s *notificationService) emailed(channel string) bool {
	if s.mailer == nil || !s.mailer.Enabled() || s.emailTo == "" {
		return false
	}
	return channel == model.ChannelStockAlerts || channel == model.ChannelSyncStatus
}

// Notify never fails the caller: a notification that cannot be stored or
// mailed is logged and dropped.
func (s *notificationService) Notify(ctx context.Context, channel, title, message string) {
	n := &model.Notification{Channel: channel, Title: title, Message: message}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("notification: store failed")
	}
	log.Info().Str("channel", channel).Str("title", title).Msg(message)

	if s.emailed(channel) {
		if err := s.mailer.Send(s.emailTo, title, message); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("notification: email failed")
		}
	}
}

func (s *notificationService) List(ctx context.Context, filter dto.NotificationFilter) ([]dto.NotificationResponse, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificationResponse, len(rows))
	for i, n := range rows {
		out[i] = dto.NotificationResponse{
			ID:        n.ID.String(),
			Channel:   n.Channel,
			Title:     n.Title,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: formatTime(n.CreatedAt),
		}
	}
	return out, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return notFound(s.repo.MarkRead(ctx, id))
}

func (s *notificationService) MarkAllRead(ctx context.Context) error {
	return s.repo.MarkAllRead(ctx)
}

func (s *notificationService) UnreadCount(ctx context.Context) (int64, error) {
	return s.repo.UnreadCount(ctx)
}
