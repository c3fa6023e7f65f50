package service

import (
	"context"

	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
	"github.com/Rose003/PaymentFlow33-sub001/internal/repository"
)

type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

const defaultNotificationsLimit = 50

func (s *NotificationService) List(ctx context.Context, ownerID string, f repository.NotificationsFilter) ([]domain.Notification, error) {
	if f.Limit <= 0 {
		f.Limit = defaultNotificationsLimit
	}
	return s.repo.List(ctx, ownerID, f)
}

func (s *NotificationService) UnreadCount(ctx context.Context, ownerID string) (int64, error) {
	return s.repo.UnreadCount(ctx, ownerID)
}

func (s *NotificationService) Create(ctx context.Context, n *domain.Notification) error {
	return s.repo.Create(ctx, n)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, ownerID string) error {
	return s.repo.MarkRead(ctx, id, ownerID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, ownerID string) error {
	return s.repo.MarkAllRead(ctx, ownerID)
}
