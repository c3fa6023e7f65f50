package service

import (
	"context"
	"fmt"

	"github.com/Rose003/PaymentFlow33-sub001/internal/clients"
	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"

	"github.com/google/uuid"
)

type ClientStore interface {
	List(ctx context.Context, ownerIDs []string) ([]domain.Client, error)
	Get(ctx context.Context, id string, ownerIDs []string) (*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) error
	Update(ctx context.Context, c *domain.Client, ownerIDs []string) error
	Delete(ctx context.Context, id string, ownerIDs []string) error
}

type ClientService struct {
	repo      ClientStore
	dashboard *DashboardService
	ws        *clients.WebSocketClient
}

func NewClientService(repo ClientStore, dashboard *DashboardService, ws *clients.WebSocketClient) *ClientService {
	return &ClientService{
		repo:      repo,
		dashboard: dashboard,
		ws:        ws,
	}
}

func (s *ClientService) List(ctx context.Context, ownerIDs []string) ([]domain.Client, error) {
	return s.repo.List(ctx, ownerIDs)
}

func (s *ClientService) Get(ctx context.Context, id string, ownerIDs []string) (*domain.Client, error) {
	return s.repo.Get(ctx, id, ownerIDs)
}

func (s *ClientService) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.afterMutation(ctx, c.OwnerID, "INSERT", c.ID)
	return c, nil
}

func (s *ClientService) Update(ctx context.Context, c *domain.Client, ownerIDs []string) error {
	if err := s.repo.Update(ctx, c, ownerIDs); err != nil {
		return err
	}

	s.afterMutation(ctx, c.OwnerID, "UPDATE", c.ID)
	return nil
}

func (s *ClientService) Delete(ctx context.Context, id string, ownerIDs []string) error {
	c, err := s.repo.Get(ctx, id, ownerIDs)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, ownerIDs); err != nil {
		return err
	}

	s.afterMutation(ctx, c.OwnerID, "DELETE", id)
	return nil
}

func (s *ClientService) afterMutation(ctx context.Context, ownerID, event, rowID string) {
	if s.dashboard != nil {
		s.dashboard.BumpVersion(ctx, ownerID)
	}
	if s.ws != nil {
		_ = s.ws.NotifyTableChange(ctx, ownerID, "clients", event, rowID)
	}
}
