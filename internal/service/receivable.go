package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/clients"
	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
	"github.com/Rose003/PaymentFlow33-sub001/internal/repository"

	"github.com/google/uuid"
)

type ReceivableStore interface {
	List(ctx context.Context, f repository.ReceivablesFilter) ([]domain.Receivable, error)
	Get(ctx context.Context, id string, ownerIDs []string) (*domain.Receivable, error)
	Create(ctx context.Context, rec *domain.Receivable) error
	Update(ctx context.Context, rec *domain.Receivable, ownerIDs []string) error
	UpdateStatus(ctx context.Context, id, status string, ownerIDs []string) (time.Time, error)
	Delete(ctx context.Context, id string, ownerIDs []string) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// InvoiceUploader stores invoice PDFs and returns the object key to keep on
// the receivable.
type InvoiceUploader interface {
	UploadPDF(ctx context.Context, fileName string, data []byte) (string, error)
}

type ReceivableService struct {
	repo          ReceivableStore
	notifications NotificationStore
	dashboard     *DashboardService
	ws            *clients.WebSocketClient
	uploads       InvoiceUploader
}

func NewReceivableService(
	repo ReceivableStore,
	notifications NotificationStore,
	dashboard *DashboardService,
	ws *clients.WebSocketClient,
	uploads InvoiceUploader,
) *ReceivableService {
	return &ReceivableService{
		repo:          repo,
		notifications: notifications,
		dashboard:     dashboard,
		ws:            ws,
		uploads:       uploads,
	}
}

func (s *ReceivableService) List(ctx context.Context, ownerIDs []string, f repository.ReceivablesFilter) ([]domain.Receivable, error) {
	f.OwnerIDs = ownerIDs
	return s.repo.List(ctx, f)
}

func (s *ReceivableService) Get(ctx context.Context, id string, ownerIDs []string) (*domain.Receivable, error) {
	return s.repo.Get(ctx, id, ownerIDs)
}

func (s *ReceivableService) Create(ctx context.Context, rec *domain.Receivable) (*domain.Receivable, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = domain.StatusPending
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create receivable: %w", err)
	}

	s.afterMutation(ctx, rec.OwnerID, "receivables", "INSERT", rec.ID)
	return rec, nil
}

func (s *ReceivableService) Update(ctx context.Context, rec *domain.Receivable, ownerIDs []string) error {
	if err := s.repo.Update(ctx, rec, ownerIDs); err != nil {
		return err
	}

	s.afterMutation(ctx, rec.OwnerID, "receivables", "UPDATE", rec.ID)
	return nil
}

// MarkPaid settles a receivable; the stamped updated_at becomes the payment
// date the DSO metric reads.
func (s *ReceivableService) MarkPaid(ctx context.Context, id string, ownerIDs []string) error {
	rec, err := s.repo.Get(ctx, id, ownerIDs)
	if err != nil {
		return err
	}

	if _, err := s.repo.UpdateStatus(ctx, id, domain.StatusPaid, ownerIDs); err != nil {
		return err
	}

	if s.notifications != nil {
		n := &domain.Notification{
			ID:      uuid.NewString(),
			OwnerID: rec.OwnerID,
			Type:    "receivable_paid",
			Message: fmt.Sprintf("Facture %s réglée (%.2f €)", rec.InvoiceNumber, rec.Amount),
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			log.Printf("[RECEIVABLE] notification create error: %v", err)
		}
	}

	s.afterMutation(ctx, rec.OwnerID, "receivables", "UPDATE", id)
	return nil
}

func (s *ReceivableService) UpdateStatus(ctx context.Context, id, status string, ownerIDs []string) error {
	rec, err := s.repo.Get(ctx, id, ownerIDs)
	if err != nil {
		return err
	}

	if _, err := s.repo.UpdateStatus(ctx, id, status, ownerIDs); err != nil {
		return err
	}

	s.afterMutation(ctx, rec.OwnerID, "receivables", "UPDATE", id)
	return nil
}

// AttachInvoicePDF uploads the invoice document to object storage and keeps
// the key on the receivable; reminder emails presign it later.
func (s *ReceivableService) AttachInvoicePDF(ctx context.Context, id, fileName string, data []byte, ownerIDs []string) (*domain.Receivable, error) {
	if s.uploads == nil {
		return nil, fmt.Errorf("invoice storage not configured")
	}

	rec, err := s.repo.Get(ctx, id, ownerIDs)
	if err != nil {
		return nil, err
	}

	// key the object under the receivable id so re-uploads replace it
	key, err := s.uploads.UploadPDF(ctx, fmt.Sprintf("%s/%s", rec.ID, fileName), data)
	if err != nil {
		return nil, fmt.Errorf("upload invoice pdf: %w", err)
	}

	rec.InvoicePDFKey = &key
	if err := s.repo.Update(ctx, rec, ownerIDs); err != nil {
		return nil, fmt.Errorf("save invoice pdf key: %w", err)
	}

	s.afterMutation(ctx, rec.OwnerID, "receivables", "UPDATE", rec.ID)
	return rec, nil
}

func (s *ReceivableService) Delete(ctx context.Context, id string, ownerIDs []string) error {
	rec, err := s.repo.Get(ctx, id, ownerIDs)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, ownerIDs); err != nil {
		return err
	}

	s.afterMutation(ctx, rec.OwnerID, "receivables", "DELETE", id)
	return nil
}

func (s *ReceivableService) afterMutation(ctx context.Context, ownerID, table, event, rowID string) {
	if s.dashboard != nil {
		s.dashboard.BumpVersion(ctx, ownerID)
	}
	if s.ws != nil {
		_ = s.ws.NotifyTableChange(ctx, ownerID, table, event, rowID)
	}
}
