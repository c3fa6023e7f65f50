package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/clients"
	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
	"github.com/Rose003/PaymentFlow33-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type ReceivableColumn struct {
	Header string
	Value  func(r domain.Receivable) any
}

func clientName(r domain.Receivable) string {
	if r.Client == nil {
		return ""
	}
	return r.Client.Name
}

var receivableColumns = map[string]ReceivableColumn{
	"invoice_number": {
		Header: "Numéro de facture",
		Value:  func(r domain.Receivable) any { return r.InvoiceNumber },
	},
	"client.name": {
		Header: "Client",
		Value:  func(r domain.Receivable) any { return clientName(r) },
	},
	"client.email": {
		Header: "Email client",
		Value: func(r domain.Receivable) any {
			if r.Client == nil {
				return ""
			}
			return r.Client.Email
		},
	},
	"amount": {
		Header: "Montant",
		Value:  func(r domain.Receivable) any { return r.Amount },
	},
	"paid_amount": {
		Header: "Montant réglé",
		Value:  func(r domain.Receivable) any { return r.PaidAmount },
	},
	"outstanding": {
		Header: "Restant dû",
		Value:  func(r domain.Receivable) any { return r.Outstanding() },
	},
	"status": {
		Header: "Statut",
		Value:  func(r domain.Receivable) any { return r.Status },
	},
	"due_date": {
		Header: "Échéance",
		Value:  func(r domain.Receivable) any { return r.DueDate.Format("2006-01-02") },
	},
	"days_late": {
		Header: "Jours de retard",
		Value: func(r domain.Receivable) any {
			d := domain.DaysLate(r.DueDate, time.Now())
			if d < 0 {
				return 0
			}
			return d
		},
	},
	"updated_at": {
		Header: "Dernière mise à jour",
		Value:  func(r domain.Receivable) any { return r.UpdatedAt.Format("2006-01-02 15:04:05") },
	},
}

// ExportStatusCache is the slice of the redis client the export pipeline
// writes progress records through.
type ExportStatusCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SAdd(ctx context.Context, key string, members ...any) error
}

// ReceivableExportService generates xlsx exports of the receivables ledger in
// the background, reporting progress through redis and the websocket hub.
type ReceivableExportService struct {
	repo    ReceivableStore
	redis   ExportStatusCache
	storage *clients.StorageClient
	ws      *clients.WebSocketClient
}

func NewReceivableExportService(
	repo ReceivableStore,
	redis ExportStatusCache,
	storage *clients.StorageClient,
	ws *clients.WebSocketClient,
) *ReceivableExportService {
	return &ReceivableExportService{
		repo:    repo,
		redis:   redis,
		storage: storage,
		ws:      ws,
	}
}

func (s *ReceivableExportService) saveExportStatus(ctx context.Context, st *ExportStatus) error {
	if s.redis == nil {
		return nil
	}

	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, st.Key, string(data), exportTTL); err != nil {
		return err
	}

	return s.redis.SAdd(ctx, exportSetKey, st.Key)
}

func (s *ReceivableExportService) StartReceivablesExport(
	ctx context.Context,
	selected []string,
	filter repository.ReceivablesFilter,
	userID string,
) (string, error) {
	if len(selected) == 0 {
		selected = []string{
			"invoice_number",
			"client.name",
			"amount",
			"status",
			"due_date",
		}
	}

	exportID := fmt.Sprintf("exports:%s", uuid.NewString())
	now := time.Now()

	status := &ExportStatus{
		Key:      exportID,
		Type:     "receivables",
		UserID:   userID,
		Filters:  buildReceivablesFiltersMap(filter, selected),
		Progress: 0,
		FileURL:  nil,
		Created:  now,
	}

	_ = s.saveExportStatus(ctx, status)

	go s.runReceivablesExport(context.Background(), exportID, selected, filter, userID, now)

	return exportID, nil
}

func (s *ReceivableExportService) runReceivablesExport(
	ctx context.Context,
	exportID string,
	selected []string,
	filter repository.ReceivablesFilter,
	userID string,
	createdAt time.Time,
) {
	status := &ExportStatus{
		Key:      exportID,
		Type:     "receivables",
		UserID:   userID,
		Filters:  buildReceivablesFiltersMap(filter, selected),
		Progress: 0,
		FileURL:  nil,
		Created:  createdAt,
	}

	fail := func(err error) {
		log.Printf("[EXPORT] receivables export %s failed: %v", exportID, err)

		// terminal marker so polling clients see a failure, not a stall
		status.Progress = -1
		_ = s.saveExportStatus(ctx, status)

		if s.ws != nil {
			_ = s.ws.NotifyExportFailed(ctx, userID, exportID, "export failed")
		}
	}

	receivables, err := s.repo.List(ctx, filter)
	if err != nil {
		fail(err)
		return
	}

	var cols []ReceivableColumn
	for _, key := range selected {
		col, ok := receivableColumns[key]
		if !ok {
			continue
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		fail(fmt.Errorf("no known columns in selection %v", selected))
		return
	}

	f := excelize.NewFile()
	sheet := "Créances"
	f.SetSheetName(f.GetSheetName(0), sheet)

	_ = f.SetDocProps(&excelize.DocProperties{
		Creator: fmt.Sprintf("user_%s", userID),
	})

	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col.Header)
	}

	total := len(receivables)
	if total > 0 {
		chunkSize := 1000
		rowIdx := 2

		for i, r := range receivables {
			for colIdx, col := range cols {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
				_ = f.SetCellValue(sheet, cell, col.Value(r))
			}
			rowIdx++

			if (i+1)%chunkSize == 0 || i == total-1 {
				raw := float64(i+1) / float64(total) * 100.0
				progress := math.Round(raw)
				// 100% is reserved for when the file URL is ready.
				if progress >= 100 {
					progress = 95
				}

				status.Progress = progress
				_ = s.saveExportStatus(ctx, status)

				if s.ws != nil {
					_ = s.ws.NotifyExportProgress(ctx, userID, exportID, progress, "generating")
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		fail(err)
		return
	}

	fileName := fmt.Sprintf("creances_%s.xlsx", time.Now().Format("20060102_150405"))

	saved, err := s.storage.Save(ctx, fileName, buf.Bytes())
	if err != nil {
		fail(err)
		return
	}

	url := s.storage.GetURL(saved)
	status.FileURL = &url
	status.Progress = 100

	_ = s.saveExportStatus(ctx, status)

	if s.ws != nil {
		_ = s.ws.NotifyExportProgress(ctx, userID, exportID, 100, "ready")
		_ = s.ws.NotifyExportComplete(ctx, userID, exportID, url, fileName)
	}
}

func buildReceivablesFiltersMap(f repository.ReceivablesFilter, fields []string) map[string]interface{} {
	m := map[string]interface{}{}
	if f.ClientID != nil {
		m["client_id"] = *f.ClientID
	} else {
		m["client_id"] = nil
	}
	if f.Status != nil {
		m["status"] = *f.Status
	} else {
		m["status"] = nil
	}
	if f.Overdue != nil {
		m["overdue"] = *f.Overdue
	} else {
		m["overdue"] = nil
	}
	m["fields"] = fields
	return m
}
