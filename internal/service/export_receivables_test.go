package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/repository"
)

type fakeExportCache struct {
	saved   map[string]string
	members []string
}

func (f *fakeExportCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[key] = value.(string)
	return nil
}

func (f *fakeExportCache) SAdd(ctx context.Context, key string, members ...any) error {
	for _, m := range members {
		f.members = append(f.members, m.(string))
	}
	return nil
}

func TestReceivablesExport_FailurePersistsTerminalStatus(t *testing.T) {
	store := &fakeReceivableStore{listErr: errors.New("db down")}
	cache := &fakeExportCache{}
	svc := NewReceivableExportService(store, cache, nil, nil)

	exportID := "exports:failed-run"
	svc.runReceivablesExport(context.Background(), exportID, nil, repository.ReceivablesFilter{}, "user-1", time.Now())

	raw, ok := cache.saved[exportID]
	if !ok {
		t.Fatal("failed export left no status record")
	}

	var status ExportStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}

	// a failed run must not look like a stalled one
	if status.Progress != -1 {
		t.Fatalf("Progress = %v, want -1", status.Progress)
	}
	if status.FileURL != nil {
		t.Fatalf("FileURL = %v, want nil", *status.FileURL)
	}
}

func TestReceivablesExport_UnknownColumnsFail(t *testing.T) {
	store := &fakeReceivableStore{}
	cache := &fakeExportCache{}
	svc := NewReceivableExportService(store, cache, nil, nil)

	exportID := "exports:bad-columns"
	svc.runReceivablesExport(context.Background(), exportID, []string{"nope"}, repository.ReceivablesFilter{}, "user-1", time.Now())

	var status ExportStatus
	if err := json.Unmarshal([]byte(cache.saved[exportID]), &status); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if status.Progress != -1 {
		t.Fatalf("Progress = %v, want -1", status.Progress)
	}
}
