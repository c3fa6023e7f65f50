package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/config"
	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
)

type fakeSubscriptionStore struct {
	byOwner map[string]*domain.Subscription
	upserts []*domain.Subscription
}

func (f *fakeSubscriptionStore) GetByOwner(ctx context.Context, ownerID string) (*domain.Subscription, error) {
	if sub, ok := f.byOwner[ownerID]; ok {
		return sub, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSubscriptionStore) Upsert(ctx context.Context, s *domain.Subscription) error {
	f.upserts = append(f.upserts, s)
	return nil
}

func signPayload(secret string, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyWebhookSignature(t *testing.T) {
	svc := NewBillingService(nil, nil, config.StripeConfig{WebhookSecret: "whsec_test"})

	payload := []byte(`{"type":"checkout.session.completed"}`)
	ts := time.Now().Unix()

	if err := svc.VerifyWebhookSignature(payload, signPayload("whsec_test", ts, payload)); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}

	if err := svc.VerifyWebhookSignature(payload, signPayload("whsec_other", ts, payload)); err == nil {
		t.Fatal("signature with wrong secret should be rejected")
	}

	old := time.Now().Add(-10 * time.Minute).Unix()
	if err := svc.VerifyWebhookSignature(payload, signPayload("whsec_test", old, payload)); err == nil {
		t.Fatal("stale timestamp should be rejected")
	}

	if err := svc.VerifyWebhookSignature(payload, "garbage"); err == nil {
		t.Fatal("malformed header should be rejected")
	}
}

func TestVerifyWebhookSignature_NoSecret(t *testing.T) {
	svc := NewBillingService(nil, nil, config.StripeConfig{})

	if err := svc.VerifyWebhookSignature([]byte("{}"), "t=1,v1=abc"); err == nil {
		t.Fatal("verification without a configured secret should fail")
	}
}

func TestHandleWebhookEvent_CheckoutCompleted(t *testing.T) {
	store := &fakeSubscriptionStore{}
	svc := NewBillingService(store, nil, config.StripeConfig{})

	payload := []byte(`{
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_123",
			"customer": "cus_123",
			"subscription": "sub_123",
			"client_reference_id": "user-1",
			"metadata": {"plan": "pro"}
		}}
	}`)

	if err := svc.HandleWebhookEvent(context.Background(), payload); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if len(store.upserts) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(store.upserts))
	}

	sub := store.upserts[0]
	if sub.OwnerID != "user-1" {
		t.Errorf("OwnerID = %s, want user-1", sub.OwnerID)
	}
	if sub.Status != "active" {
		t.Errorf("Status = %s, want active", sub.Status)
	}
	if sub.Plan != "pro" {
		t.Errorf("Plan = %s, want pro", sub.Plan)
	}
	if sub.StripeSubID == nil || *sub.StripeSubID != "sub_123" {
		t.Errorf("StripeSubID = %v, want sub_123", sub.StripeSubID)
	}
}

func TestHandleWebhookEvent_SubscriptionDeleted(t *testing.T) {
	store := &fakeSubscriptionStore{}
	svc := NewBillingService(store, nil, config.StripeConfig{})

	payload := []byte(`{
		"type": "customer.subscription.deleted",
		"data": {"object": {
			"id": "sub_123",
			"customer": "cus_123",
			"metadata": {"owner_id": "user-1"}
		}}
	}`)

	if err := svc.HandleWebhookEvent(context.Background(), payload); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if len(store.upserts) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(store.upserts))
	}
	if store.upserts[0].Status != "canceled" {
		t.Errorf("Status = %s, want canceled", store.upserts[0].Status)
	}
}

func TestHandleWebhookEvent_IgnoresUnknownTypesAndMissingOwner(t *testing.T) {
	store := &fakeSubscriptionStore{}
	svc := NewBillingService(store, nil, config.StripeConfig{})

	unknown := []byte(`{"type":"invoice.paid","data":{"object":{"client_reference_id":"user-1"}}}`)
	if err := svc.HandleWebhookEvent(context.Background(), unknown); err != nil {
		t.Fatalf("unknown type should be ignored, got %v", err)
	}

	noOwner := []byte(`{"type":"checkout.session.completed","data":{"object":{}}}`)
	if err := svc.HandleWebhookEvent(context.Background(), noOwner); err != nil {
		t.Fatalf("event without owner should be ignored, got %v", err)
	}

	if len(store.upserts) != 0 {
		t.Fatalf("expected no upserts, got %d", len(store.upserts))
	}
}

func TestGetSubscription_NoRow(t *testing.T) {
	store := &fakeSubscriptionStore{}
	svc := NewBillingService(store, nil, config.StripeConfig{})

	sub, err := svc.GetSubscription(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetSubscription: %v", err)
	}

	if sub.Status != "none" {
		t.Errorf("Status = %s, want none", sub.Status)
	}
	if sub.OwnerID != "user-1" {
		t.Errorf("OwnerID = %s, want user-1", sub.OwnerID)
	}
}

func TestCreateCheckoutSession_UnknownPlan(t *testing.T) {
	svc := NewBillingService(&fakeSubscriptionStore{}, nil, config.StripeConfig{PricePro: "price_pro"})

	if _, err := svc.CreateCheckoutSession(context.Background(), "user-1", "u@example.com", "platinum"); err != ErrUnknownPlan {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
}
