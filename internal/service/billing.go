package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/clients"
	"github.com/Rose003/PaymentFlow33-sub001/internal/config"
	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
)

var ErrUnknownPlan = errors.New("unknown plan")

type SubscriptionStore interface {
	GetByOwner(ctx context.Context, ownerID string) (*domain.Subscription, error)
	Upsert(ctx context.Context, s *domain.Subscription) error
}

type BillingService struct {
	subs     SubscriptionStore
	checkout *clients.CheckoutClient
	cfg      config.StripeConfig
}

func NewBillingService(subs SubscriptionStore, checkout *clients.CheckoutClient, cfg config.StripeConfig) *BillingService {
	return &BillingService{
		subs:     subs,
		checkout: checkout,
		cfg:      cfg,
	}
}

func (s *BillingService) priceForPlan(plan string) (string, error) {
	switch plan {
	case "starter":
		return s.cfg.PriceStarter, nil
	case "pro":
		return s.cfg.PricePro, nil
	case "enterprise":
		return s.cfg.PriceEnterprise, nil
	default:
		return "", ErrUnknownPlan
	}
}

// CreateCheckoutSession resolves the plan's price id and asks the external
// checkout function for a hosted Checkout URL to redirect the user to.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, userID, userEmail, plan string) (string, error) {
	priceID, err := s.priceForPlan(plan)
	if err != nil {
		return "", err
	}
	if priceID == "" {
		return "", fmt.Errorf("no price configured for plan %q", plan)
	}

	return s.checkout.CreateSession(ctx, priceID, userEmail, userID, s.cfg.SuccessURL, s.cfg.CancelURL)
}

func (s *BillingService) GetSubscription(ctx context.Context, ownerID string) (*domain.Subscription, error) {
	sub, err := s.subs.GetByOwner(ctx, ownerID)
	if err == sql.ErrNoRows {
		// No row yet means no paid plan; the dashboard gate treats this as
		// inactive rather than an error.
		return &domain.Subscription{OwnerID: ownerID, Status: "none"}, nil
	}
	return sub, err
}

// webhookEvent is the subset of a Stripe event the subscription sync needs.
type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                string `json:"id"`
			Customer          string `json:"customer"`
			Subscription      string `json:"subscription"`
			ClientReferenceID string `json:"client_reference_id"`
			Status            string `json:"status"`
			CurrentPeriodEnd  int64  `json:"current_period_end"`
			Metadata          struct {
				OwnerID string `json:"owner_id"`
				Plan    string `json:"plan"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// VerifyWebhookSignature checks the Stripe-Signature header (t=...,v1=...)
// against the shared webhook secret. Events older than 5 minutes are rejected.
func (s *BillingService) VerifyWebhookSignature(payload []byte, header string) error {
	if s.cfg.WebhookSecret == "" {
		return errors.New("webhook secret not configured")
	}

	var ts string
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == "" || len(sigs) == 0 {
		return errors.New("malformed signature header")
	}

	tsInt, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return errors.New("malformed signature timestamp")
	}
	if time.Since(time.Unix(tsInt, 0)) > 5*time.Minute {
		return errors.New("signature timestamp too old")
	}

	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range sigs {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return errors.New("signature mismatch")
}

// HandleWebhookEvent syncs the subscriptions table from checkout and
// subscription lifecycle events. Unknown event types are ignored.
func (s *BillingService) HandleWebhookEvent(ctx context.Context, payload []byte) error {
	var ev webhookEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("parse webhook event: %w", err)
	}

	obj := ev.Data.Object

	ownerID := obj.Metadata.OwnerID
	if ownerID == "" {
		ownerID = obj.ClientReferenceID
	}
	if ownerID == "" {
		return nil
	}

	sub := &domain.Subscription{
		OwnerID: ownerID,
		Plan:    obj.Metadata.Plan,
	}
	if obj.Customer != "" {
		sub.StripeCustomerID = &obj.Customer
	}
	if obj.CurrentPeriodEnd > 0 {
		end := time.Unix(obj.CurrentPeriodEnd, 0)
		sub.CurrentPeriodEnd = &end
	}

	switch ev.Type {
	case "checkout.session.completed":
		sub.Status = "active"
		if obj.Subscription != "" {
			sub.StripeSubID = &obj.Subscription
		}
	case "customer.subscription.updated":
		sub.Status = obj.Status
		if obj.ID != "" {
			sub.StripeSubID = &obj.ID
		}
	case "customer.subscription.deleted":
		sub.Status = "canceled"
		if obj.ID != "" {
			sub.StripeSubID = &obj.ID
		}
	default:
		return nil
	}

	return s.subs.Upsert(ctx, sub)
}
