package repository

import (
	"context"
	"database/sql"

	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
)

type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Subscription, error) {
	query := `
		SELECT id, owner_id, plan, status, stripe_customer_id, stripe_subscription_id, current_period_end, updated_at
		FROM subscriptions
		WHERE owner_id = $1
	`

	var s domain.Subscription
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&s.ID,
		&s.OwnerID,
		&s.Plan,
		&s.Status,
		&s.StripeCustomerID,
		&s.StripeSubID,
		&s.CurrentPeriodEnd,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert keeps one subscription row per owner; webhook events replay safely.
func (r *SubscriptionRepository) Upsert(ctx context.Context, s *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions
			(owner_id, plan, status, stripe_customer_id, stripe_subscription_id, current_period_end, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (owner_id) DO UPDATE
		SET plan = EXCLUDED.plan,
		    status = EXCLUDED.status,
		    stripe_customer_id = COALESCE(EXCLUDED.stripe_customer_id, subscriptions.stripe_customer_id),
		    stripe_subscription_id = COALESCE(EXCLUDED.stripe_subscription_id, subscriptions.stripe_subscription_id),
		    current_period_end = EXCLUDED.current_period_end,
		    updated_at = now()
		RETURNING id, updated_at
	`

	return r.db.QueryRowContext(ctx, query,
		s.OwnerID,
		s.Plan,
		s.Status,
		s.StripeCustomerID,
		s.StripeSubID,
		s.CurrentPeriodEnd,
	).Scan(&s.ID, &s.UpdatedAt)
}
