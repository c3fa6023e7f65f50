package domain

import "time"

type Profile struct {
	ID           string
	Email        string
	FullName     string
	CompanyName  *string
	PasswordHash string
	CreatedAt    time.Time
}

// InvitedUser maps a collaborator email to the account that invited it. The
// inviter ids of the current user's email are unioned with the user's own id
// to form the owner-id set every query is scoped by.
type InvitedUser struct {
	ID        int64
	Email     string
	InviterID string
	CreatedAt time.Time
}

type AccessToken struct {
	ID        int64
	TokenHash string
	UserID    string
	ExpiresAt *time.Time
}

type PasswordResetToken struct {
	ID        int64
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	UsedAt    *time.Time
}

type Subscription struct {
	ID               int64
	OwnerID          string
	Plan             string
	Status           string
	StripeCustomerID *string
	StripeSubID      *string
	CurrentPeriodEnd *time.Time
	UpdatedAt        time.Time
}

// Active reports whether the subscription currently grants dashboard access.
func (s Subscription) Active(now time.Time) bool {
	if s.Status != "active" && s.Status != "trialing" {
		return false
	}
	if s.CurrentPeriodEnd != nil && s.CurrentPeriodEnd.Before(now) {
		return false
	}
	return true
}
