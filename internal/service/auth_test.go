package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
)

type fakeProfileStore struct {
	byEmail map[string]*domain.Profile
	byID    map[string]*domain.Profile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		byEmail: map[string]*domain.Profile{},
		byID:    map[string]*domain.Profile{},
	}
}

func (f *fakeProfileStore) Create(ctx context.Context, p *domain.Profile) error {
	f.byEmail[p.Email] = p
	f.byID[p.ID] = p
	return nil
}

func (f *fakeProfileStore) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	if p, ok := f.byEmail[strings.ToLower(email)]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeProfileStore) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeProfileStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	if p, ok := f.byID[userID]; ok {
		p.PasswordHash = passwordHash
	}
	return nil
}

type fakeTokenStore struct {
	nextID  int64
	deleted []int64
}

func (f *fakeTokenStore) Create(ctx context.Context, userID, plainToken string, expiresAt *time.Time) (int64, error) {
	f.nextID++
	return f.nextID, nil
}

func (f *fakeTokenStore) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeResetStore struct {
	tokens map[string]string // token -> userID
}

func (f *fakeResetStore) Create(ctx context.Context, userID, plainToken string, ttl time.Duration) error {
	if f.tokens == nil {
		f.tokens = map[string]string{}
	}
	f.tokens[plainToken] = userID
	return nil
}

func (f *fakeResetStore) Consume(ctx context.Context, plainToken string) (*domain.PasswordResetToken, error) {
	userID, ok := f.tokens[plainToken]
	if !ok {
		return nil, sql.ErrNoRows
	}
	delete(f.tokens, plainToken)
	return &domain.PasswordResetToken{TokenHash: plainToken, UserID: userID}, nil
}

func newAuthService(profiles *fakeProfileStore, tokens *fakeTokenStore, resets *fakeResetStore) *AuthService {
	return NewAuthService(profiles, tokens, resets, nil, mailTestConfig())
}

func TestSignupAndLogin(t *testing.T) {
	profiles := newFakeProfileStore()
	svc := newAuthService(profiles, &fakeTokenStore{}, &fakeResetStore{})

	p, err := svc.Signup(context.Background(), "User@Example.com", "secret", "Jean Dupont", nil)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if p.Email != "user@example.com" {
		t.Errorf("email not normalized: %s", p.Email)
	}
	if p.PasswordHash == "secret" || p.PasswordHash == "" {
		t.Error("password should be stored hashed")
	}

	logged, token, err := svc.Login(context.Background(), "user@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != p.ID {
		t.Errorf("logged in as %s, want %s", logged.ID, p.ID)
	}
	// bearer tokens carry the row id for direct lookup
	if !strings.Contains(token, "|") {
		t.Errorf("token %q should have id|secret form", token)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	profiles := newFakeProfileStore()
	svc := newAuthService(profiles, &fakeTokenStore{}, &fakeResetStore{})

	if _, err := svc.Signup(context.Background(), "user@example.com", "secret", "Jean", nil); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "user@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "secret"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	profiles := newFakeProfileStore()
	svc := newAuthService(profiles, &fakeTokenStore{}, &fakeResetStore{})

	if _, err := svc.Signup(context.Background(), "user@example.com", "secret", "Jean", nil); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Signup(context.Background(), "USER@example.com", "other", "Paul", nil); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	tokens := &fakeTokenStore{}
	svc := newAuthService(newFakeProfileStore(), tokens, &fakeResetStore{})

	if err := svc.Logout(context.Background(), 42); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(tokens.deleted) != 1 || tokens.deleted[0] != 42 {
		t.Fatalf("expected token 42 deleted, got %v", tokens.deleted)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	profiles := newFakeProfileStore()
	resets := &fakeResetStore{}
	svc := newAuthService(profiles, &fakeTokenStore{}, resets)

	if _, err := svc.Signup(context.Background(), "user@example.com", "old-secret", "Jean", nil); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.RequestPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if len(resets.tokens) != 1 {
		t.Fatalf("expected 1 reset token, got %d", len(resets.tokens))
	}

	var token string
	for tk := range resets.tokens {
		token = tk
	}

	if err := svc.ResetPassword(context.Background(), token, "new-secret"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "user@example.com", "new-secret"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "user@example.com", "old-secret"); err != ErrInvalidCredentials {
		t.Fatalf("old password should no longer work, got %v", err)
	}

	// a consumed token cannot be replayed
	if err := svc.ResetPassword(context.Background(), token, "again"); err == nil {
		t.Fatal("expected error for reused reset token")
	}
}

func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	resets := &fakeResetStore{}
	svc := newAuthService(newFakeProfileStore(), &fakeTokenStore{}, resets)

	if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if len(resets.tokens) != 0 {
		t.Fatalf("no token should be issued for unknown email, got %d", len(resets.tokens))
	}
}
