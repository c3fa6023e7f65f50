package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/clients"
	"github.com/Rose003/PaymentFlow33-sub001/internal/config"
	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

const (
	accessTokenTTL = 30 * 24 * time.Hour
	resetTokenTTL  = 2 * time.Hour
)

type ProfileStore interface {
	Create(ctx context.Context, p *domain.Profile) error
	FindByEmail(ctx context.Context, email string) (*domain.Profile, error)
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type AccessTokenStore interface {
	Create(ctx context.Context, userID, plainToken string, expiresAt *time.Time) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type ResetTokenStore interface {
	Create(ctx context.Context, userID, plainToken string, ttl time.Duration) error
	Consume(ctx context.Context, plainToken string) (*domain.PasswordResetToken, error)
}

type AuthService struct {
	profiles ProfileStore
	tokens   AccessTokenStore
	resets   ResetTokenStore
	mailer   *clients.MailerClient
	mailCfg  config.MailConfig
}

func NewAuthService(
	profiles ProfileStore,
	tokens AccessTokenStore,
	resets ResetTokenStore,
	mailer *clients.MailerClient,
	mailCfg config.MailConfig,
) *AuthService {
	return &AuthService{
		profiles: profiles,
		tokens:   tokens,
		resets:   resets,
		mailer:   mailer,
		mailCfg:  mailCfg,
	}
}

func (s *AuthService) Signup(ctx context.Context, email, password, fullName string, companyName *string) (*domain.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if _, err := s.profiles.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &domain.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		CompanyName:  companyName,
		PasswordHash: hash,
	}

	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	return p, nil
}

// Login verifies credentials and issues a bearer token "id|secret"; only its
// sha256 is stored.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Profile, string, error) {
	p, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find profile: %w", err)
	}

	if !VerifyPassword(password, p.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	secret, err := randomToken()
	if err != nil {
		return nil, "", err
	}

	expires := time.Now().Add(accessTokenTTL)
	id, err := s.tokens.Create(ctx, p.ID, secret, &expires)
	if err != nil {
		return nil, "", fmt.Errorf("store token: %w", err)
	}

	return p, fmt.Sprintf("%d|%s", id, secret), nil
}

func (s *AuthService) Logout(ctx context.Context, tokenID int64) error {
	return s.tokens.Delete(ctx, tokenID)
}

// RequestPasswordReset always succeeds from the caller's point of view so the
// endpoint does not leak which emails exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	p, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return fmt.Errorf("find profile: %w", err)
	}

	token := uuid.NewString()
	if err := s.resets.Create(ctx, p.ID, token, resetTokenTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if s.mailer == nil {
		return nil
	}

	link := fmt.Sprintf("%s?token=%s", s.mailCfg.ResetURL, token)
	item := clients.MailItem{
		Settings: clients.MailSettings{
			FromName:  s.mailCfg.FromName,
			FromEmail: s.mailCfg.FromEmail,
		},
		To:      p.Email,
		Subject: "Réinitialisation de votre mot de passe",
		HTML: fmt.Sprintf(
			`<p>Bonjour %s,</p><p>Pour réinitialiser votre mot de passe, cliquez sur <a href="%s">ce lien</a>. Il expire dans 2 heures.</p>`,
			p.FullName, link,
		),
	}

	if err := s.mailer.SendBatch(ctx, []clients.MailItem{item}); err != nil {
		log.Printf("[AUTH] reset mail send error: %v", err)
	}

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidCredentials
	}

	t, err := s.resets.Consume(ctx, token)
	if err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.profiles.UpdatePassword(ctx, t.UserID, hash)
}

func randomToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
