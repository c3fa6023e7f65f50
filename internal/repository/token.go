package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
)

type AccessTokenRepository struct {
	db *sql.DB
}

func NewAccessTokenRepository(db *sql.DB) *AccessTokenRepository {
	return &AccessTokenRepository{db: db}
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return fmt.Sprintf("%x", sum)
}

func (r *AccessTokenRepository) Create(ctx context.Context, userID, plainToken string, expiresAt *time.Time) (int64, error) {
	query := `
		INSERT INTO access_tokens (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, hashToken(plainToken), userID, expiresAt).Scan(&id)
	return id, err
}

// FindTokenByPlainToken resolves a bearer token of the form "id|secret" (the
// id part is optional) against its sha256 stored at rest.
func (r *AccessTokenRepository) FindTokenByPlainToken(ctx context.Context, plainToken string) (*domain.AccessToken, error) {
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return nil, errors.New("empty token")
	}

	var (
		tokenID   *int64
		tokenPart string
	)

	if idx := strings.Index(plainToken, "|"); idx > 0 {
		idStr := plainToken[:idx]
		tokenPart = plainToken[idx+1:]

		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			tokenID = &id
		}
	} else {
		tokenPart = plainToken
	}

	hashStr := hashToken(tokenPart)

	var t domain.AccessToken

	if tokenID != nil {
		query := `
			SELECT id, token, user_id, expires_at
			FROM access_tokens
			WHERE id = $1
			  AND (expires_at IS NULL OR expires_at > $2)
		`

		err := r.db.QueryRowContext(ctx, query, *tokenID, time.Now()).Scan(
			&t.ID,
			&t.TokenHash,
			&t.UserID,
			&t.ExpiresAt,
		)
		if err == nil && t.TokenHash == hashStr {
			return &t, nil
		}
	}

	query := `
		SELECT id, token, user_id, expires_at
		FROM access_tokens
		WHERE token = $1
		  AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.db.QueryRowContext(ctx, query, hashStr, time.Now()).Scan(
		&t.ID,
		&t.TokenHash,
		&t.UserID,
		&t.ExpiresAt,
	)
	if err != nil {
		return nil, errors.New("token not found")
	}

	return &t, nil
}

func (r *AccessTokenRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE id = $1`, id)
	return err
}

type PasswordResetTokenRepository struct {
	db *sql.DB
}

func NewPasswordResetTokenRepository(db *sql.DB) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db}
}

func (r *PasswordResetTokenRepository) Create(ctx context.Context, userID, plainToken string, ttl time.Duration) error {
	query := `
		INSERT INTO password_reset_tokens (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, now())
	`
	_, err := r.db.ExecContext(ctx, query, hashToken(plainToken), userID, time.Now().Add(ttl))
	return err
}

// Consume validates a plain reset token and marks it used in one step.
func (r *PasswordResetTokenRepository) Consume(ctx context.Context, plainToken string) (*domain.PasswordResetToken, error) {
	query := `
		UPDATE password_reset_tokens
		SET used_at = now()
		WHERE token = $1
		  AND expires_at > now()
		  AND used_at IS NULL
		RETURNING id, token, user_id, expires_at, used_at
	`

	var t domain.PasswordResetToken
	err := r.db.QueryRowContext(ctx, query, hashToken(plainToken)).Scan(
		&t.ID,
		&t.TokenHash,
		&t.UserID,
		&t.ExpiresAt,
		&t.UsedAt,
	)
	if err != nil {
		return nil, errors.New("reset token invalid or expired")
	}

	return &t, nil
}
