package repository

import (
	"context"
	"database/sql"

	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name, company_name, password_hash, created_at)
		VALUES ($1, lower($2), $3, $4, $5, now())
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query,
		p.ID, p.Email, p.FullName, p.CompanyName, p.PasswordHash,
	).Scan(&p.CreatedAt)
}

func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `
		SELECT id, email, full_name, company_name, password_hash, created_at
		FROM profiles
		WHERE email = lower($1)
	`
	var p domain.Profile
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&p.ID, &p.Email, &p.FullName, &p.CompanyName, &p.PasswordHash, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, email, full_name, company_name, password_hash, created_at
		FROM profiles
		WHERE id = $1
	`
	var p domain.Profile
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Email, &p.FullName, &p.CompanyName, &p.PasswordHash, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET password_hash = $1 WHERE id = $2`,
		passwordHash, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListInviterIDs returns the ids of accounts that invited the given email.
// Unioned with the user's own id they form the owner-id set all tenant-scoped
// queries filter by.
func (r *ProfileRepository) ListInviterIDs(ctx context.Context, email string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT inviter_id FROM invited_users WHERE email = lower($1)`,
		email,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
