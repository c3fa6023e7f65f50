package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
)

type NotificationsFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) List(ctx context.Context, ownerID string, f NotificationsFilter) ([]domain.Notification, error) {
	where := []string{"owner_id = $1"}
	args := []any{ownerID}
	i := 2

	if f.UnreadOnly {
		where = append(where, "read = false")
	}

	query := `
		SELECT id, owner_id, type, message, read, created_at
		FROM notifications
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC
	`

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", i)
		args = append(args, f.Limit)
		i++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", i)
		args = append(args, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification

	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE owner_id = $1 AND read = false`,
		ownerID,
	).Scan(&count)
	return count, err
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, owner_id, type, message, read, created_at)
		VALUES ($1, $2, $3, $4, false, now())
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query, n.ID, n.OwnerID, n.Type, n.Message).Scan(&n.CreatedAt)
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
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

func (r *NotificationRepository) MarkAllRead(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE owner_id = $1 AND read = false`,
		ownerID,
	)
	return err
}
