package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
)

type ReceivablesFilter struct {
	// OwnerIDs is the resolved tenant set: the current user plus any accounts
	// that invited them. Required.
	OwnerIDs []string
	ClientID *string
	Status   *string
	Overdue  *bool
}

type ReceivableRepository struct {
	db *sql.DB
}

func NewReceivableRepository(db *sql.DB) *ReceivableRepository {
	return &ReceivableRepository{db: db}
}

const receivableColumns = `
	r.id,
	r.owner_id,
	r.client_id,
	r.invoice_number,
	r.amount,
	r.paid_amount,
	r.status,
	r.due_date,
	r.invoice_pdf_key,
	r.created_at,
	r.updated_at,

	c.id,
	c.owner_id,
	c.name,
	c.email,
	c.phone,
	c.pre_reminder_delay,
	c.reminder_delay_1,
	c.reminder_delay_2,
	c.reminder_delay_3,
	c.final_delay
`

func (r *ReceivableRepository) List(ctx context.Context, f ReceivablesFilter) ([]domain.Receivable, error) {
	baseQuery := `
		SELECT ` + receivableColumns + `
		FROM receivables r
		LEFT JOIN clients c ON c.id = r.client_id
	`

	where := []string{"r.owner_id = ANY($1)"}
	args := []any{f.OwnerIDs}
	i := 2

	if f.ClientID != nil {
		where = append(where, fmt.Sprintf("r.client_id = $%d", i))
		args = append(args, *f.ClientID)
		i++
	}

	if f.Status != nil {
		where = append(where, fmt.Sprintf("r.status = $%d", i))
		args = append(args, *f.Status)
		i++
	}

	if f.Overdue != nil && *f.Overdue {
		where = append(where, "r.due_date < now()")
	}

	query := baseQuery + " WHERE " + strings.Join(where, " AND ") + " ORDER BY r.due_date"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Receivable

	for rows.Next() {
		rec, err := scanReceivable(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ReceivableRepository) Get(ctx context.Context, id string, ownerIDs []string) (*domain.Receivable, error) {
	query := `
		SELECT ` + receivableColumns + `
		FROM receivables r
		LEFT JOIN clients c ON c.id = r.client_id
		WHERE r.id = $1 AND r.owner_id = ANY($2)
	`

	rows, err := r.db.QueryContext(ctx, query, id, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}

	rec, err := scanReceivable(rows)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ReceivableRepository) Create(ctx context.Context, rec *domain.Receivable) error {
	query := `
		INSERT INTO receivables
			(id, owner_id, client_id, invoice_number, amount, paid_amount, status, due_date, invoice_pdf_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING created_at, updated_at
	`

	return r.db.QueryRowContext(ctx, query,
		rec.ID,
		rec.OwnerID,
		rec.ClientID,
		rec.InvoiceNumber,
		rec.Amount,
		rec.PaidAmount,
		rec.Status,
		rec.DueDate,
		rec.InvoicePDFKey,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

func (r *ReceivableRepository) Update(ctx context.Context, rec *domain.Receivable, ownerIDs []string) error {
	query := `
		UPDATE receivables
		SET client_id = $1,
		    invoice_number = $2,
		    amount = $3,
		    paid_amount = $4,
		    status = $5,
		    due_date = $6,
		    invoice_pdf_key = $7,
		    updated_at = now()
		WHERE id = $8 AND owner_id = ANY($9)
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		rec.ClientID,
		rec.InvoiceNumber,
		rec.Amount,
		rec.PaidAmount,
		rec.Status,
		rec.DueDate,
		rec.InvoicePDFKey,
		rec.ID,
		ownerIDs,
	).Scan(&rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return sql.ErrNoRows
	}
	return err
}

// UpdateStatus stamps updated_at; for "paid" transitions that timestamp is
// what the payment-delay metric reads as the settlement date.
func (r *ReceivableRepository) UpdateStatus(ctx context.Context, id, status string, ownerIDs []string) (time.Time, error) {
	query := `
		UPDATE receivables
		SET status = $1, updated_at = now()
		WHERE id = $2 AND owner_id = ANY($3)
		RETURNING updated_at
	`

	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, status, id, ownerIDs).Scan(&updatedAt)
	return updatedAt, err
}

func (r *ReceivableRepository) Delete(ctx context.Context, id string, ownerIDs []string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM receivables WHERE id = $1 AND owner_id = ANY($2)`, id, ownerIDs)
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

func scanReceivable(rows *sql.Rows) (domain.Receivable, error) {
	var (
		rec domain.Receivable

		clientID    sql.NullString
		clientOwner sql.NullString
		clientName  sql.NullString
		clientEmail sql.NullString
		clientPhone sql.NullString

		preDelay  []byte
		delay1    []byte
		delay2    []byte
		delay3    []byte
		lastDelay []byte
	)

	if err := rows.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.ClientID,
		&rec.InvoiceNumber,
		&rec.Amount,
		&rec.PaidAmount,
		&rec.Status,
		&rec.DueDate,
		&rec.InvoicePDFKey,
		&rec.CreatedAt,
		&rec.UpdatedAt,

		&clientID,
		&clientOwner,
		&clientName,
		&clientEmail,
		&clientPhone,
		&preDelay,
		&delay1,
		&delay2,
		&delay3,
		&lastDelay,
	); err != nil {
		return domain.Receivable{}, err
	}

	if clientID.Valid {
		c := domain.Client{
			ID:      clientID.String,
			OwnerID: clientOwner.String,
			Name:    clientName.String,
			Email:   clientEmail.String,
		}
		if clientPhone.Valid {
			phone := clientPhone.String
			c.Phone = &phone
		}

		var err error
		if c.PreReminderDelay, err = parseDelay(preDelay); err != nil {
			return domain.Receivable{}, err
		}
		if c.Reminder1Delay, err = parseDelay(delay1); err != nil {
			return domain.Receivable{}, err
		}
		if c.Reminder2Delay, err = parseDelay(delay2); err != nil {
			return domain.Receivable{}, err
		}
		if c.Reminder3Delay, err = parseDelay(delay3); err != nil {
			return domain.Receivable{}, err
		}
		if c.FinalDelay, err = parseDelay(lastDelay); err != nil {
			return domain.Receivable{}, err
		}

		rec.Client = &c
	}

	return rec, nil
}

func parseDelay(raw []byte) (*domain.ReminderDelay, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var d domain.ReminderDelay
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("invalid reminder delay %q: %w", string(raw), err)
	}
	return &d, nil
}
