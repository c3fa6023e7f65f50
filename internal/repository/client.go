package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
)

type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `
	c.id,
	c.owner_id,
	c.name,
	c.email,
	c.phone,
	c.pre_reminder_delay,
	c.reminder_delay_1,
	c.reminder_delay_2,
	c.reminder_delay_3,
	c.final_delay,
	c.created_at,
	c.updated_at
`

func (r *ClientRepository) List(ctx context.Context, ownerIDs []string) ([]domain.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients c
		WHERE c.owner_id = ANY($1)
		ORDER BY c.name
	`

	rows, err := r.db.QueryContext(ctx, query, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Client

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ClientRepository) Get(ctx context.Context, id string, ownerIDs []string) (*domain.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients c
		WHERE c.id = $1 AND c.owner_id = ANY($2)
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

	c, err := scanClient(rows)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	pre, d1, d2, d3, final, err := marshalDelays(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO clients
			(id, owner_id, name, email, phone, pre_reminder_delay, reminder_delay_1, reminder_delay_2, reminder_delay_3, final_delay, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING created_at, updated_at
	`

	return r.db.QueryRowContext(ctx, query,
		c.ID, c.OwnerID, c.Name, c.Email, c.Phone,
		pre, d1, d2, d3, final,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client, ownerIDs []string) error {
	pre, d1, d2, d3, final, err := marshalDelays(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE clients
		SET name = $1,
		    email = $2,
		    phone = $3,
		    pre_reminder_delay = $4,
		    reminder_delay_1 = $5,
		    reminder_delay_2 = $6,
		    reminder_delay_3 = $7,
		    final_delay = $8,
		    updated_at = now()
		WHERE id = $9 AND owner_id = ANY($10)
		RETURNING updated_at
	`

	return r.db.QueryRowContext(ctx, query,
		c.Name, c.Email, c.Phone,
		pre, d1, d2, d3, final,
		c.ID, ownerIDs,
	).Scan(&c.UpdatedAt)
}

func (r *ClientRepository) Delete(ctx context.Context, id string, ownerIDs []string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1 AND owner_id = ANY($2)`, id, ownerIDs)
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

func scanClient(rows *sql.Rows) (domain.Client, error) {
	var (
		c     domain.Client
		phone sql.NullString

		preDelay  []byte
		delay1    []byte
		delay2    []byte
		delay3    []byte
		lastDelay []byte
	)

	if err := rows.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Name,
		&c.Email,
		&phone,
		&preDelay,
		&delay1,
		&delay2,
		&delay3,
		&lastDelay,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return domain.Client{}, err
	}

	if phone.Valid {
		p := phone.String
		c.Phone = &p
	}

	var err error
	if c.PreReminderDelay, err = parseDelay(preDelay); err != nil {
		return domain.Client{}, err
	}
	if c.Reminder1Delay, err = parseDelay(delay1); err != nil {
		return domain.Client{}, err
	}
	if c.Reminder2Delay, err = parseDelay(delay2); err != nil {
		return domain.Client{}, err
	}
	if c.Reminder3Delay, err = parseDelay(delay3); err != nil {
		return domain.Client{}, err
	}
	if c.FinalDelay, err = parseDelay(lastDelay); err != nil {
		return domain.Client{}, err
	}

	return c, nil
}

func marshalDelays(c *domain.Client) (pre, d1, d2, d3, final []byte, err error) {
	marshal := func(d *domain.ReminderDelay) ([]byte, error) {
		if d == nil {
			return nil, nil
		}
		return json.Marshal(d)
	}

	if pre, err = marshal(c.PreReminderDelay); err != nil {
		return
	}
	if d1, err = marshal(c.Reminder1Delay); err != nil {
		return
	}
	if d2, err = marshal(c.Reminder2Delay); err != nil {
		return
	}
	if d3, err = marshal(c.Reminder3Delay); err != nil {
		return
	}
	final, err = marshal(c.FinalDelay)
	return
}
