package domain

import "time"

// Receivable statuses as written by the application. The escalation labels
// are exact strings; the reminder histogram only counts the five literals
// below ("Relance 1".."Relance finale" and "legal"), anything else is left
// out of it.
const (
	StatusPending     = "pending"
	StatusLate        = "late"
	StatusPaid        = "paid"
	StatusLegal       = "legal"
	StatusPreReminder = "Relance préventive"
	StatusReminder1   = "Relance 1"
	StatusReminder2   = "Relance 2"
	StatusReminder3   = "Relance 3"
	StatusFinalNotice = "Relance finale"
)

type Receivable struct {
	ID            string
	OwnerID       string
	ClientID      string
	InvoiceNumber string
	Amount        float64
	PaidAmount    float64
	Status        string
	DueDate       time.Time
	InvoicePDFKey *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Client is the optionally-joined counterparty record.
	Client *Client
}

// Overdue reports whether the receivable's due date is strictly before now.
func (r Receivable) Overdue(now time.Time) bool {
	return r.DueDate.Before(now)
}

// Outstanding returns the unpaid remainder.
func (r Receivable) Outstanding() float64 {
	rest := r.Amount - r.PaidAmount
	if rest < 0 {
		return 0
	}
	return rest
}
