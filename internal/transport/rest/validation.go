package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
	"github.com/Rose003/PaymentFlow33-sub001/internal/repository"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// toStringPtr tolerates both string and numeric JSON values; empty means nil.
func toStringPtr(v interface{}) (*string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		return &t, nil
	case float64:
		s := strconv.FormatInt(int64(t), 10)
		return &s, nil
	default:
		return nil, &ValidationError{Message: "invalid type for string field"}
	}
}

func toFloat(v interface{}, field string) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case string:
		if t == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, &ValidationError{Field: field, Message: field + " must be a number"}
		}
		return f, nil
	default:
		return 0, &ValidationError{Field: field, Message: field + " must be a number"}
	}
}

func toDate(v interface{}, field string) (time.Time, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, &ValidationError{Field: field, Message: field + " must be YYYY-MM-DD"}
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: field + " must be YYYY-MM-DD"}
	}
	return parsed, nil
}

type ReceivableRequest struct {
	ClientID      string
	InvoiceNumber string
	Amount        float64
	PaidAmount    float64
	Status        string
	DueDate       time.Time
	InvoicePDFKey *string
}

type rawReceivableRequest struct {
	ClientID      interface{} `json:"client_id"`
	InvoiceNumber interface{} `json:"invoice_number"`
	Amount        interface{} `json:"amount"`
	PaidAmount    interface{} `json:"paid_amount"`
	Status        interface{} `json:"status"`
	DueDate       interface{} `json:"due_date"`
	InvoicePDFKey interface{} `json:"invoice_pdf_key"`
}

func ValidateReceivableRequest(r *http.Request) (*ReceivableRequest, error) {
	var raw rawReceivableRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	clientID, err := toStringPtr(raw.ClientID)
	if err != nil || clientID == nil {
		return nil, &ValidationError{Field: "client_id", Message: "client_id is required"}
	}

	invoiceNumber, err := toStringPtr(raw.InvoiceNumber)
	if err != nil || invoiceNumber == nil {
		return nil, &ValidationError{Field: "invoice_number", Message: "invoice_number is required"}
	}

	amount, err := toFloat(raw.Amount, "amount")
	if err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, &ValidationError{Field: "amount", Message: "amount must be >= 0"}
	}

	paidAmount, err := toFloat(raw.PaidAmount, "paid_amount")
	if err != nil {
		return nil, err
	}

	dueDate, err := toDate(raw.DueDate, "due_date")
	if err != nil {
		return nil, err
	}

	status, err := toStringPtr(raw.Status)
	if err != nil {
		return nil, &ValidationError{Field: "status", Message: "status must be a string"}
	}

	pdfKey, err := toStringPtr(raw.InvoicePDFKey)
	if err != nil {
		return nil, &ValidationError{Field: "invoice_pdf_key", Message: "invoice_pdf_key must be a string"}
	}

	req := &ReceivableRequest{
		ClientID:      *clientID,
		InvoiceNumber: *invoiceNumber,
		Amount:        amount,
		PaidAmount:    paidAmount,
		DueDate:       dueDate,
		InvoicePDFKey: pdfKey,
	}
	if status != nil {
		req.Status = *status
	}

	return req, nil
}

type ClientRequest struct {
	Name  string
	Email string
	Phone *string

	PreReminderDelay *domain.ReminderDelay
	Reminder1Delay   *domain.ReminderDelay
	Reminder2Delay   *domain.ReminderDelay
	Reminder3Delay   *domain.ReminderDelay
	FinalDelay       *domain.ReminderDelay
}

type rawClientRequest struct {
	Name  interface{} `json:"name"`
	Email interface{} `json:"email"`
	Phone interface{} `json:"phone"`

	// Delay fields accept either a plain day count or {days,hours,minutes};
	// domain.ReminderDelay handles both shapes.
	PreReminderDelay json.RawMessage `json:"pre_reminder_delay"`
	Reminder1Delay   json.RawMessage `json:"reminder_delay_1"`
	Reminder2Delay   json.RawMessage `json:"reminder_delay_2"`
	Reminder3Delay   json.RawMessage `json:"reminder_delay_3"`
	FinalDelay       json.RawMessage `json:"final_delay"`
}

func parseDelayField(raw json.RawMessage, field string) (*domain.ReminderDelay, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var d domain.ReminderDelay
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, &ValidationError{Field: field, Message: field + " must be a day count or {days,hours,minutes}"}
	}
	return &d, nil
}

func ValidateClientRequest(r *http.Request) (*ClientRequest, error) {
	var raw rawClientRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	name, err := toStringPtr(raw.Name)
	if err != nil || name == nil {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	email, err := toStringPtr(raw.Email)
	if err != nil || email == nil {
		return nil, &ValidationError{Field: "email", Message: "email is required"}
	}

	phone, err := toStringPtr(raw.Phone)
	if err != nil {
		return nil, &ValidationError{Field: "phone", Message: "phone must be a string"}
	}

	req := &ClientRequest{
		Name:  *name,
		Email: *email,
		Phone: phone,
	}

	if req.PreReminderDelay, err = parseDelayField(raw.PreReminderDelay, "pre_reminder_delay"); err != nil {
		return nil, err
	}
	if req.Reminder1Delay, err = parseDelayField(raw.Reminder1Delay, "reminder_delay_1"); err != nil {
		return nil, err
	}
	if req.Reminder2Delay, err = parseDelayField(raw.Reminder2Delay, "reminder_delay_2"); err != nil {
		return nil, err
	}
	if req.Reminder3Delay, err = parseDelayField(raw.Reminder3Delay, "reminder_delay_3"); err != nil {
		return nil, err
	}
	if req.FinalDelay, err = parseDelayField(raw.FinalDelay, "final_delay"); err != nil {
		return nil, err
	}

	return req, nil
}

type ExportRequest struct {
	Fields   []string `json:"fields"`
	ClientID *string  `json:"-"`
	Status   *string  `json:"-"`
	Overdue  *bool    `json:"-"`
}

type rawExportRequest struct {
	Fields   []string    `json:"fields"`
	ClientID interface{} `json:"client_id"`
	Status   interface{} `json:"status"`
	Overdue  interface{} `json:"overdue"`
}

func ValidateExportRequest(r *http.Request) (*ExportRequest, error) {
	var raw rawExportRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	clientID, err := toStringPtr(raw.ClientID)
	if err != nil {
		return nil, &ValidationError{Field: "client_id", Message: "client_id must be string or empty"}
	}

	status, err := toStringPtr(raw.Status)
	if err != nil {
		return nil, &ValidationError{Field: "status", Message: "status must be string or empty"}
	}

	var overdue *bool
	switch t := raw.Overdue.(type) {
	case nil:
	case bool:
		overdue = &t
	default:
		return nil, &ValidationError{Field: "overdue", Message: "overdue must be boolean or empty"}
	}

	return &ExportRequest{
		Fields:   raw.Fields,
		ClientID: clientID,
		Status:   status,
		Overdue:  overdue,
	}, nil
}

func (req *ExportRequest) ToRepositoryFilter(ownerIDs []string) repository.ReceivablesFilter {
	return repository.ReceivablesFilter{
		OwnerIDs: ownerIDs,
		ClientID: req.ClientID,
		Status:   req.Status,
		Overdue:  req.Overdue,
	}
}
