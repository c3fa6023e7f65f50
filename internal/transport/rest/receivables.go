package rest

import (
	"bytes"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
	"github.com/Rose003/PaymentFlow33-sub001/internal/repository"

	"github.com/go-chi/chi/v5"
)

type clientPayload struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

type receivablePayload struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"owner_id"`
	ClientID      string         `json:"client_id"`
	InvoiceNumber string         `json:"invoice_number"`
	Amount        float64        `json:"amount"`
	PaidAmount    float64        `json:"paid_amount"`
	Status        string         `json:"status"`
	DueDate       string         `json:"due_date"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Client        *clientPayload `json:"client,omitempty"`
}

func toReceivablePayload(r domain.Receivable) receivablePayload {
	p := receivablePayload{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		ClientID:      r.ClientID,
		InvoiceNumber: r.InvoiceNumber,
		Amount:        r.Amount,
		PaidAmount:    r.PaidAmount,
		Status:        r.Status,
		DueDate:       r.DueDate.Format("2006-01-02"),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Client != nil {
		p.Client = &clientPayload{
			ID:    r.Client.ID,
			Name:  r.Client.Name,
			Email: r.Client.Email,
			Phone: r.Client.Phone,
		}
	}
	return p
}

func (h *Handler) listReceivables(w http.ResponseWriter, r *http.Request) {
	_, ownerIDs, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	filter := repository.ReceivablesFilter{}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("client_id"); v != "" {
		filter.ClientID = &v
	}
	if q.Get("overdue") == "true" {
		overdue := true
		filter.Overdue = &overdue
	}

	list, err := h.receivables.List(r.Context(), ownerIDs, filter)
	if err != nil {
		log.Printf("[HTTP] listReceivables error: %v", err)
		ErrorInternal(w, "failed to load receivables")
		return
	}

	payload := make([]receivablePayload, 0, len(list))
	for _, rec := range list {
		payload = append(payload, toReceivablePayload(rec))
	}

	Success(w, "", payload)
}

func (h *Handler) getReceivable(w http.ResponseWriter, r *http.Request) {
	_, ownerIDs, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	rec, err := h.receivables.Get(r.Context(), chi.URLParam(r, "id"), ownerIDs)
	if err != nil {
		if err == sql.ErrNoRows {
			ErrorNotFound(w, "receivable not found")
			return
		}
		log.Printf("[HTTP] getReceivable error: %v", err)
		ErrorInternal(w, "failed to load receivable")
		return
	}

	Success(w, "", toReceivablePayload(*rec))
}

func (h *Handler) createReceivable(w http.ResponseWriter, r *http.Request) {
	userID, _, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	req, err := ValidateReceivableRequest(r)
	if err != nil {
		if _, ok := err.(*ValidationError); ok {
			ErrorBadRequest(w, err.Error())
			return
		}
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	rec := &domain.Receivable{
		OwnerID:       userID,
		ClientID:      req.ClientID,
		InvoiceNumber: req.InvoiceNumber,
		Amount:        req.Amount,
		PaidAmount:    req.PaidAmount,
		Status:        req.Status,
		DueDate:       req.DueDate,
		InvoicePDFKey: req.InvoicePDFKey,
	}

	created, err := h.receivables.Create(r.Context(), rec)
	if err != nil {
		log.Printf("[HTTP] createReceivable error: %v", err)
		ErrorInternal(w, "failed to create receivable")
		return
	}

	SuccessCreated(w, "Créance ajoutée", toReceivablePayload(*created))
}

func (h *Handler) updateReceivable(w http.ResponseWriter, r *http.Request) {
	_, ownerIDs, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	existing, err := h.receivables.Get(r.Context(), id, ownerIDs)
	if err != nil {
		if err == sql.ErrNoRows {
			ErrorNotFound(w, "receivable not found")
			return
		}
		log.Printf("[HTTP] updateReceivable error: %v", err)
		ErrorInternal(w, "failed to load receivable")
		return
	}

	req, err := ValidateReceivableRequest(r)
	if err != nil {
		if _, ok := err.(*ValidationError); ok {
			ErrorBadRequest(w, err.Error())
			return
		}
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	rec := &domain.Receivable{
		ID:            id,
		OwnerID:       existing.OwnerID,
		ClientID:      req.ClientID,
		InvoiceNumber: req.InvoiceNumber,
		Amount:        req.Amount,
		PaidAmount:    req.PaidAmount,
		Status:        req.Status,
		DueDate:       req.DueDate,
		InvoicePDFKey: req.InvoicePDFKey,
	}
	if rec.Status == "" {
		rec.Status = existing.Status
	}

	if err := h.receivables.Update(r.Context(), rec, ownerIDs); err != nil {
		log.Printf("[HTTP] updateReceivable error: %v", err)
		ErrorInternal(w, "failed to update receivable")
		return
	}

	Success(w, "Créance mise à jour", toReceivablePayload(*rec))
}

func (h *Handler) markReceivablePaid(w http.ResponseWriter, r *http.Request) {
	_, ownerIDs, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.receivables.MarkPaid(r.Context(), id, ownerIDs); err != nil {
		if err == sql.ErrNoRows {
			ErrorNotFound(w, "receivable not found")
			return
		}
		log.Printf("[HTTP] markReceivablePaid error: %v", err)
		ErrorInternal(w, "failed to update receivable")
		return
	}

	Success(w, "Créance réglée", nil)
}

func (h *Handler) uploadReceivablePDF(w http.ResponseWriter, r *http.Request) {
	_, ownerIDs, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10 MB
		ErrorBadRequest(w, "invalid form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		ErrorBadRequest(w, "file required")
		return
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(file); err != nil {
		ErrorInternal(w, "failed to read file")
		return
	}

	rec, err := h.receivables.AttachInvoicePDF(r.Context(), chi.URLParam(r, "id"), header.Filename, buf.Bytes(), ownerIDs)
	if err != nil {
		if err == sql.ErrNoRows {
			ErrorNotFound(w, "receivable not found")
			return
		}
		log.Printf("[HTTP] uploadReceivablePDF error: %v", err)
		ErrorInternal(w, "failed to store invoice pdf")
		return
	}

	SuccessCreated(w, "Facture PDF enregistrée", toReceivablePayload(*rec))
}

func (h *Handler) deleteReceivable(w http.ResponseWriter, r *http.Request) {
	_, ownerIDs, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.receivables.Delete(r.Context(), chi.URLParam(r, "id"), ownerIDs); err != nil {
		if err == sql.ErrNoRows {
			ErrorNotFound(w, "receivable not found")
			return
		}
		log.Printf("[HTTP] deleteReceivable error: %v", err)
		ErrorInternal(w, "failed to delete receivable")
		return
	}

	Success(w, "Créance supprimée", nil)
}
