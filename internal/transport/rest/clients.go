package rest

import (
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	_, ownerIDs, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	list, err := h.clientsSvc.List(r.Context(), ownerIDs)
	if err != nil {
		log.Printf("[HTTP] listClients error: %v", err)
		ErrorInternal(w, "failed to load clients")
		return
	}

	Success(w, "", list)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	_, ownerIDs, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	c, err := h.clientsSvc.Get(r.Context(), chi.URLParam(r, "id"), ownerIDs)
	if err != nil {
		if err == sql.ErrNoRows {
			ErrorNotFound(w, "client not found")
			return
		}
		log.Printf("[HTTP] getClient error: %v", err)
		ErrorInternal(w, "failed to load client")
		return
	}

	Success(w, "", c)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	userID, _, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	req, err := ValidateClientRequest(r)
	if err != nil {
		if _, ok := err.(*ValidationError); ok {
			ErrorBadRequest(w, err.Error())
			return
		}
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	c := &domain.Client{
		OwnerID:          userID,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		PreReminderDelay: req.PreReminderDelay,
		Reminder1Delay:   req.Reminder1Delay,
		Reminder2Delay:   req.Reminder2Delay,
		Reminder3Delay:   req.Reminder3Delay,
		FinalDelay:       req.FinalDelay,
	}

	created, err := h.clientsSvc.Create(r.Context(), c)
	if err != nil {
		log.Printf("[HTTP] createClient error: %v", err)
		ErrorInternal(w, "failed to create client")
		return
	}

	SuccessCreated(w, "Client ajouté", created)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	_, ownerIDs, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	existing, err := h.clientsSvc.Get(r.Context(), id, ownerIDs)
	if err != nil {
		if err == sql.ErrNoRows {
			ErrorNotFound(w, "client not found")
			return
		}
		log.Printf("[HTTP] updateClient error: %v", err)
		ErrorInternal(w, "failed to load client")
		return
	}

	req, err := ValidateClientRequest(r)
	if err != nil {
		if _, ok := err.(*ValidationError); ok {
			ErrorBadRequest(w, err.Error())
			return
		}
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	c := &domain.Client{
		ID:               id,
		OwnerID:          existing.OwnerID,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		PreReminderDelay: req.PreReminderDelay,
		Reminder1Delay:   req.Reminder1Delay,
		Reminder2Delay:   req.Reminder2Delay,
		Reminder3Delay:   req.Reminder3Delay,
		FinalDelay:       req.FinalDelay,
	}

	if err := h.clientsSvc.Update(r.Context(), c, ownerIDs); err != nil {
		log.Printf("[HTTP] updateClient error: %v", err)
		ErrorInternal(w, "failed to update client")
		return
	}

	Success(w, "Client mis à jour", c)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	_, ownerIDs, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.clientsSvc.Delete(r.Context(), chi.URLParam(r, "id"), ownerIDs); err != nil {
		if err == sql.ErrNoRows {
			ErrorNotFound(w, "client not found")
			return
		}
		log.Printf("[HTTP] deleteClient error: %v", err)
		ErrorInternal(w, "failed to delete client")
		return
	}

	Success(w, "Client supprimé", nil)
}

func (h *Handler) clientsNeedingReminder(w http.ResponseWriter, r *http.Request) {
	_, ownerIDs, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	states, err := h.reminders.ClientsNeedingReminder(r.Context(), ownerIDs)
	if err != nil {
		log.Printf("[HTTP] clientsNeedingReminder error: %v", err)
		ErrorInternal(w, "failed to load reminder states")
		return
	}

	Success(w, "", states)
}

type sendRemindersRequest struct {
	ClientIDs []string `json:"client_ids"`
}

func (h *Handler) sendReminders(w http.ResponseWriter, r *http.Request) {
	_, ownerIDs, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	var req sendRemindersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	count, err := h.reminders.SendReminders(r.Context(), ownerIDs, req.ClientIDs)
	if err != nil {
		log.Printf("[HTTP] sendReminders error: %v", err)
		ErrorInternal(w, "failed to send reminders")
		return
	}

	Success(w, "Relances envoyées", map[string]interface{}{
		"sent": count,
	})
}
