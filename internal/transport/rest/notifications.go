package rest

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"

	"github.com/Rose003/PaymentFlow33-sub001/internal/repository"
	"github.com/Rose003/PaymentFlow33-sub001/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	filter := repository.NotificationsFilter{}
	q := r.URL.Query()
	if q.Get("unread") == "true" {
		filter.UnreadOnly = true
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Offset = n
		}
	}

	list, err := h.notifications.List(r.Context(), userID, filter)
	if err != nil {
		log.Printf("[HTTP] listNotifications error: %v", err)
		ErrorInternal(w, "failed to load notifications")
		return
	}

	unread, err := h.notifications.UnreadCount(r.Context(), userID)
	if err != nil {
		log.Printf("[HTTP] listNotifications unread count error: %v", err)
		ErrorInternal(w, "failed to load notifications")
		return
	}

	Success(w, "", map[string]interface{}{
		"notifications": list,
		"unread_count":  unread,
	})
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.notifications.MarkRead(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		if err == sql.ErrNoRows {
			ErrorNotFound(w, "notification not found")
			return
		}
		log.Printf("[HTTP] markNotificationRead error: %v", err)
		ErrorInternal(w, "failed to update notification")
		return
	}

	Success(w, "", nil)
}

func (h *Handler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.notifications.MarkAllRead(r.Context(), userID); err != nil {
		log.Printf("[HTTP] markAllNotificationsRead error: %v", err)
		ErrorInternal(w, "failed to update notifications")
		return
	}

	Success(w, "", nil)
}
