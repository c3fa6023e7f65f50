package rest

import (
	"log"
	"net/http"

	"github.com/Rose003/PaymentFlow33-sub001/internal/transport/auth"
)

func (h *Handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	p, err := h.profiles.FindByID(r.Context(), userID)
	if err != nil {
		log.Printf("[HTTP] dashboardStats profile lookup error: %v", err)
		ErrorInternal(w, "Impossible de charger les statistiques du tableau de bord")
		return
	}

	stats, err := h.dashboard.GetStats(r.Context(), userID, p.Email)
	if err != nil {
		log.Printf("[HTTP] dashboardStats error: %v", err)
		ErrorInternal(w, "Impossible de charger les statistiques du tableau de bord")
		return
	}

	Success(w, "", stats)
}
