package rest

import (
	"log"
	"net/http"
	"strings"

	"github.com/Rose003/PaymentFlow33-sub001/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listExports(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	exports, err := h.exportList.GetExports(r.Context(), userID)
	if err != nil {
		log.Printf("[HTTP] listExports error: %v", err)
		ErrorInternal(w, "failed to load exports")
		return
	}

	Success(w, "", map[string]interface{}{
		"exports": exports,
	})
}

func (h *Handler) getExport(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	exportID := chi.URLParam(r, "export_id")
	if !strings.HasPrefix(exportID, "exports:") {
		exportID = "exports:" + exportID
	}

	export, err := h.exportList.GetExport(r.Context(), exportID, userID)
	if err != nil {
		ErrorNotFound(w, "export not found")
		return
	}

	Success(w, "", export)
}

func (h *Handler) exportReceivables(w http.ResponseWriter, r *http.Request) {
	userID, ownerIDs, err := h.ownerScope(r)
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	req, err := ValidateExportRequest(r)
	if err != nil {
		if _, ok := err.(*ValidationError); ok {
			ErrorBadRequest(w, err.Error())
			return
		}
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	exportID, err := h.exporter.StartReceivablesExport(r.Context(), req.Fields, req.ToRepositoryFilter(ownerIDs), userID)
	if err != nil {
		log.Printf("[HTTP] exportReceivables error: %v", err)
		ErrorInternal(w, "failed to queue export")
		return
	}

	SuccessAccepted(w, "Export mis en file d'attente", map[string]interface{}{
		"export_id": exportID,
	})
}
