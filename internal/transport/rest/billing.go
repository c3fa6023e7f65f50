package rest

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/Rose003/PaymentFlow33-sub001/internal/service"
	"github.com/Rose003/PaymentFlow33-sub001/internal/transport/auth"
)

type checkoutRequest struct {
	Plan string `json:"plan"`
}

func (h *Handler) createCheckout(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	p, err := h.profiles.FindByID(r.Context(), userID)
	if err != nil {
		log.Printf("[HTTP] createCheckout profile lookup error: %v", err)
		ErrorInternal(w, "failed to start checkout")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	url, err := h.billing.CreateCheckoutSession(r.Context(), userID, p.Email, req.Plan)
	if err != nil {
		if err == service.ErrUnknownPlan {
			ErrorBadRequest(w, "unknown plan")
			return
		}
		log.Printf("[HTTP] createCheckout error: %v", err)
		ErrorInternal(w, "failed to start checkout")
		return
	}

	Success(w, "", map[string]interface{}{
		"url": url,
	})
}

func (h *Handler) getSubscription(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	sub, err := h.billing.GetSubscription(r.Context(), userID)
	if err != nil {
		log.Printf("[HTTP] getSubscription error: %v", err)
		ErrorInternal(w, "failed to load subscription")
		return
	}

	Success(w, "", sub)
}

func (h *Handler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		ErrorBadRequest(w, "failed to read payload")
		return
	}

	if err := h.billing.VerifyWebhookSignature(payload, r.Header.Get("Stripe-Signature")); err != nil {
		log.Printf("[HTTP] stripeWebhook signature error: %v", err)
		ErrorBadRequest(w, "invalid signature")
		return
	}

	if err := h.billing.HandleWebhookEvent(r.Context(), payload); err != nil {
		log.Printf("[HTTP] stripeWebhook error: %v", err)
		ErrorInternal(w, "failed to process event")
		return
	}

	Success(w, "", nil)
}
