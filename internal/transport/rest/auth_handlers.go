package rest

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Rose003/PaymentFlow33-sub001/internal/service"
	"github.com/Rose003/PaymentFlow33-sub001/internal/transport/auth"
)

type signupRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FullName    string  `json:"full_name"`
	CompanyName *string `json:"company_name"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		ErrorBadRequest(w, "email and password are required")
		return
	}

	p, err := h.authSvc.Signup(r.Context(), req.Email, req.Password, req.FullName, req.CompanyName)
	if err != nil {
		if err == service.ErrEmailTaken {
			ErrorConflict(w, "email already registered")
			return
		}
		log.Printf("[HTTP] signup error: %v", err)
		ErrorInternal(w, "failed to create account")
		return
	}

	SuccessCreated(w, "Compte créé", map[string]interface{}{
		"id":    p.ID,
		"email": p.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	p, token, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			ErrorUnauthorized(w, "invalid email or password")
			return
		}
		log.Printf("[HTTP] login error: %v", err)
		ErrorInternal(w, "failed to log in")
		return
	}

	Success(w, "", map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":        p.ID,
			"email":     p.Email,
			"full_name": p.FullName,
		},
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	tokenID, err := auth.GetTokenID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.authSvc.Logout(r.Context(), tokenID); err != nil {
		log.Printf("[HTTP] logout error: %v", err)
		ErrorInternal(w, "failed to log out")
		return
	}

	Success(w, "Déconnecté", nil)
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

func (h *Handler) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}
	if req.Email == "" {
		ErrorBadRequest(w, "email is required")
		return
	}

	if err := h.authSvc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		log.Printf("[HTTP] password reset request error: %v", err)
		ErrorInternal(w, "failed to process request")
		return
	}

	// Same answer whether or not the email exists.
	Success(w, "Si un compte existe pour cette adresse, un email a été envoyé", nil)
}

type passwordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *Handler) confirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}
	if req.Token == "" || req.Password == "" {
		ErrorBadRequest(w, "token and password are required")
		return
	}

	if err := h.authSvc.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		ErrorBadRequest(w, "reset token invalid or expired")
		return
	}

	Success(w, "Mot de passe mis à jour", nil)
}
