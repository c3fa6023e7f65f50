package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/service"
	"github.com/Rose003/PaymentFlow33-sub001/internal/transport/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ExportListService interface {
	GetExports(ctx context.Context, userID string) ([]interface{}, error)
	GetExport(ctx context.Context, exportID string, userID string) (interface{}, error)
}

type Handler struct {
	authSvc       *service.AuthService
	profiles      service.ProfileStore
	dashboard     *service.DashboardService
	receivables   *service.ReceivableService
	clientsSvc    *service.ClientService
	notifications *service.NotificationService
	billing       *service.BillingService
	reminders     *service.ReminderService
	exporter      *service.ReceivableExportService
	exportList    ExportListService
}

func NewHandler(
	authSvc *service.AuthService,
	profiles service.ProfileStore,
	dashboard *service.DashboardService,
	receivables *service.ReceivableService,
	clientsSvc *service.ClientService,
	notifications *service.NotificationService,
	billing *service.BillingService,
	reminders *service.ReminderService,
	exporter *service.ReceivableExportService,
	exportList ExportListService,
) *Handler {
	return &Handler{
		authSvc:       authSvc,
		profiles:      profiles,
		dashboard:     dashboard,
		receivables:   receivables,
		clientsSvc:    clientsSvc,
		notifications: notifications,
		billing:       billing,
		reminders:     reminders,
		exporter:      exporter,
		exportList:    exportList,
	}
}

// InitRouter builds the API router. Signup/login, password reset, the Stripe
// webhook and /health stay public; everything else sits behind the token
// middleware.
func (h *Handler) InitRouter(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})

	r.Post("/auth/signup", h.signup)
	r.Post("/auth/login", h.login)
	r.Post("/auth/password-reset", h.requestPasswordReset)
	r.Post("/auth/password-reset/confirm", h.confirmPasswordReset)

	r.Post("/billing/webhook", h.stripeWebhook)

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}

		r.Post("/auth/logout", h.logout)

		r.Get("/dashboard/stats", h.dashboardStats)

		r.Route("/receivables", func(r chi.Router) {
			r.Get("/", h.listReceivables)
			r.Post("/", h.createReceivable)
			r.Get("/{id}", h.getReceivable)
			r.Put("/{id}", h.updateReceivable)
			r.Post("/{id}/paid", h.markReceivablePaid)
			r.Post("/{id}/pdf", h.uploadReceivablePDF)
			r.Delete("/{id}", h.deleteReceivable)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.listClients)
			r.Post("/", h.createClient)
			r.Get("/reminder-due", h.clientsNeedingReminder)
			r.Post("/reminders/send", h.sendReminders)
			r.Get("/{id}", h.getClient)
			r.Put("/{id}", h.updateClient)
			r.Delete("/{id}", h.deleteClient)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.listNotifications)
			r.Post("/{id}/read", h.markNotificationRead)
			r.Post("/read-all", h.markAllNotificationsRead)
		})

		r.Post("/billing/checkout", h.createCheckout)
		r.Get("/billing/subscription", h.getSubscription)

		r.Route("/export", func(r chi.Router) {
			r.Get("/", h.listExports)
			r.Get("/{export_id}", h.getExport)
			r.Post("/receivables", h.exportReceivables)
		})
	})

	return r
}

// ownerScope resolves the requesting user plus the owner-id set every
// tenant-scoped query filters by.
func (h *Handler) ownerScope(r *http.Request) (userID string, ownerIDs []string, err error) {
	userID, err = auth.GetUserID(r.Context())
	if err != nil {
		return "", nil, err
	}

	p, err := h.profiles.FindByID(r.Context(), userID)
	if err != nil {
		return "", nil, err
	}

	ownerIDs, err = h.dashboard.ResolveOwnerIDs(r.Context(), userID, p.Email)
	if err != nil {
		return "", nil, err
	}

	return userID, ownerIDs, nil
}
