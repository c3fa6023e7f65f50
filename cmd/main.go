package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/clients"
	"github.com/Rose003/PaymentFlow33-sub001/internal/config"
	"github.com/Rose003/PaymentFlow33-sub001/internal/repository"
	"github.com/Rose003/PaymentFlow33-sub001/internal/service"
	"github.com/Rose003/PaymentFlow33-sub001/internal/transport/auth"
	"github.com/Rose003/PaymentFlow33-sub001/internal/transport/rest"
	"github.com/Rose003/PaymentFlow33-sub001/internal/transport/websocket"
	"github.com/Rose003/PaymentFlow33-sub001/pkg/database/postgres"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env or defaults")
	}

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()

	db := mustInitPostgres(cfg.Postgres)
	defer postgres.Close(db)

	redisClient := mustInitRedis(cfg.Redis)
	defer redisClient.Close()

	storageClient, err := clients.NewLocalStorage(cfg.ExportDir, cfg.FilesPublicPrefix, cfg.ExternalURL)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}

	s3Client, err := clients.NewS3Client(ctx, clients.S3Config{
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Bucket:          cfg.S3.Bucket,
		UseSSL:          cfg.S3.UseSSL,
		Region:          cfg.S3.Region,
		Prefix:          cfg.S3.Prefix,
	})
	if err != nil {
		log.Fatalf("s3 init error: %v", err)
	}

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	mailerClient := clients.NewMailerClient(cfg.Mail.FunctionURL, cfg.Mail.APIKey)
	checkoutClient := clients.NewCheckoutClient(cfg.Stripe.CheckoutFunctionURL)

	profileRepo := repository.NewProfileRepository(db)
	clientRepo := repository.NewClientRepository(db)
	receivableRepo := repository.NewReceivableRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	tokenRepo := repository.NewAccessTokenRepository(db)
	resetRepo := repository.NewPasswordResetTokenRepository(db)

	dashboardSvc := service.NewDashboardService(receivableRepo, clientRepo, profileRepo, redisClient)
	receivableSvc := service.NewReceivableService(receivableRepo, notificationRepo, dashboardSvc, wsClient, s3Client)
	clientSvc := service.NewClientService(clientRepo, dashboardSvc, wsClient)
	notificationSvc := service.NewNotificationService(notificationRepo)
	authSvc := service.NewAuthService(profileRepo, tokenRepo, resetRepo, mailerClient, cfg.Mail)
	billingSvc := service.NewBillingService(subscriptionRepo, checkoutClient, cfg.Stripe)
	reminderSvc := service.NewReminderService(receivableRepo, clientRepo, receivableSvc, mailerClient, s3Client, cfg.Mail)
	exporterSvc := service.NewReceivableExportService(receivableRepo, redisClient, storageClient, wsClient)
	exportListSvc := service.NewExportService(redisClient)

	tokenMiddleware := auth.TokenMiddleware(tokenRepo)

	handler := rest.NewHandler(
		authSvc,
		profileRepo,
		dashboardSvc,
		receivableSvc,
		clientSvc,
		notificationSvc,
		billingSvc,
		reminderSvc,
		exporterSvc,
		exportListSvc,
	)

	router := handler.InitRouter(tokenMiddleware)

	// public: serve generated export files
	router.Get("/files/{file}", func(w http.ResponseWriter, r *http.Request) {
		file := chi.URLParam(r, "file")
		path := filepath.Join(storageClient.BaseDir, filepath.Base(file))
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "failed to access file", http.StatusInternalServerError)
			return
		}

		// prefer original filename in Content-Disposition (strip random prefix)
		orig := file
		if idx := strings.IndexByte(file, '_'); idx >= 0 {
			orig = file[idx+1:]
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", orig))

		http.ServeFile(w, r, path)
	})

	// websocket change feed; the token middleware accepts ?token= so browser
	// clients can connect without an Authorization header
	router.Group(func(r chi.Router) {
		r.Use(tokenMiddleware)
		r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			userID, err := auth.GetUserID(r.Context())
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			log.Printf("WS connected: user_id=%s", userID)
			wsHub.HandleWebSocket(w, r, userID)
		})
	})

	corsHandler := withCORS(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run HTTP server in goroutine so we can listen for shutdown signals
	srvErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	// delete export files once nobody can reasonably still be downloading them
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := storageClient.CleanupOlderThan(30 * time.Minute); err != nil {
					log.Printf("storage cleanup error: %v", err)
				}
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	case sig := <-stop:
		log.Printf("Shutdown signal received: %v", sig)

		// Give server up to 10 seconds to finish ongoing requests
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server Shutdown error: %v", err)
		}

		cancel()

		postgres.Close(db)
		redisClient.Close()

		log.Println("Shutdown complete")
	}
}

func mustInitPostgres(cfg config.PostgresConfig) *sql.DB {
	db, err := postgres.NewPostgresConnection(postgres.ConnectionInfo{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Password: cfg.Password,
	})
	if err != nil {
		log.Fatalf("postgres init error: %v", err)
	}
	return db
}

func mustInitRedis(cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	return client
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
