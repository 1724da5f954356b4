package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/config"
	"github.com/inkwell-cms/inkwell/internal/database"
	"github.com/inkwell-cms/inkwell/internal/handlers"
	middlewareCustom "github.com/inkwell-cms/inkwell/internal/middleware"
	"github.com/inkwell-cms/inkwell/internal/repositories"
	"github.com/inkwell-cms/inkwell/internal/routes"
	"github.com/inkwell-cms/inkwell/internal/services"
	pkglogger "github.com/inkwell-cms/inkwell/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Apply embedded migrations
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize repositories, one credential store per realm
	adminRepo := repositories.NewAdminRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// Token manager is shared; the realm split happens at the gate, which
	// resolves subjects against its own store only.
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// AWS SES email service
	emailService, err := services.NewAWSSESEmailService(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	adminAuthService := services.NewAuthService(adminRepo, nil, tokenManager, logger, auditLogger)
	userAuthService := services.NewAuthService(userRepo.PrincipalRepository, userRepo, tokenManager, logger, auditLogger)
	adminResetService := services.NewPasswordResetService(adminRepo, emailService, logger, auditLogger, cfg.Auth.ResetTokenTTL)
	userResetService := services.NewPasswordResetService(userRepo.PrincipalRepository, emailService, logger, auditLogger, cfg.Auth.ResetTokenTTL)
	registrationService := services.NewRegistrationService(userRepo, emailService, logger, auditLogger, cfg.Auth.OTPTTL)
	adminService := services.NewAdminService(adminRepo, logger, auditLogger)

	// Initialize handlers
	adminAuthHandler := handlers.NewAuthHandler(adminAuthService, adminResetService)
	userAuthHandler := handlers.NewAuthHandler(userAuthService, userResetService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Bootstrap the first admin account if configured
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := adminService.EnsureDefaultAdmin(bootCtx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Error("failed to ensure default admin", slog.Any("error", err))
	}
	bootCancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, tokenManager, adminRepo, userRepo,
		adminAuthHandler, userAuthHandler, registrationHandler, adminHandler)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
