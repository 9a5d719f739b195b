package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mstream "github.com/haowjy/meridian-stream-go"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"terraai/internal/auth"
	"terraai/internal/capabilities"
	"terraai/internal/config"
	"terraai/internal/handler"
	"terraai/internal/handler/sse"
	"terraai/internal/middleware"
	"terraai/internal/repository/postgres"
	"terraai/internal/service/account"
	"terraai/internal/service/admin"
	"terraai/internal/service/billing"
	"terraai/internal/service/catalog"
	"terraai/internal/service/generation"
	serviceLLM "terraai/internal/service/llm"
	"terraai/internal/service/plan"
	"terraai/internal/service/project"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"llm_provider", cfg.LLMProvider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if cfg.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("schema ensured")
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	projectRepo := postgres.NewProjectRepository(repoConfig)
	paymentRepo := postgres.NewPaymentRequestRepository(repoConfig)
	devopsRepo := postgres.NewDevOpsProjectRepository(repoConfig)
	statsRepo := postgres.NewStatsRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Services
	plans := plan.NewService(userRepo, cfg.QuotaLocation(), logger)
	projectService := project.NewProjectService(projectRepo, userRepo, txManager, plans, logger)
	accountService := account.NewAccountService(userRepo, plans, logger)
	billingService := billing.NewBillingService(paymentRepo, userRepo, txManager, logger)
	catalogService := catalog.NewCatalogService(devopsRepo, userRepo, projectRepo, plans, logger)
	adminService := admin.NewAdminService(userRepo, projectRepo, statsRepo, logger)

	capabilityRegistry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize capability registry: %v", err)
	}

	gateway, err := serviceLLM.SetupGateway(cfg, capabilityRegistry, logger)
	if err != nil {
		log.Fatalf("Failed to set up LLM gateway: %v", err)
	}

	streamRegistry := mstream.NewRegistry()
	go streamRegistry.StartCleanup(ctx)

	sessions := generation.NewManager(
		gateway,
		projectService,
		streamRegistry,
		generation.ConfigFrom(cfg),
		logger,
	)

	// Auth
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, logger)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	var google handler.GoogleSignIn
	if cfg.GoogleConfigured() {
		g, err := auth.NewGoogleOAuth(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL, cfg.GoogleJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to set up Google OAuth: %v", err)
		}
		google = g
	} else {
		logger.Warn("Google OAuth not configured, sign-in routes will answer 503")
	}

	adminAuth := auth.NewAdminAuthenticator(cfg.AdminEmail, cfg.AdminPasswordHash)
	if !adminAuth.Configured() {
		logger.Warn("admin login not configured")
	}

	// Handlers
	authHandler := handler.NewAuthHandler(google, accountService, tokens, adminAuth, cfg.FrontendURL, cfg.Environment == "prod", logger)
	userHandler := handler.NewUserHandler(accountService, logger)
	projectHandler := handler.NewProjectHandler(projectService, logger)
	sessionHandler := handler.NewSessionHandler(sessions, sse.DefaultConfig(), logger)
	billingHandler := handler.NewBillingHandler(billingService, logger)
	adminHandler := handler.NewAdminHandler(adminService, logger)
	devopsHandler := handler.NewDevOpsHandler(catalogService, sessions, logger)
	modelsHandler := handler.NewModelsHandler(capabilityRegistry, gateway.ProviderName(), gateway.Model(), logger)

	adminOnly := func(h http.HandlerFunc) http.Handler { return middleware.RequireAdmin(h) }
	generateLimit := middleware.GenerationLimit(cfg.RateLimitGenerations)

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/auth/google", authHandler.GoogleLogin)
	mux.HandleFunc("GET /api/auth/google/callback", authHandler.GoogleCallback)
	mux.HandleFunc("POST /api/admin/login", authHandler.AdminLogin)
	mux.HandleFunc("GET /api/devops-projects", devopsHandler.List)
	mux.HandleFunc("GET /api/starters", modelsHandler.GetStarters)
	mux.HandleFunc("GET /api/models", modelsHandler.GetModels)

	// User
	mux.HandleFunc("GET /api/user", userHandler.GetUser)
	mux.HandleFunc("PATCH /api/user/theme", userHandler.UpdateTheme)
	mux.HandleFunc("POST /api/payment-request", billingHandler.SubmitPayment)

	mux.HandleFunc("GET /api/projects", projectHandler.ListProjects)
	mux.HandleFunc("POST /api/projects", projectHandler.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.GetProject)
	mux.HandleFunc("PUT /api/projects/{id}", projectHandler.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.DeleteProject)
	mux.HandleFunc("PATCH /api/projects/{id}/favorite", projectHandler.SetFavorite)
	mux.HandleFunc("GET /api/projects/{id}/export", projectHandler.ExportProject)

	mux.HandleFunc("POST /api/sessions", sessionHandler.CreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", sessionHandler.GetSession)
	mux.HandleFunc("PATCH /api/sessions/{id}", sessionHandler.RenameSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", sessionHandler.DeleteSession)
	mux.Handle("POST /api/sessions/{id}/generate", generateLimit(http.HandlerFunc(sessionHandler.Generate)))
	mux.HandleFunc("GET /api/sessions/{id}/stream", sessionHandler.StreamSession)
	mux.HandleFunc("POST /api/sessions/{id}/reset", sessionHandler.ResetSession)
	mux.HandleFunc("GET /api/sessions/{id}/export", sessionHandler.ExportSession)
	mux.HandleFunc("GET /api/sessions/{id}/bundle", sessionHandler.BundleSession)
	mux.HandleFunc("POST /api/sessions/{id}/import", sessionHandler.ImportSession)
	mux.HandleFunc("GET /api/sessions/{id}/validate", sessionHandler.ValidateSession)

	mux.HandleFunc("POST /api/devops-projects/{id}/import", devopsHandler.Import)

	// Admin
	mux.Handle("GET /api/admin/users", adminOnly(adminHandler.ListUsers))
	mux.Handle("GET /api/admin/projects", adminOnly(adminHandler.ListProjects))
	mux.Handle("GET /api/admin/stats", adminOnly(adminHandler.Stats))
	mux.Handle("GET /api/admin/payment-requests", adminOnly(billingHandler.ListPayments))
	mux.Handle("POST /api/admin/approve-payment/{id}", adminOnly(billingHandler.ApprovePayment))
	mux.Handle("POST /api/admin/reject-payment/{id}", adminOnly(billingHandler.RejectPayment))
	mux.Handle("POST /api/devops-projects", adminOnly(devopsHandler.Create))
	mux.Handle("PUT /api/devops-projects/{id}", adminOnly(devopsHandler.Update))
	mux.Handle("DELETE /api/devops-projects/{id}", adminOnly(devopsHandler.Delete))

	public := middleware.PublicRoutes(
		"GET /health",
		"GET /metrics",
		"GET /api/auth/*",
		"POST /api/admin/login",
		"GET /api/devops-projects",
		"GET /api/starters",
		"GET /api/models",
	)

	// Order: CORS → Recovery → RequestLogger → Auth → Routes
	var h http.Handler = mux
	h = middleware.Auth(tokens, public, logger)(h)
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
