package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"tradehook/configs"
	"tradehook/internal/adapter/telegram"
	"tradehook/internal/database"
	delivery "tradehook/internal/delivery/http"
	"tradehook/internal/domain"
	"tradehook/internal/exchange"
	"tradehook/internal/infra"
	"tradehook/internal/repository"
	"tradehook/internal/service"
	"tradehook/internal/usecase"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	cfg := configs.Load()

	// Initialize context
	ctx := context.Background()

	// Initialize database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	tradeRepo := repository.NewTradeRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	pairRepo := repository.NewPairRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Bootstrap the dashboard admin user
	ensureAdminUser(ctx, userRepo, cfg.Admin.Username, cfg.Admin.Password)

	// Exchange credentials: settings row first, environment as fallback
	settings, err := settingsRepo.Get(ctx)
	if err != nil {
		log.Fatalf("Failed to load bot settings: %v", err)
	}
	apiKey, apiSecret, testnet := settings.APIKey, settings.APISecret, settings.Testnet
	if apiKey == "" && cfg.Exchange.APIKey != "" {
		apiKey, apiSecret, testnet = cfg.Exchange.APIKey, cfg.Exchange.APISecret, cfg.Exchange.Testnet
	}
	provider := exchange.NewProvider(apiKey, apiSecret, testnet)

	// Telegram notifications (disabled when unconfigured)
	notifier := telegram.NewNotificationService(cfg.Telegram.BotToken, cfg.Telegram.ChatID)

	// Initialize usecases and services
	executor := usecase.NewExecutor(tradeRepo, positionRepo, settingsRepo, pairRepo, provider, notifier)
	reporting := usecase.NewReportingService(tradeRepo, positionRepo, provider)
	settingsService := usecase.NewSettingsService(settingsRepo, positionRepo, provider)
	monitor := service.NewPositionMonitor(positionRepo, provider, notifier)

	// Start background jobs
	scheduler := infra.NewScheduler(monitor, reporting)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Initialize HTTP handlers
	webHandler, err := delivery.NewWebHandler(userRepo, reporting, settingsService)
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	delivery.SetupRoutes(e, &delivery.RouterConfig{
		WebhookHandler:  delivery.NewWebhookHandler(executor),
		APIHandler:      delivery.NewAPIHandler(reporting),
		SettingsHandler: delivery.NewSettingsHandler(settingsService),
		AuthHandler:     delivery.NewAuthHandler(userRepo),
		WebHandler:      webHandler,
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("TradeHook starting on %s (env: %s)", addr, cfg.Server.Env)

	// Run server in goroutine
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: server shutdown failed: %v", err)
	}
	log.Println("[OK] Server stopped")
}

// ensureAdminUser creates the bootstrap admin account when it does not
// exist yet. Without a password no account is created and the dashboard
// stays unreachable.
func ensureAdminUser(ctx context.Context, userRepo domain.UserRepository, username, password string) {
	if password == "" {
		log.Println("WARNING: ADMIN_PASSWORD not set, skipping admin bootstrap")
		return
	}

	if _, err := userRepo.GetByUsername(ctx, username); err == nil {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("[OK] Admin user %q created", username)
}
