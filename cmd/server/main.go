// Parts Wizard - guided car-part request server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/oshaghisina/partswizard/internal/api"
	"github.com/oshaghisina/partswizard/internal/bot"
	"github.com/oshaghisina/partswizard/internal/catalog"
	"github.com/oshaghisina/partswizard/internal/config"
	"github.com/oshaghisina/partswizard/internal/lead"
	"github.com/oshaghisina/partswizard/internal/middleware"
	"github.com/oshaghisina/partswizard/internal/store"
	"github.com/oshaghisina/partswizard/internal/wizard"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "store", cfg.Store, "dev", cfg.IsDevelopment())

	// Initialize the session store.
	repo, err := newRepository(cfg)
	if err != nil {
		slog.Error("Failed to initialize session store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Session store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Session store connected")

	// Initialize the catalog gateway and lead notifier.
	var gateway catalog.Gateway
	var leads lead.Notifier
	if cfg.SupabaseURL != "" {
		gateway, err = catalog.NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			slog.Error("Failed to initialize catalog gateway", "error", err)
			os.Exit(1)
		}
		leads, err = lead.NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			slog.Error("Failed to initialize lead notifier", "error", err)
			os.Exit(1)
		}
		slog.Info("Catalog gateway connected", "url", cfg.SupabaseURL)
	} else {
		gateway = catalog.NewStaticDemo()
		slog.Warn("SUPABASE_URL not set, using the built-in demo catalog")
	}

	engine := wizard.New(repo, gateway, leads, wizard.Config{
		CatalogTimeout: cfg.CatalogTimeout,
		StoreTimeout:   cfg.StoreTimeout,
	})

	// Initialize handlers.
	baseHandler := api.NewHandler(repo, engine, cfg.FrontendURL)
	wizardHandler := api.NewWizardHandler(baseHandler)
	healthHandler := api.NewHealthHandler(repo)
	wsHandler := api.NewWSHandler(baseHandler)

	// Setup router.
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(corsOrigins(cfg)))

	healthHandler.RegisterHealth(r)
	wizardHandler.RegisterRoutes(r)
	r.Get("/ws/wizard", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Prune abandoned sessions.
	if cfg.SessionTTL > 0 {
		store.StartRetentionWorker(ctx, repo, cfg.SessionTTL, cfg.CleanupInterval)
		slog.Info("Retention worker started", "session_ttl", cfg.SessionTTL, "interval", cfg.CleanupInterval)
	}

	// Run the Telegram adapter alongside the HTTP API when configured.
	if cfg.TelegramToken != "" {
		tgBot, err := bot.New(cfg.TelegramToken, engine)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := tgBot.Start(ctx); err != nil {
				slog.Error("Telegram bot stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("TELEGRAM_TOKEN not set, Telegram adapter disabled")
	}

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// newRepository builds the session store named by the configuration.
func newRepository(cfg *config.Config) (store.Repository, error) {
	switch cfg.Store {
	case "postgres":
		return store.NewPostgres(cfg.PostgresDSN)
	case "memory":
		return store.NewMemory(), nil
	default:
		return store.NewSQLite(cfg.DBPath)
	}
}

func corsOrigins(cfg *config.Config) []string {
	if cfg.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{cfg.FrontendURL}
}
