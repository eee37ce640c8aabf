package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"spotnsort/apiclient"
	"spotnsort/config"
	"spotnsort/geocode"
	"spotnsort/metrics"
	"spotnsort/photo"
	"spotnsort/repository"
	"spotnsort/routes"
	"spotnsort/schema"
	"spotnsort/service"
	"spotnsort/worker"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

func main() {
	log.SetHandler(text.New(os.Stderr))

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.LoadConfig()
	if cfg.Auth.Mode != config.AuthModeRemote && cfg.Auth.Mode != config.AuthModeLocal {
		log.Fatalf("AUTH_MODE must be %q or %q, got %q", config.AuthModeRemote, config.AuthModeLocal, cfg.Auth.Mode)
	}
	log.WithFields(log.Fields{
		"backend":    cfg.Backend.BaseURL,
		"auth_mode":  cfg.Auth.Mode,
		"store":      cfg.Store.Driver,
		"poll_every": cfg.Poll.Interval.String(),
	}).Info("Configuration loaded")

	if cfg.Auth.UsesDefaultSessionSecret() {
		log.Warn("SESSION_SECRET is not set; using the built-in development secret. Session tokens can be forged by anyone who knows it")
	}

	metrics.Register()

	// Durable store for sessions, drafts and the local user registry
	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(store)
	draftRepo := repository.NewDraftRepository(store)
	accountRepo := repository.NewAccountRepository(store)

	// Collaborators
	client := apiclient.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	geocoder := geocode.NewGeocoder(cfg.Geocoder.URL, cfg.Geocoder.UserAgent, cfg.Geocoder.RatePerSecond, cfg.Geocoder.GeolocationTimeout)
	encoder := photo.NewEncoder(cfg.Photo.MaxDimension, cfg.Photo.JPEGQuality)
	encoder.MaxPixels = cfg.Photo.MaxPixels

	// Report feed
	poller := worker.NewReportPoller(client, cfg.Poll.Interval, cfg.Backend.Timeout)
	poller.Start()
	defer poller.Stop()

	// Initialize services
	sessionService := service.NewSessionService(sessionRepo, cfg.Auth.SessionSecret)
	authService := service.NewAuthService(cfg.Auth.Mode, client, accountRepo, sessionService)

	// Setup routes
	router := routes.SetupRoutes(routes.Services{
		Auth:         authService,
		Sessions:     sessionService,
		Submission:   service.NewSubmissionService(client, geocoder, encoder, poller),
		Reports:      service.NewReportService(client, poller),
		Management:   service.NewManagementService(client, draftRepo, poller),
		Analytics:    service.NewAnalyticsService(client),
		Map:          service.NewMapService(client),
		Feed:         poller,
		MetricsToken: cfg.Server.MetricsToken,
	})

	server := &http.Server{
		Addr:        fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:     routes.Wrap(router),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	log.Info("Server stopped")
}

// openStore returns the configured KV store and a function releasing it
func openStore(cfg *config.Config) (repository.KVStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverFile:
		store, err := repository.NewFileKVStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Using file store at %s", cfg.Store.Path)
		return store, func() {}, nil

	case config.StoreDriverMySQL:
		db, err := sql.Open("mysql", cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		log.Info("Database connection established")

		if cfg.Store.InitSchema {
			if err := schema.InitializeDatabase(db); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		if err := schema.ValidateRequiredColumns(db, nil); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repository.NewMySQLKVStore(db), func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
}
