package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/storefront/config"
	"github.com/ikkim/storefront/internal/app/controller"
	"github.com/ikkim/storefront/internal/app/service"
	"github.com/ikkim/storefront/internal/db"
	"github.com/ikkim/storefront/internal/middleware"
	"github.com/ikkim/storefront/internal/router"
	"github.com/ikkim/storefront/internal/scheduler"
	"github.com/ikkim/storefront/internal/session"
	"github.com/ikkim/storefront/internal/storage"
	ws "github.com/ikkim/storefront/internal/websocket"
	"github.com/ikkim/storefront/pkg/logger"
	appRedis "github.com/ikkim/storefront/pkg/redis"
	"github.com/ikkim/storefront/pkg/storefrontapi"
	"github.com/ikkim/storefront/pkg/tracing"
)

const serviceVersion = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting Storefront Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"api":         cfg.API.BaseURL,
		"storage":     cfg.Storage.Driver,
		"log_level":   logLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Exporter:       cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		ServiceName:    "storefront",
		ServiceVersion: serviceVersion,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracing", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("Failed to flush traces", err)
		}
	}()

	// Local storage backend
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open local storage", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("Failed to close local storage", err)
		}
		if cfg.Storage.Driver == "postgres" || cfg.Storage.Driver == "mysql" {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database connection", err)
			}
		}
		if cfg.Storage.Driver == "redis" {
			if err := appRedis.Close(); err != nil {
				logger.Error("Failed to close redis connection", err)
			}
		}
	}()

	// Remote storefront API
	api, err := storefrontapi.NewClient(storefrontapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to create storefront API client", err)
	}

	// Live cart push
	hub := ws.NewHub()
	go hub.Run(ctx)

	// Sessions
	sessions := session.NewManager(backend, api, hub.CartSink)
	hub.SetRefresh(sessions.Regions)

	// Initialize services
	cartService := service.NewCartService()
	catalogService := service.NewCatalogService(api, cfg.Scheduler.ContentMaxAge)
	contactService := service.NewContactService()
	adminService := service.NewAdminService()

	// Initialize controllers
	pageController := controller.NewPageController(catalogService)
	cartController := controller.NewCartController(cartService)
	contactController := controller.NewContactController(contactService, pageController)
	adminController := controller.NewAdminController(adminService, pageController)
	liveController := controller.NewLiveController(hub)

	// Initialize middleware
	sessionMiddleware := middleware.NewSessionMiddleware(
		sessions,
		cfg.Session.Secret,
		cfg.Session.CookieName,
		cfg.Session.TTL,
		cfg.Server.Environment == "production",
	)

	// Setup router
	r := router.NewRouter(
		pageController,
		cartController,
		contactController,
		adminController,
		liveController,
		sessionMiddleware,
		adminService,
		cfg,
	)
	engine, err := r.Setup()
	if err != nil {
		logger.Fatal("Failed to set up router", err)
	}

	// Background jobs
	jobs := scheduler.New(scheduler.Config{
		RefreshSchedule: cfg.Scheduler.RefreshSchedule,
		SweepSchedule:   cfg.Scheduler.SweepSchedule,
		SessionIdle:     cfg.Scheduler.SessionIdle,
	}, catalogService, sessions, hub.IsSessionOnline)
	if err := jobs.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", err)
	}
	defer jobs.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
