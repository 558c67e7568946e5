// Package main provides the concierge bot server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/paragraphhotels/messenger-bot-go/internal/bot"
	"github.com/paragraphhotels/messenger-bot-go/internal/buildinfo"
	"github.com/paragraphhotels/messenger-bot-go/internal/config"
	"github.com/paragraphhotels/messenger-bot-go/internal/logger"
	"github.com/paragraphhotels/messenger-bot-go/internal/messenger"
	"github.com/paragraphhotels/messenger-bot-go/internal/metrics"
	"github.com/paragraphhotels/messenger-bot-go/internal/ratelimit"
	"github.com/paragraphhotels/messenger-bot-go/internal/sentry"
	"github.com/paragraphhotels/messenger-bot-go/internal/session"
	"github.com/paragraphhotels/messenger-bot-go/internal/webhook"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger (ships to Better Stack when a logs token is set)
	log := logger.NewWithBetterstack(cfg.LogLevel, cfg.LogsToken, cfg.LogsEndpoint)
	log.WithField("version", buildinfo.Version).Info("Starting Concierge Bot Server")

	// Initialize error tracking
	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.ErrorsToken,
		Host:        cfg.ErrorsHost,
		Environment: cfg.Environment,
		Release:     buildinfo.Version,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize error tracking")
	} else if sentry.IsEnabled() {
		defer sentry.Flush(2 * time.Second)
		log.Info("Error tracking initialized")
	}

	// Create the session store for the configured backend
	var store session.Store
	switch cfg.SessionBackend {
	case config.SessionBackendSQLite:
		store, err = session.NewSQLiteStore(cfg.SQLitePath())
		if err != nil {
			log.WithError(err).Fatal("Failed to open session database")
		}
		log.WithField("path", cfg.SQLitePath()).Info("SQLite session store opened")
	default:
		store = session.NewMemoryStore()
		log.Info("In-memory session store created")
	}
	defer func() { _ = store.Close() }()

	// Create Prometheus registry
	registry := prometheus.NewRegistry()

	// Register Go and process collectors
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	// Create metrics
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Global outbound limiter protects the Graph API send quota
	globalLimiter := ratelimit.New(cfg.GlobalRateLimitRPS, cfg.GlobalRateLimitRPS)

	// Create the Graph API client
	client := messenger.NewClient(messenger.ClientConfig{
		BaseURL:     cfg.GraphAPIBaseURL,
		Version:     cfg.GraphAPIVersion,
		AccessToken: cfg.PageAccessToken,
		SendTimeout: cfg.SendTimeout,
		Logger:      log,
		Metrics:     m,
		Limiter:     globalLimiter,
	})
	log.Info("Graph API client created")

	// Per-sender inbound limiter
	userLimiter := ratelimit.NewPerKeyLimiter(ratelimit.PerKeyLimiterConfig{
		MaxTokens:     cfg.UserRateLimitBurst,
		RefillRate:    cfg.UserRateLimitRefillPerSec,
		CleanupPeriod: 5 * time.Minute,
	})
	userLimiter.OnDrop(func() { m.RecordRateLimiterDrop("user") })
	defer userLimiter.Stop()

	// Create the dialogue dispatcher
	dispatcher := bot.NewDispatcher(log, m)

	// Shared by the webhook handler and the expiry janitor so session
	// writes for one sender never interleave
	locks := session.NewKeyedMutex()

	// Create webhook handler
	webhookHandler := webhook.NewHandler(webhook.Config{
		VerifyToken:    cfg.VerifyToken,
		AppSecret:      cfg.AppSecret,
		ProfileTimeout: cfg.ProfileTimeout,
		Logger:         log,
		Metrics:        m,
		Store:          store,
		Dispatcher:     dispatcher,
		Sender:         client,
		UserLimiter:    userLimiter,
		Locks:          locks,
	})
	log.Info("Webhook handler created")

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentry.GinMiddleware())
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))

	// Setup routes
	setupRoutes(router, cfg, webhookHandler, store, client, registry)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// Session expiry janitor
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Panic in session janitor goroutine")
			}
		}()
		expireIdleSessions(ctx, store, locks, client, m, log, cfg.SessionTTL, cfg.SessionSweepInterval)
	}()

	// Active session gauge updater
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Panic in session metrics goroutine")
			}
		}()
		updateSessionMetrics(ctx, store, m, log)
	}()

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Stop background goroutines
	cancel()

	goDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(goDone)
	}()

	select {
	case <-goDone:
		log.Info("All background goroutines stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for goroutines to stop")
	}

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Let in-flight webhook events drain before closing the store
	if err := webhookHandler.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Timed out waiting for in-flight events")
	}

	// Shutdown server gracefully
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	// Close the session store
	if err := store.Close(); err != nil {
		log.WithError(err).Error("Failed to close session store")
	}

	log.Info("Server stopped")
}
