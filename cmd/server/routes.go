// Package main provides the concierge bot server entry point.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paragraphhotels/messenger-bot-go/internal/buildinfo"
	"github.com/paragraphhotels/messenger-bot-go/internal/config"
	"github.com/paragraphhotels/messenger-bot-go/internal/messenger"
	"github.com/paragraphhotels/messenger-bot-go/internal/session"
	"github.com/paragraphhotels/messenger-bot-go/internal/webhook"
)

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, cfg *config.Config, webhookHandler *webhook.Handler, store session.Store, client *messenger.Client, registry *prometheus.Registry) {
	// Root endpoint - service identity
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "concierge-bot",
			"version": buildinfo.Version,
		})
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness probe - only that the process is running, never dependencies
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness probe - session store plus Graph API reachability
	readyHandler := func(c *gin.Context) {
		if r, ok := store.(interface{ Ready(context.Context) error }); ok {
			if err := r.Ready(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "not ready",
					"reason": err.Error(),
				})
				return
			}
		}

		checkCtx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		graphAvailable := client.Ping(checkCtx) == nil

		sessionCount, _ := store.Count(c.Request.Context())

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"store":     "connected",
			"graph_api": graphAvailable,
			"sessions":  sessionCount,
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Messenger webhook endpoints: GET handshake, POST events
	router.GET("/webhook", webhookHandler.Verify)
	router.POST("/webhook", webhookHandler.Handle)

	// Prometheus metrics endpoint, behind Basic Auth when configured
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}
}
