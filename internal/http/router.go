// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns:
// tracing, correlation IDs, logging, panic recovery, metrics, CORS, security
// headers, and rate limiting.
//
// Two route families have different postures:
//   - /api/v* is the authenticated business API: rate limited, gzip
//     compressed, CORS controlled.
//   - /webhooks/whatsapp is Meta's callback endpoint: not rate limited
//     (Meta retries on 429, amplifying load) and not compressed.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/gastropedido/go-orders-backend/internal/config"
	"github.com/gastropedido/go-orders-backend/internal/http/handlers"
	"github.com/gastropedido/go-orders-backend/internal/http/middleware"
	"github.com/gastropedido/go-orders-backend/internal/services"
	"github.com/gastropedido/go-orders-backend/internal/whatsapp"
)

// RegisterRoutes attaches all middleware and endpoints to the given Gin
// engine. All dependencies are injected; the function builds the service
// layer from the database handle and the WhatsApp sender.
//
// Middleware order:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured logs (queries masked)
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS and security headers
//  8. Rate limiter (API group only)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, sender whatsapp.Sender, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	// Global body size limit (1 MiB): webhook batches and order payloads
	// are both far below this.
	r.Use(limitBody(1 << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// CORS posture: allow all when nothing configured (dev), otherwise the
	// explicit allowlist.
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and the request is HTTPS).
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← db + sender + classifier
	classifier := services.NewKeywordClassifier(
		cfg.Classifier.AffirmativeKeywords,
		cfg.Classifier.NegativeKeywords,
	)
	providerSvc := services.NewProviderService(db)
	orderSvc := services.NewOrderService(db, sender)
	confirmSvc := services.NewConfirmationService(db, sender, classifier)
	msgSvc := services.NewMessageService(db)

	h := handlers.New(providerSvc, orderSvc, confirmSvc, msgSvc, cfg.WhatsApp.VerifyToken)

	// WhatsApp Cloud API callbacks (handshake + deliveries).
	r.GET("/webhooks/whatsapp", h.VerifyWebhook)
	r.POST("/webhooks/whatsapp", h.ReceiveWebhook)

	// Business API, rate limited per user/IP and gzip compressed.
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(rl.Handler())
	api.Use(gzip.Gzip(gzip.DefaultCompression))
	{
		// Providers
		api.POST("/providers", h.CreateProvider)
		api.GET("/providers", h.ListProviders)
		api.GET("/providers/:id", h.GetProvider)
		api.PUT("/providers/:id", h.UpdateProvider)
		api.DELETE("/providers/:id", h.DeleteProvider)

		// Orders
		api.POST("/orders", h.CreateOrder)
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/:id", h.GetOrder)
		api.PUT("/orders/:id/status", h.UpdateOrderStatus)
		api.POST("/orders/:id/send", h.SendOrderConfirmation)

		// Conversation log
		api.GET("/messages", h.ListMessages)
	}
}

// limitBody caps the request body size for all endpoints via
// http.MaxBytesReader; oversized bodies error on read downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
