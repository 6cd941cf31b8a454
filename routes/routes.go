package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"turjman/handlers"
	"turjman/middleware"
)

// RegisterPaymentRoutes registers the payment and verification endpoints.
// Both are rate limited per client.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle, limiter *middleware.RateLimiter) {
	api := r.Group("/api")
	{
		api.POST("/pay", limiter.Middleware(), hb.PayHandler)
		api.GET("/verify", limiter.Middleware(), hb.VerifyHandler)
	}
}

// RegisterReceiptRoutes registers receipt lookup, the demo log endpoints and
// the store health check.
func RegisterReceiptRoutes(r *gin.Engine, hb *handlers.HandlerBundle, limiter *middleware.RateLimiter) {
	api := r.Group("/api/receipts")
	{
		api.GET("/log", hb.ListLogHandler)
		api.POST("/log", limiter.Middleware(), hb.AddLogHandler)
		api.GET("/health", hb.StoreHealthHandler)
		api.GET("/:tx", hb.GetReceiptHandler)
	}
}

// RegisterCatalogRoutes registers the service catalog and liveness endpoints.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.GET("/services", hb.ServicesHandler)
		api.GET("/health", hb.HealthHandler)
	}
}

// RegisterMetricsRoute exposes prometheus metrics.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, limiter *middleware.RateLimiter) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.MetricsMiddleware())

	RegisterPaymentRoutes(r, hb, limiter)
	RegisterReceiptRoutes(r, hb, limiter)
	RegisterCatalogRoutes(r, hb)
	RegisterMetricsRoute(r)
}
