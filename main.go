// File: turjman/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"turjman/config"
	"turjman/handlers"
	"turjman/middleware"
	"turjman/routes"
	"turjman/services/chain"
	"turjman/services/payment"
	"turjman/services/receipt"
	"turjman/services/trust"
	"turjman/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Process-wide state, owned here and passed down by reference: the
	// receipt store, the trust meter and the rate limiter all live from
	// process start to process end.
	store, err := receipt.NewFileStore(config.AppConfig.DataDir, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize receipt store: %v", err)
	}
	trustMeter := trust.NewMeter(trust.DefaultSeed)
	limiter := middleware.NewRateLimiter(logger)

	// Chain services validate their configuration lazily on first use and
	// cache the failure; a misconfigured process serves catalog and receipt
	// reads but refuses payments and verifications until restarted.
	resolver := chain.NewResolver()
	paymentService := payment.NewService(logger)
	renderer := receipt.NewPDFRenderer(nil, logger)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	paymentHandler := handlers.NewPaymentHandler(paymentService, store, logger)
	verifyHandler := handlers.NewVerifyHandler(resolver, store, trustMeter, logger)
	receiptHandler := handlers.NewReceiptHandler(store, renderer, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		PayHandler:         paymentHandler.PayHandler,
		VerifyHandler:      verifyHandler.Verify,
		GetReceiptHandler:  receiptHandler.GetReceipt,
		ListLogHandler:     receiptHandler.ListLog,
		AddLogHandler:      receiptHandler.AddLog,
		StoreHealthHandler: receiptHandler.StoreHealth,
		ServicesHandler:    handlers.ListServices,
		HealthHandler:      handlers.Health,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle, limiter)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
