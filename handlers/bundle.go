package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle aggregates all endpoint handlers for route registration.
type HandlerBundle struct {
	// Payment endpoints.
	PayHandler gin.HandlerFunc

	// Verification endpoints.
	VerifyHandler gin.HandlerFunc

	// Receipt endpoints.
	GetReceiptHandler  gin.HandlerFunc
	ListLogHandler     gin.HandlerFunc
	AddLogHandler      gin.HandlerFunc
	StoreHealthHandler gin.HandlerFunc
	ServicesHandler    gin.HandlerFunc
	HealthHandler      gin.HandlerFunc
}
