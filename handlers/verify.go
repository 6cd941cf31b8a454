package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turjman/services/chain"
	"turjman/services/receipt"
	"turjman/services/trust"
	"turjman/utils"
)

// VerifyHandler serves GET /api/verify: it confirms the on-chain transfer,
// bumps the trust score once per unique transaction and persists the receipt.
type VerifyHandler struct {
	Resolver chain.Resolver
	Store    receipt.Store
	Trust    *trust.Meter
	Logger   *zap.Logger
}

// NewVerifyHandler wires the verification endpoint.
func NewVerifyHandler(resolver chain.Resolver, store receipt.Store, meter *trust.Meter, logger *zap.Logger) *VerifyHandler {
	return &VerifyHandler{Resolver: resolver, Store: store, Trust: meter, Logger: logger}
}

// Verify resolves the transaction named by the tx query parameter. A
// transaction that is not indexed yet yields 202 pending; callers retry.
func (h *VerifyHandler) Verify(c *gin.Context) {
	txParam := c.Query("tx")
	if txParam == "" {
		txParam = c.Query("txHash")
	}
	if txParam == "" {
		txParam = c.Query("transactionHash")
	}
	if strings.TrimSpace(txParam) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "failed", "message": "Missing tx parameter."})
		return
	}

	overrides := chain.ReceiptOverrides{
		ServiceID:    c.Query("serviceId"),
		ServiceLabel: c.Query("serviceLabel"),
		Partner:      c.Query("partner"),
		Network:      c.Query("network"),
		Status:       c.Query("status"),
	}

	res, err := h.Resolver.Resolve(c.Request.Context(), txParam, overrides)
	if err != nil {
		utils.VerificationsTotal.WithLabelValues("error").Inc()
		h.Logger.Error("Verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "failed", "message": err.Error()})
		return
	}

	switch res.Status {
	case chain.ResultPending:
		utils.VerificationsTotal.WithLabelValues("pending").Inc()
		c.JSON(http.StatusAccepted, gin.H{"status": "pending", "message": res.Message})
		return
	case chain.ResultFailed:
		utils.VerificationsTotal.WithLabelValues("failed").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "failed", "message": res.Message})
		return
	}

	rec := *res.Receipt
	trustScore := h.Trust.RecordVerified(rec.Tx)

	// Persistence is best-effort: a verified payment is still reported even
	// if the local write fails.
	if _, err := h.Store.Add(rec); err != nil {
		h.Logger.Warn("Failed to persist verified receipt", zap.Error(err))
	}

	utils.VerificationsTotal.WithLabelValues("verified").Inc()
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"status":        "verified",
		"service":       rec.ServiceLabel,
		"amount":        rec.AmountUSDC,
		"network":       rec.Network,
		"trustScoreNew": trustScore,
		"txHash":        rec.Tx,
		"receiptUrl":    fmt.Sprintf("/receipts/%s", rec.Tx),
		"pdfUrl":        rec.PDFURL,
		"explorerUrl":   rec.ExplorerURL,
	})
}
