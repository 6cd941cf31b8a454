package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turjman/config"
	"turjman/models"
	"turjman/services/payment"
	"turjman/services/receipt"
	"turjman/utils"
)

// PaymentHandler serves POST /api/pay.
type PaymentHandler struct {
	Service payment.Submitter
	Store   receipt.Store
	Logger  *zap.Logger
}

// NewPaymentHandler wires the payment endpoint.
func NewPaymentHandler(service payment.Submitter, store receipt.Store, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Service: service, Store: store, Logger: logger}
}

// PayHandler submits a stablecoin transfer for the requested amount. Any
// failure past validation is additionally recorded as a Failed fallback
// receipt so failed attempts remain auditable.
func (h *PaymentHandler) PayHandler(c *gin.Context) {
	var req models.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.PaymentsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "reason": err.Error()})
		return
	}

	if req.AmountUSDC == "" {
		utils.PaymentsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "amountUSDC is required"})
		return
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(req.AmountUSDC), 64); err != nil {
		utils.PaymentsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "amountUSDC must be numeric"})
		return
	}

	res, err := h.Service.Pay(c.Request.Context(), req.AmountUSDC)
	if err != nil {
		var insufficient *payment.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			utils.PaymentsTotal.WithLabelValues("insufficient_balance").Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Insufficient tUSDC balance on signer",
				"need":  insufficient.Need,
				"have":  insufficient.Have,
			})
			return
		}
		var invalid *payment.InvalidAmountError
		if errors.As(err, &invalid) {
			utils.PaymentsTotal.WithLabelValues("invalid").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}

		utils.PaymentsTotal.WithLabelValues("error").Inc()
		h.logFallbackReceipt(req, err)
		utils.JSONError(c, http.StatusInternalServerError, "Payment failed", err.Error())
		return
	}

	utils.PaymentsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"txHash":       res.TxHash,
		"explorerUrl":  res.ExplorerURL,
		"amountUSDC":   res.AmountUSDC,
		"partnerUSDC":  res.PartnerUSDC,
		"platformUSDC": res.PlatformUSDC,
		"splitMode":    res.SplitMode,
		"serviceId":    req.ServiceID,
		"serviceLabel": req.ServiceLabel,
	})
}

// logFallbackReceipt records the failed attempt. It is best-effort: its own
// failure is warned about, never surfaced to the caller.
func (h *PaymentHandler) logFallbackReceipt(req models.PayRequest, cause error) {
	amount := req.AmountUSDC
	if amount == "" {
		amount = "0.00"
	}
	fallback := models.Receipt{
		Tx:           models.TxNone,
		Service:      req.ServiceLabel,
		ServiceID:    req.ServiceID,
		ServiceLabel: req.ServiceLabel,
		Partner:      req.PartnerID,
		AmountUSDC:   amount,
		Network:      config.AppConfig.NetworkLabel,
		Status:       models.StatusFailed,
		Reason:       cause.Error(),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := h.Store.Add(fallback); err != nil {
		h.Logger.Warn("Failed to log fallback receipt", zap.Error(err))
	}
}
