package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turjman/config"
	"turjman/models"
	"turjman/services/receipt"
	"turjman/utils"
)

// ReceiptHandler serves receipt lookups, the PDF certificate, the demo-only
// log endpoints and the store health check.
type ReceiptHandler struct {
	Store    receipt.Store
	Renderer *receipt.PDFRenderer
	Logger   *zap.Logger
}

// NewReceiptHandler wires the receipt endpoints.
func NewReceiptHandler(store receipt.Store, renderer *receipt.PDFRenderer, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{Store: store, Renderer: renderer, Logger: logger}
}

// GetReceipt serves GET /api/receipts/:tx as JSON, or as a PDF attachment
// when ?format=pdf is given.
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	canonical := utils.NormalizeTxHash(c.Param("tx"))
	if canonical == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid-tx"})
		return
	}

	stored, err := h.Store.Get(canonical)
	if err != nil {
		if errors.Is(err, receipt.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not-found"})
			return
		}
		h.Logger.Error("Receipt lookup failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal-error", err.Error())
		return
	}

	view := receipt.BuildView(stored)

	if c.Query("format") != "pdf" {
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, view)
		return
	}

	data, err := h.Renderer.RenderCertificate(view)
	if err != nil {
		h.Logger.Error("PDF build failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal-error", err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=smart-turjman-receipt-%s.pdf", canonical))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", data)
}

// guardDemoOnly blocks the raw log endpoints outside development.
func (h *ReceiptHandler) guardDemoOnly(c *gin.Context) bool {
	if config.IsProduction() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not-available"})
		return false
	}
	return true
}

// ListLog serves GET /api/receipts/log (non-production only).
func (h *ReceiptHandler) ListLog(c *gin.Context) {
	if !h.guardDemoOnly(c) {
		return
	}
	items := h.Store.List()
	for i := range items {
		items[i] = applyPartnerFallback(items[i])
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// AddLog serves POST /api/receipts/log (non-production only).
func (h *ReceiptHandler) AddLog(c *gin.Context) {
	if !h.guardDemoOnly(c) {
		return
	}

	var body models.Receipt
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	required := map[string]string{
		"tx":           body.Tx,
		"amountUSDC":   body.AmountUSDC,
		"serviceLabel": body.ServiceLabel,
		"explorerUrl":  body.ExplorerURL,
		"pdfUrl":       body.PDFURL,
		"serviceId":    body.ServiceID,
	}
	for _, k := range []string{"tx", "amountUSDC", "serviceLabel", "explorerUrl", "pdfUrl", "serviceId"} {
		if required[k] == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Missing %s", k)})
			return
		}
	}

	if body.Service == "" {
		body.Service = body.ServiceLabel
	}
	if body.Network == "" {
		body.Network = config.AppConfig.NetworkLabel
	}
	if body.Status == "" {
		body.Status = models.StatusVerified
	}
	body = applyPartnerFallback(body)
	body.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	saved, err := h.Store.Add(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, applyPartnerFallback(saved))
}

// StoreHealth serves GET /api/receipts/health: it reads the store strictly so
// operators can detect a corrupted backing file.
func (h *ReceiptHandler) StoreHealth(c *gin.Context) {
	items, err := h.Store.ListStrict()
	if err != nil {
		h.Logger.Warn("Receipts store corrupted", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(items)})
}

func applyPartnerFallback(r models.Receipt) models.Receipt {
	if r.Partner != "" {
		return r
	}
	if r.ServiceID != "" {
		if service := config.FindService(r.ServiceID); service != nil && service.Partner != "" {
			r.Partner = service.Partner
			return r
		}
	}
	r.Partner = config.DefaultPartner
	return r
}
