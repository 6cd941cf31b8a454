package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"turjman/config"
)

type serviceListItem struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	PriceUSDC float64 `json:"priceUSDC"`
	PartnerID string  `json:"partnerId"`
}

// ListServices serves GET /api/services from the static catalog.
func ListServices(c *gin.Context) {
	items := make([]serviceListItem, 0, len(config.Services))
	for _, s := range config.Services {
		items = append(items, serviceListItem{
			ID:        s.ID,
			Label:     s.Label,
			PriceUSDC: s.PriceUSDC,
			PartnerID: s.PartnerID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Health serves GET /api/health.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"network":     config.AppConfig.NetworkLabel,
		"usdcAddress": config.AppConfig.USDCAddress,
		"services":    len(config.Services),
		"demo":        config.AppConfig.DemoMode,
	})
}
