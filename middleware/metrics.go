package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"turjman/utils"
)

// MetricsMiddleware counts requests by route template and status code.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		utils.HTTPRequestsTotal.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
