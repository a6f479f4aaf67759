package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kickboxbd/kickbox-backend/internal/store"
)

func Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "API is running...")
	}
}

// Healthz answers 503 while the store is unreachable.
func Healthz(pinger store.Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /healthz"

		if err := pinger.Ping(c.Request.Context()); err != nil {
			routeLogger(c, route).Warn("Store unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
