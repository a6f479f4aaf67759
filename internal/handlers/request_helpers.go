package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kickboxbd/kickbox-backend/internal/store"
)

func routeLogger(c *gin.Context, route string) *zap.Logger {
	return zctx.From(c.Request.Context()).With(zap.String("route", route))
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	routeLogger(c, route).Info("Request rejected", zap.Int("status", status), zap.String("message", message))
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// respondInternal logs the cause and hides it from the client.
func respondInternal(c *gin.Context, route string, message string, err error) {
	routeLogger(c, route).Error("Request failed", zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": message})
}

// respondStoreError maps store.ErrNotFound to 404 and everything else to 500.
func respondStoreError(c *gin.Context, route string, err error, notFound, failed string) {
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(c, http.StatusNotFound, route, notFound)
		return
	}
	respondInternal(c, route, failed, err)
}

// objectIDParam parses the :id path parameter, answering 400 when malformed.
func objectIDParam(c *gin.Context, route string, invalid string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, route, invalid)
		return primitive.NilObjectID, false
	}
	return id, true
}
