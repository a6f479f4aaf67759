package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kickboxbd/kickbox-backend/internal/models"
	"github.com/kickboxbd/kickbox-backend/internal/store"
)

type stockItemRequest struct {
	ShoeID   string    `json:"shoeId" binding:"required"`
	Quantity int64     `json:"quantity" binding:"required,gte=1"`
	Size     sizeLabel `json:"size"`
}

type updateStockRequest struct {
	Products []stockItemRequest `json:"products" binding:"required,min=1,dive"`
}

// UpdateStock handles PATCH /items/update/update-stock. Every item is taken
// out of stock or none is.
func UpdateStock(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /items/update/update-stock"

		var req updateStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		items := make([]models.StockAdjustment, 0, len(req.Products))
		for _, item := range req.Products {
			id, err := primitive.ObjectIDFromHex(item.ShoeID)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "Invalid shoe ID")
				return
			}
			size := string(item.Size)
			if !validSizeKey(size) {
				respondWithError(c, http.StatusBadRequest, route, "Invalid size")
				return
			}
			items = append(items, models.StockAdjustment{
				ProductID: id,
				Quantity:  item.Quantity,
				Size:      size,
			})
		}

		if err := products.AdjustStock(c.Request.Context(), items); err != nil {
			var (
				notFound     *store.ProductNotFoundError
				outOfStock   *store.OutOfStockError
				sizeRequired *store.SizeRequiredError
			)
			switch {
			case errors.As(err, &notFound):
				respondWithError(c, http.StatusNotFound, route, "Product not found")
			case errors.As(err, &outOfStock):
				respondWithError(c, http.StatusBadRequest, route, outOfStock.Error())
			case errors.As(err, &sizeRequired):
				respondWithError(c, http.StatusBadRequest, route, sizeRequired.Error())
			default:
				respondInternal(c, route, "Stock update failed", err)
			}
			return
		}

		routeLogger(c, route).Info("Stock updated", zap.Int("items", len(items)))
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
