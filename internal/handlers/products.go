package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kickboxbd/kickbox-backend/internal/store"
)

/*
GET /shoes
- category, popular, discount, search, sort (low-high | high-low)
- page (1) + limit (8)
*/
func ListShoes(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /shoes"

		page, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		q := store.ProductQuery{
			Category: c.Query("category"),
			Discount: strings.EqualFold(strings.TrimSpace(c.Query("discount")), "true"),
			Search:   c.Query("search"),
			Sort:     strings.TrimSpace(c.Query("sort")),
			Page:     page,
		}
		if popular, ok := c.GetQuery("popular"); ok {
			v := strings.EqualFold(strings.TrimSpace(popular), "true")
			q.Popular = &v
		}

		shoes, total, err := products.List(c.Request.Context(), q)
		if err != nil {
			respondInternal(c, route, "Failed to fetch shoes", err)
			return
		}

		routeLogger(c, route).Debug("Listing shoes",
			zap.Int("count", len(shoes)),
			zap.Int64("total", total),
		)
		c.JSON(http.StatusOK, gin.H{
			"shoes": shoes,
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		})
	}
}

// GetShoe handles GET /shoes/:id.
func GetShoe(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /shoes/:id"

		id, ok := objectIDParam(c, route, "Invalid shoe ID")
		if !ok {
			return
		}

		shoe, err := products.Get(c.Request.Context(), id)
		if err != nil {
			respondStoreError(c, route, err, "Shoe not found", "Failed to fetch shoe")
			return
		}
		c.JSON(http.StatusOK, shoe)
	}
}

// CreateShoe handles POST /shoes.
func CreateShoe(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /shoes"

		var raw map[string]any
		if err := c.ShouldBindJSON(&raw); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		doc, err := normalizeProductDocument(raw, false)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		now := time.Now().UTC()
		doc["createdAt"] = now
		doc["updatedAt"] = now

		id, err := products.Create(c.Request.Context(), doc)
		if err != nil {
			respondInternal(c, route, "Failed to create shoe", err)
			return
		}

		routeLogger(c, route).Info("Shoe created", zap.String("id", id.Hex()))
		c.JSON(http.StatusCreated, gin.H{
			"acknowledged": true,
			"insertedId":   id.Hex(),
		})
	}
}

// UpdateShoe handles PATCH /shoes/:id.
func UpdateShoe(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /shoes/:id"

		id, ok := objectIDParam(c, route, "Invalid shoe ID")
		if !ok {
			return
		}

		var raw map[string]any
		if err := c.ShouldBindJSON(&raw); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		update, err := productUpdate(raw)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if err := products.Update(c.Request.Context(), id, update); err != nil {
			respondStoreError(c, route, err, "Shoe not found", "Update failed")
			return
		}

		routeLogger(c, route).Info("Shoe updated", zap.String("id", id.Hex()))
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Shoe updated successfully"})
	}
}

// DeleteShoe handles DELETE /shoes/:id.
func DeleteShoe(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /shoes/:id"

		id, ok := objectIDParam(c, route, "Invalid shoe ID")
		if !ok {
			return
		}

		if err := products.Delete(c.Request.Context(), id); err != nil {
			respondStoreError(c, route, err, "Shoe not found", "Failed to delete shoe")
			return
		}

		routeLogger(c, route).Info("Shoe deleted", zap.String("id", id.Hex()))
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Shoe deleted successfully",
			"deletedId": id.Hex(),
		})
	}
}
