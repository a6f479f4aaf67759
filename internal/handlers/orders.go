package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kickboxbd/kickbox-backend/internal/models"
	"github.com/kickboxbd/kickbox-backend/internal/store"
)

/* =========================
   REQUEST DTOs
========================= */

type lineItemRequest struct {
	ProductID string    `json:"productId"`
	ShoeID    string    `json:"shoeId"`
	Name      string    `json:"name" binding:"required"`
	Size      sizeLabel `json:"size"`
	Quantity  int64     `json:"quantity" binding:"required,gte=1"`
	Price     float64   `json:"price" binding:"gte=0"`
}

type createOrderRequest struct {
	Customer    *models.Customer  `json:"customer"`
	Products    []lineItemRequest `json:"products" binding:"required,min=1,dive"`
	TotalAmount float64           `json:"totalAmount" binding:"gt=0"`
}

// Keys decoded into the typed request. Anything else the client sends is
// stored alongside the order as sent; server owned keys are dropped.
var (
	knownOrderKeys = map[string]struct{}{
		"customer": {}, "products": {}, "totalAmount": {},
		"_id": {}, "status": {}, "createdAt": {}, "updatedAt": {},
	}
	knownLineItemKeys = map[string]struct{}{
		"productId": {}, "shoeId": {}, "name": {}, "size": {}, "quantity": {}, "price": {},
	}
)

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// totalTolerance absorbs float rounding when comparing the client total with
// the line items.
const totalTolerance = 0.005

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(orders store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"

		body, err := c.GetRawData()
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		var req createOrderRequest
		bindErr := binding.JSON.BindBody(body, &req)
		if bindErr != nil && !isValidationError(bindErr) {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		customer, ok := normalizeCustomer(req.Customer)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Customer information is incomplete")
			return
		}
		if bindErr != nil {
			respondValidationError(c, route, bindErr)
			return
		}

		extra, itemExtras, err := orderExtras(body)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		items, err := lineItems(req.Products, itemExtras)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		now := time.Now().UTC()
		order := &models.Order{
			Customer:    customer,
			Products:    items,
			TotalAmount: req.TotalAmount,
			Status:      models.OrderStatusPending,
			CreatedAt:   now,
			UpdatedAt:   &now,
			Extra:       extra,
		}
		if itemsTotal := order.ItemsTotal(); order.TotalAmount+totalTolerance < itemsTotal {
			respondWithError(c, http.StatusBadRequest, route, "totalAmount is less than the sum of the products")
			return
		}

		id, err := orders.Create(c.Request.Context(), order)
		if err != nil {
			respondInternal(c, route, "Failed to place order", err)
			return
		}

		routeLogger(c, route).Info("Order placed",
			zap.String("id", id.Hex()),
			zap.Int("items", len(items)),
			zap.Float64("total", order.TotalAmount),
		)
		c.JSON(http.StatusCreated, gin.H{
			"success":    true,
			"insertedId": id.Hex(),
			"message":    "Order placed successfully",
		})
	}
}

// normalizeCustomer trims every field and reports whether all are present.
func normalizeCustomer(in *models.Customer) (models.Customer, bool) {
	if in == nil {
		return models.Customer{}, false
	}
	out := models.Customer{
		CustomerName:   strings.TrimSpace(in.CustomerName),
		Email:          strings.TrimSpace(in.Email),
		CustomerNumber: strings.TrimSpace(in.CustomerNumber),
		District:       strings.TrimSpace(in.District),
		Address:        strings.TrimSpace(in.Address),
		DeliveryZone:   strings.TrimSpace(in.DeliveryZone),
	}
	for _, v := range []string{
		out.CustomerName, out.Email, out.CustomerNumber,
		out.District, out.Address, out.DeliveryZone,
	} {
		if v == "" {
			return models.Customer{}, false
		}
	}
	return out, true
}

// orderExtras collects the keys of the order and of each line item that the
// typed request does not cover.
func orderExtras(body []byte) (bson.M, []bson.M, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, nil, errors.New("invalid request body")
	}

	extra, err := unknownFields(fields, knownOrderKeys)
	if err != nil {
		return nil, nil, err
	}
	products, _ := fields["products"].([]any)
	itemExtras := make([]bson.M, len(products))
	for i, p := range products {
		item, _ := p.(map[string]any)
		if itemExtras[i], err = unknownFields(item, knownLineItemKeys); err != nil {
			return nil, nil, err
		}
	}
	return extra, itemExtras, nil
}

func unknownFields(fields map[string]any, known map[string]struct{}) (bson.M, error) {
	var out bson.M
	for key, value := range fields {
		if _, ok := known[key]; ok {
			continue
		}
		if !validFieldName(key) {
			return nil, errors.Errorf("invalid field name %q", key)
		}
		if out == nil {
			out = bson.M{}
		}
		out[key] = value
	}
	return out, nil
}

func lineItems(reqs []lineItemRequest, extras []bson.M) ([]models.LineItem, error) {
	items := make([]models.LineItem, 0, len(reqs))
	for i, r := range reqs {
		item := models.LineItem{
			Name:     strings.TrimSpace(r.Name),
			Size:     string(r.Size),
			Quantity: r.Quantity,
			Price:    r.Price,
		}
		if i < len(extras) {
			item.Extra = extras[i]
		}
		if item.Name == "" {
			return nil, errors.New("name is required")
		}
		pid := strings.TrimSpace(r.ProductID)
		if pid == "" {
			pid = strings.TrimSpace(r.ShoeID)
		}
		if pid != "" {
			id, err := primitive.ObjectIDFromHex(pid)
			if err != nil {
				return nil, errors.New("Invalid product ID")
			}
			item.ProductID = &id
		}
		items = append(items, item)
	}
	return items, nil
}

/* =========================
   READ ORDERS
========================= */

func ListOrders(orders store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"

		page, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		list, total, err := orders.List(c.Request.Context(), store.OrderQuery{
			Search: c.Query("search"),
			Page:   page,
		})
		if err != nil {
			respondInternal(c, route, "Failed to fetch orders", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": list,
			"total":  total,
			"page":   page.Page,
			"limit":  page.Limit,
		})
	}
}

func GetOrder(orders store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"

		id, ok := objectIDParam(c, route, "Invalid order ID")
		if !ok {
			return
		}

		order, err := orders.Get(c.Request.Context(), id)
		if err != nil {
			respondStoreError(c, route, err, "Order not found", "Failed to fetch order")
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

/* =========================
   MUTATE ORDERS
========================= */

func UpdateOrderStatus(orders store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:id/status"

		id, ok := objectIDParam(c, route, "Invalid order ID")
		if !ok {
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid order status")
			return
		}
		status := models.OrderStatus(req.Status)
		if !status.Valid() {
			respondWithError(c, http.StatusBadRequest, route, "Invalid order status")
			return
		}

		if err := orders.UpdateStatus(c.Request.Context(), id, status); err != nil {
			respondStoreError(c, route, err, "Order not found", "Failed to update order status")
			return
		}

		routeLogger(c, route).Info("Order status updated",
			zap.String("id", id.Hex()),
			zap.String("status", string(status)),
		)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated"})
	}
}

func DeleteOrder(orders store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /orders/:id"

		id, ok := objectIDParam(c, route, "Invalid order ID")
		if !ok {
			return
		}

		if err := orders.Delete(c.Request.Context(), id); err != nil {
			respondStoreError(c, route, err, "Order not found", "Failed to delete order")
			return
		}

		routeLogger(c, route).Info("Order deleted", zap.String("id", id.Hex()))
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order deleted successfully"})
	}
}
