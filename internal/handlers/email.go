package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kickboxbd/kickbox-backend/internal/mailer"
	"github.com/kickboxbd/kickbox-backend/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type emailOrderRequest struct {
	Customer    models.Customer   `json:"customer"`
	Products    []lineItemRequest `json:"products" binding:"-"`
	TotalAmount float64           `json:"totalAmount"`
}

type confirmationEmailRequest struct {
	Email string             `json:"email"`
	Order *emailOrderRequest `json:"order"`
}

// SendConfirmationEmail handles POST /send-confirmation-email. It is not tied
// to order placement; clients call it after POST /orders succeeds.
func SendConfirmationEmail(sender mailer.Sender, brand string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /send-confirmation-email"
		lg := routeLogger(c, route)

		var req confirmationEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			lg.Info("Invalid email request", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"result": "Missing email or order data"})
			return
		}
		email := strings.TrimSpace(req.Email)
		if email == "" || req.Order == nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"result": "Missing email or order data"})
			return
		}
		if err := validate.Var(email, "email"); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"result": "Invalid email address"})
			return
		}

		order := &models.Order{
			Customer:    req.Order.Customer,
			TotalAmount: req.Order.TotalAmount,
			Products:    make([]models.LineItem, 0, len(req.Order.Products)),
		}
		for _, p := range req.Order.Products {
			order.Products = append(order.Products, models.LineItem{
				Name:     p.Name,
				Size:     string(p.Size),
				Quantity: p.Quantity,
				Price:    p.Price,
			})
		}

		msg, err := mailer.OrderConfirmation(brand, email, order)
		if err != nil {
			lg.Error("Render confirmation email", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"result": "Email Failed"})
			return
		}
		if err := sender.Send(c.Request.Context(), msg); err != nil {
			lg.Error("Send confirmation email", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"result": "Email Failed"})
			return
		}

		lg.Info("Confirmation email sent", zap.Int("items", len(order.Products)))
		c.JSON(http.StatusOK, gin.H{"result": "success"})
	}
}
