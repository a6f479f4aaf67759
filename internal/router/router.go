// Package router assembles the HTTP surface.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kickboxbd/kickbox-backend/internal/auth"
	"github.com/kickboxbd/kickbox-backend/internal/handlers"
	"github.com/kickboxbd/kickbox-backend/internal/mailer"
	"github.com/kickboxbd/kickbox-backend/internal/middleware"
	"github.com/kickboxbd/kickbox-backend/internal/store"
)

// Deps are the collaborators shared by every request.
type Deps struct {
	Products store.ProductStore
	Orders   store.OrderStore
	Pinger   store.Pinger
	Verifier auth.Verifier
	Sender   mailer.Sender
	Logger   *zap.Logger
	Registry *prometheus.Registry

	// Brand is the sender name used in customer emails.
	Brand       string
	AuthTimeout time.Duration
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		middleware.Recovery(),
		middleware.NewMetrics(d.Registry).Handler(),
	)

	r.GET("/", handlers.Home())
	r.GET("/healthz", handlers.Healthz(d.Pinger))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	r.GET("/shoes", handlers.ListShoes(d.Products))
	r.GET("/shoes/:id", handlers.GetShoe(d.Products))

	// Checkout is open to customers.
	r.POST("/orders", handlers.CreateOrder(d.Orders))
	r.POST("/send-confirmation-email", handlers.SendConfirmationEmail(d.Sender, d.Brand))

	admin := r.Group("/")
	admin.Use(middleware.AuthGuard(d.Verifier, d.AuthTimeout))
	{
		admin.POST("/shoes", handlers.CreateShoe(d.Products))
		admin.PATCH("/shoes/:id", handlers.UpdateShoe(d.Products))
		admin.DELETE("/shoes/:id", handlers.DeleteShoe(d.Products))
		admin.PATCH("/items/update/update-stock", handlers.UpdateStock(d.Products))

		admin.GET("/orders", handlers.ListOrders(d.Orders))
		admin.GET("/orders/:id", handlers.GetOrder(d.Orders))
		admin.PATCH("/orders/:id/status", handlers.UpdateOrderStatus(d.Orders))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(d.Orders))
	}

	return r
}
