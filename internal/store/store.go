// Package store is the document store client for products and orders.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kickboxbd/kickbox-backend/internal/models"
)

//go:generate mockgen -source=store.go -destination=storemock/store.go -package=storemock

// ProductStore persists products.
type ProductStore interface {
	List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Create(ctx context.Context, doc bson.M) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, u ProductUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AdjustStock applies every decrement or none of them.
	AdjustStock(ctx context.Context, items []models.StockAdjustment) error
}

// ProductUpdate is a partial product change: fields to set and fields to
// remove.
type ProductUpdate struct {
	Set   bson.M
	Unset []string
}

// OrderStore persists orders.
type OrderStore interface {
	List(ctx context.Context, q OrderQuery) ([]models.Order, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) (primitive.ObjectID, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Pinger reports store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
