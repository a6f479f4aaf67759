package store

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kickboxbd/kickbox-backend/internal/models"
)

// Orders is the Mongo backed OrderStore.
type Orders struct {
	collection
}

var _ OrderStore = (*Orders)(nil)

// NewOrders returns a store over db.Collection(name).
func NewOrders(db *mongo.Database, name string, timeout time.Duration) *Orders {
	return &Orders{collection{coll: db.Collection(name), timeout: timeout}}
}

func (s *Orders) List(ctx context.Context, q OrderQuery) ([]models.Order, int64, error) {
	orders := make([]models.Order, 0, q.Limit)
	total, err := s.page(ctx, q.Filter(), q.SortSpec(), q.Page, &orders)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}
	return orders, total, nil
}

func (s *Orders) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := s.get(ctx, id, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Orders) Create(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	id, err := s.insert(ctx, order)
	if err != nil {
		return primitive.NilObjectID, err
	}
	order.ID = id
	return id, nil
}

func (s *Orders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	return s.set(ctx, id, bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	})
}

func (s *Orders) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.delete(ctx, id)
}
