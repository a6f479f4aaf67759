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

// Products is the Mongo backed ProductStore.
type Products struct {
	collection
}

var _ ProductStore = (*Products)(nil)

// NewProducts returns a store over db.Collection(name).
func NewProducts(db *mongo.Database, name string, timeout time.Duration) *Products {
	return &Products{collection{coll: db.Collection(name), timeout: timeout}}
}

func (s *Products) List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error) {
	products := make([]models.Product, 0, q.Limit)
	total, err := s.page(ctx, q.Filter(), q.SortSpec(), q.Page, &products)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list products")
	}
	return products, total, nil
}

func (s *Products) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := s.get(ctx, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Products) Create(ctx context.Context, doc bson.M) (primitive.ObjectID, error) {
	return s.insert(ctx, doc)
}

// Update merges u.Set into the product, removes u.Unset and stamps updatedAt.
func (s *Products) Update(ctx context.Context, id primitive.ObjectID, u ProductUpdate) error {
	set := make(bson.M, len(u.Set)+1)
	for k, v := range u.Set {
		set[k] = v
	}
	set["updatedAt"] = time.Now().UTC()

	update := bson.M{"$set": set}
	if len(u.Unset) > 0 {
		unset := make(bson.M, len(u.Unset))
		for _, field := range u.Unset {
			unset[field] = ""
		}
		update["$unset"] = unset
	}
	return s.update(ctx, id, update)
}

func (s *Products) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.delete(ctx, id)
}

// AdjustStock decrements stock for every item inside one transaction. Each
// decrement is conditional on the quantity still being available, so a
// concurrent writer can never drive a level below zero.
func (s *Products) AdjustStock(ctx context.Context, items []models.StockAdjustment) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	session, err := s.coll.Database().Client().StartSession()
	if err != nil {
		return errors.Wrap(err, "start session")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		now := time.Now().UTC()
		for _, item := range items {
			if err := s.adjustOne(sessCtx, item, now); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func (s *Products) adjustOne(ctx context.Context, item models.StockAdjustment, now time.Time) error {
	var p models.Product
	err := s.coll.FindOne(ctx, bson.M{"_id": item.ProductID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &ProductNotFoundError{ProductID: item.ProductID}
	}
	if err != nil {
		return errors.Wrap(err, "find product")
	}

	var (
		available int64
		filter    bson.M
		update    any
	)
	switch {
	case p.Stock.Set:
		available = p.Stock.Value
		filter = bson.M{"_id": item.ProductID, "stock": bson.M{"$gte": item.Quantity}}
		update = bson.M{
			"$inc": bson.M{"stock": -item.Quantity},
			"$set": bson.M{"updatedAt": now},
		}
	case p.SizeVariant() && item.Size != "":
		available = p.StockBySize[item.Size]
		filter, update = sizeDecrement(item, now)
	default:
		return &SizeRequiredError{ProductID: p.ID, Name: p.Name}
	}

	outOfStock := &OutOfStockError{
		ProductID: p.ID,
		Name:      p.Name,
		Available: available,
		Requested: item.Quantity,
	}
	if !p.Stock.Set {
		outOfStock.Size = item.Size
	}
	if available < item.Quantity {
		return outOfStock
	}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return errors.Wrap(err, "decrement stock")
	}
	if res.MatchedCount == 0 {
		return outOfStock
	}
	return nil
}

// sizeDecrement addresses the size through $getField/$setField so labels
// containing dots ("7.5") are treated as one key, not a path.
func sizeDecrement(item models.StockAdjustment, now time.Time) (bson.M, mongo.Pipeline) {
	size := bson.M{"$literal": item.Size}
	current := bson.M{"$getField": bson.M{"field": size, "input": "$stockBySize"}}

	filter := bson.M{
		"_id":   item.ProductID,
		"$expr": bson.M{"$gte": bson.A{current, item.Quantity}},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "stockBySize", Value: bson.M{"$setField": bson.M{
				"field": size,
				"input": "$stockBySize",
				"value": bson.M{"$subtract": bson.A{current, item.Quantity}},
			}}},
			{Key: "totalStock", Value: bson.M{"$subtract": bson.A{"$totalStock", item.Quantity}}},
			{Key: "updatedAt", Value: now},
		}}},
	}
	return filter, update
}
