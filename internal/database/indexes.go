package database

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ProductIndexes back the catalogue filters and price sorts.
func ProductIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "price", Value: 1}},
			Options: options.Index().SetName("category_price"),
		},
		{
			Keys:    bson.D{{Key: "popular", Value: 1}},
			Options: options.Index().SetName("popular"),
		},
		{
			Keys: bson.D{{Key: "discountPrice", Value: 1}},
			Options: options.Index().
				SetName("discountPrice_partial").
				SetPartialFilterExpression(bson.M{
					"discountPrice": bson.M{"$gt": 0},
				}),
		},
	}
}

// OrderIndexes back the newest-first listing and the phone number search.
func OrderIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
		{
			Keys:    bson.D{{Key: "customer.customerNumber", Value: 1}},
			Options: options.Index().SetName("customerNumber"),
		},
	}
}

// EnsureIndexes creates the given indexes on a collection.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, lg *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	lg = lg.With(zap.String("collection", coll.Name()))
	names, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		lg.Warn("Index creation failed", zap.Error(err))
		return errors.Wrapf(err, "create indexes on %s", coll.Name())
	}
	lg.Info("Indexes ensured", zap.Strings("names", names))
	return nil
}
