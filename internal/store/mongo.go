package store

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// collection bounds every call on a Mongo collection with a timeout.
type collection struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func (c collection) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// Ping checks the primary is reachable.
func (c collection) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func (c collection) page(ctx context.Context, filter bson.M, sort bson.D, p Page, out any) (int64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	total, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrap(err, "count")
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(p.Skip()).
		SetLimit(p.Limit)

	cursor, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return 0, errors.Wrap(err, "find")
	}
	if err := cursor.All(ctx, out); err != nil {
		return 0, errors.Wrap(err, "decode")
	}
	return total, nil
}

func (c collection) get(ctx context.Context, id primitive.ObjectID, out any) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "find one")
	}
	return nil
}

func (c collection) insert(ctx context.Context, doc any) (primitive.ObjectID, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "insert")
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.Errorf("unexpected inserted id %T", res.InsertedID)
	}
	return id, nil
}

func (c collection) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	return c.update(ctx, id, bson.M{"$set": fields})
}

func (c collection) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return errors.Wrap(err, "update")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c collection) delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
