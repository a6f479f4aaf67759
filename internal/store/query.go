package store

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Price sort directions accepted by product listing.
const (
	SortLowHigh = "low-high"
	SortHighLow = "high-low"
)

// Page is a 1-based page request.
type Page struct {
	Page  int64
	Limit int64
}

// Skip is the number of documents before the page.
func (p Page) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

// ProductQuery holds the listing parameters. Nil/empty fields add no constraint.
type ProductQuery struct {
	Category string
	Popular  *bool
	Discount bool
	Search   string
	Sort     string
	Page
}

// OrderQuery holds order listing parameters.
type OrderQuery struct {
	Search string
	Page
}

// containsInsensitive matches text containing s, ignoring case. s is taken
// literally.
func containsInsensitive(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// Filter builds the products filter.
func (q ProductQuery) Filter() bson.M {
	filter := bson.M{}
	if category := strings.TrimSpace(q.Category); category != "" {
		filter["category"] = category
	}
	if q.Popular != nil {
		filter["popular"] = *q.Popular
	}
	if q.Discount {
		filter["discountPrice"] = bson.M{"$gt": 0}
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		filter["name"] = containsInsensitive(search)
	}
	return filter
}

// SortSpec orders by price, or by discountPrice when the discount filter is
// on. _id keeps pages stable.
func (q ProductQuery) SortSpec() bson.D {
	key := "price"
	if q.Discount {
		key = "discountPrice"
	}

	var sort bson.D
	switch q.Sort {
	case SortLowHigh:
		sort = append(sort, bson.E{Key: key, Value: 1})
	case SortHighLow:
		sort = append(sort, bson.E{Key: key, Value: -1})
	}
	return append(sort, bson.E{Key: "_id", Value: 1})
}

// Filter builds the orders filter.
func (q OrderQuery) Filter() bson.M {
	filter := bson.M{}
	if search := strings.TrimSpace(q.Search); search != "" {
		filter["customer.customerNumber"] = containsInsensitive(search)
	}
	return filter
}

// SortSpec is newest first.
func (q OrderQuery) SortSpec() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}
