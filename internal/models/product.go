package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a document of the products collection. Fields the service does
// not know about are kept in Extra and round-trip untouched.
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Category      string             `bson:"category"`
	Price         float64            `bson:"price"`
	DiscountPrice float64            `bson:"discountPrice,omitempty"`
	Popular       bool               `bson:"popular"`
	Stock         StockLevel         `bson:"stock"`
	StockBySize   map[string]int64   `bson:"stockBySize,omitempty"`
	TotalStock    int64              `bson:"totalStock,omitempty"`
	CreatedAt     *time.Time         `bson:"createdAt,omitempty"`
	UpdatedAt     *time.Time         `bson:"updatedAt,omitempty"`
	Extra         bson.M             `bson:",inline"`
}

// SizeVariant reports whether stock is tracked per size.
func (p *Product) SizeVariant() bool {
	return !p.Stock.Set && p.StockBySize != nil
}

// OnDiscount reports whether a discount price applies.
func (p *Product) OnDiscount() bool {
	return p.DiscountPrice > 0
}

// MarshalJSON flattens Extra next to the known fields.
func (p Product) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+10)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["_id"] = p.ID.Hex()
	out["name"] = p.Name
	out["category"] = p.Category
	out["price"] = p.Price
	out["popular"] = p.Popular
	out["stock"] = p.Stock
	if p.OnDiscount() {
		out["discountPrice"] = p.DiscountPrice
	}
	if p.StockBySize != nil {
		out["stockBySize"] = p.StockBySize
		out["totalStock"] = p.TotalStock
	}
	if p.CreatedAt != nil {
		out["createdAt"] = p.CreatedAt
	}
	if p.UpdatedAt != nil {
		out["updatedAt"] = p.UpdatedAt
	}
	return json.Marshal(out)
}
