package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCanceled:
		return true
	}
	return false
}

// Customer holds the contact and delivery details captured at checkout.
type Customer struct {
	CustomerName   string `bson:"customerName" json:"customerName"`
	Email          string `bson:"email" json:"email"`
	CustomerNumber string `bson:"customerNumber" json:"customerNumber"`
	District       string `bson:"district" json:"district"`
	Address        string `bson:"address" json:"address"`
	DeliveryZone   string `bson:"deliveryZone" json:"deliveryZone"`
}

// LineItem represents a single product entry within an order.
type LineItem struct {
	ProductID *primitive.ObjectID `bson:"productId,omitempty" json:"productId,omitempty"`
	Name      string              `bson:"name" json:"name"`
	Size      string              `bson:"size,omitempty" json:"size,omitempty"`
	Quantity  int64               `bson:"quantity" json:"quantity"`
	Price     float64             `bson:"price" json:"price"`
	Extra     bson.M              `bson:",inline" json:"-"`
}

// MarshalJSON writes Extra next to the known fields.
func (li LineItem) MarshalJSON() ([]byte, error) {
	type plain LineItem
	return withExtra(plain(li), li.Extra)
}

// Subtotal is price times quantity.
func (li LineItem) Subtotal() float64 {
	return li.Price * float64(li.Quantity)
}

// Order defines the persisted order document.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Customer    Customer           `bson:"customer" json:"customer"`
	Products    []LineItem         `bson:"products" json:"products"`
	TotalAmount float64            `bson:"totalAmount" json:"totalAmount"`
	Status      OrderStatus        `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	// Extra holds client supplied fields such as deliveryCharge or
	// paymentMethod, stored as sent.
	Extra bson.M `bson:",inline" json:"-"`
}

// MarshalJSON writes Extra next to the known fields.
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return withExtra(plain(o), o.Extra)
}

// withExtra marshals v and adds the extra keys it does not already have.
func withExtra(v any, extra bson.M) ([]byte, error) {
	known, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return known, err
	}
	out := make(map[string]json.RawMessage, len(extra)+8)
	if err := json.Unmarshal(known, &out); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, ok := out[k]; ok {
			continue
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		out[k] = raw
	}
	return json.Marshal(out)
}

// ItemsTotal sums the line item subtotals.
func (o *Order) ItemsTotal() float64 {
	var total float64
	for _, item := range o.Products {
		total += item.Subtotal()
	}
	return total
}

// StockAdjustment asks to take quantity units of a product (and size) out of stock.
type StockAdjustment struct {
	ProductID primitive.ObjectID
	Quantity  int64
	Size      string
}
