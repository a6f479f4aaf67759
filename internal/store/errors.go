package store

import (
	"fmt"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when no document matches an identifier.
var ErrNotFound = errors.New("not found")

// ProductNotFoundError names a product referenced by a stock adjustment that
// does not exist.
type ProductNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID.Hex())
}

// OutOfStockError reports a decrement larger than the available quantity.
// Size is empty for scalar stock.
type OutOfStockError struct {
	ProductID primitive.ObjectID
	Name      string
	Size      string
	Available int64
	Requested int64
}

func (e *OutOfStockError) Error() string {
	if e.Size != "" {
		return fmt.Sprintf("Size %s out of stock for %s", e.Size, e.Name)
	}
	return fmt.Sprintf("Out of stock: %s", e.Name)
}

// SizeRequiredError is returned when a size-tracked product is adjusted
// without a size, or a product has no stock model at all.
type SizeRequiredError struct {
	ProductID primitive.ObjectID
	Name      string
}

func (e *SizeRequiredError) Error() string {
	return fmt.Sprintf("Size required for %s", e.Name)
}
