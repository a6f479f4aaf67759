package handlers

import "github.com/go-faster/errors"

// validateDiscount checks a discount price against the regular price. Zero
// means no discount.
func validateDiscount(price, discountPrice float64) error {
	if discountPrice < 0 {
		return errors.New("discountPrice must be zero or greater")
	}
	if discountPrice > 0 && discountPrice >= price {
		return errors.New("discountPrice must be less than price")
	}
	return nil
}
