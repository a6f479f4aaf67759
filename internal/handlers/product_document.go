package handlers

import (
	"math"
	"strings"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kickboxbd/kickbox-backend/internal/store"
)

// Fields the server owns; clients cannot set them.
var reservedProductFields = map[string]struct{}{
	"_id":       {},
	"createdAt": {},
	"updatedAt": {},
}

// normalizeProductDocument validates a client supplied product body and
// converts it into the stored shape. With partial set only present fields
// are checked, as for a PATCH. Unknown fields pass through.
func normalizeProductDocument(raw map[string]any, partial bool) (bson.M, error) {
	doc := make(bson.M, len(raw)+1)
	for key, value := range raw {
		if _, ok := reservedProductFields[key]; ok {
			continue
		}
		if !validFieldName(key) {
			return nil, errors.Errorf("invalid field name %q", key)
		}
		doc[key] = value
	}
	if len(doc) == 0 {
		return nil, errors.New("no product fields supplied")
	}

	for _, field := range []string{"name", "category"} {
		if err := normalizeText(doc, field, partial); err != nil {
			return nil, err
		}
	}

	price, hasPrice, err := number(doc, "price")
	if err != nil {
		return nil, err
	}
	if !hasPrice && !partial {
		return nil, errors.New("price is required")
	}
	if hasPrice && price < 0 {
		return nil, errors.New("price must be zero or greater")
	}

	discount, hasDiscount, err := number(doc, "discountPrice")
	if err != nil {
		return nil, err
	}
	if hasDiscount {
		if !hasPrice {
			// The stored price is unknown here; only the sign can be checked.
			price = math.Inf(1)
		}
		if err := validateDiscount(price, discount); err != nil {
			return nil, err
		}
	}

	if v, ok := doc["popular"]; ok {
		if _, isBool := v.(bool); !isBool {
			return nil, errors.New("popular must be a boolean")
		}
	}

	if err := normalizeStock(doc, partial); err != nil {
		return nil, err
	}
	return doc, nil
}

// validFieldName reports whether key can be stored as a top level field.
func validFieldName(key string) bool {
	return key != "" && !strings.HasPrefix(key, "$") && !strings.Contains(key, ".")
}

func normalizeText(doc bson.M, field string, partial bool) error {
	v, ok := doc[field]
	if !ok {
		if partial {
			return nil
		}
		return errors.Errorf("%s is required", field)
	}
	text, isText := v.(string)
	if !isText || strings.TrimSpace(text) == "" {
		return errors.Errorf("%s must be a non-empty string", field)
	}
	doc[field] = strings.TrimSpace(text)
	return nil
}

// number reads a JSON number field. A null value counts as absent.
func number(doc bson.M, field string) (float64, bool, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, isNumber := v.(float64)
	if !isNumber || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, errors.Errorf("%s must be a number", field)
	}
	return f, true, nil
}

func count(v any, field string) (int64, error) {
	f, ok := v.(float64)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, errors.Errorf("%s must be a whole number of zero or more", field)
	}
	return int64(f), nil
}

// productUpdate turns a PATCH body into a store update. Switching a product
// to scalar stock drops its size breakdown so only one stock model remains.
func productUpdate(raw map[string]any) (store.ProductUpdate, error) {
	set, err := normalizeProductDocument(raw, true)
	if err != nil {
		return store.ProductUpdate{}, err
	}
	u := store.ProductUpdate{Set: set}
	if _, scalar := set["stock"].(int64); scalar {
		u.Unset = []string{"stockBySize", "totalStock"}
		for _, field := range u.Unset {
			delete(set, field)
		}
	}
	return u, nil
}

// normalizeStock enforces a single stock model: a scalar stock count, or a
// stockBySize map with stock left empty. totalStock is derived from the
// sizes unless given explicitly.
func normalizeStock(doc bson.M, partial bool) error {
	scalar := false
	if v, ok := doc["stock"]; ok {
		switch typed := v.(type) {
		case nil:
			doc["stock"] = ""
		case string:
			if strings.TrimSpace(typed) != "" {
				return errors.New("stock must be a number or empty")
			}
			doc["stock"] = ""
		default:
			n, err := count(v, "stock")
			if err != nil {
				return err
			}
			doc["stock"] = n
			scalar = true
		}
	}

	rawSizes, hasSizes := doc["stockBySize"]
	if !hasSizes || rawSizes == nil {
		delete(doc, "stockBySize")
		if v, ok := doc["totalStock"]; ok {
			n, err := count(v, "totalStock")
			if err != nil {
				return err
			}
			doc["totalStock"] = n
		}
		return nil
	}

	sizes, ok := rawSizes.(map[string]any)
	if !ok {
		return errors.New("stockBySize must be an object")
	}
	if scalar && len(sizes) > 0 {
		return errors.New("use either stock or stockBySize, not both")
	}

	stockBySize := make(map[string]int64, len(sizes))
	var total int64
	for size, v := range sizes {
		if !validSizeKey(size) {
			return errors.Errorf("invalid size %q", size)
		}
		n, err := count(v, "stockBySize."+size)
		if err != nil {
			return err
		}
		stockBySize[size] = n
		total += n
	}
	doc["stockBySize"] = stockBySize

	if v, ok := doc["totalStock"]; ok {
		n, err := count(v, "totalStock")
		if err != nil {
			return err
		}
		doc["totalStock"] = n
	} else {
		doc["totalStock"] = total
	}
	if _, ok := doc["stock"]; !ok && (!partial || len(sizes) > 0) {
		doc["stock"] = ""
	}
	return nil
}
