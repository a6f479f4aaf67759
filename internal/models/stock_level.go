package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// StockLevel is the scalar stock of a product. Products tracked per size store
// an empty string (or nothing) here, which decodes to an unset level.
type StockLevel struct {
	Value int64
	Set   bool
}

// Units returns a set stock level.
func Units(n int64) StockLevel {
	return StockLevel{Value: n, Set: true}
}

// UnmarshalBSONValue accepts numeric types, null and the legacy empty string.
func (s *StockLevel) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*s = StockLevel{}
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		if strings.TrimSpace(value) == "" {
			*s = StockLevel{}
			return nil
		}
		return errors.Errorf("cannot decode stock %q", value)
	case bsontype.Int32:
		var v int32
		if err := bson.UnmarshalValue(t, data, &v); err != nil {
			return err
		}
		*s = Units(int64(v))
		return nil
	case bsontype.Int64:
		var v int64
		if err := bson.UnmarshalValue(t, data, &v); err != nil {
			return err
		}
		*s = Units(v)
		return nil
	case bsontype.Double:
		var v float64
		if err := bson.UnmarshalValue(t, data, &v); err != nil {
			return err
		}
		*s = Units(int64(math.Floor(v)))
		return nil
	default:
		return errors.Errorf("cannot decode %s into StockLevel", t)
	}
}

// MarshalBSONValue writes unset levels as the empty string so documents keep
// the shape existing clients expect.
func (s StockLevel) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !s.Set {
		return bson.MarshalValue("")
	}
	return bson.MarshalValue(s.Value)
}

func (s StockLevel) MarshalJSON() ([]byte, error) {
	if !s.Set {
		return []byte(`""`), nil
	}
	return json.Marshal(s.Value)
}

func (s *StockLevel) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		*s = StockLevel{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return errors.Wrap(err, "stock must be a number or empty")
	}
	*s = Units(int64(math.Floor(v)))
	return nil
}
