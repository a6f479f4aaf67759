package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// respondValidationError reports binding failures. Validator errors are
// listed per field; anything else means the body could not be decoded.
func respondValidationError(c *gin.Context, route string, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "min":
				details = append(details, fmt.Sprintf("%s must have at least %s entries", field, fieldError.Param()))
			case "gte", "gt":
				details = append(details, fmt.Sprintf("%s must be %s %s", field, comparison(fieldError.Tag()), fieldError.Param()))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		routeLogger(c, route).Info("Validation failed", zap.Strings("details", details))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "validation failed",
			"details": details,
		})
		return
	}

	respondWithError(c, http.StatusBadRequest, route, "invalid request body")
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func comparison(tag string) string {
	if tag == "gt" {
		return "greater than"
	}
	return "at least"
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// sizeLabel accepts sizes sent either as strings ("42") or numbers (42).
type sizeLabel string

func (s *sizeLabel) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = sizeLabel(strings.TrimSpace(text))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("size must be a string or a number")
	}
	if f, err := n.Float64(); err == nil {
		*s = sizeLabel(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	*s = sizeLabel(n.String())
	return nil
}

// validSizeKey reports whether size can be used as a stockBySize key.
// Dotted labels such as "7.5" are fine; a leading "$" is not.
func validSizeKey(size string) bool {
	return size != "" && !strings.HasPrefix(size, "$") && size == strings.TrimSpace(size)
}
