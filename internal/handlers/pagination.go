package handlers

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/kickboxbd/kickbox-backend/internal/store"
)

const (
	defaultPage  = 1
	defaultLimit = 8
	maxLimit     = 100
)

var errInvalidPagination = errors.New("invalid pagination params")

// parsePaginationParams defaults absent values and rejects anything that is
// not a positive integer. limit is capped at maxLimit.
func parsePaginationParams(pageStr, limitStr string) (store.Page, error) {
	page := store.Page{Page: defaultPage, Limit: defaultLimit}

	if pageStr = strings.TrimSpace(pageStr); pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return store.Page{}, errInvalidPagination
		}
		page.Page = p
	}

	if limitStr = strings.TrimSpace(limitStr); limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return store.Page{}, errInvalidPagination
		}
		page.Limit = min(l, maxLimit)
	}

	return page, nil
}
