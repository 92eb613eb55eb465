package api

import (
	"fmt"

	"github.com/cristianoliveira/bellsync/internal/ports"
)

// Pagination selects how pages are fetched.
type Pagination string

const (
	// PaginationPage fetches page-number pages over REST.
	PaginationPage Pagination = "page"
	// PaginationCursor fetches cursor pages over GraphQL.
	PaginationCursor Pagination = "cursor"
)

// ParsePagination parses a pagination mode. The empty string means page.
func ParsePagination(s string) (Pagination, error) {
	switch Pagination(s) {
	case "", PaginationPage:
		return PaginationPage, nil
	case PaginationCursor:
		return PaginationCursor, nil
	}
	return "", fmt.Errorf("invalid pagination mode %q", s)
}

// Repository returns the notification repository for mode.
func (c *Client) Repository(mode Pagination) ports.NotificationRepository {
	if mode == PaginationCursor {
		return c.GraphQL()
	}
	return c
}
