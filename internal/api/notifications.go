package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cristianoliveira/bellsync/internal/domain"
)

type pageJSON struct {
	Notifications []notificationJSON `json:"notifications"`
	Total         int                `json:"total"`
	UnreadCount   int                `json:"unread_count"`
	UnseenCount   int                `json:"unseen_count"`
	CurrentPage   int                `json:"current_page"`
	TotalPages    int                `json:"total_pages"`
}

// FetchPage fetches one page-number paginated page for predicate.
func (c *Client) FetchPage(ctx context.Context, predicate domain.Predicate, token domain.PageToken, size int) (domain.Page, error) {
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	query := predicate.QueryParams()
	query.Set("page", strconv.Itoa(token.PageNumber()))
	query.Set("per_page", strconv.Itoa(size))

	var body pageJSON
	err := c.do(ctx, request{method: http.MethodGet, path: "/notifications", query: query}, &body)
	if err != nil {
		return domain.Page{}, fmt.Errorf("fetch page: %w", err)
	}

	return domain.Page{
		Notifications: toDomainList(body.Notifications),
		TotalCount:    body.Total,
		UnreadCount:   body.UnreadCount,
		UnseenCount:   body.UnseenCount,
		Numbered: &domain.NumberedPagination{
			CurrentPage: body.CurrentPage,
			TotalPages:  body.TotalPages,
		},
	}, nil
}

// actionRoute maps an action to its endpoint. Bulk actions ignore id.
func actionRoute(action domain.Action, id string) (method, path string, err error) {
	if !action.IsBulk() && id == "" {
		return "", "", fmt.Errorf("%s: %w", action, domain.ErrInvalidNotificationID)
	}
	escaped := url.PathEscape(id)
	switch action {
	case domain.ActionMarkRead:
		return http.MethodPost, "/notifications/" + escaped + "/read", nil
	case domain.ActionMarkUnread:
		return http.MethodPost, "/notifications/" + escaped + "/unread", nil
	case domain.ActionArchive:
		return http.MethodPost, "/notifications/" + escaped + "/archive", nil
	case domain.ActionUnarchive:
		return http.MethodDelete, "/notifications/" + escaped + "/archive", nil
	case domain.ActionMarkAllRead:
		return http.MethodPost, "/notifications/read", nil
	case domain.ActionMarkAllSeen:
		return http.MethodPost, "/notifications/seen", nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnsupportedAction, action)
}

// ExecuteAction runs action on the notification with id, or on every
// notification of the user for bulk actions.
func (c *Client) ExecuteAction(ctx context.Context, action domain.Action, id string) error {
	method, path, err := actionRoute(action, id)
	if err != nil {
		return err
	}
	if err := c.do(ctx, request{method: method, path: path}, nil); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}

// DeleteNotification deletes the notification with id.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete: %w", domain.ErrInvalidNotificationID)
	}
	err := c.do(ctx, request{method: http.MethodDelete, path: "/notifications/" + url.PathEscape(id)}, nil)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}
