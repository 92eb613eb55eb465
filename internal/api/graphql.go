package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cristianoliveira/bellsync/internal/domain"
)

const notificationFragment = `fragment NotificationFields on Notification {
  id
  title
  content
  actionUrl
  category
  topic
  sentAt
  seenAt
  readAt
  archivedAt
  recipient { id email externalId firstName lastName }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type connectionJSON struct {
	TotalCount  int `json:"totalCount"`
	UnreadCount int `json:"unreadCount"`
	UnseenCount int `json:"unseenCount"`
	PageInfo    struct {
		EndCursor   *string `json:"endCursor"`
		HasNextPage bool    `json:"hasNextPage"`
	} `json:"pageInfo"`
	Edges []struct {
		Cursor string           `json:"cursor"`
		Node   notificationJSON `json:"node"`
	} `json:"edges"`
}

// GraphQL fetches cursor paginated pages through the GraphQL endpoint. Actions
// and deletes still go through the REST client.
type GraphQL struct {
	*Client
}

// GraphQL returns a cursor paginated repository sharing c.
func (c *Client) GraphQL() *GraphQL {
	return &GraphQL{Client: c}
}

// Execute runs query and decodes its data into out.
func (g *GraphQL) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	var resp graphqlResponse
	err := g.do(ctx, request{
		method: http.MethodPost,
		path:   "/graphql",
		body:   graphqlRequest{Query: query, Variables: variables},
	}, &resp)
	if err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		messages := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			messages = append(messages, e.Message)
		}
		return fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(messages, " -- "))
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
}

// notificationsQuery renders the page query for predicate.
func notificationsQuery(predicate domain.Predicate) string {
	return fmt.Sprintf(`query Notifications($after: String, $first: Int) {
  notifications(%s, after: $after, first: $first) {
    totalCount
    unreadCount
    unseenCount
    pageInfo { endCursor hasNextPage }
    edges { cursor node { ...NotificationFields } }
  }
}
%s`, predicate.GraphQLArgs(), notificationFragment)
}

// FetchPage fetches the page after the cursor held by token.
func (g *GraphQL) FetchPage(ctx context.Context, predicate domain.Predicate, token domain.PageToken, size int) (domain.Page, error) {
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	variables := map[string]any{"first": size}
	if token != "" {
		variables["after"] = string(token)
	}

	var data struct {
		Notifications connectionJSON `json:"notifications"`
	}
	if err := g.Execute(ctx, notificationsQuery(predicate), variables, &data); err != nil {
		return domain.Page{}, fmt.Errorf("fetch page: %w", err)
	}

	conn := data.Notifications
	notifications := make([]*domain.Notification, 0, len(conn.Edges))
	for _, edge := range conn.Edges {
		notifications = append(notifications, edge.Node.toDomain())
	}
	return domain.Page{
		Notifications: notifications,
		TotalCount:    conn.TotalCount,
		UnreadCount:   conn.UnreadCount,
		UnseenCount:   conn.UnseenCount,
		Cursor: &domain.CursorPagination{
			NextCursor:  conn.PageInfo.EndCursor,
			HasNextPage: conn.PageInfo.HasNextPage,
		},
	}, nil
}
