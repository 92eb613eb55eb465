// Package ports defines application boundary interfaces used by core services.
package ports

import (
	"context"

	"github.com/cristianoliveira/bellsync/internal/domain"
)

// PageFetcher fetches one page of notifications for a predicate.
type PageFetcher interface {
	FetchPage(ctx context.Context, predicate domain.Predicate, token domain.PageToken, size int) (domain.Page, error)
}

// ActionExecutor executes an action against the remote service. The
// notification ID is empty for bulk actions.
type ActionExecutor interface {
	ExecuteAction(ctx context.Context, action domain.Action, notificationID string) error
}

// NotificationDeleter deletes a notification on the remote service.
type NotificationDeleter interface {
	DeleteNotification(ctx context.Context, notificationID string) error
}

// NotificationRepository groups the remote operations a store needs.
type NotificationRepository interface {
	PageFetcher
	ActionExecutor
	NotificationDeleter
}

// RealtimeHandler receives realtime events.
type RealtimeHandler interface {
	HandleRealtimeEvent(event domain.Event)
}

// RealtimeChannel delivers realtime events to subscribed handlers.
type RealtimeChannel interface {
	Subscribe(handler RealtimeHandler)
	Unsubscribe(handler RealtimeHandler)
	Connect(ctx context.Context, config domain.RealtimeConfig) error
	Disconnect()
}

// ConfigSource provides the realtime configuration for the current user.
type ConfigSource interface {
	GetConfig(ctx context.Context, force bool) (domain.RealtimeConfig, error)
	DeleteConfig(ctx context.Context) error
}

// PushTokenRegistrar registers device tokens for push notifications.
type PushTokenRegistrar interface {
	RegisterPushToken(ctx context.Context, token string) error
	UnregisterPushToken(ctx context.Context, token string) error
}
