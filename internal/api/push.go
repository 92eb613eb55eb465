package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrEmptyToken is returned for an empty device token.
var ErrEmptyToken = errors.New("device token is empty")

const pushTokensPath = "/channels/mobile_push/fcm/tokens"

type pushTokenJSON struct {
	FCM struct {
		DeviceToken string `json:"device_token"`
	} `json:"fcm"`
}

// RegisterPushToken registers a device token for push notifications.
func (c *Client) RegisterPushToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	var body pushTokenJSON
	body.FCM.DeviceToken = token
	if err := c.do(ctx, request{method: http.MethodPost, path: pushTokensPath, body: body}, nil); err != nil {
		return fmt.Errorf("register push token: %w", err)
	}
	return nil
}

// UnregisterPushToken removes a device token.
func (c *Client) UnregisterPushToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	path := pushTokensPath + "/" + url.PathEscape(token)
	if err := c.do(ctx, request{method: http.MethodDelete, path: path}, nil); err != nil {
		return fmt.Errorf("unregister push token: %w", err)
	}
	return nil
}
