package client

import (
	"context"
	"fmt"
)

// PushTokenSource obtains the push token of the current device.
type PushTokenSource interface {
	PushToken(ctx context.Context) (token, platform string, err error)
}

// TokenRegistrar fetches the device push token and uploads it to the storefront.
type TokenRegistrar struct {
	source PushTokenSource
	client *Client
}

func NewTokenRegistrar(source PushTokenSource, client *Client) *TokenRegistrar {
	return &TokenRegistrar{source: source, client: client}
}

// RegisterDeviceToken returns the token that was registered.
func (r *TokenRegistrar) RegisterDeviceToken(ctx context.Context) (string, error) {
	token, platform, err := r.source.PushToken(ctx)
	if err != nil {
		return "", fmt.Errorf("get push token: %w", err)
	}
	if err := r.client.RegisterDeviceToken(ctx, token, platform); err != nil {
		return "", err
	}
	return token, nil
}
