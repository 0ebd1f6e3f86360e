package service

import "context"

// PushSender delivers a push notification to device tokens.
// Implemented by ExpoPushClient and FCMClient.
type PushSender interface {
	SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}
