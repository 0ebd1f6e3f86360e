package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMClient wraps the Firebase Cloud Messaging client.
//
// Credentials (project ID, client email, private key) come from the Firebase
// console service account.
type FCMClient struct {
	client *messaging.Client
	logger *slog.Logger
}

// NewFCMClient creates a new FCM client from environment credentials.
// The private key in .env has literal "\n" sequences, which are turned into newlines.
func NewFCMClient(ctx context.Context, projectID, clientEmail, privateKey string, logger *slog.Logger) (*FCMClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	privateKey = strings.ReplaceAll(privateKey, "\\n", "\n")

	credsJSON := fmt.Sprintf(`{
		"type": "service_account",
		"project_id": %q,
		"private_key": %q,
		"client_email": %q,
		"token_uri": "https://oauth2.googleapis.com/token"
	}`, projectID, privateKey, clientEmail)

	opt := option.WithCredentialsJSON([]byte(credsJSON))
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}

	logger = logger.With("component", "FCM")
	logger.Info("initialized", "project", projectID)
	return &FCMClient{client: client, logger: logger}, nil
}

// buildMulticast builds the FCM message with high Android priority and default sounds.
func buildMulticast(tokens []string, title, body string, data map[string]string) *messaging.MulticastMessage {
	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
	if data != nil {
		message.Data = data
	}
	return message
}

// SendToTokens sends a push notification to multiple device tokens.
// FCM accepts at most 500 tokens per multicast; larger sets are sent in chunks.
func (c *FCMClient) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	const maxTokens = 500

	for start := 0; start < len(tokens); start += maxTokens {
		end := min(start+maxTokens, len(tokens))

		response, err := c.client.SendEachForMulticast(ctx, buildMulticast(tokens[start:end], title, body, data))
		if err != nil {
			return fmt.Errorf("send multicast: %w", err)
		}

		c.logger.Info("sent", "tokens", end-start, "success", response.SuccessCount, "failed", response.FailureCount)
		for i, resp := range response.Responses {
			if !resp.Success {
				c.logger.Warn("token failed", "index", start+i, "err", resp.Error)
			}
		}
	}
	return nil
}
