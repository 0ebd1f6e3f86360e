package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ExpoPushClient sends push notifications via Expo's Push API.
//
// The app obtains an Expo push token ("ExponentPushToken[xxx]"), registers it
// through POST /devices/token, and the backend posts to Expo with those tokens.
// Expo handles delivery to both iOS and Android and needs no credentials.
type ExpoPushClient struct {
	httpClient *http.Client
	endpoint   string
	logger     *slog.Logger
}

// ExpoPushMessage is the payload for Expo's Push API.
type ExpoPushMessage struct {
	To       []string          `json:"to"`                 // Expo push tokens
	Title    string            `json:"title,omitempty"`    // Notification title
	Body     string            `json:"body"`               // Notification body (required)
	Data     map[string]string `json:"data,omitempty"`     // Custom data payload
	Sound    string            `json:"sound,omitempty"`    // "default" or custom sound
	Priority string            `json:"priority,omitempty"` // "default", "normal", "high"
}

// ExpoPushResponse is the response from Expo's API.
type ExpoPushResponse struct {
	Data []ExpoPushTicket `json:"data"`
}

type ExpoPushTicket struct {
	Status  string `json:"status"` // "ok" or "error"
	ID      string `json:"id"`     // Ticket ID for receipt checking
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"` // "DeviceNotRegistered", "MessageTooBig", etc.
	} `json:"details,omitempty"`
}

// ExpoPushURL is Expo's public push endpoint.
const ExpoPushURL = "https://exp.host/--/api/v2/push/send"

// NewExpoPushClient creates a new Expo Push client.
// An empty endpoint means ExpoPushURL.
func NewExpoPushClient(endpoint string, logger *slog.Logger) *ExpoPushClient {
	if endpoint == "" {
		endpoint = ExpoPushURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpoPushClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   endpoint,
		logger:     logger.With("component", "ExpoPush"),
	}
}

// IsExpoPushToken reports whether the token has Expo's push token format.
func IsExpoPushToken(token string) bool {
	return strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")
}

// SendToTokens sends a push notification to multiple Expo push tokens.
// Tokens not in Expo format are skipped.
func (c *ExpoPushClient) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	validTokens := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if IsExpoPushToken(token) {
			validTokens = append(validTokens, token)
		} else {
			c.logger.Warn("skipping invalid token format", "token", token[:min(20, len(token))])
		}
	}

	if len(validTokens) == 0 {
		c.logger.Debug("no valid expo tokens to send to")
		return nil
	}

	message := ExpoPushMessage{
		To:       validTokens,
		Title:    title,
		Body:     body,
		Sound:    "default",
		Priority: "high",
		Data:     data,
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expo api error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var pushResp ExpoPushResponse
	if err := json.Unmarshal(respBody, &pushResp); err != nil {
		// The push was accepted; only the ticket list is unreadable.
		c.logger.Warn("failed to parse response", "err", err)
		return nil
	}

	successCount, failCount := 0, 0
	for i, ticket := range pushResp.Data {
		if ticket.Status == "ok" {
			successCount++
		} else {
			failCount++
			c.logger.Warn("token failed", "index", i, "message", ticket.Message, "error", ticket.Details.Error)
		}
	}

	c.logger.Info("sent", "tokens", len(validTokens), "success", successCount, "failed", failCount)
	return nil
}
