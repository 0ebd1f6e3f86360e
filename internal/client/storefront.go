// Package client talks to the storefront API on behalf of the app.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"enatega_storefront/internal/httputil"
	"enatega_storefront/internal/model"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the storefront API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront api: status=%d code=%s message=%s", e.Status, e.Code, e.Message)
}

// Client is an HTTP client for the storefront API.
// Calls run through a circuit breaker so a failing backend is not hammered
// by repeated toggles.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// New creates a client for baseURL authenticating with the bearer token.
func New(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "storefront-client")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "storefront-api",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Client errors are the caller's fault, not the backend's.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		breaker:    breaker,
		logger:     logger,
	}
}

// GetNotificationProfile fetches the caller's notification profile.
func (c *Client) GetNotificationProfile(ctx context.Context) (model.NotificationProfile, error) {
	var profile model.NotificationProfile
	if err := c.do(ctx, http.MethodGet, "/me/notifications", nil, &profile); err != nil {
		return model.NotificationProfile{}, fmt.Errorf("get notification profile: %w", err)
	}
	return profile, nil
}

// UpdateNotificationPreferences sends both notification flags.
// Failures are returned as *model.RemoteUpdateError; the message is the
// server's own when the response carried one.
func (c *Client) UpdateNotificationPreferences(ctx context.Context, offer, order bool) error {
	req := model.UpdateNotificationRequest{
		OfferNotification: &offer,
		OrderNotification: &order,
	}

	err := c.do(ctx, http.MethodPatch, "/me/notifications", req, nil)
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &model.RemoteUpdateError{Message: apiErr.Message, Err: err}
	}
	return &model.RemoteUpdateError{Message: model.MessageUpdateFailed, Err: err}
}

// RegisterDeviceToken stores a push token for the caller.
func (c *Client) RegisterDeviceToken(ctx context.Context, token, platform string) error {
	req := model.RegisterTokenRequest{Token: token, Platform: platform}
	if err := c.do(ctx, http.MethodPost, "/devices/token", req, nil); err != nil {
		return fmt.Errorf("register device token: %w", err)
	}
	return nil
}

// ReviewSummary fetches the rating histogram of a restaurant.
func (c *Client) ReviewSummary(ctx context.Context, restaurantID int64) (model.ReviewSummary, error) {
	var summary model.ReviewSummary
	path := fmt.Sprintf("/restaurants/%d/reviews/summary", restaurantID)
	if err := c.do(ctx, http.MethodGet, path, nil, &summary); err != nil {
		return model.ReviewSummary{}, fmt.Errorf("get review summary: %w", err)
	}
	return summary, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, body, out)
	})
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope httputil.ErrorResponse
		if json.Unmarshal(respBody, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
