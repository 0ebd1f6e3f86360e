// Package device provides in-process stand-ins for the OS facilities the
// settings screen depends on: notification permission, device type, the
// settings app and the push token.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"enatega_storefront/internal/model"
)

// ErrNoPushToken is returned when a push token is requested without a granted permission.
var ErrNoPushToken = errors.New("push token unavailable without notification permission")

// Simulator is a scriptable device.
type Simulator struct {
	mu         sync.Mutex
	permission model.PermissionState
	physical   bool
	token      string
	settings   int
	logger     *slog.Logger
}

// NewSimulator creates a device with the given permission.
func NewSimulator(permission model.PermissionState, physical bool, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		permission: permission,
		physical:   physical,
		logger:     logger.With("component", "device"),
	}
}

// SetPermission changes the OS permission, as a user would in the settings app.
func (s *Simulator) SetPermission(p model.PermissionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permission = p
}

func (s *Simulator) PermissionState(ctx context.Context) (model.PermissionState, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission, nil
}

func (s *Simulator) IsPhysicalDevice() bool {
	return s.physical
}

// OpenSettings records the launch of the settings app.
func (s *Simulator) OpenSettings() {
	s.mu.Lock()
	s.settings++
	s.mu.Unlock()
	s.logger.Info("settings app opened")
}

// SettingsOpened returns how many times the settings app was launched.
func (s *Simulator) SettingsOpened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// PushToken returns a stable Expo push token for this device.
func (s *Simulator) PushToken(ctx context.Context) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permission != model.PermissionGranted {
		return "", "", ErrNoPushToken
	}
	if s.token == "" {
		s.token = fmt.Sprintf("ExponentPushToken[%s]", uuid.NewString())
	}
	return s.token, model.PlatformExpo, nil
}
