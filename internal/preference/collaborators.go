package preference

import (
	"context"

	"enatega_storefront/internal/model"
)

// PermissionProvider reads the OS notification permission.
type PermissionProvider interface {
	PermissionState(ctx context.Context) (model.PermissionState, error)
}

// TokenRegistrar obtains the device push token and registers it with the
// storefront. It returns the registered token.
type TokenRegistrar interface {
	RegisterDeviceToken(ctx context.Context) (string, error)
}

// ProfileMutator updates the remote notification profile.
// Both flags are always sent; a *model.RemoteUpdateError carries the
// message to show the user.
type ProfileMutator interface {
	UpdateNotificationPreferences(ctx context.Context, offer, order bool) error
}

// LifecycleSource emits app lifecycle transitions. The returned func
// releases the subscription.
type LifecycleSource interface {
	Subscribe() (<-chan model.AppLifecycleSignal, func())
}

// SettingsLauncher opens the OS settings screen of the app.
type SettingsLauncher interface {
	OpenSettings()
}

// DeviceInfo describes the device the app runs on.
type DeviceInfo interface {
	IsPhysicalDevice() bool
}

// Notifier shows a user-visible notice.
type Notifier interface {
	Notify(notice model.Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(model.Notice)

func (f NotifierFunc) Notify(notice model.Notice) { f(notice) }

// Listener receives the toggle state after every change.
type Listener func(model.ToggleState)
