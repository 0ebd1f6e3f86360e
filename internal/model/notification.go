package model

// PermissionState is the OS-level notification permission.
// It is polled from the OS and never set by this system.
type PermissionState string

const (
	PermissionGranted      PermissionState = "granted"
	PermissionDenied       PermissionState = "denied"
	PermissionUndetermined PermissionState = "undetermined"
)

// ToggleKind selects one of the two notification flags.
type ToggleKind string

const (
	ToggleOffer ToggleKind = "offer"
	ToggleOrder ToggleKind = "order"
)

// Valid reports whether k is one of the known toggle kinds.
func (k ToggleKind) Valid() bool {
	return k == ToggleOffer || k == ToggleOrder
}

// NotificationProfile is the remote-owned notification record of a user.
// Mutated only through a successful remote update.
type NotificationProfile struct {
	HasRegisteredDeviceToken bool `db:"has_device_token" json:"has_registered_device_token"`
	IsOfferNotification      bool `db:"is_offer_notification" json:"is_offer_notification"`
	IsOrderNotification      bool `db:"is_order_notification" json:"is_order_notification"`
}

// ToggleState is the local, derived state of the two notification switches.
// Both fields are false whenever permission is not granted.
type ToggleState struct {
	OfferNotification bool `json:"offer_notification"`
	OrderNotification bool `json:"order_notification"`
}

// Get returns the value of the toggle selected by kind.
func (t ToggleState) Get(kind ToggleKind) bool {
	if kind == ToggleOffer {
		return t.OfferNotification
	}
	return t.OrderNotification
}

// With returns a copy of t with the toggle selected by kind set to v.
func (t ToggleState) With(kind ToggleKind, v bool) ToggleState {
	if kind == ToggleOffer {
		t.OfferNotification = v
	} else {
		t.OrderNotification = v
	}
	return t
}

// SyncState is the per-toggle remote synchronization state.
type SyncState string

const (
	SyncStateSynced        SyncState = "synced"
	SyncStatePendingRemote SyncState = "pendingRemote"
)

// UpdateNotificationRequest is the request body for PATCH /me/notifications.
// Both flags are required; the API does not accept a partial patch.
type UpdateNotificationRequest struct {
	OfferNotification *bool `json:"offer_notification"`
	OrderNotification *bool `json:"order_notification"`
}

// NoticeKind classifies a user-visible notice.
type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice is a user-visible message emitted by the preference engine.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// User-visible notice texts.
const (
	MessageStatusUpdated     = "Notification Status Updated"
	MessageDeviceUnsupported = "Notifications do not work on simulator"
	MessageUpdateFailed      = "Unable to update notification status"
)

// Push notification categories, matched against the profile flags.
const (
	PushCategoryOffer = "offer"
	PushCategoryOrder = "order"
)
