package model

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionUnavailable is returned when the OS permission query fails.
	// Callers treat it as a denied permission.
	ErrPermissionUnavailable = errors.New("notification permission unavailable")

	// ErrDeviceUnsupported is returned when a toggle is attempted on a simulator.
	ErrDeviceUnsupported = errors.New("notifications are not supported on this device")

	// ErrMutationPending is returned when a toggle arrives while another remote update is in flight.
	ErrMutationPending = errors.New("a notification update is already in progress")

	// ErrUnknownToggleKind is returned for a toggle kind other than offer or order.
	ErrUnknownToggleKind = errors.New("unknown toggle kind")

	// ErrInvalidSortKey is returned when a sort key is not newest, highest or lowest.
	ErrInvalidSortKey = errors.New("invalid sort key")

	// ErrUnsupportedLanguage is returned for a language code outside SupportedLanguages.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrPartialPreferenceUpdate is returned when an update omits one of the two flags.
	ErrPartialPreferenceUpdate = errors.New("both offer_notification and order_notification are required")

	// ErrRestaurantNotFound is returned when a restaurant does not exist.
	ErrRestaurantNotFound = errors.New("restaurant not found")

	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError reports invalid input to the review analytics engine.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// RemoteUpdateError is a failed remote notification update.
// Message is shown to the user verbatim.
type RemoteUpdateError struct {
	Message string
	Err     error
}

func (e *RemoteUpdateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote update failed: %s: %v", e.Message, e.Err)
	}
	return "remote update failed: " + e.Message
}

func (e *RemoteUpdateError) Unwrap() error {
	return e.Err
}

// Error codes returned by the auth middleware.
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)
