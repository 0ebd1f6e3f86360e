// Package preference keeps the notification switches of the settings
// screen consistent with the OS permission and the remote notification
// profile.
package preference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"enatega_storefront/internal/model"
)

// ErrAlreadyStarted is returned by Start when the engine is already subscribed.
var ErrAlreadyStarted = errors.New("preference engine already started")

// Reconcile derives the toggle state from a profile and a permission.
// Without a granted permission both toggles are off.
func Reconcile(profile model.NotificationProfile, permission model.PermissionState) model.ToggleState {
	if permission != model.PermissionGranted {
		return model.ToggleState{}
	}
	return model.ToggleState{
		OfferNotification: profile.IsOfferNotification,
		OrderNotification: profile.IsOrderNotification,
	}
}

// Dependencies are the collaborators the engine talks to.
type Dependencies struct {
	Permissions PermissionProvider
	Tokens      TokenRegistrar
	Mutator     ProfileMutator
	Lifecycle   LifecycleSource
	Settings    SettingsLauncher
	Device      DeviceInfo
	Notifier    Notifier
}

// Options tune engine behaviour.
type Options struct {
	// RollbackOnFailure reverts an optimistic toggle when the remote update fails.
	RollbackOnFailure bool
	Logger            *slog.Logger
}

// DefaultOptions returns the options used by the app.
func DefaultOptions() Options {
	return Options{RollbackOnFailure: true}
}

// Engine owns the toggle state of one settings screen.
//
// At most one remote mutation is in flight at a time. Remote calls and
// permission queries run without holding the state lock.
type Engine struct {
	deps     Dependencies
	rollback bool
	logger   *slog.Logger

	mu          sync.Mutex
	profile     model.NotificationProfile
	permission  model.PermissionState
	toggles     model.ToggleState
	inFlight    bool
	pendingKind model.ToggleKind
	registering bool
	listeners   []Listener
	published   model.ToggleState
	delivered   bool

	// pubMu serialises listener delivery; it is taken before mu.
	pubMu sync.Mutex

	started bool
	closed  bool
	release func()
	cancel  context.CancelFunc
	loopWG  sync.WaitGroup
	bgWG    sync.WaitGroup
}

// NewEngine creates an engine for the given cached profile. Until Mount or
// a resume queries the OS, the permission is treated as undetermined.
func NewEngine(deps Dependencies, profile model.NotificationProfile, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		deps:       deps,
		rollback:   opts.RollbackOnFailure,
		logger:     logger.With("component", "preference"),
		profile:    profile,
		permission: model.PermissionUndetermined,
	}
}

// OnChange registers a listener for toggle state changes. Listeners are
// called one at a time and must not call Toggle.
func (e *Engine) OnChange(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// State returns the current toggle state.
func (e *Engine) State() model.ToggleState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.toggles
}

// Profile returns the cached notification profile.
func (e *Engine) Profile() model.NotificationProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

// SyncState reports whether a remote update for kind is in flight.
func (e *Engine) SyncState(kind model.ToggleKind) model.SyncState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pendingKind == kind {
		return model.SyncStatePendingRemote
	}
	return model.SyncStateSynced
}

// Mount performs the initial permission check and reconciliation.
func (e *Engine) Mount(ctx context.Context) model.ToggleState {
	permission := e.queryPermission(ctx)

	e.mu.Lock()
	e.permission = permission
	state, changed := e.reconcileLocked()
	e.mu.Unlock()

	e.logger.Debug("mounted", "permission", permission, "offer", state.OfferNotification, "order", state.OrderNotification)
	if changed {
		e.publish()
	}
	return state
}

// SetProfile replaces the cached profile, e.g. after a refetch, and
// reconciles against the last known permission.
func (e *Engine) SetProfile(profile model.NotificationProfile) {
	e.mu.Lock()
	e.profile = profile
	_, changed := e.reconcileLocked()
	e.mu.Unlock()

	if changed {
		e.publish()
	}
}

// Start subscribes to lifecycle signals and handles every resume until
// Close is called or ctx is done.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return ErrAlreadyStarted
	}

	signals, release := e.deps.Lifecycle.Subscribe()
	loopCtx, cancel := context.WithCancel(ctx)
	e.started = true
	e.closed = false
	e.release = release
	e.cancel = cancel

	e.loopWG.Add(1)
	go e.run(loopCtx, signals)
	return nil
}

// Close releases the lifecycle subscription and waits for the signal loop
// and any outstanding token registration to finish. Remote updates already
// in flight are not cancelled.
func (e *Engine) Close() {
	e.mu.Lock()
	release, cancel := e.release, e.cancel
	e.release, e.cancel = nil, nil
	e.started = false
	e.closed = true
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if release != nil {
		release()
	}
	e.loopWG.Wait()
	e.bgWG.Wait()
}

func (e *Engine) run(ctx context.Context, signals <-chan model.AppLifecycleSignal) {
	defer e.loopWG.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case signal, ok := <-signals:
			if !ok {
				return
			}
			e.OnLifecycleResume(ctx, signal)
		}
	}
}

// OnLifecycleResume re-syncs the toggles when the app returns to the
// foreground. Other transitions are ignored.
//
// With a granted permission and no registered device token, a token
// registration is started in the background; its failure is only logged.
// Once Close has run no registration is started.
func (e *Engine) OnLifecycleResume(ctx context.Context, signal model.AppLifecycleSignal) {
	if !signal.IsResume() {
		return
	}

	permission := e.queryPermission(ctx)

	e.mu.Lock()
	e.permission = permission
	needToken := permission == model.PermissionGranted && !e.profile.HasRegisteredDeviceToken &&
		!e.registering && !e.closed
	if needToken {
		e.registering = true
		e.bgWG.Add(1)
	}
	_, changed := e.reconcileLocked()
	e.mu.Unlock()

	e.logger.Debug("resumed", "previous", signal.Previous, "permission", permission)

	if needToken {
		e.registerToken(context.WithoutCancel(ctx))
	}
	if changed {
		e.publish()
	}
}

// Toggle flips one notification switch and pushes both flags to the
// remote profile.
//
// On a simulator it returns model.ErrDeviceUnsupported and changes nothing.
// Without a granted permission or a registered device token it opens the
// OS settings instead and returns nil. A toggle while another update is in
// flight returns model.ErrMutationPending. A failed remote update returns a
// *model.RemoteUpdateError.
func (e *Engine) Toggle(ctx context.Context, kind model.ToggleKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", model.ErrUnknownToggleKind, kind)
	}

	if !e.deps.Device.IsPhysicalDevice() {
		e.notify(model.NoticeError, model.MessageDeviceUnsupported)
		return model.ErrDeviceUnsupported
	}

	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return model.ErrMutationPending
	}
	e.inFlight = true
	e.mu.Unlock()

	permission := e.queryPermission(ctx)

	e.mu.Lock()
	e.permission = permission
	if permission != model.PermissionGranted || !e.profile.HasRegisteredDeviceToken {
		hasToken := e.profile.HasRegisteredDeviceToken
		e.inFlight = false
		e.mu.Unlock()

		e.logger.Info("opening settings before toggle", "kind", kind, "permission", permission, "has_token", hasToken)
		e.deps.Settings.OpenSettings()
		return nil
	}

	previous := e.toggles.Get(kind)
	optimistic := e.toggles.With(kind, !previous)
	e.toggles = optimistic
	e.pendingKind = kind
	e.mu.Unlock()

	e.publish()

	err := e.deps.Mutator.UpdateNotificationPreferences(ctx, optimistic.OfferNotification, optimistic.OrderNotification)

	e.mu.Lock()
	e.inFlight = false
	e.pendingKind = ""

	if err == nil {
		e.profile.IsOfferNotification = optimistic.OfferNotification
		e.profile.IsOrderNotification = optimistic.OrderNotification
		e.mu.Unlock()

		e.logger.Info("notification preferences updated",
			"kind", kind, "offer", optimistic.OfferNotification, "order", optimistic.OrderNotification)
		e.notify(model.NoticeInfo, model.MessageStatusUpdated)
		return nil
	}

	rolledBack := false
	if e.rollback && e.permission == model.PermissionGranted && e.toggles.Get(kind) == !previous {
		e.toggles = e.toggles.With(kind, previous)
		rolledBack = true
	}
	e.mu.Unlock()

	remoteErr := asRemoteUpdateError(err)
	e.logger.Warn("notification preference update failed",
		"kind", kind, "rolled_back", rolledBack, "error", err)

	if rolledBack {
		e.publish()
	}
	e.notify(model.NoticeError, remoteErr.Message)
	return remoteErr
}

// reconcileLocked recomputes the toggles from profile and permission,
// keeping the optimistic value of a pending toggle. Callers hold e.mu.
func (e *Engine) reconcileLocked() (model.ToggleState, bool) {
	next := Reconcile(e.profile, e.permission)
	if e.pendingKind != "" && e.permission == model.PermissionGranted {
		next = next.With(e.pendingKind, e.toggles.Get(e.pendingKind))
	}
	changed := next != e.toggles
	e.toggles = next
	return next, changed
}

func (e *Engine) queryPermission(ctx context.Context) model.PermissionState {
	permission, err := e.deps.Permissions.PermissionState(ctx)
	if err != nil {
		e.logger.Warn("permission query failed, treating as denied",
			"error", fmt.Errorf("%w: %v", model.ErrPermissionUnavailable, err))
		return model.PermissionDenied
	}
	return permission
}

// registerToken runs the registration in the background. The caller has
// already added it to bgWG while holding mu.
func (e *Engine) registerToken(ctx context.Context) {
	go func() {
		defer e.bgWG.Done()

		token, err := e.deps.Tokens.RegisterDeviceToken(ctx)

		e.mu.Lock()
		e.registering = false
		if err == nil {
			e.profile.HasRegisteredDeviceToken = true
		}
		e.mu.Unlock()

		if err != nil {
			e.logger.Warn("device token registration failed", "error", err)
			return
		}
		e.logger.Info("device token registered", "token_prefix", tokenPrefix(token))
	}()
}

// publish delivers the current toggle state to the listeners. Deliveries
// are serialised and carry the state read at delivery time. A state equal
// to the last delivered one is skipped.
func (e *Engine) publish() {
	e.pubMu.Lock()
	defer e.pubMu.Unlock()

	e.mu.Lock()
	state := e.toggles
	if e.delivered && state == e.published {
		e.mu.Unlock()
		return
	}
	e.published, e.delivered = state, true
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, l := range listeners {
		l(state)
	}
}

func (e *Engine) notify(kind model.NoticeKind, message string) {
	if e.deps.Notifier == nil {
		return
	}
	e.deps.Notifier.Notify(model.Notice{Kind: kind, Message: message})
}

func asRemoteUpdateError(err error) *model.RemoteUpdateError {
	var remoteErr *model.RemoteUpdateError
	if errors.As(err, &remoteErr) && remoteErr.Message != "" {
		return remoteErr
	}
	return &model.RemoteUpdateError{Message: model.MessageUpdateFailed, Err: err}
}

func tokenPrefix(token string) string {
	return token[:min(20, len(token))]
}
