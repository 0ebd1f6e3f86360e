package model

// LifecycleState is the foreground/background state of the host app.
type LifecycleState string

const (
	LifecycleActive     LifecycleState = "active"
	LifecycleBackground LifecycleState = "background"
	LifecycleInactive   LifecycleState = "inactive"
)

// AppLifecycleSignal is emitted when the host app changes lifecycle state.
type AppLifecycleSignal struct {
	Previous LifecycleState
	Next     LifecycleState
}

// IsResume reports whether the signal is a transition into the foreground.
func (s AppLifecycleSignal) IsResume() bool {
	return s.Next == LifecycleActive
}
