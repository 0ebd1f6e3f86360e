package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enatega_storefront/internal/model"
)

func TestHub_DeliversTransitions(t *testing.T) {
	hub := NewHub(nil)
	ch, release := hub.Subscribe()
	defer release()

	hub.Transition(model.LifecycleBackground)
	hub.Transition(model.LifecycleActive)

	first := <-ch
	assert.Equal(t, model.AppLifecycleSignal{Previous: model.LifecycleActive, Next: model.LifecycleBackground}, first)
	assert.False(t, first.IsResume())

	second := <-ch
	assert.Equal(t, model.LifecycleBackground, second.Previous)
	assert.True(t, second.IsResume())
	assert.Equal(t, model.LifecycleActive, hub.Current())
}

func TestHub_IgnoresSameState(t *testing.T) {
	hub := NewHub(nil)
	ch, release := hub.Subscribe()
	defer release()

	hub.Transition(model.LifecycleActive)

	select {
	case s := <-ch:
		t.Fatalf("unexpected signal %+v", s)
	default:
	}
}

func TestHub_ReleaseClosesChannel(t *testing.T) {
	hub := NewHub(nil)
	ch, release := hub.Subscribe()
	require.Equal(t, 1, hub.Subscribers())

	release()
	release()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers())

	// Publishing after release must not panic.
	hub.Transition(model.LifecycleBackground)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)
	_, release := hub.Subscribe()
	defer release()

	for i := 0; i < DefaultBufferSize*2; i++ {
		if i%2 == 0 {
			hub.Transition(model.LifecycleBackground)
		} else {
			hub.Transition(model.LifecycleActive)
		}
	}
}
