package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enatega_storefront/internal/model"
	"enatega_storefront/internal/queue"
)

func TestBuildEvent(t *testing.T) {
	event, err := buildEvent(model.PushCategoryOrder, "3, 9,", "Order on the way", "Rider picked it up")
	require.NoError(t, err)

	assert.Equal(t, queue.EventPushRequested, event.Type)
	assert.Equal(t, model.PushCategoryOrder, event.Category)
	assert.Equal(t, []int64{3, 9}, event.UserIDs)
	assert.Equal(t, "Order on the way", event.Title)
}

func TestBuildEvent_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		category string
		users    string
		title    string
	}{
		{"unknown category", "promo", "1", "t"},
		{"missing title", model.PushCategoryOffer, "1", "  "},
		{"no users", model.PushCategoryOffer, " , ", "t"},
		{"bad id", model.PushCategoryOffer, "1,abc", "t"},
		{"negative id", model.PushCategoryOffer, "-4", "t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildEvent(tt.category, tt.users, tt.title, "")
			assert.Error(t, err)
		})
	}
}
