package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_SetHealthy(t *testing.T) {
	h := NewHealth()

	h.SetHealthy("webhook", "answered crc")

	status := h.Status("webhook")
	require.NotNil(t, status)
	assert.True(t, status.Healthy)
	assert.Equal(t, "answered crc", status.Message)
	assert.Nil(t, status.LastError)
	assert.WithinDuration(t, time.Now(), status.LastCheck, time.Second)
	assert.WithinDuration(t, time.Now(), status.LastSuccess, time.Second)
}

func TestHealth_SetUnhealthy(t *testing.T) {
	h := NewHealth()
	h.SetHealthy("database", "ok")

	h.SetUnhealthy("database", assert.AnError)

	status := h.Status("database")
	require.NotNil(t, status)
	assert.False(t, status.Healthy)
	assert.Equal(t, assert.AnError, status.LastError)
	assert.Equal(t, assert.AnError.Error(), status.Message)
	assert.False(t, status.LastSuccess.IsZero(), "last success survives a failure")
}

func TestHealth_StatusIsCopy(t *testing.T) {
	h := NewHealth()
	h.SetHealthy("webhook", "ok")

	status := h.Status("webhook")
	status.Healthy = false

	assert.True(t, h.Status("webhook").Healthy)
	assert.Nil(t, h.Status("nonexistent"))
}

func TestHealth_Healthy(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		h := NewHealth()
		h.SetHealthy("webhook", "ok")
		h.SetHealthy("database", "ok")

		assert.True(t, h.Healthy())
		assert.Len(t, h.Snapshot(), 2)
	})

	t.Run("one unhealthy", func(t *testing.T) {
		h := NewHealth()
		h.SetHealthy("webhook", "ok")
		h.SetUnhealthy("database", assert.AnError)

		assert.False(t, h.Healthy())
		assert.False(t, h.Snapshot()["database"].Healthy)
	})

	t.Run("empty", func(t *testing.T) {
		assert.True(t, NewHealth().Healthy())
	})
}
