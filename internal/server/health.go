package server

import (
	"sync"
	"time"
)

// ComponentStatus is the last reported state of one component.
type ComponentStatus struct {
	Healthy     bool      `json:"healthy"`
	LastCheck   time.Time `json:"last_check"`
	LastSuccess time.Time `json:"last_success"`
	Message     string    `json:"message,omitempty"`
	LastError   error     `json:"-"`
}

// Health tracks the components behind the HTTP server (database, webhook
// deliveries, OAuth callback).
type Health struct {
	mu         sync.RWMutex
	components map[string]*ComponentStatus
	now        func() time.Time
}

// NewHealth creates an empty tracker.
func NewHealth() *Health {
	return &Health{
		components: make(map[string]*ComponentStatus),
		now:        time.Now,
	}
}

// SetHealthy marks a component as healthy.
func (h *Health) SetHealthy(component, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	s := h.entry(component)
	s.Healthy = true
	s.LastCheck = now
	s.LastSuccess = now
	s.LastError = nil
	s.Message = message
}

// SetUnhealthy marks a component as unhealthy with err as its message.
func (h *Health) SetUnhealthy(component string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.entry(component)
	s.Healthy = false
	s.LastCheck = h.now()
	s.LastError = err
	s.Message = err.Error()
}

func (h *Health) entry(component string) *ComponentStatus {
	s, ok := h.components[component]
	if !ok {
		s = &ComponentStatus{}
		h.components[component] = s
	}
	return s
}

// Status returns a copy of a component's status, or nil if it never reported.
func (h *Health) Status(component string) *ComponentStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if s, ok := h.components[component]; ok {
		c := *s
		return &c
	}
	return nil
}

// Snapshot copies every component status.
func (h *Health) Snapshot() map[string]ComponentStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]ComponentStatus, len(h.components))
	for name, s := range h.components {
		out[name] = *s
	}
	return out
}

// Healthy is true when no component is unhealthy.
func (h *Health) Healthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.components {
		if !s.Healthy {
			return false
		}
	}
	return true
}
