package status

import (
	"sync"
	"time"

	"github.com/matheus3301/nikki/internal/bus"
)

// SessionState is the process-wide view of the delivery channel.
// Connected implies Authenticated.
type SessionState struct {
	Authenticated bool
	Connected     bool
}

// Label is the short form shown by clients.
func (s SessionState) Label() string {
	switch {
	case s.Connected:
		return "ONLINE"
	case s.Authenticated:
		return "OFFLINE"
	default:
		return "DISCONNECTED"
	}
}

// StatusChange is the payload of session.status_changed events.
type StatusChange struct {
	From SessionState
	To   SessionState
}

// Tracker guards the SessionState. The sync engine is its only writer.
type Tracker struct {
	mu      sync.RWMutex
	current SessionState
	since   time.Time
	bus     *bus.Bus
}

// NewTracker starts disconnected and unauthenticated.
func NewTracker(b *bus.Bus) *Tracker {
	return &Tracker{since: time.Now(), bus: b}
}

// Current returns a snapshot of the state.
func (t *Tracker) Current() SessionState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Since reports when the state last changed.
func (t *Tracker) Since() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.since
}

// Set replaces the state and publishes a change event when it differs.
func (t *Tracker) Set(next SessionState) bool {
	if next.Connected {
		next.Authenticated = true
	}

	t.mu.Lock()
	prev := t.current
	if prev == next {
		t.mu.Unlock()
		return false
	}
	t.current = next
	t.since = time.Now()
	t.mu.Unlock()

	if t.bus != nil {
		t.bus.Emit(bus.KindStatusChanged, StatusChange{From: prev, To: next})
	}
	return true
}

// MarkConnected records an established, authenticated session.
func (t *Tracker) MarkConnected() bool {
	return t.Set(SessionState{Authenticated: true, Connected: true})
}

// MarkDisconnected keeps the authentication flag but drops the connection.
func (t *Tracker) MarkDisconnected() bool {
	t.mu.RLock()
	auth := t.current.Authenticated
	t.mu.RUnlock()
	return t.Set(SessionState{Authenticated: auth})
}

// MarkUnauthenticated records that no usable credentials exist.
func (t *Tracker) MarkUnauthenticated() bool {
	return t.Set(SessionState{})
}
