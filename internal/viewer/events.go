package viewer

import (
	"sync"
	"time"

	"github.com/daryltucker/turbine-viewer/internal/model"
)

// EventKind classifies slot events.
type EventKind string

const (
	EventState       EventKind = "state"
	EventResult      EventKind = "result"
	EventMode        EventKind = "mode"
	EventLoaded      EventKind = "loaded"
	EventCameraReset EventKind = "camera_reset"
	EventError       EventKind = "error"
)

// Event is one observable change of a slot.
type Event struct {
	Slot      string     `json:"slot"`
	Kind      EventKind  `json:"kind"`
	State     State      `json:"state"`
	Mode      model.Mode `json:"mode"`
	ResultID  string     `json:"result_id,omitempty"`
	Resources int        `json:"resources"`
	Error     string     `json:"error,omitempty"`
	Time      time.Time  `json:"time"`
}

// Bus fans slot events out to subscribers.
type Bus struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[chan Event]struct{})}
}

// Subscribe returns a channel receiving every published event.
// The caller must call Unsubscribe when done.
func (b *Bus) Subscribe() chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	b.listeners[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.listeners[ch]; !ok {
		return
	}
	delete(b.listeners, ch)
	close(ch)
}

// Publish delivers e to every listener. Non-blocking: a full listener misses it.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.listeners {
		select {
		case ch <- e:
		default:
		}
	}
}
