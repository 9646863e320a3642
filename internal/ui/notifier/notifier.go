// Package notifier fans catalog change events out to open builder pages.
package notifier

import (
	"sync"
	"time"
)

// Event tells listeners that something they render from has changed.
type Event struct {
	Reason string
	Path   string
	At     time.Time
}

// Notifier broadcasts events to all subscribed listeners.
// Only the newest pending event is kept per listener: pages reload on any
// event, so intermediate ones carry no extra information.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives events.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
// Unsubscribing twice is a no-op.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.listeners[ch]; !ok {
		return
	}
	delete(n.listeners, ch)
	close(ch)
}

// Len returns the number of subscribed listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast delivers ev to every listener without blocking. A listener
// with an undelivered event has it replaced by ev.
func (n *Notifier) Broadcast(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- ev:
			continue
		default:
		}
		// Full: drop the stale event and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
