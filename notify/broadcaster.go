package notify

import (
	"sync"

	"github.com/google/uuid"
)

// subscriberBufferSize is the per-subscriber channel capacity. A subscriber
// that falls further behind than this starts losing notifications rather
// than blocking the publisher.
const subscriberBufferSize = 32

// Notifier manages notification subscribers and broadcasts messages to them.
// Publishing never blocks: sends are non-blocking and drop for subscribers
// whose buffers are full, because a stalled display must not stall a store
// action mid-flight.
type Notifier struct {
	mu sync.RWMutex
	// subscribers receive user-facing notifications.
	subscribers map[string]chan Notification
	// expiryWatchers receive the session-expiry signal.
	expiryWatchers map[string]chan struct{}
}

// NewNotifier creates a Notifier with no subscribers.
func NewNotifier() *Notifier {
	return &Notifier{
		subscribers:    make(map[string]chan Notification),
		expiryWatchers: make(map[string]chan struct{}),
	}
}

// Subscribe registers a new notification subscriber and returns its ID along
// with the receive channel. The caller should Unsubscribe when done.
func (n *Notifier) Subscribe() (string, <-chan Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan Notification, subscriberBufferSize)
	n.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a notification subscriber and closes its channel.
// Unknown IDs are ignored.
func (n *Notifier) Unsubscribe(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ch, ok := n.subscribers[id]; ok {
		delete(n.subscribers, id)
		close(ch)
	}
}

// publish delivers a notification to every subscriber without blocking.
func (n *Notifier) publish(notification Notification) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, ch := range n.subscribers {
		select {
		case ch <- notification:
		default:
			// Subscriber buffer full; drop rather than block the publisher.
		}
	}
}

// SubscribeSessionExpired registers a watcher for the session-expiry signal.
// The gateway fires it when a request comes back 401, after clearing the
// stored session.
func (n *Notifier) SubscribeSessionExpired() (string, <-chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan struct{}, 1)
	n.expiryWatchers[id] = ch
	return id, ch
}

// UnsubscribeSessionExpired removes a session-expiry watcher.
func (n *Notifier) UnsubscribeSessionExpired(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ch, ok := n.expiryWatchers[id]; ok {
		delete(n.expiryWatchers, id)
		close(ch)
	}
}

// SessionExpired publishes the session-expiry signal to all watchers. The
// channel is buffered with capacity one, so repeated 401s collapse into a
// single pending signal per watcher.
func (n *Notifier) SessionExpired() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, ch := range n.expiryWatchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
