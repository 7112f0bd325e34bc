// Package rbac provides an in-process broadcaster that tells open sessions
// when a user's permissions changed, so they can drop cached role state
// instead of trusting a stale view.
package rbac

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Change describes one role change event.
type Change struct {
	UserID    uuid.UUID
	NewRole   string
	ChangedAt time.Time
}

// Broadcaster fans role-change events out to subscribers. Slow subscribers
// never block the publisher: events are dropped for a subscriber whose
// buffer is full, which is acceptable because the consumer's reaction to any
// event is "re-fetch permissions".
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[uint64]chan Change
	next uint64
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[uint64]chan Change)}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function. The unsubscribe function is idempotent and closes
// the channel.
func (b *Broadcaster) Subscribe() (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++

	ch := make(chan Change, 8)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the change to every current subscriber without blocking.
func (b *Broadcaster) Publish(change Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
