package rbac

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBroadcaster_DeliversToAllSubscribers(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster()
	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel1()
	defer cancel2()

	change := Change{UserID: uuid.New(), NewRole: "reviewer", ChangedAt: time.Now()}
	b.Publish(change)

	for i, ch := range []<-chan Change{ch1, ch2} {
		select {
		case got := <-ch:
			if got.UserID != change.UserID || got.NewRole != "reviewer" {
				t.Errorf("subscriber %d: got %+v", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: no event", i)
		}
	}
}

func TestBroadcaster_UnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster()
	ch, cancel := b.Subscribe()
	cancel()
	cancel() // idempotent

	if b.SubscriberCount() != 0 {
		t.Errorf("subscribers: got %d, want 0", b.SubscriberCount())
	}

	// Channel is closed after unsubscribe.
	if _, open := <-ch; open {
		t.Error("channel should be closed")
	}

	b.Publish(Change{UserID: uuid.New()}) // must not panic
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster()
	_, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// More events than the subscriber buffer holds.
		for i := 0; i < 100; i++ {
			b.Publish(Change{UserID: uuid.New()})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
