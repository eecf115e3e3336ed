package ws

import (
	"context"
	"sync"
	"testing"

	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
)

// fakeSubscriber records delivered messages; full simulates a slow client
// whose buffer rejects every send.
type fakeSubscriber struct {
	id   string
	full bool

	mu       sync.Mutex
	received []*Message
}

func (f *fakeSubscriber) ID() string { return f.id }

func (f *fakeSubscriber) Send(m *Message) bool {
	if f.full {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, m)
	return true
}

func (f *fakeSubscriber) topics(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.received))
	for _, m := range f.received {
		out = append(out, m.Topic)
	}
	return out
}

func staticSnapshot(vehicles ...*model.Vehicle) SnapshotFunc {
	return func(ctx context.Context) []*model.Vehicle { return vehicles }
}

func TestRegisterDeliversSnapshot(t *testing.T) {
	hub := NewHub(staticSnapshot(&model.Vehicle{ID: "v1"}, &model.Vehicle{ID: "v2"}))
	sub := &fakeSubscriber{id: "c1"}

	hub.Register(context.Background(), sub)

	if len(sub.received) != 1 {
		t.Fatalf("received %d messages, want 1", len(sub.received))
	}
	msg := sub.received[0]
	if msg.Topic != TopicInitial {
		t.Errorf("Topic = %q, want %q", msg.Topic, TopicInitial)
	}
	vehicles, ok := msg.Data.([]*model.Vehicle)
	if !ok {
		t.Fatalf("Data is %T, want []*model.Vehicle", msg.Data)
	}
	if len(vehicles) != 2 {
		t.Errorf("snapshot has %d vehicles, want 2", len(vehicles))
	}
}

func TestVehicleUpdatedReachesEveryClient(t *testing.T) {
	hub := NewHub(staticSnapshot())
	c1 := &fakeSubscriber{id: "c1"}
	c2 := &fakeSubscriber{id: "c2"}
	hub.Register(context.Background(), c1)
	hub.Register(context.Background(), c2)

	hub.VehicleUpdated(context.Background(), &model.Vehicle{ID: "v1"})

	for _, sub := range []*fakeSubscriber{c1, c2} {
		got := sub.topics(t)
		if len(got) != 2 || got[1] != TopicUpdate {
			t.Errorf("client %s topics = %v, want [%s %s]", sub.id, got, TopicInitial, TopicUpdate)
		}
	}
}

func TestVehicleDetailedOnlyReachesSubscribers(t *testing.T) {
	hub := NewHub(staticSnapshot())
	c1 := &fakeSubscriber{id: "c1"}
	c2 := &fakeSubscriber{id: "c2"}
	hub.Register(context.Background(), c1)
	hub.Register(context.Background(), c2)

	hub.Subscribe("c1", "v1")
	hub.Subscribe("c2", "v2")

	hub.VehicleDetailed(context.Background(), &model.DetailedUpdate{VehicleID: "v1"})

	if got := c1.topics(t); len(got) != 2 || got[1] != TopicDetailedUpdate {
		t.Errorf("subscribed client topics = %v", got)
	}
	if got := c2.topics(t); len(got) != 1 {
		t.Errorf("unsubscribed client received detailed update: %v", got)
	}

	// After unsubscribing, c1 no longer receives detailed updates.
	hub.Unsubscribe("c1", "v1")
	hub.VehicleDetailed(context.Background(), &model.DetailedUpdate{VehicleID: "v1"})

	if got := c1.topics(t); len(got) != 2 {
		t.Errorf("client received detailed update after unsubscribe: %v", got)
	}
}

func TestSubscribeUnknownClientIgnored(t *testing.T) {
	hub := NewHub(staticSnapshot())

	hub.Subscribe("ghost", "v1")

	hub.VehicleDetailed(context.Background(), &model.DetailedUpdate{VehicleID: "v1"})
	// Nothing to assert beyond not panicking; the ghost client never
	// registered so no topic group may exist for it.
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if len(hub.topics) != 0 {
		t.Errorf("topics = %v, want empty", hub.topics)
	}
}

func TestUnregisterCleansTopicGroups(t *testing.T) {
	hub := NewHub(staticSnapshot())
	c1 := &fakeSubscriber{id: "c1"}
	hub.Register(context.Background(), c1)
	hub.Subscribe("c1", "v1")

	hub.Unregister("c1")

	hub.VehicleUpdated(context.Background(), &model.Vehicle{ID: "v1"})
	hub.VehicleDetailed(context.Background(), &model.DetailedUpdate{VehicleID: "v1"})

	if got := c1.topics(t); len(got) != 1 {
		t.Errorf("client received messages after unregister: %v", got)
	}

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if len(hub.topics) != 0 {
		t.Errorf("topic groups leaked after unregister: %v", hub.topics)
	}
}

func TestVehicleRemovedBroadcastsAndDropsTopic(t *testing.T) {
	hub := NewHub(staticSnapshot())
	c1 := &fakeSubscriber{id: "c1"}
	hub.Register(context.Background(), c1)
	hub.Subscribe("c1", "v1")

	hub.VehicleRemoved(context.Background(), "v1")

	got := c1.topics(t)
	if len(got) != 2 || got[1] != TopicRemoved {
		t.Fatalf("topics = %v, want removal broadcast", got)
	}

	// The vehicle's topic group is gone: a later detailed update for it
	// reaches nobody.
	hub.VehicleDetailed(context.Background(), &model.DetailedUpdate{VehicleID: "v1"})
	if got := c1.topics(t); len(got) != 2 {
		t.Errorf("client still subscribed after removal: %v", got)
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(staticSnapshot())
	slow := &fakeSubscriber{id: "slow", full: true}
	fast := &fakeSubscriber{id: "fast"}
	hub.Register(context.Background(), slow)
	hub.Register(context.Background(), fast)

	hub.VehicleUpdated(context.Background(), &model.Vehicle{ID: "v1"})

	if got := fast.topics(t); len(got) != 2 {
		t.Errorf("fast client topics = %v, want snapshot plus update", got)
	}
	if got := slow.topics(t); len(got) != 0 {
		t.Errorf("slow client unexpectedly received %v", got)
	}
}
