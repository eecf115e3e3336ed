package ws

import (
	"context"
	"sync"

	"github.com/logiflow-io/logiflow/internal/geohub/core"
	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
	"github.com/logiflow-io/logiflow/internal/pkg/metrics"
	"github.com/logiflow-io/logiflow/pkg/log"
)

// Topic names on the realtime channel.
const (
	TopicInitial        = "vehicles:initial"
	TopicUpdate         = "vehicle:update"
	TopicDetailedUpdate = "vehicle:detailed-update"
	TopicRemoved        = "vehicle:removed"
)

// Client-initiated actions.
const (
	ActionSubscribe   = "subscribe:vehicle"
	ActionUnsubscribe = "unsubscribe:vehicle"
)

// Message is the envelope for every frame on the realtime channel.
type Message struct {
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// Subscriber is one connected realtime client. Send must not block: it
// reports false when the message was dropped because the client is slow
// or gone.
type Subscriber interface {
	ID() string
	Send(m *Message) bool
}

// SnapshotFunc supplies the full current fleet for the initial event.
type SnapshotFunc func(ctx context.Context) []*model.Vehicle

// Hub is the topic-keyed subscriber registry. General updates go to every
// client; detailed updates go only to clients subscribed to that vehicle.
// Delivery is at-most-once and best-effort.
type Hub struct {
	snapshot SnapshotFunc

	mu      sync.RWMutex
	clients map[string]Subscriber
	// topics maps vehicleID -> set of subscribed client IDs.
	topics map[string]map[string]struct{}
}

var _ core.EventNotifier = (*Hub)(nil)

// NewHub creates an empty Hub drawing initial snapshots from snapshot.
func NewHub(snapshot SnapshotFunc) *Hub {
	return &Hub{
		snapshot: snapshot,
		clients:  make(map[string]Subscriber),
		topics:   make(map[string]map[string]struct{}),
	}
}

// Register adds a client and delivers the full fleet snapshot so late
// joiners are consistent without replaying history.
func (h *Hub) Register(ctx context.Context, sub Subscriber) {
	h.mu.Lock()
	h.clients[sub.ID()] = sub
	h.mu.Unlock()

	metrics.SubscribersConnected.Inc()
	log.Debug("realtime client connected", "client", sub.ID())

	h.deliver(sub, &Message{Topic: TopicInitial, Data: h.snapshot(ctx)})
}

// Unregister removes a client and all its per-vehicle subscriptions.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	if _, ok := h.clients[clientID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, clientID)
	for vehicleID, subs := range h.topics {
		delete(subs, clientID)
		if len(subs) == 0 {
			delete(h.topics, vehicleID)
		}
	}
	h.mu.Unlock()

	metrics.SubscribersConnected.Dec()
	log.Debug("realtime client disconnected", "client", clientID)
}

// Subscribe adds the client to a vehicle's topic group.
func (h *Hub) Subscribe(clientID, vehicleID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[clientID]; !ok {
		return
	}
	subs, ok := h.topics[vehicleID]
	if !ok {
		subs = make(map[string]struct{})
		h.topics[vehicleID] = subs
	}
	subs[clientID] = struct{}{}
}

// Unsubscribe removes the client from a vehicle's topic group.
func (h *Hub) Unsubscribe(clientID, vehicleID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[vehicleID]
	if !ok {
		return
	}
	delete(subs, clientID)
	if len(subs) == 0 {
		delete(h.topics, vehicleID)
	}
}

// VehicleUpdated broadcasts a general update to every connected client,
// regardless of subscription.
func (h *Hub) VehicleUpdated(ctx context.Context, v *model.Vehicle) {
	msg := &Message{Topic: TopicUpdate, Data: v}

	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.clients))
	for _, sub := range h.clients {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		h.deliver(sub, msg)
	}
}

// VehicleDetailed delivers a detailed update only to clients subscribed to
// that vehicle's topic.
func (h *Hub) VehicleDetailed(ctx context.Context, upd *model.DetailedUpdate) {
	msg := &Message{Topic: TopicDetailedUpdate, Data: upd}

	h.mu.RLock()
	var targets []Subscriber
	for clientID := range h.topics[upd.VehicleID] {
		if sub, ok := h.clients[clientID]; ok {
			targets = append(targets, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		h.deliver(sub, msg)
	}
}

// VehicleRemoved tells every client the vehicle left the fleet and drops
// its topic group.
func (h *Hub) VehicleRemoved(ctx context.Context, vehicleID string) {
	h.mu.Lock()
	delete(h.topics, vehicleID)
	targets := make([]Subscriber, 0, len(h.clients))
	for _, sub := range h.clients {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	msg := &Message{Topic: TopicRemoved, Data: map[string]string{"vehicleId": vehicleID}}
	for _, sub := range targets {
		h.deliver(sub, msg)
	}
}

func (h *Hub) deliver(sub Subscriber, msg *Message) {
	if sub.Send(msg) {
		metrics.BroadcastsTotal.WithLabelValues(msg.Topic).Inc()
		return
	}
	metrics.BroadcastDropsTotal.Inc()
	log.Debug("dropped message for slow subscriber", "client", sub.ID(), "topic", msg.Topic)
}
