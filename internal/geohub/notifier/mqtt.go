package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/logiflow-io/logiflow/internal/geohub/core"
	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
	"github.com/logiflow-io/logiflow/pkg/log"
	pkgmqtt "github.com/logiflow-io/logiflow/pkg/mqtt"
	"github.com/logiflow-io/logiflow/pkg/mqtt/topic"
	"github.com/logiflow-io/logiflow/pkg/options"
)

const publishTimeout = 5 * time.Second

// MQTTNotifier mirrors fan-out events onto the MQTT broker so broker-side
// collaborators receive the same updates as realtime channel clients.
// Publishing is best-effort at QoS 0 and never blocks the caller.
type MQTTNotifier struct {
	client pkgmqtt.Client
	topics *topic.Builder
}

var _ core.EventNotifier = (*MQTTNotifier)(nil)

// NewMQTTNotifier creates a dedicated egress client. Separating ingress and
// egress connections keeps a slow publish path from disturbing telemetry
// subscriptions.
func NewMQTTNotifier(opts *options.MqttOptions) (*MQTTNotifier, error) {
	topics := topic.NewBuilder(opts.TopicRoot)

	cfg := opts.ToClientConfig()
	if cfg.ClientID == "" {
		hostname, _ := os.Hostname()
		cfg.ClientID = fmt.Sprintf("geohub-%s", hostname)
	}
	cfg.ClientID = cfg.ClientID + "-notifier"
	cfg.WillTopic = topics.Availability()
	cfg.WillPayload = []byte("offline")
	cfg.WillRetain = true

	client, err := pkgmqtt.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if err := client.Start(context.Background()); err != nil {
		return nil, err
	}

	n := &MQTTNotifier{client: client, topics: topics}

	// Announce availability once connected; the will message flips it
	// back when the connection drops.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := client.AwaitConnection(ctx); err != nil {
			return
		}
		if err := client.Publish(ctx, topics.Availability(), 1, true, []byte("online")); err != nil {
			log.Error(err, "failed to publish availability")
		}
	}()

	return n, nil
}

// Ready reports whether the broker connection is up, bounded by ctx.
func (n *MQTTNotifier) Ready(ctx context.Context) bool {
	return n.client.AwaitConnection(ctx) == nil
}

// Disconnect cleanly closes the egress connection.
func (n *MQTTNotifier) Disconnect(ctx context.Context) {
	n.client.Disconnect(ctx)
}

func (n *MQTTNotifier) VehicleUpdated(ctx context.Context, v *model.Vehicle) {
	n.publish(n.topics.Position(v.ID), v)
}

func (n *MQTTNotifier) VehicleDetailed(ctx context.Context, upd *model.DetailedUpdate) {
	n.publish(n.topics.Detail(upd.VehicleID), upd)
}

func (n *MQTTNotifier) VehicleRemoved(ctx context.Context, vehicleID string) {
	n.publish(n.topics.Position(vehicleID), map[string]any{
		"vehicleId": vehicleID,
		"removed":   true,
	})
}

// publish marshals and sends off the caller's goroutine; a slow broker
// must never stall the tick or a request handler.
func (n *MQTTNotifier) publish(t string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error(err, "failed to marshal event payload", "topic", t)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := n.client.Publish(ctx, t, 0, false, data); err != nil {
			log.Debug("failed to publish event", "topic", t, "error", err.Error())
		}
	}()
}
