package geohub

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/logiflow-io/logiflow/internal/geohub/core"
	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
	"github.com/logiflow-io/logiflow/internal/geohub/core/service"
	"github.com/logiflow-io/logiflow/internal/geohub/notifier"
	"github.com/logiflow-io/logiflow/internal/geohub/server"
	httpserver "github.com/logiflow-io/logiflow/internal/geohub/server/http"
	mqttserver "github.com/logiflow-io/logiflow/internal/geohub/server/mqtt"
	"github.com/logiflow-io/logiflow/internal/geohub/server/ws"
	"github.com/logiflow-io/logiflow/internal/geohub/simulator"
	"github.com/logiflow-io/logiflow/internal/geohub/store"
	pkgmqtt "github.com/logiflow-io/logiflow/pkg/mqtt"
	"github.com/logiflow-io/logiflow/pkg/mqtt/topic"
	"github.com/logiflow-io/logiflow/pkg/options"
)

// Config aggregates the options of every geohub component.
type Config struct {
	HttpOptions  *options.HttpOptions
	WsOptions    *options.WsOptions
	MqttOptions  *options.MqttOptions
	SimOptions   *options.SimOptions
	StoreOptions *options.StoreOptions
}

// NewGeoHubServer wires stores, core service, fan-out and ingress servers
// together. Dependency injection happens here.
func (cfg *Config) NewGeoHubServer() (*GeoHubServer, error) {
	// 1. State: the authoritative vehicle map and the bounded history.
	vehicleStore := store.NewVehicleStore()
	historyStore := store.NewHistoryStore(cfg.StoreOptions.HistoryCapacity)

	// 2. Fan-out: the realtime hub, mirrored to MQTT when configured.
	// The hub snapshots directly from the store so late joiners are
	// consistent without touching the service layer.
	hub := ws.NewHub(func(ctx context.Context) []*model.Vehicle {
		vehicles, _, err := vehicleStore.List(ctx, model.VehicleFilter{}, model.Page{})
		if err != nil {
			return nil
		}
		return vehicles
	})

	notifiers := []core.EventNotifier{hub}

	var egress *notifier.MQTTNotifier
	if cfg.MqttOptions.Enabled() {
		var err error
		egress, err = notifier.NewMQTTNotifier(cfg.MqttOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to init mqtt notifier: %w", err)
		}
		notifiers = append(notifiers, egress)
	}

	// 3. Core domain service.
	svc := service.New(vehicleStore, historyStore, notifier.NewFanout(notifiers...))

	// 4. Seed the fleet. Provisioning is otherwise an external concern.
	var seeder *store.Seeder
	if cfg.StoreOptions.SeedFile != "" {
		seeder = store.NewSeeder(cfg.StoreOptions.SeedFile, svc)
		if err := seeder.Load(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to seed fleet: %w", err)
		}
	}

	// 5. Ingress servers and the simulator. Readiness tracks the broker
	// connection when MQTT is configured; otherwise the hub is always ready.
	var ready func() bool
	if egress != nil {
		ready = func() bool {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			return egress.Ready(ctx)
		}
	}

	wsSrv := ws.NewServer(hub, cfg.WsOptions)
	httpSrv := httpserver.NewServer(cfg.HttpOptions, svc, wsSrv, ready)

	servers := []server.Server{httpSrv}

	if cfg.SimOptions.Enabled {
		servers = append(servers, simulator.New(cfg.SimOptions, vehicleStore, historyStore, notifier.NewFanout(notifiers...)))
	}

	if cfg.MqttOptions.Enabled() {
		client, err := initMQTTClient(cfg.MqttOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to init mqtt ingress: %w", err)
		}
		topics := topic.NewBuilder(cfg.MqttOptions.TopicRoot)
		servers = append(servers, mqttserver.NewServer(client, topics, svc))
	}

	if seeder != nil && cfg.StoreOptions.WatchSeed {
		servers = append(servers, seeder)
	}

	return &GeoHubServer{
		manager: server.NewManager(servers...),
		egress:  egress,
	}, nil
}

func initMQTTClient(opts *options.MqttOptions) (pkgmqtt.Client, error) {
	cfg := opts.ToClientConfig()

	if cfg.ClientID == "" {
		hostname, _ := os.Hostname()
		cfg.ClientID = fmt.Sprintf("geohub-%s", hostname)
	}

	return pkgmqtt.NewClient(cfg)
}
