package simulator

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
	"github.com/logiflow-io/logiflow/internal/geohub/store"
	"github.com/logiflow-io/logiflow/pkg/options"
)

type countingNotifier struct {
	mu       sync.Mutex
	updated  int
	detailed int
}

func (n *countingNotifier) VehicleUpdated(ctx context.Context, v *model.Vehicle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated++
}

func (n *countingNotifier) VehicleDetailed(ctx context.Context, upd *model.DetailedUpdate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.detailed++
}

func (n *countingNotifier) VehicleRemoved(ctx context.Context, vehicleID string) {}

func newTestSimulator(t *testing.T, vehicles ...*model.Vehicle) (*Simulator, *store.VehicleStore, *store.HistoryStore, *countingNotifier) {
	t.Helper()

	vs := store.NewVehicleStore()
	hs := store.NewHistoryStore(100)
	notifier := &countingNotifier{}

	for _, v := range vehicles {
		if err := vs.Put(context.Background(), v); err != nil {
			t.Fatalf("Put(%s) failed: %v", v.ID, err)
		}
	}

	opts := options.NewSimOptions()
	sim := New(opts, vs, hs, notifier)
	sim.jitter = func() float64 { return 0 }
	sim.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	return sim, vs, hs, notifier
}

func TestTickAdvancesActiveVehicle(t *testing.T) {
	sim, vs, hs, notifier := newTestSimulator(t, &model.Vehicle{
		ID: "v1", Status: model.StatusActive,
		Lat: 48.0, Lng: 11.0, Speed: 72, Heading: 45, Fuel: 50,
	})

	sim.Tick(context.Background())

	v, err := vs.Get(context.Background(), "v1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// 72 km/h for a 5s tick is 0.1 km; at heading 45 both components are
	// 0.1*cos(45°)/111 degrees.
	distKm := 72.0 / 3600 * 5
	wantDelta := distKm * math.Cos(45*math.Pi/180) / 111.0

	if diff := math.Abs(v.Lat - (48.0 + wantDelta)); diff > 1e-9 {
		t.Errorf("Lat = %v, want %v", v.Lat, 48.0+wantDelta)
	}
	if diff := math.Abs(v.Lng - (11.0 + wantDelta)); diff > 1e-9 {
		t.Errorf("Lng = %v, want %v", v.Lng, 11.0+wantDelta)
	}
	if diff := math.Abs(v.Fuel - 49.95); diff > 1e-9 {
		t.Errorf("Fuel = %v, want 49.95", v.Fuel)
	}
	if !v.UpdatedAt.Equal(sim.now()) {
		t.Errorf("UpdatedAt = %v, want %v", v.UpdatedAt, sim.now())
	}

	if n := hs.Len("v1"); n != 1 {
		t.Errorf("history samples = %d, want 1", n)
	}
	if notifier.updated != 1 || notifier.detailed != 1 {
		t.Errorf("events = (%d updated, %d detailed), want (1, 1)", notifier.updated, notifier.detailed)
	}
}

func TestTickSkipsIneligibleVehicles(t *testing.T) {
	tests := []struct {
		name    string
		vehicle *model.Vehicle
	}{
		{"idle", &model.Vehicle{ID: "v1", Status: model.StatusIdle, Speed: 50, Fuel: 50}},
		{"maintenance", &model.Vehicle{ID: "v1", Status: model.StatusMaintenance, Speed: 50, Fuel: 50}},
		{"offline", &model.Vehicle{ID: "v1", Status: model.StatusOffline, Speed: 50, Fuel: 50}},
		{"active but stationary", &model.Vehicle{ID: "v1", Status: model.StatusActive, Speed: 0, Fuel: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, vs, hs, _ := newTestSimulator(t, tt.vehicle)
			before, _ := vs.Get(context.Background(), "v1")

			sim.Tick(context.Background())

			after, _ := vs.Get(context.Background(), "v1")
			if after.Lat != before.Lat || after.Lng != before.Lng || after.Fuel != before.Fuel {
				t.Errorf("vehicle moved: before=%+v after=%+v", before, after)
			}
			if n := hs.Len("v1"); n != 0 {
				t.Errorf("history samples = %d, want 0", n)
			}
		})
	}
}

func TestTickJitterStaysClamped(t *testing.T) {
	sim, vs, _, _ := newTestSimulator(t, &model.Vehicle{
		ID: "v1", Status: model.StatusActive, Speed: 119, Fuel: 50,
	})
	sim.jitter = func() float64 { return 50 }

	sim.Tick(context.Background())

	v, _ := vs.Get(context.Background(), "v1")
	if v.Speed != model.MaxSpeed {
		t.Errorf("Speed = %v, want %v", v.Speed, model.MaxSpeed)
	}

	// And on the low side the clamp floors at zero.
	sim.jitter = func() float64 { return -500 }
	sim.Tick(context.Background())

	v, _ = vs.Get(context.Background(), "v1")
	if v.Speed != model.MinSpeed {
		t.Errorf("Speed = %v, want %v", v.Speed, model.MinSpeed)
	}
}

func TestTickHeadingDrift(t *testing.T) {
	sim, vs, _, _ := newTestSimulator(t, &model.Vehicle{
		ID: "v1", Status: model.StatusActive, Speed: 50, Heading: 350, Fuel: 50,
	})

	// Drift disabled by default: heading stays put.
	sim.Tick(context.Background())
	v, _ := vs.Get(context.Background(), "v1")
	if v.Heading != 350 {
		t.Errorf("Heading = %v, want 350 with drift disabled", v.Heading)
	}

	// With drift enabled the heading wanders and wraps.
	sim.opts.HeadingDrift = 15
	sim.drift = func() float64 { return 15 }
	sim.Tick(context.Background())

	v, _ = vs.Get(context.Background(), "v1")
	if v.Heading != 5 {
		t.Errorf("Heading = %v, want 5 after wrap", v.Heading)
	}
}

func TestTickFuelFloorsAtZero(t *testing.T) {
	sim, vs, _, _ := newTestSimulator(t, &model.Vehicle{
		ID: "v1", Status: model.StatusActive, Speed: 50, Fuel: 0.01,
	})

	sim.Tick(context.Background())

	v, _ := vs.Get(context.Background(), "v1")
	if v.Fuel != 0 {
		t.Errorf("Fuel = %v, want 0", v.Fuel)
	}
}

// panickyHistory fails hard for one vehicle to exercise per-vehicle
// failure isolation.
type panickyHistory struct {
	*store.HistoryStore
	failID string
}

func (p *panickyHistory) Append(ctx context.Context, vehicleID string, sample model.PositionSample) {
	if vehicleID == p.failID {
		panic("history append failure")
	}
	p.HistoryStore.Append(ctx, vehicleID, sample)
}

func TestTickIsolatesFailures(t *testing.T) {
	vs := store.NewVehicleStore()
	hs := &panickyHistory{HistoryStore: store.NewHistoryStore(100), failID: "v1"}
	notifier := &countingNotifier{}

	for _, v := range []*model.Vehicle{
		{ID: "v1", Status: model.StatusActive, Speed: 50, Fuel: 50},
		{ID: "v2", Status: model.StatusActive, Speed: 50, Fuel: 50},
	} {
		if err := vs.Put(context.Background(), v); err != nil {
			t.Fatalf("Put(%s) failed: %v", v.ID, err)
		}
	}

	sim := New(options.NewSimOptions(), vs, hs, notifier)
	sim.jitter = func() float64 { return 0 }

	sim.Tick(context.Background())

	if n := hs.Len("v1"); n != 0 {
		t.Errorf("failing vehicle recorded %d samples, want 0", n)
	}
	if n := hs.Len("v2"); n != 1 {
		t.Errorf("healthy vehicle recorded %d samples, want 1", n)
	}
}
