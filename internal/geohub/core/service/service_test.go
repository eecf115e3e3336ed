package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/logiflow-io/logiflow/internal/geohub/core"
	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
	"github.com/logiflow-io/logiflow/internal/geohub/store"
)

// recordingNotifier captures fan-out events for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	updated  []*model.Vehicle
	detailed []*model.DetailedUpdate
	removed  []string
}

func (n *recordingNotifier) VehicleUpdated(ctx context.Context, v *model.Vehicle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated = append(n.updated, v)
}

func (n *recordingNotifier) VehicleDetailed(ctx context.Context, upd *model.DetailedUpdate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.detailed = append(n.detailed, upd)
}

func (n *recordingNotifier) VehicleRemoved(ctx context.Context, vehicleID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removed = append(n.removed, vehicleID)
}

func newTestService(t *testing.T, vehicles ...*model.Vehicle) (*Service, *store.HistoryStore, *recordingNotifier) {
	t.Helper()

	vs := store.NewVehicleStore()
	hs := store.NewHistoryStore(100)
	notifier := &recordingNotifier{}
	svc := New(vs, hs, notifier)

	for _, v := range vehicles {
		if err := svc.Provision(context.Background(), v); err != nil {
			t.Fatalf("Provision(%s) failed: %v", v.ID, err)
		}
	}

	return svc, hs, notifier
}

func floatPtr(f float64) *float64 { return &f }

func TestSubmitUpdateValidation(t *testing.T) {
	svc, _, _ := newTestService(t, &model.Vehicle{ID: "v1"})

	tests := []struct {
		name string
		id   string
		upd  PositionUpdate
	}{
		{"empty id", "", PositionUpdate{Lat: 10, Lng: 10}},
		{"lat too low", "v1", PositionUpdate{Lat: -91, Lng: 0}},
		{"lat too high", "v1", PositionUpdate{Lat: 91, Lng: 0}},
		{"lng too low", "v1", PositionUpdate{Lat: 0, Lng: -181}},
		{"lng too high", "v1", PositionUpdate{Lat: 0, Lng: 181}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitUpdate(context.Background(), tt.id, tt.upd)
			if !core.IsValidation(err) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestSubmitUpdateUnknownVehicle(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.SubmitUpdate(context.Background(), "ghost", PositionUpdate{Lat: 10, Lng: 10})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSubmitUpdatePartialSemantics(t *testing.T) {
	svc, _, _ := newTestService(t, &model.Vehicle{
		ID: "v1", Speed: 60, Heading: 90, Fuel: 80,
	})

	// Only position supplied: kinematics keep their current values.
	v, err := svc.SubmitUpdate(context.Background(), "v1", PositionUpdate{Lat: 48.1, Lng: 11.5})
	if err != nil {
		t.Fatalf("SubmitUpdate failed: %v", err)
	}
	if v.Lat != 48.1 || v.Lng != 11.5 {
		t.Errorf("position = (%v, %v), want (48.1, 11.5)", v.Lat, v.Lng)
	}
	if v.Speed != 60 || v.Heading != 90 || v.Fuel != 80 {
		t.Errorf("kinematics changed: speed=%v heading=%v fuel=%v", v.Speed, v.Heading, v.Fuel)
	}

	// Full update overwrites, with clamping applied.
	v, err = svc.SubmitUpdate(context.Background(), "v1", PositionUpdate{
		Lat: 48.2, Lng: 11.6,
		Speed:   floatPtr(300),
		Heading: floatPtr(-45),
		Fuel:    floatPtr(120),
	})
	if err != nil {
		t.Fatalf("SubmitUpdate failed: %v", err)
	}
	if v.Speed != model.MaxSpeed {
		t.Errorf("Speed = %v, want %v", v.Speed, model.MaxSpeed)
	}
	if v.Heading != 315 {
		t.Errorf("Heading = %v, want 315", v.Heading)
	}
	if v.Fuel != model.MaxFuel {
		t.Errorf("Fuel = %v, want %v", v.Fuel, model.MaxFuel)
	}
	if v.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestSubmitUpdateRecordsHistoryAndNotifies(t *testing.T) {
	svc, hs, notifier := newTestService(t, &model.Vehicle{ID: "v1"})

	// Two identical reports are two distinct samples.
	for i := 0; i < 2; i++ {
		if _, err := svc.SubmitUpdate(context.Background(), "v1", PositionUpdate{Lat: 1, Lng: 2}); err != nil {
			t.Fatalf("SubmitUpdate failed: %v", err)
		}
	}

	if n := hs.Len("v1"); n != 2 {
		t.Errorf("history length = %d, want 2", n)
	}
	if len(notifier.updated) != 2 {
		t.Errorf("updated events = %d, want 2", len(notifier.updated))
	}
	if len(notifier.detailed) != 2 {
		t.Errorf("detailed events = %d, want 2", len(notifier.detailed))
	}
	if notifier.detailed[0].VehicleID != "v1" {
		t.Errorf("detailed VehicleID = %s, want v1", notifier.detailed[0].VehicleID)
	}
}

func TestSetStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    model.VehicleStatus
		to      model.VehicleStatus
		allowed bool
	}{
		{"idle to active", model.StatusIdle, model.StatusActive, true},
		{"active to idle", model.StatusActive, model.StatusIdle, true},
		{"idle to maintenance", model.StatusIdle, model.StatusMaintenance, true},
		{"maintenance to idle", model.StatusMaintenance, model.StatusIdle, true},
		{"maintenance to active", model.StatusMaintenance, model.StatusActive, false},
		{"active to maintenance", model.StatusActive, model.StatusMaintenance, false},
		{"active to offline", model.StatusActive, model.StatusOffline, true},
		{"offline to idle", model.StatusOffline, model.StatusIdle, true},
		{"offline to active", model.StatusOffline, model.StatusActive, false},
		{"offline to maintenance", model.StatusOffline, model.StatusMaintenance, true},
		{"same status no-op", model.StatusActive, model.StatusActive, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t, &model.Vehicle{ID: "v1", Status: tt.from})

			v, err := svc.SetStatus(context.Background(), "v1", tt.to)
			if tt.allowed {
				if err != nil {
					t.Fatalf("SetStatus failed: %v", err)
				}
				if v.Status != tt.to {
					t.Errorf("Status = %s, want %s", v.Status, tt.to)
				}
				return
			}
			if !core.IsValidation(err) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	svc, _, _ := newTestService(t, &model.Vehicle{ID: "v1", Status: model.StatusIdle})

	if _, err := svc.SetStatus(context.Background(), "v1", "parked"); !core.IsValidation(err) {
		t.Errorf("error = %v, want validation error", err)
	}
	if _, err := svc.SetStatus(context.Background(), "ghost", model.StatusIdle); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestHistoryService(t *testing.T) {
	svc, _, _ := newTestService(t, &model.Vehicle{ID: "v1"})

	for i := 0; i < 25; i++ {
		if _, err := svc.SubmitUpdate(context.Background(), "v1", PositionUpdate{Lat: float64(i) / 10, Lng: 0}); err != nil {
			t.Fatalf("SubmitUpdate failed: %v", err)
		}
	}

	// Default limit applies when the query names none.
	samples, err := svc.History(context.Background(), "v1", model.HistoryQuery{})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(samples) != DefaultHistoryLimit {
		t.Errorf("got %d samples, want %d", len(samples), DefaultHistoryLimit)
	}

	// Unknown vehicle is not-found at the service boundary.
	if _, err := svc.History(context.Background(), "ghost", model.HistoryQuery{}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestProvisionDefaultsAndDeprovision(t *testing.T) {
	svc, hs, notifier := newTestService(t)

	if err := svc.Provision(context.Background(), &model.Vehicle{ID: "v1", Status: "bogus"}); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	v, err := svc.GetVehicle(context.Background(), "v1")
	if err != nil {
		t.Fatalf("GetVehicle failed: %v", err)
	}
	if v.Status != model.StatusIdle {
		t.Errorf("Status = %s, want %s", v.Status, model.StatusIdle)
	}

	if err := svc.Provision(context.Background(), &model.Vehicle{}); !core.IsValidation(err) {
		t.Errorf("Provision without id error = %v, want validation error", err)
	}

	if _, err := svc.SubmitUpdate(context.Background(), "v1", PositionUpdate{Lat: 1, Lng: 1}); err != nil {
		t.Fatalf("SubmitUpdate failed: %v", err)
	}

	if err := svc.Deprovision(context.Background(), "v1"); err != nil {
		t.Fatalf("Deprovision failed: %v", err)
	}
	if _, err := svc.GetVehicle(context.Background(), "v1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetVehicle after Deprovision error = %v, want ErrNotFound", err)
	}
	if n := hs.Len("v1"); n != 0 {
		t.Errorf("history retained %d samples after Deprovision", n)
	}
	if len(notifier.removed) != 1 || notifier.removed[0] != "v1" {
		t.Errorf("removed events = %v, want [v1]", notifier.removed)
	}

	if err := svc.Deprovision(context.Background(), "v1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Deprovision error = %v, want ErrNotFound", err)
	}
}
