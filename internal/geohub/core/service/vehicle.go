package service

import (
	"context"
	"fmt"
	"time"

	"github.com/logiflow-io/logiflow/internal/geohub/core"
	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
	"github.com/logiflow-io/logiflow/pkg/log"
)

// PositionUpdate is an externally reported position report, e.g. device
// telemetry. Lat and Lng are required; nil optional fields keep the
// vehicle's current values (partial-update semantics).
type PositionUpdate struct {
	Lat     float64
	Lng     float64
	Speed   *float64
	Heading *float64
	Fuel    *float64
}

// ListVehicles returns vehicles matching the filter, most recently updated
// first, plus the total match count before pagination.
func (s *Service) ListVehicles(ctx context.Context, filter model.VehicleFilter, page model.Page) ([]*model.Vehicle, int, error) {
	return s.vehicles.List(ctx, filter, page)
}

// GetVehicle returns the current state of one vehicle.
func (s *Service) GetVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	return s.vehicles.Get(ctx, id)
}

// Snapshot returns the full current fleet, used by the realtime channel for
// the initial event sent to new connections.
func (s *Service) Snapshot(ctx context.Context) []*model.Vehicle {
	vehicles, _, err := s.vehicles.List(ctx, model.VehicleFilter{}, model.Page{})
	if err != nil {
		log.Error(err, "failed to snapshot fleet")
		return nil
	}
	return vehicles
}

// SubmitUpdate validates and applies an externally reported position update.
// It shares the mutation path with the simulator: write-through the state
// store, append to history, trigger fan-out.
func (s *Service) SubmitUpdate(ctx context.Context, id string, upd PositionUpdate) (*model.Vehicle, error) {
	if id == "" {
		return nil, core.NewValidationError("vehicle id is required")
	}
	if upd.Lat < -90 || upd.Lat > 90 {
		return nil, core.NewValidationError("lat must be within [-90, 90], got %v", upd.Lat)
	}
	if upd.Lng < -180 || upd.Lng > 180 {
		return nil, core.NewValidationError("lng must be within [-180, 180], got %v", upd.Lng)
	}

	now := time.Now()
	v, err := s.vehicles.Apply(ctx, id, func(v *model.Vehicle) {
		v.Lat = upd.Lat
		v.Lng = upd.Lng
		if upd.Speed != nil {
			v.Speed = *upd.Speed
		}
		if upd.Heading != nil {
			v.Heading = *upd.Heading
		}
		if upd.Fuel != nil {
			v.Fuel = *upd.Fuel
		}
		v.UpdatedAt = now
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply position update: %w", err)
	}

	s.recordAndPublish(ctx, v)
	return v, nil
}

// SetStatus transitions a vehicle's operational status. Transitions are
// guarded by the status state machine; an illegal transition is a client
// error, not an internal one.
func (s *Service) SetStatus(ctx context.Context, id string, status model.VehicleStatus) (*model.Vehicle, error) {
	if !status.Valid() {
		return nil, core.NewValidationError("unknown status %q", status)
	}

	current, err := s.vehicles.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := transitionStatus(ctx, current.Status, status); err != nil {
		return nil, err
	}

	v, err := s.vehicles.Apply(ctx, id, func(v *model.Vehicle) {
		v.Status = status
		v.UpdatedAt = time.Now()
	})
	if err != nil {
		return nil, err
	}

	s.notifier.VehicleUpdated(ctx, v)
	return v, nil
}

// Provision inserts or replaces a vehicle. This is the hook for the
// upstream fleet-management collaborator; regular updates never create.
func (s *Service) Provision(ctx context.Context, v *model.Vehicle) error {
	if v.ID == "" {
		return core.NewValidationError("vehicle id is required")
	}
	if !v.Status.Valid() {
		v.Status = model.StatusIdle
	}

	if err := s.vehicles.Put(ctx, v); err != nil {
		return err
	}

	log.Info("vehicle provisioned", "vehicle", v.ID, "category", string(v.Category))
	return nil
}

// Deprovision removes a vehicle together with its history buffer and
// per-vehicle subscriptions.
func (s *Service) Deprovision(ctx context.Context, id string) error {
	if err := s.vehicles.Remove(ctx, id); err != nil {
		return err
	}

	s.history.Remove(ctx, id)
	s.notifier.VehicleRemoved(ctx, id)

	log.Info("vehicle deprovisioned", "vehicle", id)
	return nil
}

// recordAndPublish appends the post-mutation position to history and fires
// both fan-out events. Fan-out is fire-and-forget: failures are the
// notifier's to log, never the mutation's to fail on.
func (s *Service) recordAndPublish(ctx context.Context, v *model.Vehicle) {
	heading := v.Heading
	s.history.Append(ctx, v.ID, model.PositionSample{
		Lat:       v.Lat,
		Lng:       v.Lng,
		Speed:     v.Speed,
		Heading:   &heading,
		Timestamp: v.UpdatedAt,
	})

	s.notifier.VehicleUpdated(ctx, v)
	s.notifier.VehicleDetailed(ctx, &model.DetailedUpdate{
		VehicleID: v.ID,
		Lat:       v.Lat,
		Lng:       v.Lng,
		Speed:     v.Speed,
		Heading:   v.Heading,
		Fuel:      v.Fuel,
		Timestamp: v.UpdatedAt,
	})
}
