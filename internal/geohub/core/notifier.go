package core

import (
	"context"

	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
)

// EventNotifier is the fan-out port. Every successful mutation is handed to
// it; delivery is at-most-once and best-effort. Implementations must never
// block the caller on a slow subscriber.
type EventNotifier interface {
	// VehicleUpdated publishes a general update to every connected subscriber.
	VehicleUpdated(ctx context.Context, v *model.Vehicle)

	// VehicleDetailed publishes a detailed update to subscribers of that
	// specific vehicle.
	VehicleDetailed(ctx context.Context, upd *model.DetailedUpdate)

	// VehicleRemoved tells subscribers a vehicle left the fleet.
	VehicleRemoved(ctx context.Context, vehicleID string)
}
