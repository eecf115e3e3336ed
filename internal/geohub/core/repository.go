package core

import (
	"context"

	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
)

// Mutation is applied to a vehicle's state while its per-vehicle lock is
// held. The store normalizes the result before releasing the lock, so a
// mutation never has to clamp anything itself.
type Mutation func(v *model.Vehicle)

// VehicleRepository defines the interface for the authoritative vehicle
// state store. Mutations are serialized per vehicle identifier; operations
// on different vehicles may proceed in parallel.
type VehicleRepository interface {
	// Get retrieves a vehicle by its ID. Returns ErrNotFound when unknown.
	Get(ctx context.Context, id string) (*model.Vehicle, error)

	// List returns vehicles matching the filter, ordered most-recently-updated
	// first, paginated by page. The second return value is the total number of
	// matches before pagination.
	List(ctx context.Context, filter model.VehicleFilter, page model.Page) ([]*model.Vehicle, int, error)

	// Apply runs the mutation under the vehicle's lock and returns the
	// resulting state. It is the only mutation entry point.
	Apply(ctx context.Context, id string, mutate Mutation) (*model.Vehicle, error)

	// TryApply is Apply with a bounded wait on the vehicle's lock; it returns
	// ErrBusy instead of blocking when the vehicle is contended.
	TryApply(ctx context.Context, id string, mutate Mutation) (*model.Vehicle, error)

	// Put inserts or replaces a vehicle. Used by the provisioning path only.
	Put(ctx context.Context, v *model.Vehicle) error

	// Remove drops a vehicle from the store. Returns ErrNotFound when unknown.
	Remove(ctx context.Context, id string) error
}

// HistoryRepository defines the interface for the bounded per-vehicle
// position history. Absence of history is not exceptional: querying an
// unknown vehicle yields an empty sequence.
type HistoryRepository interface {
	// Append inserts the sample at the front of the vehicle's buffer,
	// evicting the oldest entry when the buffer is at capacity.
	Append(ctx context.Context, vehicleID string, sample model.PositionSample)

	// Query returns samples newest first, filtered by the inclusive time
	// bounds and truncated to the limit.
	Query(ctx context.Context, vehicleID string, q model.HistoryQuery) []model.PositionSample

	// Remove drops the vehicle's entire buffer.
	Remove(ctx context.Context, vehicleID string)
}
