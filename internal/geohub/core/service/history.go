package service

import (
	"context"

	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
)

// DefaultHistoryLimit bounds history queries that do not name a limit.
const DefaultHistoryLimit = 20

// History returns a vehicle's recorded positions, newest first. A vehicle
// with no recorded history yields an empty slice, not an error.
func (s *Service) History(ctx context.Context, id string, q model.HistoryQuery) ([]model.PositionSample, error) {
	// Verify the vehicle exists so an unknown id surfaces as not-found at
	// the detail endpoint while an empty buffer stays a normal result.
	if _, err := s.vehicles.Get(ctx, id); err != nil {
		return nil, err
	}

	if q.Limit <= 0 {
		q.Limit = DefaultHistoryLimit
	}

	return s.history.Query(ctx, id, q), nil
}
