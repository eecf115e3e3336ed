package service

import (
	"github.com/logiflow-io/logiflow/internal/geohub/core"
)

// Service implements the core business logic of the tracking engine.
// It orchestrates the state store, the history buffer and the fan-out port;
// it is the only component that mutates vehicle state.
type Service struct {
	vehicles core.VehicleRepository
	history  core.HistoryRepository
	notifier core.EventNotifier
}

// New creates a new core service.
// Dependency injection happens here.
func New(
	vehicles core.VehicleRepository,
	history core.HistoryRepository,
	notifier core.EventNotifier,
) *Service {
	return &Service{
		vehicles: vehicles,
		history:  history,
		notifier: notifier,
	}
}
