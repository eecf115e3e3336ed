package notifier

import (
	"context"

	"github.com/logiflow-io/logiflow/internal/geohub/core"
	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
)

// Fanout multiplexes fan-out events to several notifier backends, e.g. the
// realtime hub plus the MQTT mirror.
type Fanout struct {
	targets []core.EventNotifier
}

var _ core.EventNotifier = (*Fanout)(nil)

// NewFanout combines the given notifiers into one.
func NewFanout(targets ...core.EventNotifier) *Fanout {
	return &Fanout{targets: targets}
}

func (f *Fanout) VehicleUpdated(ctx context.Context, v *model.Vehicle) {
	for _, t := range f.targets {
		t.VehicleUpdated(ctx, v)
	}
}

func (f *Fanout) VehicleDetailed(ctx context.Context, upd *model.DetailedUpdate) {
	for _, t := range f.targets {
		t.VehicleDetailed(ctx, upd)
	}
}

func (f *Fanout) VehicleRemoved(ctx context.Context, vehicleID string) {
	for _, t := range f.targets {
		t.VehicleRemoved(ctx, vehicleID)
	}
}
