package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/logiflow-io/logiflow/internal/geohub/core"
	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
	"github.com/logiflow-io/logiflow/internal/pkg/metrics"
	"github.com/logiflow-io/logiflow/pkg/log"
	"github.com/logiflow-io/logiflow/pkg/options"
)

// kmPerDegree is the flat-earth conversion between kilometers and degrees
// of latitude/longitude. Acceptable at city scale, not geodesically exact.
const kmPerDegree = 111.0

// Simulator advances every active, moving vehicle once per tick using
// simple heading/speed kinematics, with bounded random speed jitter to
// emulate sensor noise.
type Simulator struct {
	opts     *options.SimOptions
	vehicles core.VehicleRepository
	history  core.HistoryRepository
	notifier core.EventNotifier

	// jitter returns a speed delta in km/h. Replaceable in tests.
	jitter func() float64

	// drift returns a heading delta in degrees. Replaceable in tests.
	drift func() float64

	// now returns the current time. Replaceable in tests.
	now func() time.Time
}

// New creates a Simulator over the given stores and fan-out port.
func New(opts *options.SimOptions, vehicles core.VehicleRepository, history core.HistoryRepository, notifier core.EventNotifier) *Simulator {
	s := &Simulator{
		opts:     opts,
		vehicles: vehicles,
		history:  history,
		notifier: notifier,
		now:      time.Now,
	}
	s.jitter = func() float64 {
		return (rand.Float64()*2 - 1) * opts.SpeedJitter
	}
	s.drift = func() float64 {
		return (rand.Float64()*2 - 1) * opts.HeadingDrift
	}
	return s
}

// Start runs the tick loop until the context is cancelled.
func (s *Simulator) Start(ctx context.Context) error {
	log.Info("Starting motion simulator", "interval", s.opts.TickInterval)

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Motion simulator stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick advances every eligible vehicle once. A per-vehicle failure is
// isolated: it is logged and the tick continues with the remaining fleet.
func (s *Simulator) Tick(ctx context.Context) {
	status := model.StatusActive
	vehicles, _, err := s.vehicles.List(ctx, model.VehicleFilter{Status: &status}, model.Page{})
	if err != nil {
		log.Error(err, "tick failed to list vehicles")
		return
	}

	for _, v := range vehicles {
		if v.Speed <= 0 {
			continue
		}
		if err := s.advance(ctx, v.ID); err != nil {
			metrics.SimVehicleErrorsTotal.WithLabelValues(errKind(err)).Inc()
			log.Warn("skipping vehicle for this tick", "vehicle", v.ID, "reason", err.Error())
		}
	}

	metrics.SimTicksTotal.Inc()
}

// advance applies one tick of kinematics to a single vehicle.
func (s *Simulator) advance(ctx context.Context, id string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic advancing vehicle: %v", r)
		}
	}()

	// Bound the wait on the vehicle's lock so a stuck vehicle cannot
	// stall the whole tick.
	tickCtx, cancel := context.WithTimeout(ctx, s.opts.VehicleTimeout)
	defer cancel()

	advanced := false
	now := s.now()
	tickSeconds := s.opts.TickInterval.Seconds()

	v, err := s.vehicles.TryApply(tickCtx, id, func(v *model.Vehicle) {
		// Eligibility can change between listing and locking; re-check
		// under the lock.
		if v.Status != model.StatusActive || v.Speed <= 0 {
			return
		}
		advanced = true

		distKm := v.Speed / 3600 * tickSeconds
		rad := v.Heading * math.Pi / 180

		v.Lat += distKm * math.Cos(rad) / kmPerDegree
		v.Lng += distKm * math.Sin(rad) / kmPerDegree
		v.Speed += s.jitter()
		if s.opts.HeadingDrift > 0 {
			v.Heading += s.drift()
		}
		v.Fuel -= s.opts.FuelBurnPerTick
		v.UpdatedAt = now
	})
	if err != nil {
		return err
	}
	if !advanced {
		return nil
	}

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

	metrics.UpdatesTotal.WithLabelValues("sim").Inc()
	return nil
}

func errKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, core.ErrBusy):
		return "busy"
	default:
		return "error"
	}
}
