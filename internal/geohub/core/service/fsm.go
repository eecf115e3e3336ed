package service

import (
	"context"
	"errors"

	"github.com/looplab/fsm"

	"github.com/logiflow-io/logiflow/internal/geohub/core"
	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
	utilfsm "github.com/logiflow-io/logiflow/internal/pkg/util/fsm"
	"github.com/logiflow-io/logiflow/pkg/log"
)

// Status transition events.
const (
	EventActivate    = "event_activate"
	EventIdle        = "event_idle"
	EventMaintenance = "event_maintenance"
	EventOffline     = "event_offline"
)

// eventForStatus maps a desired status to the transition event reaching it.
var eventForStatus = map[model.VehicleStatus]string{
	model.StatusActive:      EventActivate,
	model.StatusIdle:        EventIdle,
	model.StatusMaintenance: EventMaintenance,
	model.StatusOffline:     EventOffline,
}

// newStatusFSM builds the operational-status state machine for a vehicle
// currently in the given status.
//
// A vehicle in maintenance must pass through idle before going active
// again; any state may drop offline, and offline vehicles come back idle
// or go straight to maintenance.
func newStatusFSM(current model.VehicleStatus) *fsm.FSM {
	return fsm.NewFSM(
		string(current),
		fsm.Events{
			{Name: EventActivate, Src: []string{string(model.StatusIdle)}, Dst: string(model.StatusActive)},
			{Name: EventIdle, Src: []string{string(model.StatusActive), string(model.StatusMaintenance), string(model.StatusOffline)}, Dst: string(model.StatusIdle)},
			{Name: EventMaintenance, Src: []string{string(model.StatusIdle), string(model.StatusOffline)}, Dst: string(model.StatusMaintenance)},
			{Name: EventOffline, Src: []string{string(model.StatusActive), string(model.StatusIdle), string(model.StatusMaintenance)}, Dst: string(model.StatusOffline)},
		},
		fsm.Callbacks{
			"enter_state": utilfsm.WrapEvent(func(ctx context.Context, e *fsm.Event) error {
				log.Debug("vehicle status transition", "from", e.Src, "to", e.Dst)
				return nil
			}),
		},
	)
}

// transitionStatus checks that moving from current to desired is a legal
// transition. Illegal transitions surface as validation errors.
func transitionStatus(ctx context.Context, current, desired model.VehicleStatus) error {
	if current == desired {
		return nil
	}

	event, ok := eventForStatus[desired]
	if !ok {
		return core.NewValidationError("unknown status %q", desired)
	}

	machine := newStatusFSM(current)
	if err := machine.Event(ctx, event); err != nil {
		var invalid fsm.InvalidEventError
		if errors.As(err, &invalid) {
			return core.NewValidationError("cannot transition from %q to %q", current, desired)
		}
		return err
	}

	return nil
}
