package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*SimOptions)(nil)

// SimOptions configures the motion simulator.
type SimOptions struct {
	// Enabled toggles the periodic motion simulation.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// TickInterval is the period between simulation ticks.
	TickInterval time.Duration `json:"tick-interval" mapstructure:"tick-interval"`

	// SpeedJitter is the maximum speed variation applied per tick, in km/h.
	SpeedJitter float64 `json:"speed-jitter" mapstructure:"speed-jitter"`

	// FuelBurnPerTick is the fuel percentage consumed by a moving vehicle each tick.
	FuelBurnPerTick float64 `json:"fuel-burn-per-tick" mapstructure:"fuel-burn-per-tick"`

	// HeadingDrift is the maximum random heading wander per tick, in
	// degrees. Zero keeps a vehicle's heading constant until an external
	// update changes it.
	HeadingDrift float64 `json:"heading-drift" mapstructure:"heading-drift"`

	// VehicleTimeout bounds how long the simulator waits on a single vehicle
	// before skipping it for the tick.
	VehicleTimeout time.Duration `json:"vehicle-timeout" mapstructure:"vehicle-timeout"`
}

// NewSimOptions creates a SimOptions object with default parameters.
func NewSimOptions() *SimOptions {
	return &SimOptions{
		Enabled:         true,
		TickInterval:    5 * time.Second,
		SpeedJitter:     5.0,
		FuelBurnPerTick: 0.05,
		HeadingDrift:    0,
		VehicleTimeout:  time.Second,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *SimOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.TickInterval <= 0 {
		errors = append(errors, fmt.Errorf("sim.tick-interval must be positive, got %s", o.TickInterval))
	}
	if o.SpeedJitter < 0 {
		errors = append(errors, fmt.Errorf("sim.speed-jitter must not be negative, got %f", o.SpeedJitter))
	}
	if o.FuelBurnPerTick < 0 {
		errors = append(errors, fmt.Errorf("sim.fuel-burn-per-tick must not be negative, got %f", o.FuelBurnPerTick))
	}
	if o.HeadingDrift < 0 {
		errors = append(errors, fmt.Errorf("sim.heading-drift must not be negative, got %f", o.HeadingDrift))
	}

	return errors
}

// AddFlags adds flags for SimOptions to the specified FlagSet.
func (o *SimOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, "sim.enabled", o.Enabled, "Enable the periodic motion simulator.")
	fs.DurationVar(&o.TickInterval, "sim.tick-interval", o.TickInterval, "Period between simulation ticks.")
	fs.Float64Var(&o.SpeedJitter, "sim.speed-jitter", o.SpeedJitter, "Maximum per-tick speed variation in km/h.")
	fs.Float64Var(&o.FuelBurnPerTick, "sim.fuel-burn-per-tick", o.FuelBurnPerTick, "Fuel percentage consumed per tick while moving.")
	fs.Float64Var(&o.HeadingDrift, "sim.heading-drift", o.HeadingDrift, "Maximum random heading wander per tick in degrees (0 disables).")
	fs.DurationVar(&o.VehicleTimeout, "sim.vehicle-timeout", o.VehicleTimeout, "Per-vehicle work bound before the tick skips it.")
}
