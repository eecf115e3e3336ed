package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*StoreOptions)(nil)

// StoreOptions configures the in-memory state and history stores.
type StoreOptions struct {
	// HistoryCapacity is the maximum number of position samples retained per vehicle.
	HistoryCapacity int `json:"history-capacity" mapstructure:"history-capacity"`

	// SeedFile is a JSON file describing the initial fleet.
	SeedFile string `json:"seed-file" mapstructure:"seed-file"`

	// WatchSeed enables hot reloading of the seed file on change.
	WatchSeed bool `json:"watch-seed" mapstructure:"watch-seed"`
}

// NewStoreOptions creates a StoreOptions object with default parameters.
func NewStoreOptions() *StoreOptions {
	return &StoreOptions{
		HistoryCapacity: 100,
		WatchSeed:       false,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *StoreOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.HistoryCapacity <= 0 {
		errors = append(errors, fmt.Errorf("store.history-capacity must be positive, got %d", o.HistoryCapacity))
	}
	if o.WatchSeed && o.SeedFile == "" {
		errors = append(errors, fmt.Errorf("store.watch-seed requires store.seed-file"))
	}

	return errors
}

// AddFlags adds flags for StoreOptions to the specified FlagSet.
func (o *StoreOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.HistoryCapacity, "store.history-capacity", o.HistoryCapacity, "Maximum position samples retained per vehicle.")
	fs.StringVar(&o.SeedFile, "store.seed-file", o.SeedFile, "JSON file describing the initial fleet.")
	fs.BoolVar(&o.WatchSeed, "store.watch-seed", o.WatchSeed, "Reload the seed file when it changes on disk.")
}
