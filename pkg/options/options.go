package options

import (
	"fmt"
	"net"

	"github.com/spf13/pflag"
)

// IOptions is implemented by every option struct so that command apps can
// aggregate validation and flag binding uniformly.
type IOptions interface {
	// Validate checks the option values and returns every problem found.
	Validate() []error

	// AddFlags binds the options to the given flag set.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}

// ValidateAddress checks that addr is a valid "host:port" bind address.
func ValidateAddress(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid bind address %q: %w", addr, err)
	}
	return nil
}
