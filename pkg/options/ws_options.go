package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*WsOptions)(nil)

// WsOptions configures the realtime websocket channel.
type WsOptions struct {
	// SendBuffer is the per-client outbound message buffer. When a client's
	// buffer is full, further messages to that client are dropped.
	SendBuffer int `json:"send-buffer" mapstructure:"send-buffer"`

	// WriteTimeout bounds a single write to a client connection.
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`

	// PingInterval is the period between keepalive pings.
	PingInterval time.Duration `json:"ping-interval" mapstructure:"ping-interval"`

	// ReadLimit is the maximum inbound message size in bytes.
	ReadLimit int64 `json:"read-limit" mapstructure:"read-limit"`
}

// NewWsOptions creates a WsOptions object with default parameters.
func NewWsOptions() *WsOptions {
	return &WsOptions{
		SendBuffer:   64,
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
		ReadLimit:    1024,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *WsOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.SendBuffer <= 0 {
		errors = append(errors, fmt.Errorf("ws.send-buffer must be positive, got %d", o.SendBuffer))
	}
	if o.PingInterval <= 0 {
		errors = append(errors, fmt.Errorf("ws.ping-interval must be positive, got %s", o.PingInterval))
	}

	return errors
}

// AddFlags adds flags for WsOptions to the specified FlagSet.
func (o *WsOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.SendBuffer, "ws.send-buffer", o.SendBuffer, "Per-client outbound message buffer size.")
	fs.DurationVar(&o.WriteTimeout, "ws.write-timeout", o.WriteTimeout, "Bound on a single websocket write.")
	fs.DurationVar(&o.PingInterval, "ws.ping-interval", o.PingInterval, "Period between keepalive pings.")
	fs.Int64Var(&o.ReadLimit, "ws.read-limit", o.ReadLimit, "Maximum inbound websocket message size in bytes.")
}
