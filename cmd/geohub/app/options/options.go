package options

import (
	"errors"

	"github.com/logiflow-io/logiflow/internal/geohub"
	"github.com/logiflow-io/logiflow/pkg/app"
	"github.com/logiflow-io/logiflow/pkg/log"
	"github.com/logiflow-io/logiflow/pkg/options"
)

// ServerOptions aggregates every configuration section of the geo hub server.
type ServerOptions struct {
	HttpOptions  *options.HttpOptions  `json:"http" mapstructure:"http"`
	WsOptions    *options.WsOptions    `json:"ws" mapstructure:"ws"`
	MqttOptions  *options.MqttOptions  `json:"mqtt" mapstructure:"mqtt"`
	SimOptions   *options.SimOptions   `json:"sim" mapstructure:"sim"`
	StoreOptions *options.StoreOptions `json:"store" mapstructure:"store"`
	Log          *log.Options          `json:"log" mapstructure:"log"`
}

var _ app.NamedFlagSetOptions = (*ServerOptions)(nil)

// NewServerOptions creates a ServerOptions object with default parameters.
func NewServerOptions() *ServerOptions {
	o := &ServerOptions{
		HttpOptions:  options.NewHttpOptions(),
		WsOptions:    options.NewWsOptions(),
		MqttOptions:  options.NewMqttOptions(),
		SimOptions:   options.NewSimOptions(),
		StoreOptions: options.NewStoreOptions(),
		Log:          log.NewOptions(),
	}

	return o
}

func (o *ServerOptions) Flags() app.NamedFlagSets {
	fss := app.NamedFlagSets{}
	o.HttpOptions.AddFlags(fss.FlagSet("http"))
	o.WsOptions.AddFlags(fss.FlagSet("ws"))
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.SimOptions.AddFlags(fss.FlagSet("sim"))
	o.StoreOptions.AddFlags(fss.FlagSet("store"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *ServerOptions) Complete() error {
	return nil
}

func (o *ServerOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.WsOptions.Validate()...)
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.SimOptions.Validate()...)
	errs = append(errs, o.StoreOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return errors.Join(errs...)
}

func (o *ServerOptions) Config() (*geohub.Config, error) {
	return &geohub.Config{
		HttpOptions:  o.HttpOptions,
		WsOptions:    o.WsOptions,
		MqttOptions:  o.MqttOptions,
		SimOptions:   o.SimOptions,
		StoreOptions: o.StoreOptions,
	}, nil
}
