package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/logiflow-io/logiflow/cmd/geohub/app/options"
	"github.com/logiflow-io/logiflow/pkg/app"
	"github.com/logiflow-io/logiflow/pkg/log"
)

const (
	commandName = "geohub"
	commandDesc = `The LogiFlow geo hub maintains live vehicle state for a fleet, records a
bounded position history per vehicle, and simulates motion for active
vehicles. Updates arriving over HTTP or MQTT are validated, applied to the
state store, and fanned out to WebSocket subscribers and MQTT topics.`
)

func NewApp() *app.App {
	opts := options.NewServerOptions()
	application := app.NewApp(
		commandName,
		"Launch the LogiFlow geo hub server",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		log.Init(opts.Log)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		server, err := cfg.NewGeoHubServer()
		if err != nil {
			return fmt.Errorf("failed to create geo hub server: %w", err)
		}

		return server.Run(ctx)
	}
}
