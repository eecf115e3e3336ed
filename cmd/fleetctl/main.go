package main

import (
	"os"

	"github.com/logiflow-io/logiflow/cmd/fleetctl/app"
)

func main() {
	if err := app.NewFleetCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
