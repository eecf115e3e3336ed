package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/logiflow-io/logiflow/cmd/geohub/app"
)

func main() {
	app.NewApp().Run()
}
