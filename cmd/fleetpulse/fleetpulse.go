package main

import (
	"os"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/api"
	"github.com/fleetpulse/fleetpulse/pkg/archiver"
	"github.com/fleetpulse/fleetpulse/pkg/events"
	"github.com/fleetpulse/fleetpulse/pkg/health"
	"github.com/fleetpulse/fleetpulse/pkg/locations"
	"github.com/fleetpulse/fleetpulse/pkg/telemetry"
	"github.com/fleetpulse/fleetpulse/pkg/trips"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("FLEETPULSE_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("FLEETPULSE_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "fleetpulse",
		Description: "Single binary of truth for FleetPulse - runs all the services",

		Commands: []*cli.Command{
			telemetry.RegisterCLI(),
			events.RegisterCLI(),
			trips.RegisterCLI(),
			locations.RegisterCLI(),
			health.RegisterCLI(),
			api.RegisterCLI(),
			archiver.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
