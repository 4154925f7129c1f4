package api

import (
	"github.com/fleetpulse/fleetpulse/pkg/api/stats"
	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator/global"
	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					global.Setup()

					go stats.UpdateFleetStats()

					return SetupServer(c.String("listen"))
				},
			},
		},
	}
}
