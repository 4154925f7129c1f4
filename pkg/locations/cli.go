package locations

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "locations",
		Usage: "Learns the places vehicles park at",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the periodic location clustering worker",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					worker := NewWorker()
					go worker.Run()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal

					worker.Stop()

					return nil
				},
			},
			{
				Name:  "backfill",
				Usage: "replay the full dwell history into clusters",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "vehicle",
						Usage: "restrict to a single vehicle reference",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					return NewWorker().Backfill(c.String("vehicle"))
				},
			},
		},
	}
}
