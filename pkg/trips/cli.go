package trips

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "trips",
		Usage: "Segments position samples into trips",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the periodic trip segmentation worker",
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
				Usage: "re-segment stored samples into trips",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "vehicle",
						Usage: "restrict to a single vehicle reference",
					},
					&cli.StringFlag{
						Name:  "method",
						Usage: "restrict to a single segmentation method (ignition, idle_gap)",
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "start of the range (RFC3339), defaults to the full history",
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "end of the range (RFC3339), defaults to now",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					var from time.Time
					to := time.Now()

					if c.String("from") != "" {
						parsed, err := time.Parse(time.RFC3339, c.String("from"))
						if err != nil {
							return fmt.Errorf("invalid from timestamp: %w", err)
						}

						from = parsed
					}
					if c.String("to") != "" {
						parsed, err := time.Parse(time.RFC3339, c.String("to"))
						if err != nil {
							return fmt.Errorf("invalid to timestamp: %w", err)
						}

						to = parsed
					}

					worker := NewWorker()

					if method := c.String("method"); method != "" {
						strategy := StrategyByName(method)
						if strategy == nil {
							return fmt.Errorf("unknown segmentation method %s", method)
						}

						worker.Strategies = []TripSegmentationStrategy{strategy}
					}

					return worker.Backfill(c.String("vehicle"), from, to)
				},
			},
		},
	}
}
