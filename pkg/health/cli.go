package health

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/fleetpulse/fleetpulse/pkg/events"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/fleetpulse/fleetpulse/pkg/util"
	"github.com/kr/pretty"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Scores daily vehicle health",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the periodic health scoring worker",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "recompute-days",
						Value: 1,
						Usage: "how many recent days each sweep re-scores (1-3)",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					recomputeDays := c.Int("recompute-days")
					if recomputeDays < 1 || recomputeDays > 3 {
						return fmt.Errorf("recompute-days must be between 1 and 3")
					}

					worker := NewWorker(events.LoadProfile().Thresholds.Overspeed)
					worker.RecomputeDays = recomputeDays
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
				Name:  "score",
				Usage: "score one day and exit",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "day to score (YYYY-MM-DD), defaults to today",
					},
					&cli.StringFlag{
						Name:  "vehicle",
						Usage: "score a single vehicle and print the result",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					day := util.StartOfDayUTC(time.Now())
					if c.String("date") != "" {
						parsed, err := time.Parse(fvdf.HealthDateFormat, c.String("date"))
						if err != nil {
							return fmt.Errorf("invalid date: %w", err)
						}

						day = util.StartOfDayUTC(parsed)
					}

					worker := NewWorker(events.LoadProfile().Thresholds.Overspeed)

					if vehicleRef := c.String("vehicle"); vehicleRef != "" {
						score, err := worker.ScoreVehicleDay(vehicleRef, day)
						if err != nil {
							return err
						}

						pretty.Println(score)

						return nil
					}

					worker.ScoreDay(day)

					return nil
				},
			},
		},
	}
}
