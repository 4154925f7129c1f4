package events

import (
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/kr/pretty"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Detection rules over the vehicle telemetry stream",
		Subcommands: []*cli.Command{
			{
				Name:  "test-detect",
				Usage: "run the detection rules over a synthetic sample pair",
				Action: func(c *cli.Context) error {
					detector := NewDetector(LoadProfile(), nil, nil)

					recordedAt := time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

					previous := &fvdf.PositionSample{
						VehicleRef:     "FLEET:DEMO:1",
						RecordedAt:     recordedAt,
						Location:       fvdf.NewPoint(-0.141944, 51.514797),
						Speed:          92,
						IgnitionOn:     true,
						BatteryPercent: 24,
						OdometerTotal:  48212.4,
						IsOnline:       true,
					}

					sample := &fvdf.PositionSample{
						VehicleRef:     "FLEET:DEMO:1",
						RecordedAt:     recordedAt.Add(30 * time.Second),
						Location:       fvdf.NewPoint(-0.138912, 51.516102),
						Speed:          126,
						IgnitionOn:     true,
						BatteryPercent: 18,
						OdometerTotal:  48213.5,
						IsOnline:       true,
					}

					candidates := detector.Evaluate(previous, sample)

					pretty.Println(candidates)

					return nil
				},
			},
		},
	}
}
