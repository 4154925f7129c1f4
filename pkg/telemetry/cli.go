package telemetry

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/consumer"
	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/fleetpulse/fleetpulse/pkg/elastic_client"
	"github.com/fleetpulse/fleetpulse/pkg/events"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/fleetpulse/fleetpulse/pkg/redis_client"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "telemetry",
		Usage: "Ingests the vehicle position sample stream",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the telemetry ingest consumers",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := elastic_client.Connect(false); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					CreateLastSampleCache()

					detector := events.NewDetector(events.LoadProfile(), events.DatabaseSampleLookup{}, events.NewRepository())

					redisConsumer := consumer.RedisConsumer{
						QueueName:       TelemetryQueueName,
						NumberConsumers: 5,
						BatchSize:       200,
						Timeout:         2 * time.Second,
						Consumer:        NewBatchConsumer(detector),
					}
					redisConsumer.Setup()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					elastic_client.WaitUntilQueueEmpty()

					return nil
				},
			},
			{
				Name:  "cleaner",
				Usage: "run the queue cleaner for the telemetry queue",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					StartCleaner()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
			{
				Name:  "publish-test",
				Usage: "publish a synthetic drive onto the telemetry queue",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "vehicle",
						Value: "FLEET:DEMO:1",
						Usage: "vehicle reference to publish samples for",
					},
				},
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					telemetryQueue, err := redis_client.QueueConnection.OpenQueue(TelemetryQueueName)
					if err != nil {
						log.Fatal().Err(err).Msg("Failed to open telemetry queue")
					}

					samples := generateTestDrive(c.String("vehicle"), time.Now().Add(-10*time.Minute))

					for _, sample := range samples {
						sampleJSON, _ := json.Marshal(sample)
						telemetryQueue.PublishBytes(sampleJSON)
					}

					pretty.Println(samples)

					log.Info().Int("samples", len(samples)).Msg("Published test drive")

					return nil
				},
			},
		},
	}
}

// generateTestDrive produces a short plausible drive: parked, ignition on,
// accelerate through an overspeed spike, slow down, park again
func generateTestDrive(vehicleRef string, start time.Time) []*fvdf.PositionSample {
	speeds := []float64{0, 0, 12, 38, 64, 96, 108, 82, 45, 3, 0, 0}

	longitude := -1.8904
	latitude := 52.4862
	odometer := 52100.0
	battery := 31.0

	var samples []*fvdf.PositionSample

	for i, speed := range speeds {
		ignitionOn := i >= 1 && i < len(speeds)-1

		distanceKM := speed * 30 / 3600
		odometer += distanceKM
		longitude += distanceKM / 90
		battery -= 0.4

		samples = append(samples, &fvdf.PositionSample{
			VehicleRef: vehicleRef,
			RecordedAt: start.Add(time.Duration(i) * 30 * time.Second),

			Location: fvdf.NewPoint(longitude, latitude),

			Speed:          speed,
			IgnitionOn:     ignitionOn,
			BatteryPercent: battery,
			OdometerTotal:  odometer,
			IsOnline:       true,

			DataSource: &fvdf.DataSource{
				Provider: "fleetpulse",
				Dataset:  "test-drive",
			},
		})
	}

	return samples
}
