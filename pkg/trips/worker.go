package trips

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// Worker periodically re-segments recent samples into trips. It runs every
// SweepInterval and considers any vehicle that reported within Lookback, but
// re-processes a much wider ResegmentSpan per vehicle so a trip that was
// already underway before this sweep still segments from its real start.
// Overlapping stored trips are deleted before the fresh set is upserted
type Worker struct {
	Strategies []TripSegmentationStrategy

	SweepInterval time.Duration
	Lookback      time.Duration
	ResegmentSpan time.Duration

	MaxConcurrency int

	StopChan chan struct{}
}

func NewWorker() *Worker {
	return &Worker{
		Strategies: []TripSegmentationStrategy{
			IgnitionStrategy{},
			IdleGapStrategy{},
		},

		SweepInterval: 15 * time.Minute,
		Lookback:      20 * time.Minute,
		ResegmentSpan: 6 * time.Hour,

		MaxConcurrency: 8,

		StopChan: make(chan struct{}),
	}
}

func (w *Worker) Run() {
	log.Info().
		Str("interval", w.SweepInterval.String()).
		Str("lookback", w.Lookback.String()).
		Msg("Trip segmentation worker started")

	w.Sweep(time.Now())

	ticker := time.NewTicker(w.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep(time.Now())
		case <-w.StopChan:
			return
		}
	}
}

func (w *Worker) Stop() {
	close(w.StopChan)
}

func (w *Worker) Sweep(now time.Time) {
	startTime := time.Now()

	vehicleRefs, err := vehiclesWithSamples(now.Add(-w.Lookback), now)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list vehicles with recent samples")
		return
	}
	if len(vehicleRefs) == 0 {
		return
	}

	tripCount := w.processVehicles(vehicleRefs, now.Add(-w.ResegmentSpan), now)

	log.Info().
		Int("vehicles", len(vehicleRefs)).
		Int("trips", tripCount).
		Str("length", time.Since(startTime).String()).
		Msg("Trip segmentation sweep complete")
}

// Backfill re-segments stored history. A zero from means the full history, an
// empty vehicleRef means every vehicle with samples in the range
func (w *Worker) Backfill(vehicleRef string, from time.Time, to time.Time) error {
	startTime := time.Now()

	vehicleRefs := []string{vehicleRef}
	if vehicleRef == "" {
		var err error

		vehicleRefs, err = vehiclesWithSamples(from, to)
		if err != nil {
			return err
		}
	}

	tripCount := w.processVehicles(vehicleRefs, from, to)

	log.Info().
		Int("vehicles", len(vehicleRefs)).
		Int("trips", tripCount).
		Str("length", time.Since(startTime).String()).
		Msg("Trip backfill complete")

	return nil
}

func (w *Worker) processVehicles(vehicleRefs []string, from time.Time, to time.Time) int {
	processPool := pool.NewWithResults[int]().WithMaxGoroutines(w.MaxConcurrency)

	for _, vehicleRef := range vehicleRefs {
		processPool.Go(func() int {
			tripCount, err := w.processVehicle(vehicleRef, from, to)
			if err != nil {
				log.Error().Err(err).Str("vehicle", vehicleRef).Msg("Failed to segment trips")
				return 0
			}

			return tripCount
		})
	}

	totalTrips := 0
	for _, tripCount := range processPool.Wait() {
		totalTrips += tripCount
	}

	return totalTrips
}

func (w *Worker) processVehicle(vehicleRef string, from time.Time, to time.Time) (int, error) {
	samples, err := loadSamples(vehicleRef, from, to)
	if err != nil {
		return 0, err
	}
	if len(samples) < 2 {
		return 0, nil
	}

	tripCount := 0

	for _, strategy := range w.Strategies {
		trips := strategy.Segment(samples)

		err := backoff.Retry(func() error {
			return replaceTrips(vehicleRef, strategy.Name(), from, trips)
		}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3))
		if err != nil {
			return tripCount, err
		}

		tripCount += len(trips)
	}

	return tripCount, nil
}

// StrategyByName returns the strategy registered under the given method name
func StrategyByName(name string) TripSegmentationStrategy {
	switch fvdf.SegmentationMethod(name) {
	case fvdf.SegmentationMethodIgnition:
		return IgnitionStrategy{}
	case fvdf.SegmentationMethodIdleGap:
		return IdleGapStrategy{}
	}

	return nil
}
