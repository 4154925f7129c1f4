package health

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/fleetpulse/fleetpulse/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// Worker re-scores every vehicle with samples on the day under consideration.
// RecomputeDays widens the sweep backwards so late-arriving telemetry still
// lands in a day's score - recomputation is idempotent since the day's
// identifier is stable
type Worker struct {
	RecomputeDays  int // 1 - 3
	OverspeedLimit float64

	SweepInterval time.Duration

	MaxConcurrency int

	StopChan chan struct{}
}

func NewWorker(overspeedLimit float64) *Worker {
	return &Worker{
		RecomputeDays:  1,
		OverspeedLimit: overspeedLimit,

		SweepInterval: time.Hour,

		MaxConcurrency: 8,

		StopChan: make(chan struct{}),
	}
}

func (w *Worker) Run() {
	log.Info().
		Int("recomputedays", w.RecomputeDays).
		Str("interval", w.SweepInterval.String()).
		Msg("Health scoring worker started")

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

// Sweep scores today and the previous RecomputeDays-1 days. Days are scored
// oldest first so each day's trend compares against a settled prior day
func (w *Worker) Sweep(now time.Time) {
	for dayOffset := w.RecomputeDays - 1; dayOffset >= 0; dayOffset-- {
		w.ScoreDay(util.StartOfDayUTC(now.AddDate(0, 0, -dayOffset)))
	}
}

func (w *Worker) ScoreDay(day time.Time) {
	startTime := time.Now()

	vehicleRefs, err := vehiclesWithSamplesOn(day)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list vehicles with samples")
		return
	}
	if len(vehicleRefs) == 0 {
		return
	}

	processPool := pool.NewWithResults[int]().WithMaxGoroutines(w.MaxConcurrency)

	for _, vehicleRef := range vehicleRefs {
		processPool.Go(func() int {
			if _, err := w.ScoreVehicleDay(vehicleRef, day); err != nil {
				log.Error().Err(err).Str("vehicle", vehicleRef).Msg("Failed to score vehicle")
				return 0
			}

			return 1
		})
	}

	scored := 0
	for _, result := range processPool.Wait() {
		scored += result
	}

	log.Info().
		Str("date", day.Format(fvdf.HealthDateFormat)).
		Int("vehicles", scored).
		Str("length", time.Since(startTime).String()).
		Msg("Health scoring sweep complete")
}

func (w *Worker) ScoreVehicleDay(vehicleRef string, day time.Time) (*fvdf.DailyHealthScore, error) {
	samples, err := loadDaySamples(vehicleRef, day)
	if err != nil {
		return nil, err
	}

	trips, err := loadDayTrips(vehicleRef, day)
	if err != nil {
		return nil, err
	}

	events, err := loadDayEvents(vehicleRef, day)
	if err != nil {
		return nil, err
	}

	features := BuildFeatures(vehicleRef, day, samples, trips, events, w.OverspeedLimit)

	prior, err := loadPriorScore(vehicleRef, day)
	if err != nil {
		return nil, err
	}

	score := Score(features, prior)

	err = backoff.Retry(func() error {
		return upsertScore(score)
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3))
	if err != nil {
		return nil, err
	}

	return score, nil
}
