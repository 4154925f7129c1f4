package locations

import (
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// Worker folds completed dwells into learned location clusters. Each sweep
// picks up vehicles that finished a trip or idled recently, replays their
// dwell history against the visits ledger (so already-merged dwells are
// skipped) and reclassifies every cluster the vehicle owns
type Worker struct {
	MergeRadiusMetres float64
	MinimumDwell      time.Duration

	SweepInterval time.Duration
	Lookback      time.Duration

	MaxConcurrency int

	StopChan chan struct{}
}

func NewWorker() *Worker {
	return &Worker{
		MergeRadiusMetres: DefaultMergeRadiusMetres,
		MinimumDwell:      MinimumDwell,

		SweepInterval: 15 * time.Minute,
		Lookback:      20 * time.Minute,

		MaxConcurrency: 8,

		StopChan: make(chan struct{}),
	}
}

func (w *Worker) Run() {
	log.Info().
		Str("interval", w.SweepInterval.String()).
		Float64("mergeradius", w.MergeRadiusMetres).
		Msg("Location clustering worker started")

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

	vehicleRefs, err := vehiclesWithStops(now.Add(-w.Lookback), now)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list vehicles with recent stops")
		return
	}
	if len(vehicleRefs) == 0 {
		return
	}

	clusterCount := w.processVehicles(vehicleRefs)

	log.Info().
		Int("vehicles", len(vehicleRefs)).
		Int("clusters", clusterCount).
		Str("length", time.Since(startTime).String()).
		Msg("Location clustering sweep complete")
}

// Backfill replays the full dwell history. An empty vehicleRef means every
// vehicle that has ever completed a trip or idled
func (w *Worker) Backfill(vehicleRef string) error {
	startTime := time.Now()

	vehicleRefs := []string{vehicleRef}
	if vehicleRef == "" {
		var err error

		vehicleRefs, err = vehiclesWithStops(time.Time{}, time.Now())
		if err != nil {
			return err
		}
	}

	clusterCount := w.processVehicles(vehicleRefs)

	log.Info().
		Int("vehicles", len(vehicleRefs)).
		Int("clusters", clusterCount).
		Str("length", time.Since(startTime).String()).
		Msg("Location clustering backfill complete")

	return nil
}

func (w *Worker) processVehicles(vehicleRefs []string) int {
	processPool := pool.NewWithResults[int]().WithMaxGoroutines(w.MaxConcurrency)

	for _, vehicleRef := range vehicleRefs {
		processPool.Go(func() int {
			clusterCount, err := w.processVehicle(vehicleRef)
			if err != nil {
				log.Error().Err(err).Str("vehicle", vehicleRef).Msg("Failed to cluster locations")
			}

			return clusterCount
		})
	}

	totalClusters := 0
	for _, clusterCount := range processPool.Wait() {
		totalClusters += clusterCount
	}

	return totalClusters
}

func (w *Worker) processVehicle(vehicleRef string) (int, error) {
	trips, err := loadIgnitionTrips(vehicleRef)
	if err != nil {
		return 0, err
	}

	dwells := DwellsFromTrips(trips, w.MinimumDwell)

	idleEvents, err := loadIdleEvents(vehicleRef)
	if err != nil {
		return 0, err
	}
	for _, event := range idleEvents {
		if dwell, ok := DwellFromIdleEvent(event); ok {
			dwells = append(dwells, dwell)
		}
	}

	if len(dwells) == 0 {
		return 0, nil
	}

	sort.Slice(dwells, func(i, j int) bool {
		return dwells[i].Arrival.Before(dwells[j].Arrival)
	})

	clusters, err := loadClusters(vehicleRef)
	if err != nil {
		return 0, err
	}

	touched := map[string]*fvdf.LearnedLocation{}

	var claimErr error
	for _, dwell := range dwells {
		claimed, err := claimVisit(dwell)
		if err != nil {
			claimErr = err
			break
		}
		if !claimed {
			continue
		}

		cluster, created := Merge(clusters, dwell, w.MergeRadiusMetres)
		if created {
			clusters = append(clusters, cluster)
		}

		touched[cluster.PrimaryIdentifier] = cluster
	}

	// Reclassification runs over the whole set, not just merged clusters - a
	// type can flip purely because the evidence threshold was crossed
	for _, cluster := range clusters {
		locationType := Classify(cluster)
		if locationType != cluster.LocationType {
			cluster.LocationType = locationType
			touched[cluster.PrimaryIdentifier] = cluster
		}
	}

	if len(touched) > 0 {
		err := backoff.Retry(func() error {
			return upsertClusters(touched)
		}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3))
		if err != nil {
			return 0, err
		}
	}

	return len(touched), claimErr
}
