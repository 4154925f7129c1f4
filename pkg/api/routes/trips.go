package routes

import (
	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator"
	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator/query"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"golang.org/x/exp/slices"
)

func TripsRouter(router fiber.Router) {
	router.Get("/", listTrips)
	router.Get("/:identifier", getTrip)
}

func listTrips(c *fiber.Ctx) error {
	from, to, err := getTimeWindowQuery(c)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	method := fvdf.SegmentationMethod(c.Query("method"))
	if method != "" && !slices.Contains([]fvdf.SegmentationMethod{
		fvdf.SegmentationMethodIgnition, fvdf.SegmentationMethodIdleGap,
	}, method) {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter method should be one of ignition, idle_gap",
		})
	}

	trips, err := dataaggregator.Lookup[[]*fvdf.Trip](query.Trips{
		VehicleRef:         c.Query("vehicle"),
		SegmentationMethod: method,

		From: from,
		To:   to,
	})

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	reducedTrips, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, trips)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Trips",
		})
	}

	return c.JSON(reducedTrips)
}

func getTrip(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	trip, err := dataaggregator.Lookup[*fvdf.Trip](query.Trip{
		PrimaryIdentifier: identifier,
	})

	if err != nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	reducedTrip, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, trip)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Trip",
		})
	}

	return c.JSON(reducedTrip)
}
