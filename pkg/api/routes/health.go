package routes

import (
	"strconv"

	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator"
	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator/query"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

func HealthRouter(router fiber.Router) {
	router.Get("/:vehicle", getVehicleHealth)
}

func getVehicleHealth(c *fiber.Ctx) error {
	vehicleRef := c.Params("vehicle")

	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter days should be an integer",
		})
	}

	scores, err := dataaggregator.Lookup[[]*fvdf.DailyHealthScore](query.DailyHealthScores{
		VehicleRef: vehicleRef,
		Days:       days,
	})

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if len(scores) == 0 {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find any Daily Health Scores matching Vehicle",
		})
	}

	// Detailed group carries the per-component breakdown
	reducedScores, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, scores)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Daily Health Scores",
		})
	}

	return c.JSON(reducedScores)
}
