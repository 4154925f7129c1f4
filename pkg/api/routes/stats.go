package routes

import (
	"github.com/fleetpulse/fleetpulse/pkg/api/stats"
	"github.com/gofiber/fiber/v2"
)

func Stats(c *fiber.Ctx) error {
	return c.JSON(stats.CurrentFleetStats)
}
