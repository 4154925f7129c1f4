package api

import (
	"github.com/fleetpulse/fleetpulse/pkg/api/routes"
	"github.com/fleetpulse/fleetpulse/pkg/http_server"
	"github.com/gofiber/fiber/v2"
)

func SetupServer(listen string) error {
	webApp := fiber.New()
	webApp.Use(http_server.NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.EventsRouter(group.Group("/events"))

	routes.TripsRouter(group.Group("/trips"))

	routes.LocationsRouter(group.Group("/locations"))

	routes.HealthRouter(group.Group("/health"))

	group.Get("stats", routes.Stats)

	return webApp.Listen(listen)
}
