package routes

import (
	"strconv"

	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator"
	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator/query"
	"github.com/fleetpulse/fleetpulse/pkg/events"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

func EventsRouter(router fiber.Router) {
	router.Get("/", listEvents)
	router.Get("/:identifier", getEvent)
	router.Post("/:identifier/acknowledge", acknowledgeEvent)
}

func listEvents(c *fiber.Ctx) error {
	from, to, err := getTimeWindowQuery(c)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	eventsQuery := query.Events{
		VehicleRef: c.Query("vehicle"),
		EventType:  fvdf.EventType(c.Query("type")),
		Severity:   fvdf.EventSeverity(c.Query("severity")),

		From: from,
		To:   to,
	}

	if acknowledgedString := c.Query("acknowledged"); acknowledgedString != "" {
		acknowledged, parseErr := strconv.ParseBool(acknowledgedString)
		if parseErr != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter acknowledged should be a boolean",
			})
		}

		eventsQuery.Acknowledged = &acknowledged
	}

	matchingEvents, err := dataaggregator.Lookup[[]*fvdf.Event](eventsQuery)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	reducedEvents, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, matchingEvents)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Events",
		})
	}

	return c.JSON(reducedEvents)
}

func getEvent(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	event, err := dataaggregator.Lookup[*fvdf.Event](query.Event{
		PrimaryIdentifier: identifier,
	})

	if err != nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	reducedEvent, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, event)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Event",
		})
	}

	return c.JSON(reducedEvent)
}

func acknowledgeEvent(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	eventRepository := events.NewRepository()
	event, err := eventRepository.Acknowledge(identifier)

	if err != nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	reducedEvent, marshalErr := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, event)

	if marshalErr != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Event",
		})
	}

	return c.JSON(reducedEvent)
}
