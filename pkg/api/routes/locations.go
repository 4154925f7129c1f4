package routes

import (
	"strconv"

	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator"
	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator/query"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

const defaultNearRadiusMetres = 250.0

func LocationsRouter(router fiber.Router) {
	router.Get("/", listLocations)
	// Registered ahead of the identifier route so near is not swallowed
	// by the parameter match
	router.Get("/near", listLocationsNear)
	router.Get("/:identifier", getLocation)
}

func listLocations(c *fiber.Ctx) error {
	vehicleRef := c.Query("vehicle")

	if vehicleRef == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "A filter must be applied to the request",
		})
	}

	locationsQuery := query.LearnedLocations{
		VehicleRef:   vehicleRef,
		LocationType: fvdf.LocationType(c.Query("type")),
	}

	if minimumVisitsString := c.Query("min_visits"); minimumVisitsString != "" {
		minimumVisits, err := strconv.Atoi(minimumVisitsString)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter min_visits should be an integer",
			})
		}

		locationsQuery.MinimumVisits = minimumVisits
	}

	locations, err := dataaggregator.Lookup[[]*fvdf.LearnedLocation](locationsQuery)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	reducedLocations, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, locations)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Learned Locations",
		})
	}

	return c.JSON(reducedLocations)
}

func listLocationsNear(c *fiber.Ctx) error {
	latitude, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	longitude, lonErr := strconv.ParseFloat(c.Query("lon"), 64)

	if latErr != nil || lonErr != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameters lat and lon should be decimal degrees",
		})
	}

	radius := defaultNearRadiusMetres
	if radiusString := c.Query("radius"); radiusString != "" {
		parsed, err := strconv.ParseFloat(radiusString, 64)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter radius should be in metres",
			})
		}

		radius = parsed
	}

	locations, err := dataaggregator.Lookup[[]*fvdf.LearnedLocation](query.LearnedLocationsNear{
		VehicleRef: c.Query("vehicle"),

		Longitude: longitude,
		Latitude:  latitude,

		MaxDistanceMetres: radius,
	})

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	reducedLocations, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, locations)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Learned Locations",
		})
	}

	return c.JSON(reducedLocations)
}

func getLocation(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	location, err := dataaggregator.Lookup[*fvdf.LearnedLocation](query.LearnedLocation{
		PrimaryIdentifier: identifier,
	})

	if err != nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	reducedLocation, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, location)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Learned Location",
		})
	}

	return c.JSON(reducedLocation)
}
