package routes

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	iso8601 "github.com/senseyeio/duration"
)

// getTimeWindowQuery turns the within / from / to query parameters into an
// absolute time range. within is an ISO8601 duration looking back from now
// and wins over from / to when both are given
func getTimeWindowQuery(c *fiber.Ctx) (time.Time, time.Time, error) {
	var from time.Time
	var to time.Time

	if withinString := c.Query("within"); withinString != "" {
		within, err := iso8601.ParseISO8601(withinString)
		if err != nil {
			return from, to, errors.New("Parameter within should be an ISO8601 duration")
		}

		now := time.Now()
		from = now.Add(now.Sub(within.Shift(now)))
		to = now

		return from, to, nil
	}

	if fromString := c.Query("from"); fromString != "" {
		parsed, err := time.Parse(time.RFC3339, fromString)
		if err != nil {
			return from, to, errors.New("Parameter from should be an RFC3339 datetime")
		}
		from = parsed
	}

	if toString := c.Query("to"); toString != "" {
		parsed, err := time.Parse(time.RFC3339, toString)
		if err != nil {
			return from, to, errors.New("Parameter to should be an RFC3339 datetime")
		}
		to = parsed
	}

	return from, to, nil
}
