package httpapi

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/telemetry-gateway/internal/telemetry"
)

// RegisterRoutes wires the telemetry handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *telemetry.Service) {
	app.Get("/telemetry", func(c *fiber.Ctx) error {
		q := parseTelemetryQuery(c)

		reading, err := service.ByLocation(c.UserContext(), q)
		if err != nil {
			return err
		}
		return c.JSON(reading)
	})

	app.Get("/telemetry/:sensor_id", func(c *fiber.Ctx) error {
		lookup := telemetry.SensorLookup{SensorID: sensorIDParam(c)}

		reading, err := service.BySensorID(c.UserContext(), lookup)
		if err != nil {
			return err
		}
		return c.JSON(reading)
	})
}

// parseTelemetryQuery reads type and location; validation happens in the service.
func parseTelemetryQuery(c *fiber.Ctx) telemetry.Query {
	return telemetry.Query{
		Type:     telemetry.Type(c.Query("type")),
		Location: c.Query("location"),
	}
}

func sensorIDParam(c *fiber.Ctx) string {
	raw := c.Params("sensor_id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}
