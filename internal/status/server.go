package status

import (
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

// NewApp builds the status server: GET /health for liveness checks and
// /metrics for Prometheus scrapes. Optional; the poller runs fine without it.
func NewApp(recorder *Recorder) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	prometheus := fiberprometheus.New("canvaspilot")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Get("/health", func(c *fiber.Ctx) error {
		failures := recorder.RecentFailures()

		var lastSuccess string
		if t := recorder.LastSuccess(); !t.IsZero() {
			lastSuccess = t.Format(time.RFC3339)
		}

		return c.JSON(fiber.Map{
			"status":          "healthy",
			"uptime_seconds":  int(recorder.Uptime().Seconds()),
			"last_success":    lastSuccess,
			"recent_failures": failures,
			"timestamp":       time.Now().Format(time.RFC3339),
		})
	})

	return app
}
