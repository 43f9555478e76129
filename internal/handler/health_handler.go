package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/codecontest-api/internal/config"
	"github.com/noah-isme/codecontest-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// StatusResponse reports dependency reachability on the root route.
type StatusResponse struct {
	Message string            `json:"message"`
	Status  map[string]string `json:"status"`
}

// Pinger checks the primary store.
type Pinger func(ctx context.Context) error

// AvailabilityReporter tells whether the analyzer is configured.
type AvailabilityReporter interface {
	Available() bool
}

// HealthCheck returns a handler that reports application health information.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}

// Status pings the store and reports whether plagiarism analysis runs against a model or the mock.
func Status(cfg config.Config, ping Pinger, analyzer AvailabilityReporter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		database := "connected"
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				database = "disconnected: " + err.Error()
			}
		}

		ai := "unavailable"
		if analyzer != nil && analyzer.Available() {
			ai = "available"
		}

		return utils.SendSuccess(c, "service status", StatusResponse{
			Message: cfg.AppName + " coding contest API with plagiarism detection",
			Status: map[string]string{
				"database": database,
				"ai":       ai,
			},
		})
	}
}
