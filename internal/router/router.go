package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/codecontest-api/internal/config"
	"github.com/noah-isme/codecontest-api/internal/handler"
	"github.com/noah-isme/codecontest-api/internal/middleware"
	"github.com/noah-isme/codecontest-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	ContestHandler    *handler.ContestHandler
	QuestionHandler   *handler.QuestionHandler
	SubmissionHandler *handler.SubmissionHandler
	PlagiarismHandler *handler.PlagiarismHandler
	JWTMiddleware     fiber.Handler
	StorePing         handler.Pinger
	Analyzer          handler.AvailabilityReporter
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	app.Get("/", handler.Status(cfg, deps.StorePing, deps.Analyzer))
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get(middleware.MetricsPath, observability.MetricsHandler())

	auth := deps.JWTMiddleware
	if auth == nil {
		auth = func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication unavailable")
		}
	}

	limit := func(identifier string) fiber.Handler {
		if cfg.RateLimitMax <= 0 {
			return nil
		}
		return middleware.RateLimit(identifier, cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(app.Group("/auth"), auth)
	}
	if deps.ContestHandler != nil {
		deps.ContestHandler.Register(app.Group("/contest"), auth)
	}
	if deps.QuestionHandler != nil {
		deps.QuestionHandler.Register(app.Group("/questions"), auth)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(app.Group("/submissions"), auth, limit("submit"))
	}
	if deps.PlagiarismHandler != nil {
		deps.PlagiarismHandler.Register(app.Group("/plagiarism"), auth, limit("plagiarism"))
	}
}
