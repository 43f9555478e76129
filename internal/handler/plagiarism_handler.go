package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecontest-api/internal/dto"
	"github.com/noah-isme/codecontest-api/internal/service"
	"github.com/noah-isme/codecontest-api/internal/utils"
)

// PlagiarismHandler serves standalone code checks.
type PlagiarismHandler struct {
	service service.PlagiarismService
	logger  zerolog.Logger
}

// NewPlagiarismHandler constructs the handler.
func NewPlagiarismHandler(service service.PlagiarismService, logger zerolog.Logger) *PlagiarismHandler {
	return &PlagiarismHandler{
		service: service,
		logger:  logger.With().Str("component", "plagiarism_handler").Logger(),
	}
}

// Register attaches the check endpoint. limit may be nil.
func (h *PlagiarismHandler) Register(router fiber.Router, auth fiber.Handler, limit fiber.Handler) {
	check := []fiber.Handler{auth}
	if limit != nil {
		check = append(check, limit)
	}
	check = append(check, h.check)

	router.Post("/check", check...)
}

func (h *PlagiarismHandler) check(c *fiber.Ctx) error {
	var payload dto.PlagiarismCheckRequest
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	response, err := h.service.Check(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	message := "analysis completed"
	if response.ID == "mock" {
		message = "analysis completed (mock mode)"
	}
	return utils.SendSuccess(c, message, response)
}
