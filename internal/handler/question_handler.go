package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecontest-api/internal/dto"
	"github.com/noah-isme/codecontest-api/internal/middleware"
	"github.com/noah-isme/codecontest-api/internal/models"
	"github.com/noah-isme/codecontest-api/internal/service"
	"github.com/noah-isme/codecontest-api/internal/utils"
)

// QuestionHandler appends questions to existing contests.
type QuestionHandler struct {
	contests service.ContestService
	logger   zerolog.Logger
}

// NewQuestionHandler constructs the handler.
func NewQuestionHandler(contests service.ContestService, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		contests: contests,
		logger:   logger.With().Str("component", "question_handler").Logger(),
	}
}

// Register attaches question endpoints.
func (h *QuestionHandler) Register(router fiber.Router, auth fiber.Handler) {
	router.Post("/add", auth, middleware.RequireRole(models.RoleTeacher), h.add)
}

func (h *QuestionHandler) add(c *fiber.Ctx) error {
	var payload dto.AddQuestionRequest
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	added, err := h.contests.AddQuestion(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "question added", added)
}
