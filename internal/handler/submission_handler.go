package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecontest-api/internal/dto"
	"github.com/noah-isme/codecontest-api/internal/service"
	"github.com/noah-isme/codecontest-api/internal/utils"
)

// SubmissionHandler accepts contest answers and lists them back.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints. limit throttles the submit route and may be nil.
func (h *SubmissionHandler) Register(router fiber.Router, auth fiber.Handler, limit fiber.Handler) {
	submit := []fiber.Handler{auth}
	if limit != nil {
		submit = append(submit, limit)
	}
	submit = append(submit, h.submit)

	router.Post("/submit", submit...)
	router.Get("/by-contest/:contest_id", auth, h.listByContest)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitRequest
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	receipt, err := h.service.Submit(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, receipt.Message, receipt)
}

func (h *SubmissionHandler) listByContest(c *fiber.Ctx) error {
	submissions, err := h.service.ListByContest(c.UserContext(), actorFromContext(c), c.Params("contest_id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.OK(c, submissions, "submissions retrieved", fiber.Map{"count": len(submissions)})
}
