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

// ContestHandler wires contest lifecycle and listing routes.
type ContestHandler struct {
	service service.ContestService
	logger  zerolog.Logger
}

// NewContestHandler constructs the handler.
func NewContestHandler(service service.ContestService, logger zerolog.Logger) *ContestHandler {
	return &ContestHandler{
		service: service,
		logger:  logger.With().Str("component", "contest_handler").Logger(),
	}
}

// Register attaches contest endpoints. The active listing stays public.
func (h *ContestHandler) Register(router fiber.Router, auth fiber.Handler) {
	teacherOnly := middleware.RequireRole(models.RoleTeacher)

	router.Get("/active", h.listActive)
	router.Post("/create", auth, teacherOnly, h.create)
	router.Post("/start/:contest_id", auth, teacherOnly, h.start)
	router.Post("/end/:contest_id", auth, teacherOnly, h.end)
	router.Get("/all", auth, h.listAll)
	router.Get("/by-code/:code", auth, h.getByCode)
	router.Get("/teacher/mycontest", auth, teacherOnly, h.listMine)
}

func (h *ContestHandler) create(c *fiber.Ctx) error {
	var payload dto.ContestCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	created, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "contest created", created)
}

func (h *ContestHandler) start(c *fiber.Ctx) error {
	if err := h.service.Start(c.UserContext(), actorFromContext(c), c.Params("contest_id")); err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "contest started", dto.MessageResponse{Message: "Contest started"})
}

func (h *ContestHandler) end(c *fiber.Ctx) error {
	if err := h.service.End(c.UserContext(), actorFromContext(c), c.Params("contest_id")); err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "contest ended", dto.MessageResponse{Message: "Contest ended"})
}

func (h *ContestHandler) listAll(c *fiber.Ctx) error {
	contests, err := h.service.ListAll(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.OK(c, contests, "contests retrieved", fiber.Map{"count": len(contests)})
}

func (h *ContestHandler) listActive(c *fiber.Ctx) error {
	contests, err := h.service.ListActive(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.OK(c, contests, "active contests retrieved", fiber.Map{"count": len(contests)})
}

func (h *ContestHandler) listMine(c *fiber.Ctx) error {
	contests, err := h.service.ListMine(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.OK(c, contests, "teacher contests retrieved", fiber.Map{"count": len(contests)})
}

func (h *ContestHandler) getByCode(c *fiber.Ctx) error {
	contest, err := h.service.GetByCode(c.UserContext(), actorFromContext(c), c.Params("code"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "contest retrieved", contest)
}
