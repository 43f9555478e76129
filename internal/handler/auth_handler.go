package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecontest-api/internal/dto"
	"github.com/noah-isme/codecontest-api/internal/service"
	"github.com/noah-isme/codecontest-api/internal/utils"
)

// AuthHandler exposes signup, login and identity endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth endpoints. auth guards the identity route.
func (h *AuthHandler) Register(router fiber.Router, auth fiber.Handler) {
	router.Post("/signup", h.signup)
	router.Post("/login", h.login)
	router.Get("/me", auth, h.me)
}

func (h *AuthHandler) signup(c *fiber.Ctx) error {
	var payload dto.SignupRequest
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	token, err := h.service.Signup(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", token)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	token, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "login successful", token)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	return utils.SendSuccess(c, "identity resolved", dto.IdentityResponse{
		Email: actor.Email,
		Role:  actor.Role.String(),
	})
}
