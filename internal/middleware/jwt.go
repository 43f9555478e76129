package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecontest-api/internal/authz"
	"github.com/noah-isme/codecontest-api/internal/models"
	"github.com/noah-isme/codecontest-api/internal/service"
	"github.com/noah-isme/codecontest-api/internal/utils"
)

const (
	localUserEmail = "user_email"
	localUserRole  = "user_role"
)

// IdentityResolver turns a bearer token into an actor.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (authz.Actor, error)
}

// JWTProtected rejects requests without a valid bearer token and stores the resolved actor in locals.
func JWTProtected(resolver IdentityResolver, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		actor, err := resolver.ResolveIdentity(c.UserContext(), tokenString)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
			}
			logger.Error().Err(err).Str("correlation_id", GetCorrelationID(c)).Msg("identity lookup failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}

		c.Locals(localUserEmail, actor.Email)
		c.Locals(localUserRole, actor.Role.String())

		return c.Next()
	}
}

// ActorFromContext returns the actor stored by JWTProtected, or an anonymous actor.
func ActorFromContext(c *fiber.Ctx) authz.Actor {
	email, _ := c.Locals(localUserEmail).(string)
	role, _ := models.ParseRole(normalizeRoleValue(c.Locals(localUserRole)))
	return authz.Actor{Email: email, Role: role}
}
