package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecontest-api/internal/authz"
	"github.com/noah-isme/codecontest-api/internal/dto"
	"github.com/noah-isme/codecontest-api/internal/models"
	"github.com/noah-isme/codecontest-api/internal/repository"
	"github.com/noah-isme/codecontest-api/internal/security"
)

// AuthService registers accounts, issues tokens and resolves identities.
type AuthService interface {
	Signup(ctx context.Context, payload dto.SignupRequest) (dto.TokenResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error)
	ResolveIdentity(ctx context.Context, token string) (authz.Actor, error)
}

type authService struct {
	users     repository.UserRepository
	tokens    *security.TokenIssuer
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, tokens *security.TokenIssuer, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		tokens:    tokens,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Signup(ctx context.Context, payload dto.SignupRequest) (dto.TokenResponse, error) {
	payload.Email = normalizeEmail(payload.Email)
	payload.Username = strings.TrimSpace(payload.Username)
	payload.Role = strings.ToLower(strings.TrimSpace(payload.Role))
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, err
	}

	role, _ := models.ParseRole(payload.Role)

	_, err := s.users.GetByEmail(ctx, payload.Email)
	switch {
	case err == nil:
		return dto.TokenResponse{}, ErrEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		return dto.TokenResponse{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := security.HashPassword(payload.Password)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	user := models.User{
		Email:        payload.Email,
		Username:     payload.Username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return dto.TokenResponse{}, ErrEmailTaken
		}
		return dto.TokenResponse{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("email", user.Email).Str("role", user.Role.String()).Msg("account created")
	return s.tokenResponse(user)
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error) {
	payload.Email = normalizeEmail(payload.Email)
	payload.Role = strings.ToLower(strings.TrimSpace(payload.Role))
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.TokenResponse{}, ErrInvalidCredentials
		}
		return dto.TokenResponse{}, fmt.Errorf("lookup user: %w", err)
	}

	if user.Role.String() != payload.Role {
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	if err := security.ComparePassword(user.PasswordHash, payload.Password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return dto.TokenResponse{}, ErrInvalidCredentials
		}
		return dto.TokenResponse{}, err
	}

	return s.tokenResponse(user)
}

func (s *authService) ResolveIdentity(ctx context.Context, token string) (authz.Actor, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return authz.Actor{}, ErrUnauthenticated
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return authz.Actor{}, ErrUnauthenticated
		}
		return authz.Actor{}, fmt.Errorf("lookup user: %w", err)
	}

	return authz.Actor{Email: user.Email, Role: user.Role}, nil
}

func (s *authService) tokenResponse(user models.User) (dto.TokenResponse, error) {
	token, err := s.tokens.Issue(user.Email, user.Role)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	return dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		Username:    user.Username,
		Role:        user.Role.String(),
		Email:       user.Email,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
