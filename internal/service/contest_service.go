package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/codecontest-api/internal/authz"
	"github.com/noah-isme/codecontest-api/internal/dto"
	"github.com/noah-isme/codecontest-api/internal/events"
	"github.com/noah-isme/codecontest-api/internal/models"
	"github.com/noah-isme/codecontest-api/internal/observability"
	"github.com/noah-isme/codecontest-api/internal/repository"
)

const (
	contestCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	contestCodeLength   = 6
	contestCodeAttempts = 5

	activeContestsKey        = "contests:active"
	activeContestsVersionKey = "contests:active:version"
)

// ContestService manages the contest lifecycle and its visibility rules.
type ContestService interface {
	Create(ctx context.Context, actor authz.Actor, payload dto.ContestCreateRequest) (dto.ContestCreatedResponse, error)
	Start(ctx context.Context, actor authz.Actor, contestID string) error
	End(ctx context.Context, actor authz.Actor, contestID string) error
	AddQuestion(ctx context.Context, actor authz.Actor, payload dto.AddQuestionRequest) (dto.QuestionAddedResponse, error)
	ListAll(ctx context.Context, actor authz.Actor) ([]dto.ContestResponse, error)
	ListActive(ctx context.Context) ([]dto.ContestResponse, error)
	ListMine(ctx context.Context, actor authz.Actor) ([]dto.ContestResponse, error)
	GetByCode(ctx context.Context, actor authz.Actor, code string) (dto.ContestResponse, error)
}

// ContestServiceConfig tunes caching of the public listing.
type ContestServiceConfig struct {
	ActiveCacheTTL time.Duration
}

type contestService struct {
	contests  repository.ContestRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	publisher events.Publisher
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	newCode   func() (string, error)
}

// NewContestService builds the contest service. cache and publisher are optional.
func NewContestService(contests repository.ContestRepository, cache *redis.Client, publisher events.Publisher, validate *validator.Validate, logger zerolog.Logger, cfg ContestServiceConfig) ContestService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if cfg.ActiveCacheTTL <= 0 {
		cfg.ActiveCacheTTL = 30 * time.Second
	}

	return &contestService{
		contests:  contests,
		cache:     cache,
		cacheTTL:  cfg.ActiveCacheTTL,
		publisher: publisher,
		validator: validate,
		logger:    logger.With().Str("component", "contest_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/codecontest-api/internal/service/contest"),
		newCode:   generateContestCode,
	}
}

func (s *contestService) Create(ctx context.Context, actor authz.Actor, payload dto.ContestCreateRequest) (dto.ContestCreatedResponse, error) {
	ctx, span := s.tracer.Start(ctx, "contest.create")
	defer span.End()

	if !authz.Can(actor, authz.ActionCreateContest, nil) {
		return dto.ContestCreatedResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContestCreatedResponse{}, err
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return dto.ContestCreatedResponse{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	contest := models.Contest{
		TeacherEmail: actor.Email,
		Title:        title,
		Description:  strings.TrimSpace(payload.Description),
		Questions:    make([]models.Question, 0, len(payload.Questions)),
	}

	for _, item := range payload.Questions {
		questionTitle := strings.TrimSpace(item.Title)
		if questionTitle == "" {
			return dto.ContestCreatedResponse{}, fmt.Errorf("%w: question title is required", ErrInvalidInput)
		}
		if contest.HasQuestionTitled(questionTitle) {
			return dto.ContestCreatedResponse{}, fmt.Errorf("%w: %q", ErrDuplicateQuestion, questionTitle)
		}
		contest.Questions = append(contest.Questions, models.Question{
			ID:           uuid.NewString(),
			Title:        questionTitle,
			Description:  item.Description,
			SampleInput:  item.SampleInput,
			SampleOutput: item.SampleOutput,
		})
	}

	code, err := s.allocateCode(ctx)
	if err != nil {
		return dto.ContestCreatedResponse{}, err
	}
	contest.ContestCode = code

	if err := s.contests.Create(ctx, &contest); err != nil {
		return dto.ContestCreatedResponse{}, fmt.Errorf("create contest: %w", err)
	}

	span.SetAttributes(attribute.String("contest.id", contest.ID))
	s.publish(ctx, events.Event{
		Type:      events.ContestCreated,
		ContestID: contest.ID,
		Actor:     actor.Email,
		Payload:   map[string]interface{}{"contest_code": contest.ContestCode, "questions": len(contest.Questions)},
	})

	return dto.ContestCreatedResponse{ID: contest.ID, ContestCode: contest.ContestCode}, nil
}

func (s *contestService) Start(ctx context.Context, actor authz.Actor, contestID string) error {
	return s.transition(ctx, actor, contestID, authz.ActionStartContest, true)
}

func (s *contestService) End(ctx context.Context, actor authz.Actor, contestID string) error {
	return s.transition(ctx, actor, contestID, authz.ActionEndContest, false)
}

func (s *contestService) transition(ctx context.Context, actor authz.Actor, contestID string, action authz.Action, active bool) error {
	ctx, span := s.tracer.Start(ctx, "contest.transition", trace.WithAttributes(
		attribute.String("contest.id", contestID),
		attribute.Bool("contest.active", active),
	))
	defer span.End()

	if !authz.RoleAllows(actor, action) {
		return ErrForbidden
	}

	contest, err := s.loadOwned(ctx, actor, action, contestID)
	if err != nil {
		return err
	}

	if contest.IsActive == active {
		return fmt.Errorf("%w: contest is already %s", ErrInvalidContestState, contest.State())
	}

	if err := s.contests.SetActive(ctx, contest.ID, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContestNotFound
		}
		return fmt.Errorf("update contest state: %w", err)
	}

	contest.IsActive = active
	observability.ContestTransitions().WithLabelValues(string(contest.State())).Inc()
	s.invalidateActive(ctx)

	eventType := events.ContestEnded
	if active {
		eventType = events.ContestStarted
	}
	s.publish(ctx, events.Event{Type: eventType, ContestID: contest.ID, Actor: actor.Email})

	s.logger.Info().
		Str("contest_id", contest.ID).
		Str("state", string(contest.State())).
		Str("teacher", actor.Email).
		Msg("contest state changed")
	return nil
}

func (s *contestService) AddQuestion(ctx context.Context, actor authz.Actor, payload dto.AddQuestionRequest) (dto.QuestionAddedResponse, error) {
	if !authz.RoleAllows(actor, authz.ActionAddQuestion) {
		return dto.QuestionAddedResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionAddedResponse{}, err
	}

	contest, err := s.loadOwned(ctx, actor, authz.ActionAddQuestion, payload.ContestID)
	if err != nil {
		return dto.QuestionAddedResponse{}, err
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return dto.QuestionAddedResponse{}, fmt.Errorf("%w: question title is required", ErrInvalidInput)
	}
	if contest.HasQuestionTitled(title) {
		return dto.QuestionAddedResponse{}, fmt.Errorf("%w: %q", ErrDuplicateQuestion, title)
	}

	question := models.Question{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  payload.Description,
		SampleInput:  payload.SampleInput,
		SampleOutput: payload.SampleOutput,
	}
	if err := s.contests.AppendQuestion(ctx, contest.ID, &question); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.QuestionAddedResponse{}, ErrContestNotFound
		}
		return dto.QuestionAddedResponse{}, fmt.Errorf("append question: %w", err)
	}

	if contest.IsActive {
		s.invalidateActive(ctx)
	}
	s.publish(ctx, events.Event{
		Type:      events.ContestQuestionAdded,
		ContestID: contest.ID,
		Actor:     actor.Email,
		Payload:   map[string]interface{}{"question_id": question.ID, "position": question.Position},
	})

	return dto.QuestionAddedResponse{Message: "Question added", QuestionID: question.ID}, nil
}

func (s *contestService) ListAll(ctx context.Context, actor authz.Actor) ([]dto.ContestResponse, error) {
	if !authz.Can(actor, authz.ActionListAll, nil) {
		return nil, ErrUnauthenticated
	}

	filter := repository.ContestFilter{ActiveOnly: !authz.Can(actor, authz.ActionViewInactive, nil)}
	contests, err := s.contests.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list contests: %w", err)
	}
	return dto.NewContestResponses(contests), nil
}

func (s *contestService) ListActive(ctx context.Context) ([]dto.ContestResponse, error) {
	key := s.activeListingKey(ctx)
	if key != "" {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			var response []dto.ContestResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read active contest cache")
		}
	}

	contests, err := s.contests.List(ctx, repository.ContestFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list active contests: %w", err)
	}
	response := dto.NewContestResponses(contests)

	if key != "" {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store active contest cache")
			}
		}
	}

	return response, nil
}

func (s *contestService) ListMine(ctx context.Context, actor authz.Actor) ([]dto.ContestResponse, error) {
	if !authz.Can(actor, authz.ActionListMine, nil) {
		return nil, ErrForbidden
	}

	contests, err := s.contests.List(ctx, repository.ContestFilter{TeacherEmail: actor.Email})
	if err != nil {
		return nil, fmt.Errorf("list teacher contests: %w", err)
	}
	return dto.NewContestResponses(contests), nil
}

func (s *contestService) GetByCode(ctx context.Context, actor authz.Actor, code string) (dto.ContestResponse, error) {
	if !actor.Authenticated() {
		return dto.ContestResponse{}, ErrUnauthenticated
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return dto.ContestResponse{}, ErrContestNotFound
	}

	contest, err := s.contests.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.ContestResponse{}, fmt.Errorf("%w: no contest with code %q", ErrContestNotFound, code)
		}
		return dto.ContestResponse{}, fmt.Errorf("lookup contest by code: %w", err)
	}
	return dto.NewContestResponse(contest), nil
}

// loadOwned answers NotFound both for missing contests and for contests the actor may not touch.
func (s *contestService) loadOwned(ctx context.Context, actor authz.Actor, action authz.Action, contestID string) (models.Contest, error) {
	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return models.Contest{}, ErrContestNotFound
	}

	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Contest{}, ErrContestNotFound
		}
		return models.Contest{}, fmt.Errorf("load contest: %w", err)
	}

	if !authz.Can(actor, action, &contest) {
		s.logger.Debug().Str("contest_id", contestID).Str("actor", actor.Email).Msg("contest hidden from non-owner")
		return models.Contest{}, ErrContestNotFound
	}
	return contest, nil
}

func (s *contestService) allocateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < contestCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return "", fmt.Errorf("generate contest code: %w", err)
		}

		_, err = s.contests.GetByCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check contest code: %w", err)
		}
		s.logger.Debug().Str("contest_code", code).Msg("contest code collision")
	}
	return "", fmt.Errorf("unable to allocate a unique contest code after %d attempts", contestCodeAttempts)
}

// activeListingKey names the cached listing for the current generation. Transitions bump the
// generation, so a listing computed before a transition is written under a key nobody reads.
// It returns "" when the cache is absent or unreadable.
func (s *contestService) activeListingKey(ctx context.Context) string {
	if s.cache == nil {
		return ""
	}
	version, err := s.cache.Get(ctx, activeContestsVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn().Err(err).Msg("failed to read active contest cache version")
		return ""
	}
	return activeListingKeyFor(version)
}

func activeListingKeyFor(version int64) string {
	return fmt.Sprintf("%s:v%d", activeContestsKey, version)
}

func (s *contestService) invalidateActive(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, activeContestsVersionKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate active contest cache")
	}
}

func (s *contestService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", event.Type).Msg("failed to publish event")
	}
}

func generateContestCode() (string, error) {
	limit := big.NewInt(int64(len(contestCodeAlphabet)))
	code := make([]byte, contestCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		code[i] = contestCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
