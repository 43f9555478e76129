package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
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
	"github.com/noah-isme/codecontest-api/pkg/ai"
)

// Duplicate submission policies.
const (
	DuplicatePolicyAllow  = "allow"
	DuplicatePolicyReject = "reject"
)

// SubmissionService accepts contest answers and lists them back.
type SubmissionService interface {
	Submit(ctx context.Context, actor authz.Actor, payload dto.SubmitRequest) (dto.SubmissionReceipt, error)
	ListByContest(ctx context.Context, actor authz.Actor, contestID string) ([]dto.SubmissionResponse, error)
}

// SubmissionServiceConfig controls resubmission behaviour.
type SubmissionServiceConfig struct {
	DuplicatePolicy string
	Cooldown        time.Duration
}

type submissionService struct {
	contests    repository.ContestRepository
	submissions repository.SubmissionRepository
	plagiarism  PlagiarismService
	cache       *redis.Client
	publisher   events.Publisher
	validator   *validator.Validate
	cfg         SubmissionServiceConfig
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewSubmissionService constructs the submission workflow. cache and publisher are optional.
func NewSubmissionService(contests repository.ContestRepository, submissions repository.SubmissionRepository, plagiarism PlagiarismService, cache *redis.Client, publisher events.Publisher, validate *validator.Validate, logger zerolog.Logger, cfg SubmissionServiceConfig) SubmissionService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	cfg.DuplicatePolicy = strings.ToLower(strings.TrimSpace(cfg.DuplicatePolicy))
	if cfg.DuplicatePolicy == "" {
		cfg.DuplicatePolicy = DuplicatePolicyAllow
	}

	return &submissionService{
		contests:    contests,
		submissions: submissions,
		plagiarism:  plagiarism,
		cache:       cache,
		publisher:   publisher,
		validator:   validate,
		cfg:         cfg,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/codecontest-api/internal/service/submission"),
	}
}

func (s *submissionService) Submit(ctx context.Context, actor authz.Actor, payload dto.SubmitRequest) (dto.SubmissionReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit", trace.WithAttributes(
		attribute.String("contest.id", payload.ContestID),
	))
	defer span.End()

	if !authz.Can(actor, authz.ActionSubmit, nil) {
		return dto.SubmissionReceipt{}, ErrUnauthenticated
	}

	payload.ContestID = strings.TrimSpace(payload.ContestID)
	payload.QuestionID = strings.TrimSpace(payload.QuestionID)
	payload.QuestionTitle = strings.TrimSpace(payload.QuestionTitle)
	payload.Language = strings.TrimSpace(payload.Language)
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionReceipt{}, err
	}

	contest, err := s.contests.GetByID(ctx, payload.ContestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.SubmissionReceipt{}, ErrContestNotFound
		}
		return dto.SubmissionReceipt{}, fmt.Errorf("load contest: %w", err)
	}

	if contest.State() != models.ContestStateLive {
		return dto.SubmissionReceipt{}, fmt.Errorf("%w: contest is not active", ErrInvalidContestState)
	}

	question, ok := contest.FindQuestion(payload.QuestionID, payload.QuestionTitle)
	if !ok {
		return dto.SubmissionReceipt{}, ErrQuestionNotFound
	}

	if err := ensureTextCode(payload.Code); err != nil {
		return dto.SubmissionReceipt{}, err
	}

	if err := s.admit(ctx, actor, contest.ID, question.ID); err != nil {
		return dto.SubmissionReceipt{}, err
	}

	submission := models.Submission{
		ContestID:     contest.ID,
		StudentEmail:  actor.Email,
		QuestionID:    question.ID,
		QuestionTitle: question.Title,
		Code:          payload.Code,
		Language:      payload.Language,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		s.releaseCooldown(ctx, contest.ID, question.ID, actor.Email)
		return dto.SubmissionReceipt{}, fmt.Errorf("store submission: %w", err)
	}

	span.SetAttributes(attribute.String("submission.id", submission.ID))
	if err := s.publisher.Publish(ctx, events.Event{
		Type:         events.SubmissionCreated,
		ContestID:    contest.ID,
		SubmissionID: submission.ID,
		Actor:        actor.Email,
		Payload:      map[string]interface{}{"question_id": question.ID, "language": submission.Language},
	}); err != nil {
		s.logger.Warn().Err(err).Str("submission_id", submission.ID).Msg("failed to publish submission event")
	}

	outcome := s.plagiarism.Run(ctx, actor, AnalysisRequest{
		Input: ai.AnalysisInput{
			Code:                  submission.Code,
			Language:              submission.Language,
			AssignmentDescription: question.Description,
			StudentID:             actor.Email,
			AssignmentID:          contest.ID + "_" + question.Title,
		},
		SubmissionID:  submission.ID,
		ContestID:     contest.ID,
		QuestionTitle: question.Title,
	})

	receipt := dto.SubmissionReceipt{
		ID:                 submission.ID,
		SubmissionID:       submission.ID,
		Message:            "Submission successful",
		AnalysisStatus:     outcome.Status,
		AnalysisID:         outcome.RecordID,
		PlagiarismAnalysis: outcome.Analysis,
		StorageError:       outcome.StorageError,
	}
	if outcome.Status == dto.AnalysisStatusMock {
		receipt.Message = "Submission successful (mock mode)"
	}
	if outcome.Err != nil {
		receipt.AnalysisError = outcome.Err.Error()
	}

	observability.Submissions().WithLabelValues(outcome.Status).Inc()
	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("contest_id", contest.ID).
		Str("question_id", question.ID).
		Str("analysis_status", outcome.Status).
		Msg("submission accepted")

	return receipt, nil
}

func (s *submissionService) ListByContest(ctx context.Context, actor authz.Actor, contestID string) ([]dto.SubmissionResponse, error) {
	if !authz.RoleAllows(actor, authz.ActionViewAllSubmits) {
		return nil, ErrUnauthenticated
	}

	contest, err := s.contests.GetByID(ctx, strings.TrimSpace(contestID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("load contest: %w", err)
	}

	filter := repository.SubmissionFilter{ContestID: contest.ID}
	if !authz.Can(actor, authz.ActionViewAllSubmits, &contest) {
		filter.StudentEmail = actor.Email
	}

	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return dto.NewSubmissionResponses(submissions), nil
}

func (s *submissionService) admit(ctx context.Context, actor authz.Actor, contestID, questionID string) error {
	if s.cfg.DuplicatePolicy == DuplicatePolicyReject {
		exists, err := s.submissions.Exists(ctx, repository.SubmissionFilter{
			ContestID:    contestID,
			StudentEmail: actor.Email,
			QuestionID:   questionID,
		})
		if err != nil {
			return fmt.Errorf("check previous submissions: %w", err)
		}
		if exists {
			return ErrDuplicateSubmission
		}
	}

	if s.cache == nil || s.cfg.Cooldown <= 0 {
		return nil
	}

	acquired, err := s.cache.SetNX(ctx, cooldownKey(contestID, questionID, actor.Email), time.Now().UTC().Unix(), s.cfg.Cooldown).Result()
	if err != nil {
		s.logger.Warn().Err(err).Msg("submission cooldown unavailable")
		return nil
	}
	if !acquired {
		return ErrSubmissionCooldown
	}
	return nil
}

func (s *submissionService) releaseCooldown(ctx context.Context, contestID, questionID, email string) {
	if s.cache == nil || s.cfg.Cooldown <= 0 {
		return
	}
	if err := s.cache.Del(ctx, cooldownKey(contestID, questionID, email)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to release submission cooldown")
	}
}

func cooldownKey(contestID, questionID, email string) string {
	return fmt.Sprintf("submission:cooldown:%s:%s:%s", contestID, questionID, email)
}

// ensureTextCode rejects empty payloads and anything that is not NUL-free UTF-8.
func ensureTextCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: code is empty", ErrUnsupportedCode)
	}
	if !utf8.ValidString(code) {
		return fmt.Errorf("%w: code is not valid UTF-8", ErrUnsupportedCode)
	}
	if strings.IndexByte(code, 0) >= 0 {
		return fmt.Errorf("%w: code contains NUL bytes", ErrUnsupportedCode)
	}
	return nil
}
