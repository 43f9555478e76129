package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/codecontest-api/internal/authz"
	"github.com/noah-isme/codecontest-api/internal/dto"
	"github.com/noah-isme/codecontest-api/internal/events"
	"github.com/noah-isme/codecontest-api/internal/models"
	"github.com/noah-isme/codecontest-api/internal/observability"
	"github.com/noah-isme/codecontest-api/internal/repository"
	"github.com/noah-isme/codecontest-api/pkg/ai"
)

// AnalysisRequest is one run of the analyzer, optionally tied to a submission.
type AnalysisRequest struct {
	Input         ai.AnalysisInput
	SubmissionID  string
	ContestID     string
	QuestionTitle string
}

// AnalysisOutcome reports what happened during a run. Err is set for analysis and parse failures only.
type AnalysisOutcome struct {
	Status       string
	Analysis     *ai.Analysis
	RecordID     string
	StorageError string
	Err          error
}

// PlagiarismService runs the analyzer and stores successful verdicts.
type PlagiarismService interface {
	Run(ctx context.Context, actor authz.Actor, request AnalysisRequest) AnalysisOutcome
	Check(ctx context.Context, actor authz.Actor, payload dto.PlagiarismCheckRequest) (dto.PlagiarismCheckResponse, error)
	Available() bool
}

type plagiarismService struct {
	analyzer  ai.Analyzer
	analyses  repository.AnalysisRepository
	publisher events.Publisher
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewPlagiarismService builds the service. A nil analyzer switches every run to the mock verdict.
func NewPlagiarismService(analyzer ai.Analyzer, analyses repository.AnalysisRepository, publisher events.Publisher, validate *validator.Validate, logger zerolog.Logger) PlagiarismService {
	if publisher == nil {
		publisher = events.Nop{}
	}

	return &plagiarismService{
		analyzer:  analyzer,
		analyses:  analyses,
		publisher: publisher,
		validator: validate,
		logger:    logger.With().Str("component", "plagiarism_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/codecontest-api/internal/service/plagiarism"),
		now:       time.Now,
	}
}

func (s *plagiarismService) Available() bool {
	return s.analyzer != nil
}

func (s *plagiarismService) Run(ctx context.Context, actor authz.Actor, request AnalysisRequest) AnalysisOutcome {
	ctx, span := s.tracer.Start(ctx, "plagiarism.run", trace.WithAttributes(
		attribute.String("submission.id", request.SubmissionID),
		attribute.String("language", request.Input.Language),
	))
	defer span.End()

	if s.analyzer == nil {
		mock := ai.MockAnalysis()
		observability.Analyses().WithLabelValues(dto.AnalysisStatusMock).Inc()
		return AnalysisOutcome{Status: dto.AnalysisStatusMock, Analysis: &mock}
	}

	result, err := s.analyzer.Analyze(ctx, request.Input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")

		status := dto.AnalysisStatusError
		if errors.Is(err, ai.ErrMalformedAnalysis) {
			status = dto.AnalysisStatusParseError
		}
		observability.Analyses().WithLabelValues(status).Inc()
		s.logger.Warn().
			Err(err).
			Str("submission_id", request.SubmissionID).
			Str("status", status).
			Msg("plagiarism analysis did not complete")
		return AnalysisOutcome{Status: status, Err: err}
	}

	observability.Analyses().WithLabelValues(dto.AnalysisStatusCompleted).Inc()
	analysis := result.Analysis
	outcome := AnalysisOutcome{Status: dto.AnalysisStatusCompleted, Analysis: &analysis}

	record, err := s.newRecord(actor, request, result)
	if err == nil {
		err = s.analyses.Create(ctx, &record)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("submission_id", request.SubmissionID).Msg("failed to store analysis")
		outcome.StorageError = err.Error()
		return outcome
	}

	outcome.RecordID = record.ID
	span.SetAttributes(attribute.String("analysis.id", record.ID))

	if pubErr := s.publisher.Publish(ctx, events.Event{
		Type:         events.AnalysisCompleted,
		ContestID:    request.ContestID,
		SubmissionID: request.SubmissionID,
		Actor:        actor.Email,
		Payload: map[string]interface{}{
			"analysis_id":         record.ID,
			"plagiarism_detected": analysis.PlagiarismDetected,
			"confidence_score":    analysis.ConfidenceScore,
		},
	}); pubErr != nil {
		s.logger.Warn().Err(pubErr).Msg("failed to publish analysis event")
	}

	return outcome
}

func (s *plagiarismService) Check(ctx context.Context, actor authz.Actor, payload dto.PlagiarismCheckRequest) (dto.PlagiarismCheckResponse, error) {
	if !authz.Can(actor, authz.ActionCheckCode, nil) {
		return dto.PlagiarismCheckResponse{}, ErrUnauthenticated
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.PlagiarismCheckResponse{}, err
	}
	if err := ensureTextCode(payload.Code); err != nil {
		return dto.PlagiarismCheckResponse{}, err
	}

	outcome := s.Run(ctx, actor, AnalysisRequest{Input: ai.AnalysisInput{
		Code:                  payload.Code,
		Language:              payload.Language,
		CourseLevel:           payload.CourseLevel,
		AssignmentDescription: payload.AssignmentDescription,
		StudentID:             payload.StudentID,
		AssignmentID:          payload.AssignmentID,
		PreviousSubmissions:   payload.PreviousSubmissions,
	}})

	switch outcome.Status {
	case dto.AnalysisStatusMock:
		return dto.PlagiarismCheckResponse{ID: ai.MockProvider, PlagiarismAnalysis: *outcome.Analysis}, nil
	case dto.AnalysisStatusParseError:
		return dto.PlagiarismCheckResponse{}, fmt.Errorf("%w: %v", ErrAnalysisMalformed, outcome.Err)
	case dto.AnalysisStatusError:
		return dto.PlagiarismCheckResponse{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, outcome.Err)
	}

	return dto.PlagiarismCheckResponse{
		ID:                 outcome.RecordID,
		PlagiarismAnalysis: *outcome.Analysis,
		StorageError:       outcome.StorageError,
	}, nil
}

func (s *plagiarismService) newRecord(actor authz.Actor, request AnalysisRequest, result ai.AnalysisResult) (models.AnalysisRecord, error) {
	raw := []byte(result.Raw)
	if len(raw) == 0 {
		encoded, err := json.Marshal(result.Analysis)
		if err != nil {
			return models.AnalysisRecord{}, fmt.Errorf("encode analysis: %w", err)
		}
		raw = encoded
	}

	return models.AnalysisRecord{
		SubmissionID:          request.SubmissionID,
		ContestID:             request.ContestID,
		QuestionTitle:         request.QuestionTitle,
		Code:                  request.Input.Code,
		Language:              request.Input.Language,
		CourseLevel:           request.Input.CourseLevel,
		AssignmentDescription: request.Input.AssignmentDescription,
		StudentID:             request.Input.StudentID,
		AssignmentID:          request.Input.AssignmentID,
		PlagiarismAnalysis:    datatypes.JSON(raw),
		Provider:              result.Provider,
		Model:                 result.Model,
		SubmissionTimestamp:   s.now().UTC(),
		SubmitterEmail:        actor.Email,
		SubmitterRole:         actor.Role,
	}, nil
}
