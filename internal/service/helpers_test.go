package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/codecontest-api/internal/authz"
	"github.com/noah-isme/codecontest-api/internal/events"
	"github.com/noah-isme/codecontest-api/internal/models"
	"github.com/noah-isme/codecontest-api/pkg/ai"
)

var (
	teacherActor = authz.Actor{Email: "teacher@example.com", Role: models.RoleTeacher}
	otherTeacher = authz.Actor{Email: "other@example.com", Role: models.RoleTeacher}
	studentActor = authz.Actor{Email: "student@example.com", Role: models.RoleStudent}
	peerStudent  = authz.Actor{Email: "peer@example.com", Role: models.RoleStudent}
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Contest{}, &models.Question{}, &models.Submission{}, &models.AnalysisRecord{}))
	return db
}

func newValidator() *validator.Validate {
	return validator.New()
}

type stubAnalyzer struct {
	mu     sync.Mutex
	result ai.AnalysisResult
	err    error
	inputs []ai.AnalysisInput
}

func (s *stubAnalyzer) Analyze(_ context.Context, input ai.AnalysisInput) (ai.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return ai.AnalysisResult{}, s.err
	}
	return s.result, nil
}

func (s *stubAnalyzer) Provider() string {
	return "stub"
}

func (s *stubAnalyzer) calls() []ai.AnalysisInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ai.AnalysisInput(nil), s.inputs...)
}

func verdict(detected bool, score float64) ai.AnalysisResult {
	analysis := ai.MockAnalysis()
	analysis.PlagiarismDetected = detected
	analysis.ConfidenceScore = score
	analysis.Explanation = "stubbed verdict"
	return ai.AnalysisResult{Analysis: analysis, Provider: "stub", Model: "stub-model"}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}
	return types
}
