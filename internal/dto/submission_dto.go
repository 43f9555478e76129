package dto

import (
	"time"

	"github.com/noah-isme/codecontest-api/internal/models"
	"github.com/noah-isme/codecontest-api/pkg/ai"
)

// Analysis outcome labels reported on a submission receipt.
const (
	AnalysisStatusCompleted  = "completed"
	AnalysisStatusMock       = "mock"
	AnalysisStatusError      = "analysis_error"
	AnalysisStatusParseError = "analysis_parse_error"
)

// SubmitRequest carries a student's answer. QuestionID takes precedence over QuestionTitle.
type SubmitRequest struct {
	ContestID     string `json:"contest_id" validate:"required"`
	QuestionID    string `json:"question_id"`
	QuestionTitle string `json:"question_title" validate:"required_without=QuestionID,max=255"`
	Code          string `json:"code" validate:"required,max=100000"`
	Language      string `json:"language" validate:"required,max=64"`
}

// SubmissionReceipt is returned once a submission has been stored.
type SubmissionReceipt struct {
	ID                 string       `json:"id"`
	SubmissionID       string       `json:"submission_id"`
	Message            string       `json:"message"`
	AnalysisStatus     string       `json:"analysis_status"`
	AnalysisID         string       `json:"analysis_id,omitempty"`
	PlagiarismAnalysis *ai.Analysis `json:"plagiarism_analysis,omitempty"`
	StorageError       string       `json:"storage_error,omitempty"`
	AnalysisError      string       `json:"analysis_error,omitempty"`
}

// SubmissionResponse is the public view of a stored submission.
type SubmissionResponse struct {
	ID            string    `json:"id"`
	ContestID     string    `json:"contest_id"`
	StudentEmail  string    `json:"student_email"`
	QuestionID    string    `json:"question_id"`
	QuestionTitle string    `json:"question_title"`
	Code          string    `json:"code"`
	Language      string    `json:"language"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// NewSubmissionResponse maps a submission model to its response.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:            submission.ID,
		ContestID:     submission.ContestID,
		StudentEmail:  submission.StudentEmail,
		QuestionID:    submission.QuestionID,
		QuestionTitle: submission.QuestionTitle,
		Code:          submission.Code,
		Language:      submission.Language,
		SubmittedAt:   submission.SubmittedAt,
	}
}

// NewSubmissionResponses maps a list of submissions.
func NewSubmissionResponses(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}
