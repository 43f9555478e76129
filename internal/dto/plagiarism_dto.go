package dto

import "github.com/noah-isme/codecontest-api/pkg/ai"

// PlagiarismCheckRequest asks for a standalone analysis not tied to a contest.
type PlagiarismCheckRequest struct {
	Code                  string   `json:"code" validate:"required,max=100000"`
	Language              string   `json:"language" validate:"required,max=64"`
	CourseLevel           string   `json:"course_level" validate:"max=64"`
	AssignmentDescription string   `json:"assignment_description" validate:"max=20000"`
	StudentID             string   `json:"student_id" validate:"max=255"`
	AssignmentID          string   `json:"assignment_id" validate:"max=255"`
	PreviousSubmissions   []string `json:"previous_submissions" validate:"max=10,dive,max=100000"`
}

// PlagiarismCheckResponse carries the verdict and the stored record id.
type PlagiarismCheckResponse struct {
	ID                 string      `json:"id"`
	PlagiarismAnalysis ai.Analysis `json:"plagiarism_analysis"`
	StorageError       string      `json:"storage_error,omitempty"`
}
