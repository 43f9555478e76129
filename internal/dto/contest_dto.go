package dto

import (
	"time"

	"github.com/noah-isme/codecontest-api/internal/models"
)

// QuestionRequest describes one question supplied at contest creation.
type QuestionRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	Description  string `json:"description" validate:"max=20000"`
	SampleInput  string `json:"sample_input" validate:"max=20000"`
	SampleOutput string `json:"sample_output" validate:"max=20000"`
}

// ContestCreateRequest creates a draft contest.
type ContestCreateRequest struct {
	Title       string            `json:"title" validate:"required,max=255"`
	Description string            `json:"description" validate:"max=20000"`
	Questions   []QuestionRequest `json:"questions" validate:"dive"`
}

// AddQuestionRequest appends a question to an existing contest.
type AddQuestionRequest struct {
	ContestID    string `json:"contest_id" validate:"required"`
	Title        string `json:"title" validate:"required,max=255"`
	Description  string `json:"description" validate:"max=20000"`
	SampleInput  string `json:"sample_input" validate:"max=20000"`
	SampleOutput string `json:"sample_output" validate:"max=20000"`
}

// ContestCreatedResponse identifies a freshly created contest.
type ContestCreatedResponse struct {
	ID          string `json:"id"`
	ContestCode string `json:"contest_code"`
}

// QuestionAddedResponse confirms a question append.
type QuestionAddedResponse struct {
	Message    string `json:"message"`
	QuestionID string `json:"question_id"`
}

// MessageResponse carries a single human readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// QuestionResponse is the public view of a question.
type QuestionResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	SampleInput  string `json:"sample_input"`
	SampleOutput string `json:"sample_output"`
}

// ContestResponse is the public view of a contest.
type ContestResponse struct {
	ID           string             `json:"id"`
	TeacherEmail string             `json:"teacher_email"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	ContestCode  string             `json:"contest_code"`
	IsActive     bool               `json:"is_active"`
	State        string             `json:"state"`
	Questions    []QuestionResponse `json:"questions"`
	CreatedAt    time.Time          `json:"created_at"`
}

// NewContestResponse maps a contest model to its response.
func NewContestResponse(contest models.Contest) ContestResponse {
	questions := make([]QuestionResponse, 0, len(contest.Questions))
	for _, question := range contest.Questions {
		questions = append(questions, QuestionResponse{
			ID:           question.ID,
			Title:        question.Title,
			Description:  question.Description,
			SampleInput:  question.SampleInput,
			SampleOutput: question.SampleOutput,
		})
	}

	return ContestResponse{
		ID:           contest.ID,
		TeacherEmail: contest.TeacherEmail,
		Title:        contest.Title,
		Description:  contest.Description,
		ContestCode:  contest.ContestCode,
		IsActive:     contest.IsActive,
		State:        string(contest.State()),
		Questions:    questions,
		CreatedAt:    contest.CreatedAt,
	}
}

// NewContestResponses maps a list of contests.
func NewContestResponses(contests []models.Contest) []ContestResponse {
	responses := make([]ContestResponse, 0, len(contests))
	for _, contest := range contests {
		responses = append(responses, NewContestResponse(contest))
	}
	return responses
}
