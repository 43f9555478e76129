package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/noah-isme/codecontest-api/internal/models"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"hashed_password"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
}

type questionDocument struct {
	ID           string `bson:"question_id"`
	Title        string `bson:"title"`
	Description  string `bson:"description"`
	SampleInput  string `bson:"sample_input"`
	SampleOutput string `bson:"sample_output"`
}

type contestDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	TeacherEmail string             `bson:"teacher_email"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	ContestCode  string             `bson:"contest_code"`
	IsActive     bool               `bson:"is_active"`
	Questions    []questionDocument `bson:"questions"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type submissionDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ContestID     string             `bson:"contest_id"`
	StudentEmail  string             `bson:"student_email"`
	QuestionID    string             `bson:"question_id"`
	QuestionTitle string             `bson:"question_title"`
	Code          string             `bson:"code"`
	Language      string             `bson:"language"`
	SubmittedAt   time.Time          `bson:"submitted_at"`
}

type analysisDocument struct {
	ID                    primitive.ObjectID     `bson:"_id,omitempty"`
	SubmissionID          string                 `bson:"submission_id,omitempty"`
	ContestID             string                 `bson:"contest_id,omitempty"`
	QuestionTitle         string                 `bson:"question_title,omitempty"`
	Code                  string                 `bson:"code"`
	Language              string                 `bson:"language"`
	CourseLevel           string                 `bson:"course_level,omitempty"`
	AssignmentDescription string                 `bson:"assignment_description,omitempty"`
	StudentID             string                 `bson:"student_id,omitempty"`
	AssignmentID          string                 `bson:"assignment_id,omitempty"`
	PlagiarismAnalysis    map[string]interface{} `bson:"plagiarism_analysis"`
	Provider              string                 `bson:"provider"`
	Model                 string                 `bson:"model"`
	SubmissionTimestamp   time.Time              `bson:"submission_timestamp"`
	SubmitterEmail        string                 `bson:"submitter_email"`
	SubmitterRole         string                 `bson:"submitter_role"`
}

func objectIDFromHex(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func newUserDocument(user models.User) userDocument {
	return userDocument{
		Email:        user.Email,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Role:         user.Role.String(),
		CreatedAt:    user.CreatedAt,
	}
}

func (d userDocument) toModel() (models.User, error) {
	role, ok := models.ParseRole(d.Role)
	if d.Email == "" || d.PasswordHash == "" || !ok {
		return models.User{}, fmt.Errorf("%w: user %s", ErrInvalidDocument, d.ID.Hex())
	}

	return models.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Role:         role,
		CreatedAt:    d.CreatedAt,
	}, nil
}

func newQuestionDocument(question models.Question) questionDocument {
	return questionDocument{
		ID:           question.ID,
		Title:        question.Title,
		Description:  question.Description,
		SampleInput:  question.SampleInput,
		SampleOutput: question.SampleOutput,
	}
}

func newContestDocument(contest models.Contest) contestDocument {
	questions := make([]questionDocument, 0, len(contest.Questions))
	for _, question := range contest.Questions {
		questions = append(questions, newQuestionDocument(question))
	}

	return contestDocument{
		TeacherEmail: contest.TeacherEmail,
		Title:        contest.Title,
		Description:  contest.Description,
		ContestCode:  contest.ContestCode,
		IsActive:     contest.IsActive,
		Questions:    questions,
		CreatedAt:    contest.CreatedAt,
		UpdatedAt:    contest.UpdatedAt,
	}
}

func (d contestDocument) toModel() (models.Contest, error) {
	if d.TeacherEmail == "" || d.ContestCode == "" {
		return models.Contest{}, fmt.Errorf("%w: contest %s", ErrInvalidDocument, d.ID.Hex())
	}

	contest := models.Contest{
		ID:           d.ID.Hex(),
		TeacherEmail: d.TeacherEmail,
		Title:        d.Title,
		Description:  d.Description,
		ContestCode:  d.ContestCode,
		IsActive:     d.IsActive,
		Questions:    make([]models.Question, 0, len(d.Questions)),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}

	for i, question := range d.Questions {
		if question.Title == "" {
			return models.Contest{}, fmt.Errorf("%w: contest %s question %d has no title", ErrInvalidDocument, d.ID.Hex(), i)
		}
		contest.Questions = append(contest.Questions, models.Question{
			ID:           question.ID,
			ContestID:    contest.ID,
			Position:     i,
			Title:        question.Title,
			Description:  question.Description,
			SampleInput:  question.SampleInput,
			SampleOutput: question.SampleOutput,
		})
	}

	return contest, nil
}

func newSubmissionDocument(submission models.Submission) submissionDocument {
	return submissionDocument{
		ContestID:     submission.ContestID,
		StudentEmail:  submission.StudentEmail,
		QuestionID:    submission.QuestionID,
		QuestionTitle: submission.QuestionTitle,
		Code:          submission.Code,
		Language:      submission.Language,
		SubmittedAt:   submission.SubmittedAt,
	}
}

func (d submissionDocument) toModel() (models.Submission, error) {
	if d.ContestID == "" || d.StudentEmail == "" {
		return models.Submission{}, fmt.Errorf("%w: submission %s", ErrInvalidDocument, d.ID.Hex())
	}

	return models.Submission{
		ID:            d.ID.Hex(),
		ContestID:     d.ContestID,
		StudentEmail:  d.StudentEmail,
		QuestionID:    d.QuestionID,
		QuestionTitle: d.QuestionTitle,
		Code:          d.Code,
		Language:      d.Language,
		SubmittedAt:   d.SubmittedAt,
	}, nil
}

func newAnalysisDocument(record models.AnalysisRecord) (analysisDocument, error) {
	analysis := map[string]interface{}{}
	if len(record.PlagiarismAnalysis) > 0 {
		if err := json.Unmarshal(record.PlagiarismAnalysis, &analysis); err != nil {
			return analysisDocument{}, fmt.Errorf("decode plagiarism analysis: %w", err)
		}
	}

	return analysisDocument{
		SubmissionID:          record.SubmissionID,
		ContestID:             record.ContestID,
		QuestionTitle:         record.QuestionTitle,
		Code:                  record.Code,
		Language:              record.Language,
		CourseLevel:           record.CourseLevel,
		AssignmentDescription: record.AssignmentDescription,
		StudentID:             record.StudentID,
		AssignmentID:          record.AssignmentID,
		PlagiarismAnalysis:    analysis,
		Provider:              record.Provider,
		Model:                 record.Model,
		SubmissionTimestamp:   record.SubmissionTimestamp,
		SubmitterEmail:        record.SubmitterEmail,
		SubmitterRole:         record.SubmitterRole.String(),
	}, nil
}
