package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/codecontest-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	ContestID    string
	StudentEmail string
	QuestionID   string
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	Exists(ctx context.Context, filter SubmissionFilter) (bool, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) filtered(ctx context.Context, filter SubmissionFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Submission{})

	if filter.ContestID != "" {
		query = query.Where("contest_id = ?", filter.ContestID)
	}
	if filter.StudentEmail != "" {
		query = query.Where("student_email = ?", filter.StudentEmail)
	}
	if filter.QuestionID != "" {
		query = query.Where("question_id = ?", filter.QuestionID)
	}

	return query
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return translateError(r.db.WithContext(ctx).Create(submission).Error)
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.filtered(ctx, filter).Order("submitted_at ASC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) Exists(ctx context.Context, filter SubmissionFilter) (bool, error) {
	var count int64
	if err := r.filtered(ctx, filter).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
