package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/codecontest-api/internal/models"
)

// ContestFilter narrows contest listings.
type ContestFilter struct {
	ActiveOnly   bool
	TeacherEmail string
}

// ContestRepository persists contests and their embedded questions.
type ContestRepository interface {
	Create(ctx context.Context, contest *models.Contest) error
	GetByID(ctx context.Context, id string) (models.Contest, error)
	GetByCode(ctx context.Context, code string) (models.Contest, error)
	List(ctx context.Context, filter ContestFilter) ([]models.Contest, error)
	SetActive(ctx context.Context, id string, active bool) error
	AppendQuestion(ctx context.Context, contestID string, question *models.Question) error
}

type contestRepository struct {
	db *gorm.DB
}

// NewContestRepository constructs a gorm backed contest repository.
func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

func (r *contestRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Contest{}).
		Preload("Questions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		})
}

func (r *contestRepository) Create(ctx context.Context, contest *models.Contest) error {
	for i := range contest.Questions {
		contest.Questions[i].Position = i
	}
	return translateError(r.db.WithContext(ctx).Create(contest).Error)
}

func (r *contestRepository) GetByID(ctx context.Context, id string) (models.Contest, error) {
	var contest models.Contest
	if err := r.baseQuery(ctx).Where("id = ?", id).First(&contest).Error; err != nil {
		return models.Contest{}, translateError(err)
	}
	return contest, nil
}

func (r *contestRepository) GetByCode(ctx context.Context, code string) (models.Contest, error) {
	var contest models.Contest
	err := r.baseQuery(ctx).
		Where("contest_code = ?", code).
		Order("created_at ASC").
		First(&contest).Error
	if err != nil {
		return models.Contest{}, translateError(err)
	}
	return contest, nil
}

func (r *contestRepository) List(ctx context.Context, filter ContestFilter) ([]models.Contest, error) {
	query := r.baseQuery(ctx)
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.TeacherEmail != "" {
		query = query.Where("teacher_email = ?", filter.TeacherEmail)
	}

	var contests []models.Contest
	if err := query.Order("created_at ASC").Find(&contests).Error; err != nil {
		return nil, err
	}
	return contests, nil
}

func (r *contestRepository) SetActive(ctx context.Context, id string, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Contest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": active, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *contestRepository) AppendQuestion(ctx context.Context, contestID string, question *models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contest models.Contest
		if err := tx.Select("id").Where("id = ?", contestID).First(&contest).Error; err != nil {
			return translateError(err)
		}

		var count int64
		if err := tx.Model(&models.Question{}).Where("contest_id = ?", contestID).Count(&count).Error; err != nil {
			return err
		}

		question.ContestID = contestID
		question.Position = int(count)
		if err := tx.Create(question).Error; err != nil {
			return translateError(err)
		}

		return tx.Model(&models.Contest{}).
			Where("id = ?", contestID).
			Update("updated_at", time.Now().UTC()).Error
	})
}
