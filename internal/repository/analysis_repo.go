package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/codecontest-api/internal/models"
)

// AnalysisRepository stores plagiarism verdicts.
type AnalysisRepository interface {
	Create(ctx context.Context, record *models.AnalysisRecord) error
}

type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository constructs a gorm backed analysis repository.
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(ctx context.Context, record *models.AnalysisRecord) error {
	return translateError(r.db.WithContext(ctx).Create(record).Error)
}
