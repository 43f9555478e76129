package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission is one student's code answer to one contest question.
type Submission struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	ContestID     string    `gorm:"size:64;not null;index:idx_submission_lookup,priority:1" json:"contest_id"`
	StudentEmail  string    `gorm:"size:255;not null;index:idx_submission_lookup,priority:2" json:"student_email"`
	QuestionID    string    `gorm:"size:64;index" json:"question_id"`
	QuestionTitle string    `gorm:"size:255;not null" json:"question_title"`
	Code          string    `gorm:"type:text;not null" json:"code"`
	Language      string    `gorm:"size:64;not null" json:"language"`
	SubmittedAt   time.Time `gorm:"not null" json:"submitted_at"`
}

// BeforeCreate fills the identifier and the submission timestamp.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now().UTC()
	}
	return nil
}
