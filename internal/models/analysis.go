package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalysisRecord stores a successful plagiarism verdict next to the code it describes.
// Contest fields are empty for standalone checks.
type AnalysisRecord struct {
	ID                    string         `gorm:"primaryKey;size:64" json:"id"`
	SubmissionID          string         `gorm:"size:64;index" json:"submission_id,omitempty"`
	ContestID             string         `gorm:"size:64;index" json:"contest_id,omitempty"`
	QuestionTitle         string         `gorm:"size:255" json:"question_title,omitempty"`
	Code                  string         `gorm:"type:text" json:"code"`
	Language              string         `gorm:"size:64" json:"language"`
	CourseLevel           string         `gorm:"size:64" json:"course_level,omitempty"`
	AssignmentDescription string         `gorm:"type:text" json:"assignment_description,omitempty"`
	StudentID             string         `gorm:"size:255" json:"student_id,omitempty"`
	AssignmentID          string         `gorm:"size:255" json:"assignment_id,omitempty"`
	PlagiarismAnalysis    datatypes.JSON `json:"plagiarism_analysis"`
	Provider              string         `gorm:"size:32" json:"provider"`
	Model                 string         `gorm:"size:64" json:"model"`
	SubmissionTimestamp   time.Time      `json:"submission_timestamp"`
	SubmitterEmail        string         `gorm:"size:255;index" json:"submitter_email"`
	SubmitterRole         Role           `gorm:"size:16" json:"submitter_role"`
}

// BeforeCreate fills the identifier and the analysis timestamp.
func (a *AnalysisRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.SubmissionTimestamp.IsZero() {
		a.SubmissionTimestamp = time.Now().UTC()
	}
	return nil
}
