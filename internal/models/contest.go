package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContestState is the lifecycle state derived from the active flag.
type ContestState string

// Contest lifecycle states.
const (
	ContestStateDraft ContestState = "draft"
	ContestStateLive  ContestState = "live"
)

// Contest is a teacher-owned set of questions with a join code and an active flag.
type Contest struct {
	ID           string     `gorm:"primaryKey;size:64" json:"id"`
	TeacherEmail string     `gorm:"size:255;not null;index" json:"teacher_email"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	ContestCode  string     `gorm:"size:16;not null;index" json:"contest_code"`
	IsActive     bool       `gorm:"not null;default:false;index" json:"is_active"`
	Questions    []Question `gorm:"foreignKey:ContestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BeforeCreate assigns a string identifier when the store does not provide one.
func (c *Contest) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// State reports the lifecycle state of the contest.
func (c Contest) State() ContestState {
	if c.IsActive {
		return ContestStateLive
	}
	return ContestStateDraft
}

// OwnedBy reports whether the given email owns the contest.
func (c Contest) OwnedBy(email string) bool {
	return email != "" && c.TeacherEmail == email
}

// FindQuestion looks a question up by stable id first and falls back to an exact title match.
func (c Contest) FindQuestion(id, title string) (Question, bool) {
	if id != "" {
		for _, question := range c.Questions {
			if question.ID == id {
				return question, true
			}
		}
		return Question{}, false
	}

	for _, question := range c.Questions {
		if question.Title == title {
			return question, true
		}
	}
	return Question{}, false
}

// HasQuestionTitled reports whether a question with the exact title already exists.
func (c Contest) HasQuestionTitled(title string) bool {
	_, ok := c.FindQuestion("", title)
	return ok
}

// Question is embedded in a contest and addressed by its stable id or its title.
type Question struct {
	ID           string `gorm:"primaryKey;size:64" json:"id"`
	ContestID    string `gorm:"size:64;not null;index" json:"-"`
	Position     int    `gorm:"not null;default:0" json:"position"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	SampleInput  string `gorm:"type:text" json:"sample_input"`
	SampleOutput string `gorm:"type:text" json:"sample_output"`
}

// TableName keeps question rows in their own table.
func (Question) TableName() string {
	return "contest_questions"
}

// BeforeCreate assigns a string identifier when the service did not provide one.
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
