package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/codecontest-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Contest{}, &models.Question{}, &models.Submission{}, &models.AnalysisRecord{}))
	return db
}

func TestUserRepositoryRejectsDuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@example.com", Username: "a", PasswordHash: "x", Role: models.RoleTeacher}))
	err := repo.Create(ctx, &models.User{Email: "a@example.com", Username: "b", PasswordHash: "y", Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrDuplicate)

	user, err := repo.GetByEmail(ctx, " A@example.com ")
	require.NoError(t, err)
	require.Equal(t, "a", user.Username)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestContestRepositoryKeepsQuestionOrder(t *testing.T) {
	repo := NewContestRepository(setupTestDB(t))
	ctx := context.Background()

	contest := models.Contest{
		TeacherEmail: "t@example.com",
		Title:        "Loops101",
		ContestCode:  "AB12CD",
		Questions: []models.Question{
			{Title: "Sum Array"},
			{Title: "Reverse String"},
		},
	}
	require.NoError(t, repo.Create(ctx, &contest))
	require.NotEmpty(t, contest.ID)

	third := models.Question{Title: "FizzBuzz"}
	require.NoError(t, repo.AppendQuestion(ctx, contest.ID, &third))
	require.Equal(t, 2, third.Position)

	stored, err := repo.GetByCode(ctx, "AB12CD")
	require.NoError(t, err)
	require.Len(t, stored.Questions, 3)
	require.Equal(t, "Sum Array", stored.Questions[0].Title)
	require.Equal(t, "Reverse String", stored.Questions[1].Title)
	require.Equal(t, "FizzBuzz", stored.Questions[2].Title)

	err = repo.AppendQuestion(ctx, "missing", &models.Question{Title: "Nope"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestContestRepositoryFiltersAndActivation(t *testing.T) {
	repo := NewContestRepository(setupTestDB(t))
	ctx := context.Background()

	first := models.Contest{TeacherEmail: "a@example.com", Title: "A", ContestCode: "AAAAAA"}
	second := models.Contest{TeacherEmail: "b@example.com", Title: "B", ContestCode: "BBBBBB"}
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))

	require.NoError(t, repo.SetActive(ctx, second.ID, true))

	active, err := repo.List(ctx, ContestFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, second.ID, active[0].ID)

	mine, err := repo.List(ctx, ContestFilter{TeacherEmail: "a@example.com"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, first.ID, mine[0].ID)

	require.ErrorIs(t, repo.SetActive(ctx, "missing", true), ErrNotFound)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSubmissionRepositoryFilters(t *testing.T) {
	repo := NewSubmissionRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Submission{ContestID: "c1", StudentEmail: "s1@example.com", QuestionID: "q1", QuestionTitle: "Sum", Code: "x", Language: "go"}))
	require.NoError(t, repo.Create(ctx, &models.Submission{ContestID: "c1", StudentEmail: "s2@example.com", QuestionID: "q1", QuestionTitle: "Sum", Code: "y", Language: "go"}))
	require.NoError(t, repo.Create(ctx, &models.Submission{ContestID: "c2", StudentEmail: "s1@example.com", QuestionID: "q9", QuestionTitle: "Other", Code: "z", Language: "go"}))

	all, err := repo.List(ctx, SubmissionFilter{ContestID: "c1"})
	require.NoError(t, err)
	require.Len(t, all, 2)

	own, err := repo.List(ctx, SubmissionFilter{ContestID: "c1", StudentEmail: "s1@example.com"})
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, "x", own[0].Code)

	exists, err := repo.Exists(ctx, SubmissionFilter{ContestID: "c2", StudentEmail: "s1@example.com", QuestionID: "q9"})
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.Exists(ctx, SubmissionFilter{ContestID: "c2", StudentEmail: "s2@example.com", QuestionID: "q9"})
	require.NoError(t, err)
	require.False(t, exists)
}

func TestAnalysisRepositoryCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalysisRepository(db)

	record := models.AnalysisRecord{Code: "print(1)", Language: "python", PlagiarismAnalysis: []byte(`{"plagiarism_detected":false}`), SubmitterEmail: "s@example.com", SubmitterRole: models.RoleStudent}
	require.NoError(t, repo.Create(context.Background(), &record))
	require.NotEmpty(t, record.ID)

	var stored models.AnalysisRecord
	require.NoError(t, db.First(&stored, "id = ?", record.ID).Error)
	require.JSONEq(t, `{"plagiarism_detected":false}`, string(stored.PlagiarismAnalysis))
}
