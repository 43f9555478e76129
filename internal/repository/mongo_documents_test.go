package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/noah-isme/codecontest-api/internal/models"
)

func TestContestDocumentRoundTrip(t *testing.T) {
	contest := models.Contest{
		TeacherEmail: "t@example.com",
		Title:        "Loops101",
		ContestCode:  "AB12CD",
		Questions: []models.Question{
			{ID: "q-1", Title: "Sum Array", SampleInput: "1 2", SampleOutput: "3"},
			{ID: "q-2", Title: "Reverse String"},
		},
	}

	doc := newContestDocument(contest)
	doc.ID = primitive.NewObjectID()

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var decoded contestDocument
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	model, err := decoded.toModel()
	require.NoError(t, err)
	require.Equal(t, doc.ID.Hex(), model.ID)
	require.Len(t, model.Questions, 2)
	require.Equal(t, "q-2", model.Questions[1].ID)
	require.Equal(t, 1, model.Questions[1].Position)
	require.Equal(t, model.ID, model.Questions[0].ContestID)
}

func TestContestDocumentValidatesOnRead(t *testing.T) {
	_, err := contestDocument{ID: primitive.NewObjectID(), Title: "no owner"}.toModel()
	require.ErrorIs(t, err, ErrInvalidDocument)

	_, err = contestDocument{
		ID:           primitive.NewObjectID(),
		TeacherEmail: "t@example.com",
		ContestCode:  "AB12CD",
		Questions:    []questionDocument{{ID: "q"}},
	}.toModel()
	require.ErrorIs(t, err, ErrInvalidDocument)
}

func TestUserDocumentRejectsUnknownRole(t *testing.T) {
	doc := userDocument{ID: primitive.NewObjectID(), Email: "a@example.com", PasswordHash: "hash", Role: "admin", CreatedAt: time.Now()}
	_, err := doc.toModel()
	require.ErrorIs(t, err, ErrInvalidDocument)

	doc.Role = "Teacher"
	user, err := doc.toModel()
	require.NoError(t, err)
	require.Equal(t, models.RoleTeacher, user.Role)
}

func TestSubmissionDocumentMapping(t *testing.T) {
	submission := models.Submission{ContestID: "c", StudentEmail: "s@example.com", QuestionTitle: "Sum", Code: "x", Language: "go", SubmittedAt: time.Now().UTC()}
	doc := newSubmissionDocument(submission)
	doc.ID = primitive.NewObjectID()

	model, err := doc.toModel()
	require.NoError(t, err)
	require.Equal(t, doc.ID.Hex(), model.ID)
	require.Equal(t, "Sum", model.QuestionTitle)

	_, err = submissionDocument{}.toModel()
	require.ErrorIs(t, err, ErrInvalidDocument)
}

func TestAnalysisDocumentDecodesVerdict(t *testing.T) {
	doc, err := newAnalysisDocument(models.AnalysisRecord{
		Code:               "print(1)",
		PlagiarismAnalysis: []byte(`{"confidence_score": 42, "plagiarism_detected": true}`),
		SubmitterRole:      models.RoleStudent,
	})
	require.NoError(t, err)
	require.Equal(t, float64(42), doc.PlagiarismAnalysis["confidence_score"])
	require.Equal(t, "student", doc.SubmitterRole)

	_, err = newAnalysisDocument(models.AnalysisRecord{PlagiarismAnalysis: []byte(`{`)})
	require.Error(t, err)
}

func TestObjectIDFromHexTreatsGarbageAsMissing(t *testing.T) {
	_, err := objectIDFromHex("not-an-id")
	require.ErrorIs(t, err, ErrNotFound)

	id := primitive.NewObjectID()
	parsed, err := objectIDFromHex(id.Hex())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}
