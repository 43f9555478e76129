package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/codecontest-api/internal/models"
)

type mongoUserRepository struct {
	store *MongoStore
}

// NewMongoUserRepository constructs a document store backed user repository.
func NewMongoUserRepository(store *MongoStore) UserRepository {
	return &mongoUserRepository{store: store}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	doc := newUserDocument(*user)
	doc.ID = primitive.NewObjectID()
	if err := r.store.InsertOne(ctx, usersCollection, doc); err != nil {
		return translateError(err)
	}

	user.ID = doc.ID.Hex()
	return nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}

	var doc userDocument
	if err := r.store.FindOne(ctx, usersCollection, filter).Decode(&doc); err != nil {
		return models.User{}, translateError(err)
	}
	return doc.toModel()
}

type mongoContestRepository struct {
	store *MongoStore
}

// NewMongoContestRepository constructs a document store backed contest repository.
func NewMongoContestRepository(store *MongoStore) ContestRepository {
	return &mongoContestRepository{store: store}
}

func (r *mongoContestRepository) Create(ctx context.Context, contest *models.Contest) error {
	now := time.Now().UTC()
	if contest.CreatedAt.IsZero() {
		contest.CreatedAt = now
	}
	contest.UpdatedAt = now

	doc := newContestDocument(*contest)
	doc.ID = primitive.NewObjectID()
	if err := r.store.InsertOne(ctx, contestsCollection, doc); err != nil {
		return translateError(err)
	}

	contest.ID = doc.ID.Hex()
	for i := range contest.Questions {
		contest.Questions[i].ContestID = contest.ID
		contest.Questions[i].Position = i
	}
	return nil
}

func (r *mongoContestRepository) GetByID(ctx context.Context, id string) (models.Contest, error) {
	oid, err := objectIDFromHex(id)
	if err != nil {
		return models.Contest{}, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoContestRepository) GetByCode(ctx context.Context, code string) (models.Contest, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.findOne(ctx, bson.M{"contest_code": code}, opts)
}

func (r *mongoContestRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (models.Contest, error) {
	var doc contestDocument
	if err := r.store.FindOne(ctx, contestsCollection, filter, opts...).Decode(&doc); err != nil {
		return models.Contest{}, translateError(err)
	}
	return doc.toModel()
}

func (r *mongoContestRepository) List(ctx context.Context, filter ContestFilter) ([]models.Contest, error) {
	query := bson.M{}
	if filter.ActiveOnly {
		query["is_active"] = true
	}
	if filter.TeacherEmail != "" {
		query["teacher_email"] = filter.TeacherEmail
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.store.FindMany(ctx, contestsCollection, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find contests: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []contestDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode contests: %w", err)
	}

	contests := make([]models.Contest, 0, len(docs))
	for _, doc := range docs {
		contest, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		contests = append(contests, contest)
	}
	return contests, nil
}

func (r *mongoContestRepository) SetActive(ctx context.Context, id string, active bool) error {
	oid, err := objectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now().UTC()}}
	result, err := r.store.UpdateOne(ctx, contestsCollection, bson.M{"_id": oid}, update)
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoContestRepository) AppendQuestion(ctx context.Context, contestID string, question *models.Question) error {
	oid, err := objectIDFromHex(contestID)
	if err != nil {
		return err
	}

	update := bson.M{
		"$push": bson.M{"questions": newQuestionDocument(*question)},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"questions": 1})

	var doc contestDocument
	if err := r.store.FindOneAndUpdate(ctx, contestsCollection, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return translateError(err)
	}

	question.ContestID = contestID
	question.Position = len(doc.Questions) - 1
	return nil
}

type mongoSubmissionRepository struct {
	store *MongoStore
}

// NewMongoSubmissionRepository constructs a document store backed submission repository.
func NewMongoSubmissionRepository(store *MongoStore) SubmissionRepository {
	return &mongoSubmissionRepository{store: store}
}

func submissionQuery(filter SubmissionFilter) bson.M {
	query := bson.M{}
	if filter.ContestID != "" {
		query["contest_id"] = filter.ContestID
	}
	if filter.StudentEmail != "" {
		query["student_email"] = filter.StudentEmail
	}
	if filter.QuestionID != "" {
		query["question_id"] = filter.QuestionID
	}
	return query
}

func (r *mongoSubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}

	doc := newSubmissionDocument(*submission)
	doc.ID = primitive.NewObjectID()
	if err := r.store.InsertOne(ctx, submissionsCollection, doc); err != nil {
		return translateError(err)
	}

	submission.ID = doc.ID.Hex()
	return nil
}

func (r *mongoSubmissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})
	cursor, err := r.store.FindMany(ctx, submissionsCollection, submissionQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []submissionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}

	submissions := make([]models.Submission, 0, len(docs))
	for _, doc := range docs {
		submission, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}
	return submissions, nil
}

func (r *mongoSubmissionRepository) Exists(ctx context.Context, filter SubmissionFilter) (bool, error) {
	count, err := r.store.CountDocuments(ctx, submissionsCollection, submissionQuery(filter), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type mongoAnalysisRepository struct {
	store *MongoStore
}

// NewMongoAnalysisRepository constructs a document store backed analysis repository.
func NewMongoAnalysisRepository(store *MongoStore) AnalysisRepository {
	return &mongoAnalysisRepository{store: store}
}

func (r *mongoAnalysisRepository) Create(ctx context.Context, record *models.AnalysisRecord) error {
	if record.SubmissionTimestamp.IsZero() {
		record.SubmissionTimestamp = time.Now().UTC()
	}

	doc, err := newAnalysisDocument(*record)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if err := r.store.InsertOne(ctx, analysesCollection, doc); err != nil {
		return translateError(err)
	}

	record.ID = doc.ID.Hex()
	return nil
}
