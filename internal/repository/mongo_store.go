package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the document store backend.
const (
	usersCollection       = "users"
	contestsCollection    = "contests"
	submissionsCollection = "submissions"
	analysesCollection    = "analyses"
)

// MongoStore is a thin wrapper over a mongo database shared by the document repositories.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore wraps the provided database handle.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) InsertOne(ctx context.Context, collection string, document interface{}, opts ...*options.InsertOneOptions) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, document, opts...)
	return err
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	return s.db.Collection(collection).FindOne(ctx, filter, opts...)
}

func (s *MongoStore) FindMany(ctx context.Context, collection string, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	return s.db.Collection(collection).Find(ctx, filter, opts...)
}

func (s *MongoStore) UpdateOne(ctx context.Context, collection string, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return s.db.Collection(collection).UpdateOne(ctx, filter, update, opts...)
}

func (s *MongoStore) FindOneAndUpdate(ctx context.Context, collection string, filter, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	return s.db.Collection(collection).FindOneAndUpdate(ctx, filter, update, opts...)
}

func (s *MongoStore) CountDocuments(ctx context.Context, collection string, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return s.db.Collection(collection).CountDocuments(ctx, filter, opts...)
}

// Ping checks connectivity of the underlying client.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// EnsureIndexes creates the indexes the repositories rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		contestsCollection: {
			{Keys: bson.D{{Key: "contest_code", Value: 1}}},
			{Keys: bson.D{{Key: "teacher_email", Value: 1}}},
		},
		submissionsCollection: {
			{Keys: bson.D{{Key: "contest_id", Value: 1}, {Key: "student_email", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
