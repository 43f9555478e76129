package repository

import (
	"gorm.io/gorm"
)

// Set bundles the repositories for one storage backend.
type Set struct {
	Users       UserRepository
	Contests    ContestRepository
	Submissions SubmissionRepository
	Analyses    AnalysisRepository
}

// NewGormSet builds repositories over a relational database.
func NewGormSet(db *gorm.DB) Set {
	return Set{
		Users:       NewUserRepository(db),
		Contests:    NewContestRepository(db),
		Submissions: NewSubmissionRepository(db),
		Analyses:    NewAnalysisRepository(db),
	}
}

// NewMongoSet builds repositories over the document store.
func NewMongoSet(store *MongoStore) Set {
	return Set{
		Users:       NewMongoUserRepository(store),
		Contests:    NewMongoContestRepository(store),
		Submissions: NewMongoSubmissionRepository(store),
		Analyses:    NewMongoAnalysisRepository(store),
	}
}
