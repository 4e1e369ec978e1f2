package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the per-entity repositories over one database handle. It is
// constructed once at startup and passed into the services; nothing keeps a
// global handle.
type Store struct {
	db        *gorm.DB
	Exercises *ExerciseRepository
	Records   *RecordRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Exercises: NewExerciseRepository(db),
		Records:   NewRecordRepository(db),
	}
}

// InTx runs fn against a Store bound to one transaction. Multi-row
// mutations that must not be observed half-applied (the order swap, the
// rename cascade) go through here.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(txDB *gorm.DB) error {
		return fn(NewStore(txDB))
	})
}
