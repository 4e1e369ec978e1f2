package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"training-log/internal/clock"
	"training-log/internal/errs"
	"training-log/internal/model"
	"training-log/internal/repository"
)

// RecordInput carries the user-entered fields of a training record.
type RecordInput struct {
	Date         string // YYYY-MM-DD
	ExerciseName string
	Count        int
	Sets         int
	Weight       *float64 // nil = bodyweight
}

// RecordService owns the training record lifecycle and the queries the
// views are built from.
type RecordService struct {
	store *repository.Store
	clock clock.Clock
}

func NewRecordService(store *repository.Store, clk clock.Clock) *RecordService {
	return &RecordService{store: store, clock: clk}
}

// Add validates and persists a new record, generating id and timestamps.
func (s *RecordService) Add(ctx context.Context, input RecordInput) (*model.TrainingRecord, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.clock.NowISO()
	record := &model.TrainingRecord{
		ID:           s.clock.NewID(),
		Date:         input.Date,
		ExerciseName: strings.TrimSpace(input.ExerciseName),
		Count:        input.Count,
		Sets:         input.Sets,
		Weight:       input.Weight,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Records.Insert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Update replaces the stored fields of the record with the given id and
// refreshes its update timestamp.
func (s *RecordService) Update(ctx context.Context, id string, input RecordInput) (*model.TrainingRecord, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.store.Records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Date = input.Date
	existing.ExerciseName = strings.TrimSpace(input.ExerciseName)
	existing.Count = input.Count
	existing.Sets = input.Sets
	existing.Weight = input.Weight
	existing.UpdatedAt = s.clock.NowISO()

	if err := s.store.Records.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *RecordService) Delete(ctx context.Context, id string) error {
	return s.store.Records.DeleteByID(ctx, id)
}

func (s *RecordService) ByID(ctx context.Context, id string) (*model.TrainingRecord, error) {
	return s.store.Records.GetByID(ctx, id)
}

// All returns the full history, date descending then creation descending.
func (s *RecordService) All(ctx context.Context) ([]model.TrainingRecord, error) {
	return s.store.Records.GetAll(ctx)
}

// ByDateRange returns records within [start, end], oldest first.
func (s *RecordService) ByDateRange(ctx context.Context, start, end string) ([]model.TrainingRecord, error) {
	return s.store.Records.GetByDateRange(ctx, start, end)
}

func (s *RecordService) ByExercise(ctx context.Context, name string) ([]model.TrainingRecord, error) {
	return s.store.Records.GetByExercise(ctx, name)
}

// LatestByExercise returns the newest record for an exercise, date first
// then update time. The entry form pre-fills count/sets/weight from it;
// errs.ErrNotFound means the exercise was never logged.
func (s *RecordService) LatestByExercise(ctx context.Context, name string) (*model.TrainingRecord, error) {
	return s.store.Records.GetLatestByExercise(ctx, name)
}

// RenameExercise is the cascade primitive behind an exercise rename: every
// record of oldName moves to newName in one bulk update. The catalog
// service drives it inside the rename transaction.
func (s *RecordService) RenameExercise(ctx context.Context, oldName, newName string) error {
	return s.store.Records.RenameExercise(ctx, oldName, newName, s.clock.NowISO())
}

func validateInput(input RecordInput) error {
	if _, err := time.Parse(clock.DateFormat, input.Date); err != nil {
		return fmt.Errorf("date %q is not YYYY-MM-DD: %w", input.Date, errs.ErrValidation)
	}
	if strings.TrimSpace(input.ExerciseName) == "" {
		return fmt.Errorf("exercise name is blank: %w", errs.ErrValidation)
	}
	if input.Count <= 0 {
		return fmt.Errorf("count must be positive: %w", errs.ErrValidation)
	}
	if input.Sets <= 0 {
		return fmt.Errorf("sets must be positive: %w", errs.ErrValidation)
	}
	if input.Weight != nil && *input.Weight <= 0 {
		return fmt.Errorf("weight must be positive when set: %w", errs.ErrValidation)
	}
	return nil
}
