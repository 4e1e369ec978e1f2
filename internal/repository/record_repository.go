package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"training-log/internal/errs"
	"training-log/internal/model"
)

// RecordRepository handles CRUD for training records.
//
// Ordering matters here: date strings are fixed-width YYYY-MM-DD, so the
// lexical ordering SQLite applies is the calendar ordering. The latest
// lookup must keep the exact "date DESC, updated_at DESC" tie-break because
// the entry form pre-fills from its result.
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Insert(ctx context.Context, record *model.TrainingRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *RecordRepository) Update(ctx context.Context, record *model.TrainingRecord) error {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}

func (r *RecordRepository) DeleteByID(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.TrainingRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("record %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (r *RecordRepository) GetByID(ctx context.Context, id string) (*model.TrainingRecord, error) {
	var record model.TrainingRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	switch {
	case err == nil:
		return &record, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("record %s: %w", id, errs.ErrNotFound)
	default:
		return nil, fmt.Errorf("find record: %w", err)
	}
}

// GetAll returns the full history, newest day first.
func (r *RecordRepository) GetAll(ctx context.Context) ([]model.TrainingRecord, error) {
	var records []model.TrainingRecord
	if err := r.db.WithContext(ctx).Order("date DESC, created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetByDateRange returns records with start <= date <= end, oldest first.
func (r *RecordRepository) GetByDateRange(ctx context.Context, start, end string) ([]model.TrainingRecord, error) {
	var records []model.TrainingRecord
	if err := r.db.WithContext(ctx).Where("date BETWEEN ? AND ?", start, end).
		Order("date ASC, created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *RecordRepository) GetByExercise(ctx context.Context, name string) ([]model.TrainingRecord, error) {
	var records []model.TrainingRecord
	if err := r.db.WithContext(ctx).Where("exercise_name = ?", name).
		Order("date DESC, updated_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetLatestByExercise returns the most recent record for the exercise, date
// first, then update time.
func (r *RecordRepository) GetLatestByExercise(ctx context.Context, name string) (*model.TrainingRecord, error) {
	var record model.TrainingRecord
	err := r.db.WithContext(ctx).Where("exercise_name = ?", name).
		Order("date DESC, updated_at DESC").
		First(&record).Error
	switch {
	case err == nil:
		return &record, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("latest record for %q: %w", name, errs.ErrNotFound)
	default:
		return nil, fmt.Errorf("find latest record: %w", err)
	}
}

// RenameExercise points every record of oldName at newName in one bulk
// update. Rows of other exercises are untouched.
func (r *RecordRepository) RenameExercise(ctx context.Context, oldName, newName, updatedAt string) error {
	if err := r.db.WithContext(ctx).Model(&model.TrainingRecord{}).
		Where("exercise_name = ?", oldName).
		Updates(map[string]interface{}{"exercise_name": newName, "updated_at": updatedAt}).Error; err != nil {
		return fmt.Errorf("rename exercise records: %w", err)
	}
	return nil
}
