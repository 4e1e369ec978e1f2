package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"training-log/internal/errs"
	"training-log/internal/model"
)

// ExerciseRepository handles CRUD for the exercise catalog. Lookups that
// find nothing return errs.ErrNotFound so callers can branch on it without
// touching gorm.
type ExerciseRepository struct {
	db *gorm.DB
}

func NewExerciseRepository(db *gorm.DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

func (r *ExerciseRepository) Insert(ctx context.Context, exercise *model.Exercise) error {
	if err := r.db.WithContext(ctx).Create(exercise).Error; err != nil {
		return fmt.Errorf("insert exercise: %w", err)
	}
	return nil
}

func (r *ExerciseRepository) Update(ctx context.Context, exercise *model.Exercise) error {
	if err := r.db.WithContext(ctx).Save(exercise).Error; err != nil {
		return fmt.Errorf("update exercise: %w", err)
	}
	return nil
}

// GetAll returns every exercise, active or not, in display order.
func (r *ExerciseRepository) GetAll(ctx context.Context) ([]model.Exercise, error) {
	var exercises []model.Exercise
	if err := r.db.WithContext(ctx).Order("order_index ASC, created_at ASC").Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

// GetActive returns the selectable catalog in display order.
func (r *ExerciseRepository) GetActive(ctx context.Context) ([]model.Exercise, error) {
	var exercises []model.Exercise
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).
		Order("order_index ASC, created_at ASC").
		Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *ExerciseRepository) GetByID(ctx context.Context, id string) (*model.Exercise, error) {
	var exercise model.Exercise
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&exercise).Error
	switch {
	case err == nil:
		return &exercise, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("exercise %s: %w", id, errs.ErrNotFound)
	default:
		return nil, fmt.Errorf("find exercise: %w", err)
	}
}

// GetByName matches active exercises only.
func (r *ExerciseRepository) GetByName(ctx context.Context, name string) (*model.Exercise, error) {
	var exercise model.Exercise
	err := r.db.WithContext(ctx).Where("name = ? AND is_active = ?", name, true).First(&exercise).Error
	switch {
	case err == nil:
		return &exercise, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("exercise %q: %w", name, errs.ErrNotFound)
	default:
		return nil, fmt.Errorf("find exercise by name: %w", err)
	}
}

// GetByNameAny matches by name regardless of the active flag. The add path
// uses it to decide between reviving a soft-deleted row and inserting.
func (r *ExerciseRepository) GetByNameAny(ctx context.Context, name string) (*model.Exercise, error) {
	var exercise model.Exercise
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&exercise).Error
	switch {
	case err == nil:
		return &exercise, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("exercise %q: %w", name, errs.ErrNotFound)
	default:
		return nil, fmt.Errorf("find exercise by name: %w", err)
	}
}

// SoftDelete clears the active flag; the row and its records stay.
func (r *ExerciseRepository) SoftDelete(ctx context.Context, id, updatedAt string) error {
	res := r.db.WithContext(ctx).Model(&model.Exercise{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": updatedAt})
	if res.Error != nil {
		return fmt.Errorf("soft delete exercise: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("exercise %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

// UpdateOrder rewrites one exercise's position. The order swap calls it
// twice inside a transaction.
func (r *ExerciseRepository) UpdateOrder(ctx context.Context, id string, orderIndex int, updatedAt string) error {
	res := r.db.WithContext(ctx).Model(&model.Exercise{}).Where("id = ?", id).
		Updates(map[string]interface{}{"order_index": orderIndex, "updated_at": updatedAt})
	if res.Error != nil {
		return fmt.Errorf("update exercise order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("exercise %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (r *ExerciseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Exercise{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count exercises: %w", err)
	}
	return count, nil
}
