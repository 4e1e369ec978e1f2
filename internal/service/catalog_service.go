package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"training-log/internal/clock"
	"training-log/internal/errs"
	"training-log/internal/model"
	"training-log/internal/repository"
)

// MoveDirection tells Move which way to shift an exercise in the catalog.
type MoveDirection int

const (
	MoveUp MoveDirection = iota
	MoveDown
)

// SeedExercise is one entry of the default catalog.
type SeedExercise struct {
	Name  string
	Color string
}

// DefaultExercises is the catalog seeded into an empty database on first
// start.
var DefaultExercises = []SeedExercise{
	{"Leg Press", "#ef4444"},
	{"Chest Press", "#f97316"},
	{"Lat Pulldown", "#f59e0b"},
	{"Ab Bench", "#84cc16"},
	{"Abduction", "#10b981"},
	{"Adduction", "#06b6d4"},
	{"Dips", "#3b82f6"},
	{"Shoulder Press", "#6366f1"},
	{"Biceps Curl", "#8b5cf6"},
	{"Pilates", "#f65cee"},
}

// CatalogService owns the exercise catalog lifecycle: add with
// revive-on-name-match, rename with record cascade, soft delete, reorder
// and default seeding. At most one active exercise carries a given name at
// any time.
type CatalogService struct {
	store *repository.Store
	clock clock.Clock
}

func NewCatalogService(store *repository.Store, clk clock.Clock) *CatalogService {
	return &CatalogService{store: store, clock: clk}
}

// Add creates an exercise, or revives a soft-deleted one of the same name.
// Adding a name that is already active fails with errs.ErrDuplicateName.
// Either way the exercise ends up last in the active ordering.
func (s *CatalogService) Add(ctx context.Context, name, color string) (*model.Exercise, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("exercise name is blank: %w", errs.ErrValidation)
	}

	existing, err := s.store.Exercises.GetByNameAny(ctx, trimmed)
	switch {
	case err == nil && existing.IsActive:
		return nil, fmt.Errorf("exercise %q: %w", trimmed, errs.ErrDuplicateName)
	case err == nil:
		// Revive keeps the id and createdAt of the soft-deleted row.
		order, oErr := s.nextOrder(ctx)
		if oErr != nil {
			return nil, oErr
		}
		existing.Color = color
		existing.OrderIndex = order
		existing.IsActive = true
		existing.UpdatedAt = s.clock.NowISO()
		if uErr := s.store.Exercises.Update(ctx, existing); uErr != nil {
			return nil, uErr
		}
		return existing, nil
	case errors.Is(err, errs.ErrNotFound):
		// fall through to insert
	default:
		return nil, err
	}

	order, err := s.nextOrder(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.NowISO()
	exercise := &model.Exercise{
		ID:         s.clock.NewID(),
		Name:       trimmed,
		Color:      color,
		OrderIndex: order,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Exercises.Insert(ctx, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

// Update renames and/or recolors an exercise. A name change cascades into
// every training record carrying the old name; the exercise update and the
// cascade commit as one transaction so a crash cannot leave them split.
// Renaming onto a name held by another active exercise fails with
// errs.ErrDuplicateName.
func (s *CatalogService) Update(ctx context.Context, id, name, color string) (*model.Exercise, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("exercise name is blank: %w", errs.ErrValidation)
	}

	existing, err := s.store.Exercises.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldName := existing.Name
	now := s.clock.NowISO()

	if oldName == trimmed {
		existing.Color = color
		existing.UpdatedAt = now
		if err := s.store.Exercises.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	// A rename must not collide with another active exercise, otherwise the
	// cascade would merge two record histories under one name.
	taken, err := s.store.Exercises.GetByName(ctx, trimmed)
	switch {
	case err == nil && taken.ID != existing.ID:
		return nil, fmt.Errorf("exercise %q: %w", trimmed, errs.ErrDuplicateName)
	case err != nil && !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	existing.Name = trimmed
	existing.Color = color
	existing.UpdatedAt = now

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := tx.Exercises.Update(ctx, existing); err != nil {
			return err
		}
		return tx.Records.RenameExercise(ctx, oldName, trimmed, now)
	})
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// SoftDelete hides the exercise from selection lists. Its records keep the
// name and still chart with the last known color.
func (s *CatalogService) SoftDelete(ctx context.Context, id string) error {
	return s.store.Exercises.SoftDelete(ctx, id, s.clock.NowISO())
}

// Move swaps the exercise's order value with its neighbour among the active
// exercises. At the boundary it reports false and changes nothing. The two
// writes commit as one transaction.
func (s *CatalogService) Move(ctx context.Context, id string, direction MoveDirection) (bool, error) {
	active, err := s.store.Exercises.GetActive(ctx)
	if err != nil {
		return false, err
	}

	index := -1
	for i := range active {
		if active[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return false, fmt.Errorf("exercise %s: %w", id, errs.ErrNotFound)
	}

	target := index - 1
	if direction == MoveDown {
		target = index + 1
	}
	if target < 0 || target >= len(active) {
		return false, nil
	}

	current, neighbour := active[index], active[target]
	now := s.clock.NowISO()
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := tx.Exercises.UpdateOrder(ctx, current.ID, neighbour.OrderIndex, now); err != nil {
			return err
		}
		return tx.Exercises.UpdateOrder(ctx, neighbour.ID, current.OrderIndex, now)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// SeedDefaultsIfNeeded fills an empty catalog with the given defaults,
// ordered as listed and sharing one timestamp. A non-empty catalog is left
// alone, so calling this on every start is safe.
func (s *CatalogService) SeedDefaultsIfNeeded(ctx context.Context, defaults []SeedExercise) error {
	count, err := s.store.Exercises.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := s.clock.NowISO()
	return s.store.InTx(ctx, func(tx *repository.Store) error {
		for i, def := range defaults {
			exercise := &model.Exercise{
				ID:         s.clock.NewID(),
				Name:       def.Name,
				Color:      def.Color,
				OrderIndex: i,
				IsActive:   true,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.Exercises.Insert(ctx, exercise); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *CatalogService) All(ctx context.Context) ([]model.Exercise, error) {
	return s.store.Exercises.GetAll(ctx)
}

func (s *CatalogService) Active(ctx context.Context) ([]model.Exercise, error) {
	return s.store.Exercises.GetActive(ctx)
}

func (s *CatalogService) ByID(ctx context.Context, id string) (*model.Exercise, error) {
	return s.store.Exercises.GetByID(ctx, id)
}

// ByName resolves active exercises only.
func (s *CatalogService) ByName(ctx context.Context, name string) (*model.Exercise, error) {
	return s.store.Exercises.GetByName(ctx, name)
}

// ByNameAny resolves active and soft-deleted exercises.
func (s *CatalogService) ByNameAny(ctx context.Context, name string) (*model.Exercise, error) {
	return s.store.Exercises.GetByNameAny(ctx, name)
}

// nextOrder places new and revived exercises after every active one.
func (s *CatalogService) nextOrder(ctx context.Context) (int, error) {
	active, err := s.store.Exercises.GetActive(ctx)
	if err != nil {
		return 0, err
	}
	max := -1
	for i := range active {
		if active[i].OrderIndex > max {
			max = active[i].OrderIndex
		}
	}
	return max + 1, nil
}
