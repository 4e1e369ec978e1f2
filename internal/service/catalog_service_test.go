package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"training-log/internal/errs"
	"training-log/internal/model"
)

func TestCatalogService_SeedDefaultsIsIdempotent(t *testing.T) {
	store, clk := newTestEnv(t)
	ctx := context.Background()
	svc := NewCatalogService(store, clk)

	require.NoError(t, svc.SeedDefaultsIfNeeded(ctx, DefaultExercises))

	first, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, first, len(DefaultExercises))

	require.NoError(t, svc.SeedDefaultsIfNeeded(ctx, DefaultExercises))

	second, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, second, len(DefaultExercises))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, i, second[i].OrderIndex)
		assert.Equal(t, first[i].CreatedAt, second[i].CreatedAt)
	}
}

func TestCatalogService_AddRejectsBlankName(t *testing.T) {
	store, clk := newTestEnv(t)
	svc := NewCatalogService(store, clk)

	_, err := svc.Add(context.Background(), "   ", "#ff0000")
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestCatalogService_AddRejectsActiveDuplicate(t *testing.T) {
	store, clk := newTestEnv(t)
	ctx := context.Background()
	svc := NewCatalogService(store, clk)

	_, err := svc.Add(ctx, "Squat", "#ff0000")
	require.NoError(t, err)

	_, err = svc.Add(ctx, "Squat", "#00ff00")
	require.ErrorIs(t, err, errs.ErrDuplicateName)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCatalogService_AddRevivesSoftDeleted(t *testing.T) {
	store, clk := newTestEnv(t)
	ctx := context.Background()
	svc := NewCatalogService(store, clk)

	squat, err := svc.Add(ctx, "Squat", "#ff0000")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "Bench", "#00ff00")
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, squat.ID))

	revived, err := svc.Add(ctx, "Squat", "#0000ff")
	require.NoError(t, err)

	// Same row comes back instead of a new one, reordered to the end.
	assert.Equal(t, squat.ID, revived.ID)
	assert.Equal(t, squat.CreatedAt, revived.CreatedAt)
	assert.True(t, revived.IsActive)
	assert.Equal(t, "#0000ff", revived.Color)
	assert.Equal(t, 2, revived.OrderIndex)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCatalogService_AtMostOneActivePerName(t *testing.T) {
	store, clk := newTestEnv(t)
	ctx := context.Background()
	svc := NewCatalogService(store, clk)

	first, err := svc.Add(ctx, "Row", "#111111")
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, first.ID))
	_, err = svc.Add(ctx, "Row", "#222222")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "Row", "#333333")
	require.ErrorIs(t, err, errs.ErrDuplicateName)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	active := 0
	for _, exercise := range all {
		if exercise.Name == "Row" && exercise.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestCatalogService_RenameOntoActiveNameIsRejected(t *testing.T) {
	store, clk := newTestEnv(t)
	ctx := context.Background()
	catalog := NewCatalogService(store, clk)
	records := NewRecordService(store, clk)

	_, err := catalog.Add(ctx, "Squat", "#ff0000")
	require.NoError(t, err)
	bench, err := catalog.Add(ctx, "Bench", "#00ff00")
	require.NoError(t, err)

	_, err = records.Add(ctx, RecordInput{Date: "2024-06-01", ExerciseName: "Bench", Count: 8, Sets: 3})
	require.NoError(t, err)

	_, err = catalog.Update(ctx, bench.ID, "Squat", "#00ff00")
	require.ErrorIs(t, err, errs.ErrDuplicateName)

	// Neither the exercise nor its records moved under the taken name.
	active, err := catalog.Active(ctx)
	require.NoError(t, err)
	squats := 0
	for _, exercise := range active {
		if exercise.Name == "Squat" {
			squats++
		}
	}
	assert.Equal(t, 1, squats)

	kept, err := records.ByExercise(ctx, "Bench")
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	// Renaming onto a name held only by a soft-deleted exercise stays
	// allowed.
	deleted, err := catalog.Add(ctx, "Row", "#111111")
	require.NoError(t, err)
	require.NoError(t, catalog.SoftDelete(ctx, deleted.ID))
	renamed, err := catalog.Update(ctx, bench.ID, "Row", "#00ff00")
	require.NoError(t, err)
	assert.Equal(t, "Row", renamed.Name)
}

func TestCatalogService_RenameCascadesIntoRecords(t *testing.T) {
	store, clk := newTestEnv(t)
	ctx := context.Background()
	catalog := NewCatalogService(store, clk)
	records := NewRecordService(store, clk)

	squat, err := catalog.Add(ctx, "Squat", "#ff0000")
	require.NoError(t, err)
	_, err = catalog.Add(ctx, "Bench", "#00ff00")
	require.NoError(t, err)

	for _, date := range []string{"2024-06-01", "2024-06-02"} {
		_, err = records.Add(ctx, RecordInput{Date: date, ExerciseName: "Squat", Count: 10, Sets: 3})
		require.NoError(t, err)
	}
	_, err = records.Add(ctx, RecordInput{Date: "2024-06-01", ExerciseName: "Bench", Count: 8, Sets: 3})
	require.NoError(t, err)

	_, err = catalog.Update(ctx, squat.ID, "Back Squat", "#ff0000")
	require.NoError(t, err)

	all, err := records.All(ctx)
	require.NoError(t, err)
	renamed, bench := 0, 0
	for _, record := range all {
		switch record.ExerciseName {
		case "Back Squat":
			renamed++
		case "Bench":
			bench++
		case "Squat":
			t.Fatalf("record %s still carries the old name", record.ID)
		}
	}
	assert.Equal(t, 2, renamed)
	assert.Equal(t, 1, bench)
}

func TestCatalogService_UpdateUnknownID(t *testing.T) {
	store, clk := newTestEnv(t)
	svc := NewCatalogService(store, clk)

	_, err := svc.Update(context.Background(), "missing", "Name", "#ffffff")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCatalogService_MoveSwapsOrdersAndInverts(t *testing.T) {
	store, clk := newTestEnv(t)
	ctx := context.Background()
	svc := NewCatalogService(store, clk)

	require.NoError(t, svc.SeedDefaultsIfNeeded(ctx, []SeedExercise{
		{"A", "#111111"}, {"B", "#222222"}, {"C", "#333333"},
	}))

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	middle := active[1]

	moved, err := svc.Move(ctx, middle.ID, MoveUp)
	require.NoError(t, err)
	require.True(t, moved)

	active, err = svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, activeNames(active))

	moved, err = svc.Move(ctx, middle.ID, MoveDown)
	require.NoError(t, err)
	require.True(t, moved)

	active, err = svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, activeNames(active))
	for i, exercise := range active {
		assert.Equal(t, i, exercise.OrderIndex)
	}
}

func TestCatalogService_MoveAtBoundaryIsNoOp(t *testing.T) {
	store, clk := newTestEnv(t)
	ctx := context.Background()
	svc := NewCatalogService(store, clk)

	require.NoError(t, svc.SeedDefaultsIfNeeded(ctx, []SeedExercise{
		{"A", "#111111"}, {"B", "#222222"},
	}))

	active, err := svc.Active(ctx)
	require.NoError(t, err)

	moved, err := svc.Move(ctx, active[0].ID, MoveUp)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = svc.Move(ctx, active[1].ID, MoveDown)
	require.NoError(t, err)
	assert.False(t, moved)

	after, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, activeNames(active), activeNames(after))
}

func TestCatalogService_SoftDeleteHidesFromActiveOnly(t *testing.T) {
	store, clk := newTestEnv(t)
	ctx := context.Background()
	svc := NewCatalogService(store, clk)

	squat, err := svc.Add(ctx, "Squat", "#ff0000")
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, squat.ID))

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.ByName(ctx, "Squat")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	any, err := svc.ByNameAny(ctx, "Squat")
	require.NoError(t, err)
	assert.False(t, any.IsActive)
}

func activeNames(exercises []model.Exercise) []string {
	names := make([]string, 0, len(exercises))
	for _, exercise := range exercises {
		names = append(names, exercise.Name)
	}
	return names
}
