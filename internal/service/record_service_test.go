package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"training-log/internal/errs"
)

func TestRecordService_AddValidation(t *testing.T) {
	store, clk := newTestEnv(t)
	svc := NewRecordService(store, clk)
	ctx := context.Background()

	cases := []struct {
		name  string
		input RecordInput
	}{
		{"malformed date", RecordInput{Date: "03.06.2024", ExerciseName: "Squat", Count: 10, Sets: 3}},
		{"blank exercise", RecordInput{Date: "2024-06-03", ExerciseName: "  ", Count: 10, Sets: 3}},
		{"zero count", RecordInput{Date: "2024-06-03", ExerciseName: "Squat", Count: 0, Sets: 3}},
		{"zero sets", RecordInput{Date: "2024-06-03", ExerciseName: "Squat", Count: 10, Sets: 0}},
		{"non-positive weight", RecordInput{Date: "2024-06-03", ExerciseName: "Squat", Count: 10, Sets: 3, Weight: floatPtr(0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tc.input)
			require.ErrorIs(t, err, errs.ErrValidation)
		})
	}

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRecordService_AddFillsIDAndTimestamps(t *testing.T) {
	store, clk := newTestEnv(t)
	svc := NewRecordService(store, clk)

	record, err := svc.Add(context.Background(), RecordInput{
		Date: "2024-06-03", ExerciseName: "Squat", Count: 10, Sets: 3, Weight: floatPtr(40),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "2024-06-05T10:00:00", record.CreatedAt)
	assert.Equal(t, record.CreatedAt, record.UpdatedAt)
}

func TestRecordService_AllOrdering(t *testing.T) {
	store, clk := newTestEnv(t)
	svc := NewRecordService(store, clk)
	ctx := context.Background()

	// Insert out of order; created_at advances per insert.
	for _, date := range []string{"2024-06-02", "2024-06-04", "2024-06-02"} {
		_, err := svc.Add(ctx, RecordInput{Date: date, ExerciseName: "Squat", Count: 10, Sets: 3})
		require.NoError(t, err)
		clk.Advance(time.Minute)
	}

	all, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-06-04", all[0].Date)
	// Same date: newest creation first.
	assert.Equal(t, "2024-06-02", all[1].Date)
	assert.Equal(t, "2024-06-02", all[2].Date)
	assert.Greater(t, all[1].CreatedAt, all[2].CreatedAt)
}

func TestRecordService_ByDateRangeInclusiveAscending(t *testing.T) {
	store, clk := newTestEnv(t)
	svc := NewRecordService(store, clk)
	ctx := context.Background()

	for _, date := range []string{"2024-06-01", "2024-06-03", "2024-06-07", "2024-06-10"} {
		_, err := svc.Add(ctx, RecordInput{Date: date, ExerciseName: "Squat", Count: 10, Sets: 3})
		require.NoError(t, err)
	}

	ranged, err := svc.ByDateRange(ctx, "2024-06-03", "2024-06-07")
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, "2024-06-03", ranged[0].Date)
	assert.Equal(t, "2024-06-07", ranged[1].Date)
}

func TestRecordService_LatestByExerciseTieBreak(t *testing.T) {
	store, clk := newTestEnv(t)
	svc := NewRecordService(store, clk)
	ctx := context.Background()

	// Older date but latest update time: date wins.
	_, err := svc.Add(ctx, RecordInput{Date: "2024-06-01", ExerciseName: "Squat", Count: 5, Sets: 5})
	require.NoError(t, err)
	clk.Advance(time.Minute)

	first, err := svc.Add(ctx, RecordInput{Date: "2024-06-03", ExerciseName: "Squat", Count: 10, Sets: 3})
	require.NoError(t, err)
	clk.Advance(time.Minute)

	second, err := svc.Add(ctx, RecordInput{Date: "2024-06-03", ExerciseName: "Squat", Count: 8, Sets: 3})
	require.NoError(t, err)

	latest, err := svc.LatestByExercise(ctx, "Squat")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	// Touching the earlier twin moves it ahead on the updated_at tie-break.
	clk.Advance(time.Minute)
	_, err = svc.Update(ctx, first.ID, RecordInput{Date: "2024-06-03", ExerciseName: "Squat", Count: 12, Sets: 3})
	require.NoError(t, err)

	latest, err = svc.LatestByExercise(ctx, "Squat")
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)
	assert.Equal(t, 12, latest.Count)
}

func TestRecordService_LatestByExerciseUnknownName(t *testing.T) {
	store, clk := newTestEnv(t)
	svc := NewRecordService(store, clk)

	_, err := svc.LatestByExercise(context.Background(), "Never Logged")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRecordService_UpdateRefreshesTimestamp(t *testing.T) {
	store, clk := newTestEnv(t)
	svc := NewRecordService(store, clk)
	ctx := context.Background()

	record, err := svc.Add(ctx, RecordInput{Date: "2024-06-03", ExerciseName: "Squat", Count: 10, Sets: 3})
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	updated, err := svc.Update(ctx, record.ID, RecordInput{
		Date: "2024-06-04", ExerciseName: "Squat", Count: 12, Sets: 4, Weight: floatPtr(50),
	})
	require.NoError(t, err)
	assert.Equal(t, record.ID, updated.ID)
	assert.Equal(t, record.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "2024-06-05T12:00:00", updated.UpdatedAt)
	assert.Equal(t, "2024-06-04", updated.Date)
}

func TestRecordService_UpdateAndDeleteUnknownID(t *testing.T) {
	store, clk := newTestEnv(t)
	svc := NewRecordService(store, clk)
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing", RecordInput{Date: "2024-06-03", ExerciseName: "Squat", Count: 1, Sets: 1})
	require.ErrorIs(t, err, errs.ErrNotFound)

	err = svc.Delete(ctx, "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRecordService_DeleteRemovesRow(t *testing.T) {
	store, clk := newTestEnv(t)
	svc := NewRecordService(store, clk)
	ctx := context.Background()

	record, err := svc.Add(ctx, RecordInput{Date: "2024-06-03", ExerciseName: "Squat", Count: 10, Sets: 3})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, record.ID))

	_, err = svc.ByID(ctx, record.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
