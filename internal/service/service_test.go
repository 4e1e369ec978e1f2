package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"training-log/internal/clock"
	"training-log/internal/repository"
)

// newTestEnv opens a fresh SQLite store in a temp dir and a clock frozen on
// Wednesday 2024-06-05.
func newTestEnv(t *testing.T) (*repository.Store, *clock.Fixed) {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	clk := clock.NewFixed(time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC))
	return repository.NewStore(db), clk
}

func floatPtr(v float64) *float64 {
	return &v
}
