package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerService_RejectsBadTimes(t *testing.T) {
	svc := NewSchedulerService(time.UTC)

	for _, bad := range []string{"", "9", "25:00", "09:60", "ab:cd"} {
		_, err := svc.ScheduleDaily(bad, func() {})
		assert.Error(t, err, "time %q", bad)
		_, err = svc.ScheduleWeekly(time.Sunday, bad, func() {})
		assert.Error(t, err, "time %q", bad)
	}
}

func TestSchedulerService_AcceptsValidTimes(t *testing.T) {
	svc := NewSchedulerService(time.UTC)

	_, err := svc.ScheduleDaily("09:30", func() {})
	require.NoError(t, err)
	_, err = svc.ScheduleWeekly(time.Sunday, "21:00", func() {})
	require.NoError(t, err)
}
