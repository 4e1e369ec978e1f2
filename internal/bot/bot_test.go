package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"training-log/internal/service"
)

func TestParseAddArgs(t *testing.T) {
	name, color := parseAddArgs("Bench Press #3b82f6")
	assert.Equal(t, "Bench Press", name)
	assert.Equal(t, "#3b82f6", color)

	name, color = parseAddArgs("  Bench Press  ")
	assert.Equal(t, "Bench Press", name)
	assert.Empty(t, color)

	// A lone color token is a name, not a color.
	name, color = parseAddArgs("#3b82f6")
	assert.Equal(t, "#3b82f6", name)
	assert.Empty(t, color)

	name, color = parseAddArgs("")
	assert.Empty(t, name)
	assert.Empty(t, color)
}

func TestParseRenameArgs(t *testing.T) {
	oldName, newName, ok := parseRenameArgs(" Squat | Back Squat ")
	require.True(t, ok)
	assert.Equal(t, "Squat", oldName)
	assert.Equal(t, "Back Squat", newName)

	_, _, ok = parseRenameArgs("Squat Back Squat")
	assert.False(t, ok)

	_, _, ok = parseRenameArgs("Squat |   ")
	assert.False(t, ok)
}

func TestParseChartCallback(t *testing.T) {
	period, offset, err := parseChartCallback("chart:w:-2")
	require.NoError(t, err)
	assert.Equal(t, service.PeriodWeek, period)
	assert.Equal(t, -2, offset)

	period, offset, err = parseChartCallback("chart:m:0")
	require.NoError(t, err)
	assert.Equal(t, service.PeriodMonth, period)
	assert.Equal(t, 0, offset)

	// Future offsets clamp to the current period.
	_, offset, err = parseChartCallback("chart:w:5")
	require.NoError(t, err)
	assert.Equal(t, 0, offset)

	_, _, err = parseChartCallback("chart:w")
	assert.Error(t, err)
	_, _, err = parseChartCallback("chart:w:x")
	assert.Error(t, err)
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "Squat", shortName("Squat", 10))
	assert.Equal(t, "Shoulder…", shortName("Shoulder Press", 9))
	assert.Equal(t, "one two", shortName("one\ntwo", 10))
}

func TestFormatWeight(t *testing.T) {
	assert.Equal(t, "—", formatWeight(nil))
	w := 42.5
	assert.Equal(t, "42.5", formatWeight(&w))
	whole := 40.0
	assert.Equal(t, "40", formatWeight(&whole))
}
