package gym_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflex/ops-engine/gym"
)

// =============================================================================
// MONTH ARITHMETIC
// =============================================================================

func TestDate_AddMonths_ClampsToEndOfMonth(t *testing.T) {
	// GIVEN: January 31
	// WHEN: Adding one month
	// THEN: The result clamps to February 28, not March 2/3

	jan31 := gym.NewDate(2025, time.January, 31)
	assert.Equal(t, gym.NewDate(2025, time.February, 28), jan31.AddMonths(1))
}

func TestDate_AddMonths_ClampsToLeapFebruary(t *testing.T) {
	jan31 := gym.NewDate(2024, time.January, 31)
	assert.Equal(t, gym.NewDate(2024, time.February, 29), jan31.AddMonths(1))
}

func TestDate_AddMonths_PlainAdvance(t *testing.T) {
	mar15 := gym.NewDate(2025, time.March, 15)
	assert.Equal(t, gym.NewDate(2025, time.June, 15), mar15.AddMonths(3))
}

func TestDate_AddMonths_CrossesYearBoundary(t *testing.T) {
	nov30 := gym.NewDate(2025, time.November, 30)
	assert.Equal(t, gym.NewDate(2026, time.February, 28), nov30.AddMonths(3))
}

func TestDate_AddMonths_SequenceClampsIndependently(t *testing.T) {
	// GIVEN: A schedule anchored on January 31
	// WHEN: Projecting months 1..4 from the anchor
	// THEN: Each due date clamps against its own month, not the previous one

	anchor := gym.NewDate(2025, time.January, 31)

	assert.Equal(t, gym.NewDate(2025, time.February, 28), anchor.AddMonths(1))
	assert.Equal(t, gym.NewDate(2025, time.March, 31), anchor.AddMonths(2))
	assert.Equal(t, gym.NewDate(2025, time.April, 30), anchor.AddMonths(3))
	assert.Equal(t, gym.NewDate(2025, time.May, 31), anchor.AddMonths(4))
}

func TestDate_AddMonths_Negative(t *testing.T) {
	mar31 := gym.NewDate(2025, time.March, 31)
	assert.Equal(t, gym.NewDate(2025, time.February, 28), mar31.AddMonths(-1))

	jan15 := gym.NewDate(2025, time.January, 15)
	assert.Equal(t, gym.NewDate(2024, time.December, 15), jan15.AddMonths(-1))
}

// =============================================================================
// DAY ARITHMETIC AND COMPARISON
// =============================================================================

func TestDate_DaysUntil(t *testing.T) {
	today := gym.NewDate(2025, time.June, 10)

	assert.Equal(t, 5, today.DaysUntil(gym.NewDate(2025, time.June, 15)))
	assert.Equal(t, 0, today.DaysUntil(today))
	assert.Equal(t, -3, today.DaysUntil(gym.NewDate(2025, time.June, 7)))
}

func TestDate_AddDays_CrossesDSTWithoutDrift(t *testing.T) {
	// Dates are pinned to midnight UTC, so a 30-day window is exactly 30
	// calendar days regardless of local clock changes.
	start := gym.NewDate(2025, time.March, 1)
	assert.Equal(t, gym.NewDate(2025, time.March, 31), start.AddDays(30))
}

func TestDate_Comparisons(t *testing.T) {
	a := gym.NewDate(2025, time.June, 10)
	b := gym.NewDate(2025, time.June, 11)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.AfterOrEqual(a))
	assert.False(t, a.Equal(b))
}

func TestDateOf_TruncatesTimeOfDay(t *testing.T) {
	instant := time.Date(2025, time.June, 10, 23, 59, 58, 0, time.UTC)
	assert.Equal(t, gym.NewDate(2025, time.June, 10), gym.DateOf(instant))
}

func TestParseDate(t *testing.T) {
	d, err := gym.ParseDate("2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, gym.NewDate(2025, time.June, 10), d)

	_, err = gym.ParseDate("10/06/2025")
	assert.Error(t, err)
}

func TestDate_String(t *testing.T) {
	assert.Equal(t, "2025-06-10", gym.NewDate(2025, time.June, 10).String())
}
