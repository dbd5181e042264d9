package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	assert.Equal(t, 420, ToMinutes("07:00:00"))
	assert.Equal(t, 750, ToMinutes("12:30"))
	assert.Equal(t, 1244, ToMinutes("20:44:59"))
	assert.Equal(t, -1, ToMinutes("25:00"))
	assert.Equal(t, -1, ToMinutes("not a time"))
}

func TestMinutesToTime(t *testing.T) {
	assert.Equal(t, "07:00:00", MinutesToTime(420))
	assert.Equal(t, "20:45:00", MinutesToTime(1245))
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(480, 570, 510, 600))
	assert.True(t, Overlaps(510, 600, 480, 570))
	assert.False(t, Overlaps(480, 540, 540, 600), "touching intervals do not overlap")
	assert.False(t, Overlaps(480, 540, 600, 660))
}

func TestIsLunchViolation(t *testing.T) {
	assert.True(t, IsLunchViolation(ToMinutes("11:45"), ToMinutes("13:15")))
	assert.True(t, IsLunchViolation(ToMinutes("12:30"), ToMinutes("12:45")))
	assert.False(t, IsLunchViolation(ToMinutes("10:00"), ToMinutes("12:00")))
	assert.False(t, IsLunchViolation(ToMinutes("13:00"), ToMinutes("14:30")))
}

func TestWithinDayWindow(t *testing.T) {
	assert.True(t, WithinDayWindow(ToMinutes("07:00"), ToMinutes("08:30")))
	assert.False(t, WithinDayWindow(ToMinutes("06:30"), ToMinutes("08:00")))
	assert.False(t, WithinDayWindow(ToMinutes("19:30"), ToMinutes("20:45")), "20:45 boundary is exclusive")
	assert.False(t, WithinDayWindow(ToMinutes("09:00"), ToMinutes("09:00")))
}

func TestSessionDurations(t *testing.T) {
	assert.Equal(t, []float64{3, 1.5}, SessionDurations(3, EmploymentFullTime))
	assert.Equal(t, []float64{3, 1.5}, SessionDurations(3, EmploymentPartTime))
	assert.Equal(t, []float64{5, 2.5}, SessionDurations(5, EmploymentFullTime))
	assert.Equal(t, []float64{2.5}, SessionDurations(5, EmploymentPartTime))
	assert.Equal(t, []float64{1}, SessionDurations(1, EmploymentFullTime))
	assert.Nil(t, SessionDurations(0, EmploymentFullTime))
}

func TestMatchesSessionDuration(t *testing.T) {
	assert.True(t, MatchesSessionDuration(90, 3, EmploymentFullTime))
	assert.True(t, MatchesSessionDuration(180, 3, EmploymentFullTime))
	assert.False(t, MatchesSessionDuration(120, 3, EmploymentFullTime))
}

func TestCandidateSlotsRespectRules(t *testing.T) {
	slots := CandidateSlots(90)
	require.NotEmpty(t, slots)

	lastDay, lastStart := 0, -1
	for _, slot := range slots {
		assert.True(t, WithinDayWindow(slot.Start, slot.End))
		assert.False(t, IsLunchViolation(slot.Start, slot.End))
		assert.Equal(t, slot.Start+90, slot.End)

		day := DayIndex(slot.Day)
		if day == lastDay {
			assert.Greater(t, slot.Start, lastStart, "slots ordered by start within a day")
		} else {
			assert.Greater(t, day, lastDay, "slots ordered by weekday")
			lastStart = -1
		}
		lastDay, lastStart = day, slot.Start
	}
}
