package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDay(t *testing.T) {
	cases := map[string]string{
		"mon":       DayMon,
		"Monday":    DayMon,
		" THURSDAY": DayThu,
		"tues":      DayTue,
		"Sat":       DaySat,
		"saturdays": DaySat,
		"":          "",
		"noday":     "",
		// Combined strings are not a single day; ParseCombinedDays owns them.
		"MonThu":    "",
		"TueWedFri": "",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, NormalizeDay(input), "input %q", input)
	}
}

func TestParseCombinedDays(t *testing.T) {
	assert.Equal(t, []string{DayMon, DayThu}, ParseCombinedDays("MonThu"))
	assert.Equal(t, []string{DayTue, DayFri}, ParseCombinedDays("TueFri"))
	assert.Equal(t, []string{DayMon}, ParseCombinedDays("Monday"))
	assert.Equal(t, []string{DayMon, DayWed, DayFri}, ParseCombinedDays("Mon/Wed/Fri"))
	assert.Equal(t, []string{DayMon, DayThu}, ParseCombinedDays("MondayThursday"))
	assert.Empty(t, ParseCombinedDays(""))
	assert.Empty(t, ParseCombinedDays("zzz"))
}

func TestCombineDaysRoundTrip(t *testing.T) {
	assert.Equal(t, "MonThu", CombineDays(ParseCombinedDays("MonThu")))
	assert.Equal(t, "MonThu", CombineDays([]string{"Thu", "Mon"}))
	assert.Equal(t, "TueWedSat", CombineDays([]string{"sat", "wed", "tue", "wed"}))
}

func TestSortWeekly(t *testing.T) {
	assert.Equal(t, []string{DayMon, DayWed, DaySun}, SortWeekly([]string{"Sun", "Wed", "Mon"}))
	assert.Empty(t, SortWeekly([]string{"bogus"}))
}
