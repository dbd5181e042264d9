package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

// Operating window and lunch break, in minutes from midnight.
const (
	DayStartMinutes   = 7 * 60            // 07:00
	DayCutoffMinutes  = 20*60 + 45        // 20:45, exclusive
	RepairCapMinutes  = 21 * 60           // hard ceiling for repair shifts
	LunchStartMinutes = 12 * 60           // 12:00
	LunchEndMinutes   = 13 * 60           // 12:59 inclusive, half-open 13:00
)

// Employment types recognised by the session-duration rules.
const (
	EmploymentFullTime = "FULL-TIME"
	EmploymentPartTime = "PART-TIME"
)

// Slot is one candidate placement cell in the day/time grid.
type Slot struct {
	Day   string
	Start int
	End   int
}

// ToMinutes parses "HH:MM" or "HH:MM:SS" into minutes from midnight.
// Malformed input yields -1.
func ToMinutes(value string) int {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 {
		return -1
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return -1
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return -1
	}
	return hours*60 + minutes
}

// MinutesToTime renders minutes from midnight as "HH:MM:SS".
func MinutesToTime(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60)
}

// Overlaps reports whether two half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. Every overlap check in the engine goes through
// this predicate.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// IsLunchViolation reports whether the interval intersects the lunch break.
func IsLunchViolation(start, end int) bool {
	return Overlaps(start, end, LunchStartMinutes, LunchEndMinutes)
}

// WithinDayWindow reports whether the interval fits the operating day.
func WithinDayWindow(start, end int) bool {
	return start >= DayStartMinutes && end < DayCutoffMinutes && start < end
}

// SessionDurations lists the valid session lengths, in hours, for a subject
// of the given unit count taught under the given employment type. One unit
// equals one contact hour per week; courses of two or more units may be
// split into two equal sessions. Part-time instructors do not take single
// sessions longer than three hours.
func SessionDurations(units int, employmentType string) []float64 {
	if units <= 0 {
		return nil
	}
	total := float64(units)
	var durations []float64
	if strings.EqualFold(strings.TrimSpace(employmentType), EmploymentPartTime) {
		if total <= 3 {
			durations = append(durations, total)
		}
	} else {
		durations = append(durations, total)
	}
	if units >= 2 {
		durations = append(durations, total/2)
	}
	return durations
}

// MatchesSessionDuration reports whether a duration in minutes equals one of
// the valid session lengths for the subject/instructor combination.
func MatchesSessionDuration(durationMinutes, units int, employmentType string) bool {
	for _, hours := range SessionDurations(units, employmentType) {
		if durationMinutes == int(hours*60) {
			return true
		}
	}
	return false
}

// CandidateStarts returns the on-the-hour and half-hour start times of the
// operating day, in minutes, ascending.
func CandidateStarts() []int {
	var starts []int
	for minute := DayStartMinutes; minute < DayCutoffMinutes; minute += 30 {
		starts = append(starts, minute)
	}
	return starts
}

// CandidateSlots builds the full day/time grid for the given duration,
// ordered by weekday then start time. Slots crossing lunch or the day
// boundary are excluded.
func CandidateSlots(durationMinutes int) []Slot {
	if durationMinutes <= 0 {
		return nil
	}
	var slots []Slot
	for _, day := range SchedulingDays() {
		for _, start := range CandidateStarts() {
			end := start + durationMinutes
			if !WithinDayWindow(start, end) || IsLunchViolation(start, end) {
				continue
			}
			slots = append(slots, Slot{Day: day, Start: start, End: end})
		}
	}
	return slots
}
