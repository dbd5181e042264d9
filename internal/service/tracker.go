package service

import (
	"github.com/acadsync/timetable-api/pkg/timeutil"
)

// Resource kinds tracked during a generation run.
const (
	trackInstructor = "instructor"
	trackRoom       = "room"
	trackSection    = "section"
)

type trackerKey struct {
	Kind string
	ID   string
	Day  string
}

type bookedInterval struct {
	Start int
	End   int
}

// ResourceTracker is the run-scoped index of committed bookings, consulted
// before persisting new meetings. It is constructed fresh per generation run
// and never shared across runs.
type ResourceTracker struct {
	booked       map[trackerKey][]bookedInterval
	roomTotal    map[string]int
	roomByDay    map[string]map[string]int
}

// NewResourceTracker builds an empty tracker.
func NewResourceTracker() *ResourceTracker {
	return &ResourceTracker{
		booked:    make(map[trackerKey][]bookedInterval),
		roomTotal: make(map[string]int),
		roomByDay: make(map[string]map[string]int),
	}
}

// HasConflict reports whether the resource already has a booking overlapping
// [start,end) on the day.
func (t *ResourceTracker) HasConflict(kind, id, day string, start, end int) bool {
	for _, interval := range t.booked[trackerKey{Kind: kind, ID: id, Day: day}] {
		if timeutil.Overlaps(start, end, interval.Start, interval.End) {
			return true
		}
	}
	return false
}

// Book records a committed interval for the resource.
func (t *ResourceTracker) Book(kind, id, day string, start, end int) {
	key := trackerKey{Kind: kind, ID: id, Day: day}
	t.booked[key] = append(t.booked[key], bookedInterval{Start: start, End: end})
	if kind == trackRoom {
		t.roomTotal[id]++
		if t.roomByDay[id] == nil {
			t.roomByDay[id] = make(map[string]int)
		}
		t.roomByDay[id][day]++
	}
}

// Release drops one booking, used when a tentative placement is undone.
func (t *ResourceTracker) Release(kind, id, day string, start, end int) {
	key := trackerKey{Kind: kind, ID: id, Day: day}
	intervals := t.booked[key]
	for i, interval := range intervals {
		if interval.Start == start && interval.End == end {
			t.booked[key] = append(intervals[:i], intervals[i+1:]...)
			break
		}
	}
	if kind == trackRoom {
		if t.roomTotal[id] > 0 {
			t.roomTotal[id]--
		}
		if byDay := t.roomByDay[id]; byDay != nil && byDay[day] > 0 {
			byDay[day]--
		}
	}
}

// TotalBookings returns how many bookings a room holds across all days.
func (t *ResourceTracker) TotalBookings(roomID string) int {
	return t.roomTotal[roomID]
}

// BookingsOn returns how many bookings a room holds on one day.
func (t *ResourceTracker) BookingsOn(roomID, day string) int {
	if byDay := t.roomByDay[roomID]; byDay != nil {
		return byDay[day]
	}
	return 0
}
