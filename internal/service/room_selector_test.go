package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/timetable-api/internal/models"
)

func selectorRooms() []models.Room {
	return []models.Room{
		{ID: "r-101", Name: "R101", Capacity: 60, IsActive: true},
		{ID: "r-102", Name: "R102", Capacity: 60, IsActive: true},
		{ID: "r-103", Name: "R103", Capacity: 60, IsActive: true},
		{ID: "lab-1", Name: "LAB1", Capacity: 40, IsLab: true, IsActive: true},
		{ID: "r-old", Name: "OLD", Capacity: 60, IsActive: false},
	}
}

func TestRoomSelectorPrefersRequestedRoom(t *testing.T) {
	tracker := NewResourceTracker()
	selector := newRoomSelector(selectorRooms(), tracker)

	id, ok := selector.Choose(roomRequest{PreferredRoomID: "r-102", Day: "Mon", Start: 480, End: 570, EstimatedStudents: 30})
	require.True(t, ok)
	assert.Equal(t, "r-102", id)
	assert.True(t, tracker.HasConflict(trackRoom, "r-102", "Mon", 480, 570), "chosen room is booked")
}

func TestRoomSelectorSkipsBusyPreferred(t *testing.T) {
	tracker := NewResourceTracker()
	tracker.Book(trackRoom, "r-102", "Mon", 480, 570)
	selector := newRoomSelector(selectorRooms(), tracker)

	id, ok := selector.Choose(roomRequest{PreferredRoomID: "r-102", Day: "Mon", Start: 480, End: 570})
	require.True(t, ok)
	assert.NotEqual(t, "r-102", id)
}

func TestRoomSelectorLabRequirement(t *testing.T) {
	tracker := NewResourceTracker()
	selector := newRoomSelector(selectorRooms(), tracker)

	id, ok := selector.Choose(roomRequest{Day: "Tue", Start: 480, End: 660, RequiresLab: true, EstimatedStudents: 30})
	require.True(t, ok)
	assert.Equal(t, "lab-1", id)
}

func TestRoomSelectorNoLabAvailable(t *testing.T) {
	tracker := NewResourceTracker()
	tracker.Book(trackRoom, "lab-1", "Tue", 480, 660)
	selector := newRoomSelector(selectorRooms(), tracker)

	_, ok := selector.Choose(roomRequest{Day: "Tue", Start: 480, End: 660, RequiresLab: true})
	assert.False(t, ok, "lecture rooms never substitute for a lab")
}

func TestRoomSelectorCapacityFallback(t *testing.T) {
	tracker := NewResourceTracker()
	selector := newRoomSelector([]models.Room{
		{ID: "small", Name: "S1", Capacity: 25, IsActive: true},
	}, tracker)

	// 80 students scale past every capacity, but the lone room still hosts.
	id, ok := selector.Choose(roomRequest{Day: "Mon", Start: 480, End: 570, EstimatedStudents: 80})
	require.True(t, ok)
	assert.Equal(t, "small", id)
}

func TestRoomSelectorRoundRobinRotation(t *testing.T) {
	tracker := NewResourceTracker()
	selector := newRoomSelector(selectorRooms(), tracker)

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		start := 480 + i*120
		id, ok := selector.Choose(roomRequest{Day: "Mon", Start: start, End: start + 90, EstimatedStudents: 30})
		require.True(t, ok)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1, "near-equal candidates should rotate")
}

func TestRoomSelectorLoadBalancing(t *testing.T) {
	tracker := NewResourceTracker()
	// r-101 already hosts five meetings today; its score drops below peers.
	for i := 0; i < 5; i++ {
		tracker.Book(trackRoom, "r-101", "Mon", 480+i*60, 530+i*60)
	}
	selector := newRoomSelector(selectorRooms(), tracker)

	id, ok := selector.Choose(roomRequest{Day: "Mon", Start: 900, End: 990, EstimatedStudents: 30})
	require.True(t, ok)
	assert.NotEqual(t, "r-101", id)
}
