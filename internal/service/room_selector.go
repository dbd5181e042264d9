package service

import (
	"sort"

	"github.com/acadsync/timetable-api/internal/models"
)

// roomRequest describes what a meeting needs from a room.
type roomRequest struct {
	PreferredRoomID   string
	Day               string
	Start             int
	End               int
	RequiresLab       bool
	EstimatedStudents int
}

// roomSelector picks rooms for one generation run, balancing load across the
// catalog. It owns a round-robin counter so near-equal candidates rotate
// instead of always taking the single best scorer. Run-scoped, never shared.
type roomSelector struct {
	rooms     []models.Room
	tracker   *ResourceTracker
	rrCounter int
}

func newRoomSelector(rooms []models.Room, tracker *ResourceTracker) *roomSelector {
	return &roomSelector{rooms: rooms, tracker: tracker}
}

// minimum seat count applied regardless of the estimate
const minRoomCapacity = 20

func (s *roomSelector) suitable(room *models.Room, req roomRequest) bool {
	if !room.IsActive {
		return false
	}
	if room.IsLab != req.RequiresLab {
		return false
	}
	needed := minRoomCapacity
	if scaled := req.EstimatedStudents * 12 / 10; scaled > needed {
		needed = scaled
	}
	return room.Capacity >= needed
}

func (s *roomSelector) free(roomID string, req roomRequest) bool {
	return !s.tracker.HasConflict(trackRoom, roomID, req.Day, req.Start, req.End)
}

func (s *roomSelector) score(room *models.Room, day string) float64 {
	total := float64(s.tracker.TotalBookings(room.ID))
	today := float64(s.tracker.BookingsOn(room.ID, day))
	capFactor := float64(room.Capacity) / 50
	if capFactor > 1 {
		capFactor = 1
	}
	return (100 - total) + (50 - today) + capFactor*20
}

// Choose selects a room for the request and records its booking in the
// tracker. It returns false when no room can host the meeting.
func (s *roomSelector) Choose(req roomRequest) (string, bool) {
	if req.PreferredRoomID != "" {
		for i := range s.rooms {
			room := &s.rooms[i]
			if room.ID != req.PreferredRoomID {
				continue
			}
			if s.suitable(room, req) && s.free(room.ID, req) {
				s.book(room.ID, req)
				return room.ID, true
			}
			break
		}
	}

	var candidates []*models.Room
	for i := range s.rooms {
		room := &s.rooms[i]
		if s.suitable(room, req) && s.free(room.ID, req) {
			candidates = append(candidates, room)
		}
	}

	// Fallbacks relax the capacity fit but never the lab requirement and
	// never the availability check.
	if len(candidates) == 0 {
		for i := range s.rooms {
			room := &s.rooms[i]
			if !room.IsActive || room.IsLab != req.RequiresLab || !s.free(room.ID, req) {
				continue
			}
			candidates = append(candidates, room)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	if len(candidates) == 1 {
		s.book(candidates[0].ID, req)
		return candidates[0].ID, true
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return s.score(candidates[i], req.Day) > s.score(candidates[j], req.Day)
	})
	top := candidates
	if len(top) > 3 {
		top = top[:3]
	}
	chosen := top[s.rrCounter%len(top)]
	s.rrCounter++

	s.book(chosen.ID, req)
	return chosen.ID, true
}

func (s *roomSelector) book(roomID string, req roomRequest) {
	s.tracker.Book(trackRoom, roomID, req.Day, req.Start, req.End)
}
