package service

import (
	"fmt"

	"github.com/acadsync/timetable-api/internal/dto"
	"github.com/acadsync/timetable-api/internal/models"
	"github.com/acadsync/timetable-api/pkg/timeutil"
)

// ConflictQuery describes one proposed interval checked against a set of
// persisted meetings. Resource ids left empty skip the corresponding check.
// ExcludeSubjectID exempts same-subject meetings from the instructor and room
// checks so intentional joint sessions are allowed; section checks ignore it.
type ConflictQuery struct {
	InstructorID     string
	RoomID           string
	SectionID        string
	Day              string
	Start            int
	End              int
	ExcludeSubjectID string
	ExcludeEntryID   string
	ExcludeMeetingID string
}

// normalizeInterval parses a stored meeting's times, swapping a corrupted
// start >= end pair instead of failing. The flag reports the swap so callers
// can log it.
func normalizeInterval(startTime, endTime string) (start, end int, swapped bool) {
	start = timeutil.ToMinutes(startTime)
	end = timeutil.ToMinutes(endTime)
	if start >= end {
		start, end = end, start
		swapped = true
	}
	return start, end, swapped
}

// meetingDays expands a stored day value to its per-day set. Stored days are
// normally single weekdays; combined strings are tolerated defensively.
func meetingDays(day string) []string {
	return timeutil.ParseCombinedDays(day)
}

// findConflicts is the single conflict predicate shared by the generation
// path, the repair path and the interactive validator. It returns one entry
// per (meeting, kind) match.
func findConflicts(meetings []models.MeetingDetail, q ConflictQuery) []dto.EditConflict {
	var conflicts []dto.EditConflict
	for i := range meetings {
		m := &meetings[i]
		if q.ExcludeMeetingID != "" && m.MeetingID == q.ExcludeMeetingID {
			continue
		}
		if q.ExcludeEntryID != "" && m.EntryID == q.ExcludeEntryID {
			continue
		}

		dayShared := false
		for _, day := range meetingDays(m.Day) {
			if day == q.Day {
				dayShared = true
				break
			}
		}
		if !dayShared {
			continue
		}

		start, end, _ := normalizeInterval(m.StartTime, m.EndTime)
		if !timeutil.Overlaps(q.Start, q.End, start, end) {
			continue
		}

		jointExempt := q.ExcludeSubjectID != "" && m.SubjectID == q.ExcludeSubjectID

		if q.InstructorID != "" && m.InstructorID == q.InstructorID && !jointExempt {
			conflicts = append(conflicts, dto.EditConflict{
				Kind:    dto.ConflictKindInstructor,
				Message: fmt.Sprintf("instructor is busy %s %s-%s", m.Day, m.StartTime, m.EndTime),
				Meeting: m,
			})
		}
		if q.RoomID != "" && m.RoomID == q.RoomID && !jointExempt {
			conflicts = append(conflicts, dto.EditConflict{
				Kind:    dto.ConflictKindRoom,
				Message: fmt.Sprintf("room is occupied %s %s-%s", m.Day, m.StartTime, m.EndTime),
				Meeting: m,
			})
		}
		if q.SectionID != "" && m.SectionID == q.SectionID {
			conflicts = append(conflicts, dto.EditConflict{
				Kind:    dto.ConflictKindSection,
				Message: fmt.Sprintf("section already meets %s %s-%s", m.Day, m.StartTime, m.EndTime),
				Meeting: m,
			})
		}
	}
	return conflicts
}

// hasConflict is the boolean shortcut over findConflicts.
func hasConflict(meetings []models.MeetingDetail, q ConflictQuery) bool {
	return len(findConflicts(meetings, q)) > 0
}
