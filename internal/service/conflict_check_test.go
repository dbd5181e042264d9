package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/timetable-api/internal/dto"
	"github.com/acadsync/timetable-api/internal/models"
)

func detail(id, entry, subject, section, instructor, room, day, start, end string) models.MeetingDetail {
	return models.MeetingDetail{
		MeetingID:    id,
		EntryID:      entry,
		GroupID:      "group-1",
		SubjectID:    subject,
		SectionID:    section,
		InstructorID: instructor,
		RoomID:       room,
		Day:          day,
		StartTime:    start,
		EndTime:      end,
	}
}

func TestFindConflictsAllKinds(t *testing.T) {
	meetings := []models.MeetingDetail{
		detail("m-1", "e-1", "sub-1", "sec-1", "inst-1", "room-1", "Mon", "08:00", "09:30"),
	}

	conflicts := findConflicts(meetings, ConflictQuery{
		InstructorID: "inst-1",
		RoomID:       "room-1",
		SectionID:    "sec-1",
		Day:          "Mon",
		Start:        510, // 08:30
		End:          600, // 10:00
	})

	require.Len(t, conflicts, 3)
	kinds := map[string]bool{}
	for _, c := range conflicts {
		kinds[c.Kind] = true
		assert.Equal(t, "m-1", c.Meeting.MeetingID)
	}
	assert.True(t, kinds[dto.ConflictKindInstructor])
	assert.True(t, kinds[dto.ConflictKindRoom])
	assert.True(t, kinds[dto.ConflictKindSection])
}

func TestFindConflictsHalfOpenBoundary(t *testing.T) {
	meetings := []models.MeetingDetail{
		detail("m-1", "e-1", "sub-1", "sec-1", "inst-1", "room-1", "Mon", "08:00", "09:30"),
	}

	conflicts := findConflicts(meetings, ConflictQuery{
		InstructorID: "inst-1",
		Day:          "Mon",
		Start:        570, // 09:30: back-to-back is fine
		End:          660,
	})
	assert.Empty(t, conflicts)
}

func TestFindConflictsJointSessionExemption(t *testing.T) {
	meetings := []models.MeetingDetail{
		detail("m-1", "e-1", "sub-1", "sec-1", "inst-1", "room-1", "Mon", "08:00", "09:30"),
	}

	// Same subject taught to another section at the same time and room.
	conflicts := findConflicts(meetings, ConflictQuery{
		InstructorID:     "inst-1",
		RoomID:           "room-1",
		SectionID:        "sec-2",
		Day:              "Mon",
		Start:            480,
		End:              570,
		ExcludeSubjectID: "sub-1",
	})
	assert.Empty(t, conflicts, "joint sessions share instructor and room")

	// The exemption never extends to the section dimension.
	conflicts = findConflicts(meetings, ConflictQuery{
		SectionID:        "sec-1",
		Day:              "Mon",
		Start:            480,
		End:              570,
		ExcludeSubjectID: "sub-1",
	})
	require.Len(t, conflicts, 1)
	assert.Equal(t, dto.ConflictKindSection, conflicts[0].Kind)
}

func TestFindConflictsExclusions(t *testing.T) {
	meetings := []models.MeetingDetail{
		detail("m-1", "e-1", "sub-1", "sec-1", "inst-1", "room-1", "Mon", "08:00", "09:30"),
		detail("m-2", "e-2", "sub-2", "sec-2", "inst-1", "room-2", "Mon", "08:00", "09:30"),
	}

	conflicts := findConflicts(meetings, ConflictQuery{
		InstructorID:     "inst-1",
		Day:              "Mon",
		Start:            480,
		End:              570,
		ExcludeMeetingID: "m-1",
	})
	require.Len(t, conflicts, 1)
	assert.Equal(t, "m-2", conflicts[0].Meeting.MeetingID)

	conflicts = findConflicts(meetings, ConflictQuery{
		InstructorID:   "inst-1",
		Day:            "Mon",
		Start:          480,
		End:            570,
		ExcludeEntryID: "e-2",
	})
	require.Len(t, conflicts, 1)
	assert.Equal(t, "m-1", conflicts[0].Meeting.MeetingID)
}

func TestFindConflictsCombinedDayStorage(t *testing.T) {
	meetings := []models.MeetingDetail{
		detail("m-1", "e-1", "sub-1", "sec-1", "inst-1", "room-1", "MonThu", "08:00", "09:30"),
	}

	for _, day := range []string{"Mon", "Thu"} {
		assert.True(t, hasConflict(meetings, ConflictQuery{
			InstructorID: "inst-1",
			Day:          day,
			Start:        480,
			End:          570,
		}), day)
	}
	assert.False(t, hasConflict(meetings, ConflictQuery{
		InstructorID: "inst-1",
		Day:          "Tue",
		Start:        480,
		End:          570,
	}))
}

func TestNormalizeIntervalSwapsCorruptedPair(t *testing.T) {
	start, end, swapped := normalizeInterval("10:00", "08:30")
	assert.True(t, swapped)
	assert.Equal(t, 510, start)
	assert.Equal(t, 600, end)

	start, end, swapped = normalizeInterval("08:30", "10:00")
	assert.False(t, swapped)
	assert.Equal(t, 510, start)
	assert.Equal(t, 600, end)
}
