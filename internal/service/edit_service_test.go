package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/timetable-api/internal/dto"
	"github.com/acadsync/timetable-api/internal/models"
	appErrors "github.com/acadsync/timetable-api/pkg/errors"
	"github.com/acadsync/timetable-api/pkg/timeutil"
)

type editMeetingsStub struct {
	meetings []models.MeetingDetail
	updated  []models.ScheduleMeeting
}

func (s *editMeetingsStub) ListDetailsByGroup(_ context.Context, _ string) ([]models.MeetingDetail, error) {
	out := make([]models.MeetingDetail, len(s.meetings))
	copy(out, s.meetings)
	return out, nil
}

func (s *editMeetingsStub) FindDetailByID(_ context.Context, id string) (*models.MeetingDetail, error) {
	for i := range s.meetings {
		if s.meetings[i].MeetingID == id {
			m := s.meetings[i]
			return &m, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *editMeetingsStub) Update(_ context.Context, _ sqlx.ExtContext, meeting *models.ScheduleMeeting) error {
	s.updated = append(s.updated, *meeting)
	return nil
}

type editSubjectsStub struct {
	units map[string]int
}

func (s *editSubjectsStub) FindByID(_ context.Context, id string) (*models.Subject, error) {
	units, ok := s.units[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.Subject{ID: id, Units: units}, nil
}

type editInstructorsStub struct {
	employment map[string]string
}

func (s *editInstructorsStub) FindByID(_ context.Context, id string) (*models.Instructor, error) {
	emp, ok := s.employment[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.Instructor{ID: id, EmploymentType: emp}, nil
}

type editRoomsStub struct {
	rooms []models.Room
}

func (s *editRoomsStub) ListActive(_ context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

func (s *editRoomsStub) FindByID(_ context.Context, id string) (*models.Room, error) {
	for i := range s.rooms {
		if s.rooms[i].ID == id {
			r := s.rooms[i]
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

type cacheSpy struct {
	invalidated []string
}

func (s *cacheSpy) InvalidateGroup(_ context.Context, groupID string) error {
	s.invalidated = append(s.invalidated, groupID)
	return nil
}

type editFixture struct {
	svc      *EditService
	meetings *editMeetingsStub
	cache    *cacheSpy
}

func newEditFixture() *editFixture {
	meetings := &editMeetingsStub{meetings: []models.MeetingDetail{
		detail("m-1", "e-1", "sub-1", "sec-1", "inst-1", "room-1", "Mon", "08:00", "09:30"),
		detail("m-2", "e-2", "sub-2", "sec-2", "inst-1", "room-2", "Tue", "08:00", "09:30"),
		detail("m-3", "e-3", "sub-3", "sec-3", "inst-3", "room-1", "Wed", "08:00", "09:30"),
		// e-4 meets one hour on each of three days.
		detail("m-4", "e-4", "sub-4", "sec-4", "inst-4", "room-2", "Mon", "14:00", "15:00"),
		detail("m-5", "e-4", "sub-4", "sec-4", "inst-4", "room-2", "Wed", "14:00", "15:00"),
		detail("m-6", "e-4", "sub-4", "sec-4", "inst-4", "room-2", "Fri", "14:00", "15:00"),
	}}
	subjects := &editSubjectsStub{units: map[string]int{"sub-1": 3, "sub-2": 3, "sub-3": 3, "sub-4": 3}}
	instructors := &editInstructorsStub{employment: map[string]string{
		"inst-1": timeutil.EmploymentFullTime,
		"inst-3": timeutil.EmploymentFullTime,
		"inst-4": timeutil.EmploymentFullTime,
	}}
	rooms := &editRoomsStub{rooms: []models.Room{
		{ID: "room-1", Name: "R101", Capacity: 40, IsActive: true},
		{ID: "room-2", Name: "R102", Capacity: 40, IsActive: true},
		{ID: "room-3", Name: "R103", Capacity: 40, IsActive: true},
	}}
	cache := &cacheSpy{}
	return &editFixture{
		svc:      NewEditService(meetings, subjects, instructors, rooms, cache, nil, nil),
		meetings: meetings,
		cache:    cache,
	}
}

func validateReq(meetingID, day, start, end string) dto.ValidateEditRequest {
	return dto.ValidateEditRequest{
		GroupID:   "group-1",
		MeetingID: meetingID,
		Day:       day,
		StartTime: start,
		EndTime:   end,
	}
}

func TestValidateEditRejectsEarlyStart(t *testing.T) {
	fix := newEditFixture()

	resp, err := fix.svc.ValidateEdit(context.Background(), validateReq("m-1", "Mon", "06:00", "07:30"))
	require.NoError(t, err)

	assert.False(t, resp.OK)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, dto.ConflictKindStartTime, resp.Conflicts[0].Kind)
}

func TestValidateEditReportsAllTimeRuleViolations(t *testing.T) {
	fix := newEditFixture()

	// Early start, lunch overlap and a 7-hour session for a 3-unit subject
	// are all reported in one pass.
	resp, err := fix.svc.ValidateEdit(context.Background(), validateReq("m-1", "Mon", "06:00", "13:00"))
	require.NoError(t, err)
	require.Len(t, resp.Conflicts, 3)
	kinds := []string{resp.Conflicts[0].Kind, resp.Conflicts[1].Kind, resp.Conflicts[2].Kind}
	assert.Equal(t, []string{dto.ConflictKindStartTime, dto.ConflictKindLunch, dto.ConflictKindDuration}, kinds)

	resp, err = fix.svc.ValidateEdit(context.Background(), validateReq("m-1", "Mon", "11:30", "13:00"))
	require.NoError(t, err)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, dto.ConflictKindLunch, resp.Conflicts[0].Kind)

	resp, err = fix.svc.ValidateEdit(context.Background(), validateReq("m-1", "Mon", "19:30", "21:00"))
	require.NoError(t, err)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, dto.ConflictKindCutoff, resp.Conflicts[0].Kind)
}

func TestValidateEditRejectsInvalidDuration(t *testing.T) {
	fix := newEditFixture()

	// 60 minutes for a single-session 3-unit subject.
	resp, err := fix.svc.ValidateEdit(context.Background(), validateReq("m-1", "Mon", "08:00", "09:00"))
	require.NoError(t, err)

	assert.False(t, resp.OK)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, dto.ConflictKindDuration, resp.Conflicts[0].Kind)
}

func TestValidateEditAllowsJointPerDayDuration(t *testing.T) {
	fix := newEditFixture()

	// e-4 meets three days a week, so the hourly session satisfies the
	// 3-unit weekly load even though 60 minutes is not a standalone length.
	resp, err := fix.svc.ValidateEdit(context.Background(), validateReq("m-4", "Mon", "15:00", "16:00"))
	require.NoError(t, err)

	assert.True(t, resp.OK)
	assert.Empty(t, resp.Conflicts)
}

func TestValidateEditDetectsInstructorConflict(t *testing.T) {
	fix := newEditFixture()

	// Moving m-1 onto Tue morning collides with m-2, taught by the same
	// instructor.
	resp, err := fix.svc.ValidateEdit(context.Background(), validateReq("m-1", "Tue", "08:00", "09:30"))
	require.NoError(t, err)

	assert.False(t, resp.OK)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, dto.ConflictKindInstructor, resp.Conflicts[0].Kind)
	require.NotNil(t, resp.Conflicts[0].Meeting)
	assert.Equal(t, "m-2", resp.Conflicts[0].Meeting.MeetingID)
}

func TestValidateEditExcludesOwnMeeting(t *testing.T) {
	fix := newEditFixture()

	// Re-validating a meeting against its own current slot is clean.
	resp, err := fix.svc.ValidateEdit(context.Background(), validateReq("m-2", "Tue", "08:00", "09:30"))
	require.NoError(t, err)

	assert.True(t, resp.OK)
	assert.Empty(t, resp.Conflicts)
}

func TestSuggestPrefersCurrentRoomAndEarliestSlot(t *testing.T) {
	fix := newEditFixture()

	resp, err := fix.svc.Suggest(context.Background(), dto.SuggestRequest{
		GroupID:         "group-1",
		MeetingID:       "m-1",
		DurationMinutes: 90,
		EditType:        dto.EditTypeTime,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, len(resp.Suggestions), resp.Count)
	assert.LessOrEqual(t, len(resp.Suggestions), 10)

	first := resp.Suggestions[0]
	assert.Equal(t, "Mon", first.Day)
	assert.Equal(t, "07:00:00", first.StartTime)
	assert.Equal(t, "08:30:00", first.EndTime)
	assert.Equal(t, "room-1", first.RoomID, "current room ranks first")
}

func TestSuggestJointEntryMovesAsOneBlock(t *testing.T) {
	fix := newEditFixture()

	resp, err := fix.svc.Suggest(context.Background(), dto.SuggestRequest{
		GroupID:         "group-1",
		MeetingID:       "m-4",
		DurationMinutes: 60,
		EditType:        dto.EditTypeTime,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Suggestions)
	for _, s := range resp.Suggestions {
		assert.Equal(t, "MonWedFri", s.Day, "joint sessions keep their combined-day label")
	}
}

func TestSuggestDayEditDedupsByDay(t *testing.T) {
	fix := newEditFixture()

	resp, err := fix.svc.Suggest(context.Background(), dto.SuggestRequest{
		GroupID:         "group-1",
		MeetingID:       "m-1",
		DurationMinutes: 90,
		EditType:        dto.EditTypeDay,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Suggestions)
	seen := make(map[string]bool)
	for _, s := range resp.Suggestions {
		assert.False(t, seen[s.Day], "day %s suggested twice", s.Day)
		seen[s.Day] = true
	}
	assert.LessOrEqual(t, len(resp.Suggestions), len(timeutil.SchedulingDays()))
}

func TestSuggestOmitsCurrentSlot(t *testing.T) {
	fix := newEditFixture()

	resp, err := fix.svc.Suggest(context.Background(), dto.SuggestRequest{
		GroupID:         "group-1",
		MeetingID:       "m-1",
		DurationMinutes: 90,
		EditType:        dto.EditTypeTime,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Suggestions)
	for _, s := range resp.Suggestions {
		isCurrent := s.Day == "Mon" && s.StartTime == "08:00:00" && s.RoomID == "room-1"
		assert.False(t, isCurrent, "the meeting's existing slot was offered back")
	}
}

func TestSuggestDayEditExcludesCurrentDay(t *testing.T) {
	fix := newEditFixture()

	resp, err := fix.svc.Suggest(context.Background(), dto.SuggestRequest{
		GroupID:         "group-1",
		MeetingID:       "m-1",
		DurationMinutes: 90,
		EditType:        dto.EditTypeDay,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Suggestions)
	for _, s := range resp.Suggestions {
		assert.NotEqual(t, "Mon", s.Day, "a day edit must move off the current day")
	}
}

func TestUpdateMeetingRejectsConflictingEdit(t *testing.T) {
	fix := newEditFixture()

	resp, err := fix.svc.UpdateMeeting(context.Background(), "m-1", dto.UpdateMeetingRequest{
		Day:       "Tue",
		StartTime: "08:00",
		EndTime:   "09:30",
	})
	require.NoError(t, err)

	assert.False(t, resp.OK)
	assert.Equal(t, appErrors.ErrScheduleConflict.Message, resp.Message)
	assert.NotEmpty(t, resp.Conflicts)
	assert.Empty(t, fix.meetings.updated, "rejected edits are not persisted")
	assert.Empty(t, fix.cache.invalidated)
}

func TestUpdateMeetingReportsTimeRuleRejection(t *testing.T) {
	fix := newEditFixture()

	resp, err := fix.svc.UpdateMeeting(context.Background(), "m-1", dto.UpdateMeetingRequest{
		Day:       "Mon",
		StartTime: "11:30",
		EndTime:   "13:00",
	})
	require.NoError(t, err)

	assert.False(t, resp.OK)
	assert.Equal(t, appErrors.ErrTimeRuleViolation.Message, resp.Message)
	assert.Empty(t, fix.meetings.updated)
}

func TestUpdateMeetingPersistsAndInvalidatesCache(t *testing.T) {
	fix := newEditFixture()

	resp, err := fix.svc.UpdateMeeting(context.Background(), "m-1", dto.UpdateMeetingRequest{
		Day:       "Mon",
		StartTime: "10:00",
		EndTime:   "11:30",
	})
	require.NoError(t, err)

	assert.True(t, resp.OK)
	require.NotNil(t, resp.Meeting)
	require.Len(t, fix.meetings.updated, 1)
	updated := fix.meetings.updated[0]
	assert.Equal(t, "m-1", updated.ID)
	assert.Equal(t, "Mon", updated.Day)
	assert.Equal(t, "10:00", updated.StartTime)
	assert.Equal(t, "inst-1", updated.InstructorID, "unchanged fields carry over")
	assert.Equal(t, []string{"group-1"}, fix.cache.invalidated)
}
