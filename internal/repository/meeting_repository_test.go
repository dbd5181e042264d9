package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/timetable-api/internal/models"
)

func newMeetingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func testMeeting() *models.ScheduleMeeting {
	return &models.ScheduleMeeting{
		EntryID:      "e-1",
		InstructorID: "inst-1",
		RoomID:       "room-1",
		Day:          "Mon",
		StartTime:    "08:00:00",
		EndTime:      "09:30:00",
		MeetingType:  models.MeetingTypeLecture,
	}
}

func TestMeetingRepositoryInsertIgnore(t *testing.T) {
	db, mock, cleanup := newMeetingRepoMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_meetings")).
		WithArgs(sqlmock.AnyArg(), "e-1", "inst-1", "room-1", "Mon", "08:00:00", "09:30:00", models.MeetingTypeLecture, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	meeting := testMeeting()
	inserted, err := repo.InsertIgnore(context.Background(), nil, meeting)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotEmpty(t, meeting.ID, "id is assigned before insert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepositoryInsertIgnoreReportsDuplicate(t *testing.T) {
	db, mock, cleanup := newMeetingRepoMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_meetings")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.InsertIgnore(context.Background(), nil, testMeeting())
	require.NoError(t, err)
	assert.False(t, inserted, "conflicting row is not rewritten")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepositoryListDetailsByGroup(t *testing.T) {
	db, mock, cleanup := newMeetingRepoMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	rows := sqlmock.NewRows([]string{"meeting_id", "entry_id", "group_id", "subject_id", "section_id", "instructor_id", "room_id", "day", "start_time", "end_time", "meeting_type"}).
		AddRow("m-1", "e-1", "g-1", "sub-1", "sec-1", "inst-1", "room-1", "Mon", "08:00:00", "09:30:00", models.MeetingTypeLecture).
		AddRow("m-2", "e-2", "g-1", "sub-2", "sec-2", "inst-2", "room-2", "Tue", "10:00:00", "11:30:00", models.MeetingTypeLab)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT m.id AS meeting_id")).
		WithArgs("g-1").
		WillReturnRows(rows)

	details, err := repo.ListDetailsByGroup(context.Background(), "g-1")
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "m-1", details[0].MeetingID)
	assert.Equal(t, "g-1", details[0].GroupID)
	assert.Equal(t, models.MeetingTypeLab, details[1].MeetingType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMeetingRepoMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedule_meetings")).
		WithArgs("inst-1", "room-1", "Tue", "10:00:00", "11:30:00", models.MeetingTypeLecture, sqlmock.AnyArg(), "m-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	meeting := testMeeting()
	meeting.ID = "m-1"
	meeting.Day = "Tue"
	meeting.StartTime = "10:00:00"
	meeting.EndTime = "11:30:00"
	require.NoError(t, repo.Update(context.Background(), nil, meeting))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepositoryUpdateRequiresID(t *testing.T) {
	db, _, cleanup := newMeetingRepoMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	err := repo.Update(context.Background(), nil, &models.ScheduleMeeting{})
	require.Error(t, err)
}

func TestMeetingRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMeetingRepoMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_meetings")).
		WithArgs("m-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), nil, "m-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
