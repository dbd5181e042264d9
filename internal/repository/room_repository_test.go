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

func newRoomRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func roomRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "capacity", "is_lab", "is_active"})
}

func TestRoomRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, capacity, is_lab, is_active FROM rooms WHERE is_active = TRUE ORDER BY name ASC")).
		WillReturnRows(roomRows().
			AddRow("r-1", "LAB-1", 30, true, true).
			AddRow("r-2", "R101", 45, false, true))

	rooms, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.True(t, rooms[0].IsLab)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryFindByNameIsCaseInsensitive(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, capacity, is_lab, is_active FROM rooms WHERE LOWER(name) = LOWER($1)")).
		WithArgs("r101").
		WillReturnRows(roomRows().AddRow("r-2", "R101", 45, false, true))

	room, err := repo.FindByName(context.Background(), "r101")
	require.NoError(t, err)
	assert.Equal(t, "R101", room.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rooms")).
		WithArgs(sqlmock.AnyArg(), "R205", 50, false, true).
		WillReturnResult(sqlmock.NewResult(1, 1))

	room := &models.Room{Name: "R205", Capacity: 50, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), room))
	assert.NotEmpty(t, room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE rooms SET")).
		WithArgs("R205", 55, false, false, "r-3").
		WillReturnResult(sqlmock.NewResult(0, 1))

	room := &models.Room{ID: "r-3", Name: "R205", Capacity: 55, IsActive: false}
	require.NoError(t, repo.Update(context.Background(), room))
	assert.NoError(t, mock.ExpectationsWereMet())
}
