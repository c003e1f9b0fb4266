package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekdays(t *testing.T) {
	set := ParseWeekdays([]string{"Friday", " saturday ", "bogus"})
	require.NotNil(t, set)
	assert.Contains(t, set, time.Friday)
	assert.Contains(t, set, time.Saturday)
	assert.Len(t, set, 2)

	assert.Nil(t, ParseWeekdays(nil))
	assert.Nil(t, ParseWeekdays([]string{"bogus"}))
}

func TestListRooms(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepository(db, nil)

	rows := sqlmock.NewRows([]string{"id", "properties", "non_working_days"}).
		AddRow("or-1", `{laser}`, `{friday,saturday}`).
		AddRow("or-2", `{}`, `{}`)

	mock.ExpectQuery("SELECT (.+) FROM operating_rooms").WillReturnRows(rows)

	rooms, err := repo.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	assert.Equal(t, "or-1", rooms[0].ID)
	assert.False(t, rooms[0].IsWorkingDay(time.Friday))
	assert.True(t, rooms[0].IsWorkingDay(time.Sunday))

	// Rooms without an explicit off day list fall back to Friday/Saturday.
	assert.False(t, rooms[1].IsWorkingDay(time.Saturday))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRoomsConfiguredDefaultOffDays(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepository(db, ParseWeekdays([]string{"sunday"}))

	rows := sqlmock.NewRows([]string{"id", "properties", "non_working_days"}).
		AddRow("or-1", `{}`, `{}`).
		AddRow("or-2", `{}`, `{monday}`)

	mock.ExpectQuery("SELECT (.+) FROM operating_rooms").WillReturnRows(rows)

	rooms, err := repo.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	// The configured default applies only where the row names no days.
	assert.False(t, rooms[0].IsWorkingDay(time.Sunday))
	assert.True(t, rooms[0].IsWorkingDay(time.Friday))
	assert.False(t, rooms[1].IsWorkingDay(time.Monday))
	assert.True(t, rooms[1].IsWorkingDay(time.Sunday))
	assert.NoError(t, mock.ExpectationsWereMet())
}
