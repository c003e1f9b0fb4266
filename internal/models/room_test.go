package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanPerformRequiresSubset(t *testing.T) {
	room := NewOperatingRoom("or-1", []string{"laser", "microscope"}, nil)

	assert.True(t, room.CanPerform(nil))
	assert.True(t, room.CanPerform([]string{"laser"}))
	assert.True(t, room.CanPerform([]string{"laser", "microscope"}))
	assert.False(t, room.CanPerform([]string{"laser", "robot"}))

	bare := NewOperatingRoom("or-2", nil, nil)
	assert.True(t, bare.CanPerform(nil))
	assert.False(t, bare.CanPerform([]string{"laser"}))
}

func TestMaterializeSkipsNonWorkingDays(t *testing.T) {
	room := NewOperatingRoom("or-1", nil, nil)
	room.TimeslotsByDay = [][]*Timeslot{
		{{Duration: 60}},
		{{Duration: 120}},
	}

	// 2026-09-04 is a Friday; Friday and Saturday are off by default.
	friday := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	room.MaterializeSchedule(friday, 8)

	dates := room.ScheduledDates()
	require.Len(t, dates, 2)
	assert.Equal(t, "2026-09-06", dates[0]) // the following Sunday
	assert.Equal(t, "2026-09-07", dates[1])
}

func TestMaterializeOrdersLongestFirstAndSetsCursor(t *testing.T) {
	room := NewOperatingRoom("or-1", nil, nil)
	room.TimeslotsByDay = [][]*Timeslot{
		{{Duration: 30}, {Duration: 180}, {Duration: 60}},
	}

	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	room.MaterializeSchedule(monday, 8)

	key := DateKey(monday)
	entries := room.Schedule[key]
	require.Len(t, entries, 3)
	assert.Equal(t, 180, entries[0].Timeslot.Duration)
	assert.Equal(t, 60, entries[1].Timeslot.Duration)
	assert.Equal(t, 30, entries[2].Timeslot.Duration)

	cursor, ok := room.AvailableTime[key]
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC), cursor)
}

func TestCloneDetachesScheduleState(t *testing.T) {
	room := NewOperatingRoom("or-1", []string{"laser"}, nil)
	room.TimeslotsByDay = [][]*Timeslot{
		{{Duration: 60}, {Duration: 120}},
	}

	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	room.MaterializeSchedule(monday, 8)
	key := DateKey(monday)

	clone := room.Clone()

	// Booking against the original must not show through the clone.
	start := time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)
	room.Schedule[key][0].Surgery = &Surgery{Name: "APPENDECTOMY", ScheduledTime: &start}
	room.Schedule[key][0].Timeslot = nil
	room.AvailableTime[key] = start.Add(90 * time.Minute)

	require.Len(t, clone.Schedule[key], 2)
	assert.True(t, clone.Schedule[key][0].Open())
	assert.Equal(t, 120, clone.Schedule[key][0].Timeslot.Duration)
	assert.Equal(t, start, clone.AvailableTime[key])

	assert.Equal(t, "or-1", clone.ID)
	assert.False(t, clone.IsWorkingDay(time.Friday))
}

func TestScheduleEntryOpen(t *testing.T) {
	entry := &ScheduleEntry{Timeslot: &Timeslot{Duration: 60}}
	assert.True(t, entry.Open())

	entry.Surgery = &Surgery{Name: "APPENDECTOMY"}
	assert.False(t, entry.Open())
}
