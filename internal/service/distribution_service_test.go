package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/operank/scheduling-api/internal/models"
	"github.com/operank/scheduling-api/internal/solver"
	appErrors "github.com/operank/scheduling-api/pkg/errors"
)

// leastLoadedRoomSolver assigns each timeslot to the currently lightest
// room, recording the problem it was handed.
type leastLoadedRoomSolver struct {
	lastProblem solver.RoomAssignmentProblem
}

func (s *leastLoadedRoomSolver) AssignRooms(_ context.Context, p solver.RoomAssignmentProblem) (*solver.RoomAssignmentResult, error) {
	s.lastProblem = p

	totals := make([]int, p.RoomCount)
	roomOf := make([]int, len(p.Durations))
	for i, d := range p.Durations {
		best := 0
		for j := 1; j < p.RoomCount; j++ {
			if totals[j] < totals[best] {
				best = j
			}
		}
		totals[best] += d
		roomOf[i] = best
	}

	return &solver.RoomAssignmentResult{Status: solver.StatusOptimal, RoomOf: roomOf}, nil
}

// firstFitDaySolver packs timeslots into the first day with room left.
type firstFitDaySolver struct{}

func (firstFitDaySolver) PackDays(_ context.Context, p solver.DayPackingProblem) (*solver.DayPackingResult, error) {
	loads := make([]int, p.DayCount)
	dayOf := make([]int, len(p.Durations))
	for i, d := range p.Durations {
		for j := range loads {
			if loads[j]+d <= p.DailyLimit {
				loads[j] += d
				dayOf[i] = j
				break
			}
		}
	}

	return &solver.DayPackingResult{Status: solver.StatusOptimal, DayOf: dayOf}, nil
}

type infeasibleRoomSolver struct{}

func (infeasibleRoomSolver) AssignRooms(context.Context, solver.RoomAssignmentProblem) (*solver.RoomAssignmentResult, error) {
	return &solver.RoomAssignmentResult{Status: solver.StatusInfeasible}, nil
}

type unknownDaySolver struct{}

func (unknownDaySolver) PackDays(context.Context, solver.DayPackingProblem) (*solver.DayPackingResult, error) {
	return &solver.DayPackingResult{Status: solver.StatusUnknown}, nil
}

func newDistributionService(roomSolver solver.RoomAssignmentSolver, daySolver solver.DayPackingSolver) *DistributionService {
	return NewDistributionService(roomSolver, daySolver, zap.NewNop(), 480, 8)
}

func timeslots(t *testing.T, durations ...int) []*models.Timeslot {
	t.Helper()
	out := make([]*models.Timeslot, 0, len(durations))
	for _, d := range durations {
		ts, err := models.NewTimeslot(d)
		require.NoError(t, err)
		out = append(out, ts)
	}
	return out
}

func TestBuildTimeslotsQuantizes(t *testing.T) {
	svc := newDistributionService(&leastLoadedRoomSolver{}, firstFitDaySolver{})

	surgeries := []*models.Surgery{
		{Name: "A", Duration: 75},
		{Name: "B", Duration: 30},
	}

	pool, err := svc.BuildTimeslots(surgeries)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, 120, pool[0].Duration)
	assert.Equal(t, 30, pool[1].Duration)
}

func TestBuildTimeslotsRejectsOversized(t *testing.T) {
	svc := newDistributionService(&leastLoadedRoomSolver{}, firstFitDaySolver{})

	_, err := svc.BuildTimeslots([]*models.Surgery{{Name: "A", Duration: 500}})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDurationTooLong))
}

func TestDistributeRoomsAssignsEveryTimeslotOnce(t *testing.T) {
	roomSolver := &leastLoadedRoomSolver{}
	svc := newDistributionService(roomSolver, firstFitDaySolver{})

	pool := timeslots(t, 60, 120, 60, 30)
	rooms := []*models.OperatingRoom{
		models.NewOperatingRoom("or-1", nil, nil),
		models.NewOperatingRoom("or-2", nil, nil),
	}

	_, err := svc.DistributeRooms(context.Background(), pool, rooms)
	require.NoError(t, err)

	// Capacity guard: max(duration) * count / rooms.
	assert.Equal(t, 120*4/2, roomSolver.lastProblem.MaxTotalPerRoom)

	assigned := 0
	for _, room := range rooms {
		assigned += len(room.TimeslotsToSchedule)
		assert.LessOrEqual(t, room.TotalAssignedMinutes(), 240)
	}
	assert.Equal(t, len(pool), assigned)
}

func TestDistributeRoomsInfeasibleLeavesRoomsEmpty(t *testing.T) {
	svc := newDistributionService(infeasibleRoomSolver{}, firstFitDaySolver{})

	pool := timeslots(t, 60, 120)
	rooms := []*models.OperatingRoom{models.NewOperatingRoom("or-1", nil, nil)}

	_, err := svc.DistributeRooms(context.Background(), pool, rooms)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSolverInfeasible))
	assert.Empty(t, rooms[0].TimeslotsToSchedule)
}

func TestDistributeDaysRespectsDailyCap(t *testing.T) {
	svc := newDistributionService(&leastLoadedRoomSolver{}, firstFitDaySolver{})

	room := models.NewOperatingRoom("or-1", nil, nil)
	room.TimeslotsToSchedule = timeslots(t, 480, 60, 120)

	_, err := svc.DistributeDays(context.Background(), room)
	require.NoError(t, err)

	require.Len(t, room.TimeslotsByDay, 2)
	for _, bucket := range room.TimeslotsByDay {
		total := 0
		for _, ts := range bucket {
			total += ts.Duration
		}
		assert.LessOrEqual(t, total, 480)
	}
}

func TestDistributeDaysNonOptimalLeavesBucketsEmpty(t *testing.T) {
	svc := newDistributionService(&leastLoadedRoomSolver{}, unknownDaySolver{})

	room := models.NewOperatingRoom("or-1", nil, nil)
	room.TimeslotsToSchedule = timeslots(t, 60, 120)

	_, err := svc.DistributeDays(context.Background(), room)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSolverInfeasible))
	assert.Empty(t, room.TimeslotsByDay)
}

func TestEndToEndDistributionSingleMonday(t *testing.T) {
	svc := newDistributionService(&leastLoadedRoomSolver{}, firstFitDaySolver{})

	pool := timeslots(t, 60, 120, 60, 30)
	rooms := []*models.OperatingRoom{
		models.NewOperatingRoom("or-1", nil, nil),
		models.NewOperatingRoom("or-2", nil, nil),
	}

	_, err := svc.DistributeRooms(context.Background(), pool, rooms)
	require.NoError(t, err)

	for _, room := range rooms {
		_, err := svc.DistributeDays(context.Background(), room)
		require.NoError(t, err)
		// Each room's total is at most 240, well under one working day.
		require.Len(t, room.TimeslotsByDay, 1)
	}

	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	svc.Materialize(rooms, monday)

	for _, room := range rooms {
		dates := room.ScheduledDates()
		require.Len(t, dates, 1)
		assert.Equal(t, "2026-09-07", dates[0])
	}
}
