package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/operank/scheduling-api/internal/models"
	"github.com/operank/scheduling-api/internal/solver"
	appErrors "github.com/operank/scheduling-api/pkg/errors"
)

// DistributionService runs the two optimization phases and the calendar
// materialization that turn a timeslot pool into dated room schedules.
type DistributionService struct {
	roomSolver solver.RoomAssignmentSolver
	daySolver  solver.DayPackingSolver
	log        *zap.Logger

	workDayMinutes int
	dayStartHour   int
}

func NewDistributionService(
	roomSolver solver.RoomAssignmentSolver,
	daySolver solver.DayPackingSolver,
	log *zap.Logger,
	workDayMinutes, dayStartHour int,
) *DistributionService {
	if workDayMinutes <= 0 {
		workDayMinutes = 480
	}
	if dayStartHour <= 0 {
		dayStartHour = 8
	}

	return &DistributionService{
		roomSolver:     roomSolver,
		daySolver:      daySolver,
		log:            log,
		workDayMinutes: workDayMinutes,
		dayStartHour:   dayStartHour,
	}
}

// BuildTimeslots quantizes surgery durations into the timeslot pool.
// A duration above the largest bucket aborts the run.
func (s *DistributionService) BuildTimeslots(surgeries []*models.Surgery) ([]*models.Timeslot, error) {
	timeslots := make([]*models.Timeslot, 0, len(surgeries))
	for _, surgery := range surgeries {
		ts, err := models.NewTimeslot(surgery.Duration)
		if err != nil {
			s.log.Error("surgery duration exceeds bucket range",
				zap.String("surgery", surgery.Name),
				zap.Int("duration_m", surgery.Duration))
			return nil, err
		}
		timeslots = append(timeslots, ts)
	}
	return timeslots, nil
}

// DistributeRooms assigns every timeslot to exactly one room, balancing
// per room totals. On an unusable solve the rooms are left empty and a
// solver infeasibility error is returned.
func (s *DistributionService) DistributeRooms(ctx context.Context, timeslots []*models.Timeslot, rooms []*models.OperatingRoom) (time.Duration, error) {
	if len(timeslots) == 0 || len(rooms) == 0 {
		return 0, nil
	}

	durations := make([]int, len(timeslots))
	maxDuration := 0
	for i, ts := range timeslots {
		durations[i] = ts.Duration
		if ts.Duration > maxDuration {
			maxDuration = ts.Duration
		}
	}

	// Capacity guard, not a tight bound.
	maxTotalPerRoom := maxDuration * len(timeslots) / len(rooms)

	result, err := s.roomSolver.AssignRooms(ctx, solver.RoomAssignmentProblem{
		Durations:       durations,
		RoomCount:       len(rooms),
		MaxTotalPerRoom: maxTotalPerRoom,
	})
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "room assignment solve")
	}

	if !result.Status.Usable() {
		s.log.Warn("room assignment infeasible",
			zap.Int("timeslots", len(timeslots)),
			zap.Int("rooms", len(rooms)),
			zap.Int("max_total_per_room", maxTotalPerRoom))
		return result.WallTime, appErrors.Clone(appErrors.ErrSolverInfeasible, "room assignment has no usable solution")
	}

	for i, roomIdx := range result.RoomOf {
		room := rooms[roomIdx]
		room.TimeslotsToSchedule = append(room.TimeslotsToSchedule, timeslots[i])
	}

	s.log.Info("timeslots distributed to rooms",
		zap.Int("timeslots", len(timeslots)),
		zap.Int("rooms", len(rooms)),
		zap.Float64("imbalance_objective", result.Objective),
		zap.Duration("solve_wall_time", result.WallTime))

	return result.WallTime, nil
}

// DistributeDays packs one room's assigned timeslots into the fewest
// working days under the daily cap. A non optimal solve leaves the room's
// day buckets empty.
func (s *DistributionService) DistributeDays(ctx context.Context, room *models.OperatingRoom) (time.Duration, error) {
	if len(room.TimeslotsToSchedule) == 0 {
		return 0, nil
	}

	durations := make([]int, len(room.TimeslotsToSchedule))
	total := 0
	for i, ts := range room.TimeslotsToSchedule {
		durations[i] = ts.Duration
		total += ts.Duration
	}

	// Generous day range: enough days for the total plus one spare.
	dayCount := 1 + total/s.workDayMinutes + 1

	result, err := s.daySolver.PackDays(ctx, solver.DayPackingProblem{
		Durations:  durations,
		DayCount:   dayCount,
		DailyLimit: s.workDayMinutes,
	})
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "day packing solve")
	}

	if result.Status != solver.StatusOptimal {
		s.log.Warn("day packing not optimal",
			zap.String("room_id", room.ID),
			zap.Int("timeslots", len(durations)))
		return result.WallTime, appErrors.Clone(appErrors.ErrSolverInfeasible, "day packing has no optimal solution")
	}

	// Collect per day in timeslot index order; unused days contribute no
	// empty buckets.
	byDay := make([][]*models.Timeslot, dayCount)
	for i, dayIdx := range result.DayOf {
		byDay[dayIdx] = append(byDay[dayIdx], room.TimeslotsToSchedule[i])
	}

	room.TimeslotsByDay = nil
	for _, bucket := range byDay {
		if len(bucket) > 0 {
			room.TimeslotsByDay = append(room.TimeslotsByDay, bucket)
		}
	}

	s.log.Info("room timeslots packed into days",
		zap.String("room_id", room.ID),
		zap.Int("days_used", len(room.TimeslotsByDay)),
		zap.Duration("solve_wall_time", result.WallTime))

	return result.WallTime, nil
}

// Materialize pins each room's day buckets to calendar dates starting at
// startDate, skipping the room's non working weekdays.
func (s *DistributionService) Materialize(rooms []*models.OperatingRoom, startDate time.Time) {
	for _, room := range rooms {
		room.MaterializeSchedule(startDate, s.dayStartHour)
		if len(room.Schedule) > 0 {
			s.log.Debug("room schedule materialized",
				zap.String("room_id", room.ID),
				zap.Strings("dates", room.ScheduledDates()))
		}
	}
}
