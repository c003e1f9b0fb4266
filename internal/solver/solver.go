package solver

import (
	"context"
	"time"
)

// Status is the outcome class of one optimization solve.
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusFeasible   Status = "FEASIBLE"
	StatusInfeasible Status = "INFEASIBLE"
	StatusUnknown    Status = "UNKNOWN"
)

// Usable reports whether the solve produced an assignment worth reading.
// A feasible but unproven solution is still usable.
func (s Status) Usable() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// RoomAssignmentProblem asks for each timeslot to be placed in exactly one
// room so that per room totals stay balanced and under MaxTotalPerRoom.
type RoomAssignmentProblem struct {
	// Durations holds the timeslot durations in minutes; the index is the
	// timeslot's identity throughout the result.
	Durations []int

	RoomCount int

	// MaxTotalPerRoom caps each room's total assigned minutes.
	MaxTotalPerRoom int
}

// RoomAssignmentResult reports the room index chosen for each timeslot.
type RoomAssignmentResult struct {
	Status    Status
	RoomOf    []int
	Objective float64
	WallTime  time.Duration
}

// DayPackingProblem asks for one room's timeslots to be packed into the
// fewest days possible without exceeding DailyLimit minutes per day.
type DayPackingProblem struct {
	Durations  []int
	DayCount   int
	DailyLimit int
}

// DayPackingResult reports the day index chosen for each timeslot.
type DayPackingResult struct {
	Status   Status
	DayOf    []int
	WallTime time.Duration
}

// RoomAssignmentSolver distributes a timeslot pool across rooms.
type RoomAssignmentSolver interface {
	AssignRooms(ctx context.Context, problem RoomAssignmentProblem) (*RoomAssignmentResult, error)
}

// DayPackingSolver packs one room's timeslots into days.
type DayPackingSolver interface {
	PackDays(ctx context.Context, problem DayPackingProblem) (*DayPackingResult, error)
}
