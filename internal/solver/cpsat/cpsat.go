// Package cpsat implements the optimization solvers on top of CP-SAT.
package cpsat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/operank/scheduling-api/internal/solver"
	"github.com/operank/scheduling-api/pkg/config"
)

// Solver builds and solves CP-SAT models for both distribution phases.
// It satisfies solver.RoomAssignmentSolver and solver.DayPackingSolver.
type Solver struct {
	cfg config.SolverConfig
	log *zap.Logger
}

func New(cfg config.SolverConfig, log *zap.Logger) *Solver {
	return &Solver{cfg: cfg, log: log}
}

// AssignRooms places each timeslot in exactly one room, minimizing the sum
// of pairwise differences between room totals.
func (s *Solver) AssignRooms(ctx context.Context, problem solver.RoomAssignmentProblem) (*solver.RoomAssignmentResult, error) {
	n := len(problem.Durations)
	rooms := problem.RoomCount
	if n == 0 || rooms == 0 {
		return &solver.RoomAssignmentResult{Status: solver.StatusOptimal, RoomOf: make([]int, 0)}, nil
	}

	builder := cpmodel.NewCpModelBuilder()

	x := make([][]cpmodel.BoolVar, n)
	for i := 0; i < n; i++ {
		x[i] = make([]cpmodel.BoolVar, rooms)
		for j := 0; j < rooms; j++ {
			x[i][j] = builder.NewBoolVar()
		}
	}

	// Each timeslot lands in exactly one room.
	for i := 0; i < n; i++ {
		builder.AddExactlyOne(x[i]...)
	}

	// Per room totals, capped by the capacity guard.
	totals := make([]*cpmodel.LinearExpr, rooms)
	for j := 0; j < rooms; j++ {
		total := cpmodel.NewLinearExpr()
		for i := 0; i < n; i++ {
			total.AddTerm(x[i][j], int64(problem.Durations[i]))
		}
		totals[j] = total
		builder.AddLessOrEqual(total, cpmodel.NewConstant(int64(problem.MaxTotalPerRoom)))
	}

	// One non-negative diff variable per unordered room pair; bounded below
	// by both signed differences, minimization drives it to the absolute
	// difference.
	poolTotal := int64(0)
	for _, d := range problem.Durations {
		poolTotal += int64(d)
	}

	objective := cpmodel.NewLinearExpr()
	for a := 0; a < rooms; a++ {
		for b := a + 1; b < rooms; b++ {
			diff := builder.NewIntVarFromDomain(cpmodel.NewDomain(0, poolTotal))

			lhs := cpmodel.NewLinearExpr().Add(totals[a]).AddTerm(totals[b], -1)
			builder.AddLessOrEqual(lhs, diff)

			rhs := cpmodel.NewLinearExpr().Add(totals[b]).AddTerm(totals[a], -1)
			builder.AddLessOrEqual(rhs, diff)

			objective.Add(diff)
		}
	}
	builder.Minimize(objective)

	response, err := s.solve(ctx, builder)
	if err != nil {
		return nil, err
	}

	result := &solver.RoomAssignmentResult{
		Status:    mapStatus(response.GetStatus()),
		Objective: response.GetObjectiveValue(),
		WallTime:  wallTime(response),
	}

	if !result.Status.Usable() {
		s.log.Warn("room assignment solve not usable",
			zap.String("status", string(result.Status)),
			zap.Int("timeslots", n),
			zap.Int("rooms", rooms))
		return result, nil
	}

	result.RoomOf = make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < rooms; j++ {
			if cpmodel.SolutionBooleanValue(response, x[i][j]) {
				result.RoomOf[i] = j
				break
			}
		}
	}

	s.log.Info("room assignment solved",
		zap.String("status", string(result.Status)),
		zap.Float64("objective", result.Objective),
		zap.Duration("wall_time", result.WallTime))

	return result, nil
}

// PackDays places one room's timeslots into the fewest days that respect
// the daily limit.
func (s *Solver) PackDays(ctx context.Context, problem solver.DayPackingProblem) (*solver.DayPackingResult, error) {
	n := len(problem.Durations)
	days := problem.DayCount
	if n == 0 || days == 0 {
		return &solver.DayPackingResult{Status: solver.StatusOptimal, DayOf: make([]int, 0)}, nil
	}

	builder := cpmodel.NewCpModelBuilder()

	x := make([][]cpmodel.BoolVar, n)
	for i := 0; i < n; i++ {
		x[i] = make([]cpmodel.BoolVar, days)
		for j := 0; j < days; j++ {
			x[i][j] = builder.NewBoolVar()
		}
	}

	used := make([]cpmodel.BoolVar, days)
	for j := 0; j < days; j++ {
		used[j] = builder.NewBoolVar()
	}

	for i := 0; i < n; i++ {
		builder.AddExactlyOne(x[i]...)
	}

	// A day's capacity is zero unless the day is used.
	for j := 0; j < days; j++ {
		load := cpmodel.NewLinearExpr()
		for i := 0; i < n; i++ {
			load.AddTerm(x[i][j], int64(problem.Durations[i]))
		}
		load.AddTerm(used[j], -int64(problem.DailyLimit))
		builder.AddLessOrEqual(load, cpmodel.NewConstant(0))
	}

	objective := cpmodel.NewLinearExpr()
	for j := 0; j < days; j++ {
		objective.Add(used[j])
	}
	builder.Minimize(objective)

	response, err := s.solve(ctx, builder)
	if err != nil {
		return nil, err
	}

	result := &solver.DayPackingResult{
		Status:   mapStatus(response.GetStatus()),
		WallTime: wallTime(response),
	}

	// Day packing insists on a proven optimum; a feasible-only packing may
	// waste days.
	if result.Status != solver.StatusOptimal {
		s.log.Warn("day packing solve not optimal",
			zap.String("status", string(result.Status)),
			zap.Int("timeslots", n),
			zap.Int("day_range", days))
		return result, nil
	}

	result.DayOf = make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < days; j++ {
			if cpmodel.SolutionBooleanValue(response, x[i][j]) {
				result.DayOf[i] = j
				break
			}
		}
	}

	return result, nil
}

func (s *Solver) solve(ctx context.Context, builder *cpmodel.Builder) (*cmpb.CpSolverResponse, error) {
	model, err := builder.Model()
	if err != nil {
		return nil, fmt.Errorf("build cp model: %w", err)
	}

	params := &sppb.SatParameters{}
	if s.cfg.TimeBudget > 0 {
		params.MaxTimeInSeconds = proto.Float64(s.cfg.TimeBudget.Seconds())
	}
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline).Seconds()
		if remaining > 0 && (params.MaxTimeInSeconds == nil || remaining < params.GetMaxTimeInSeconds()) {
			params.MaxTimeInSeconds = proto.Float64(remaining)
		}
	}
	if s.cfg.Workers > 0 {
		params.NumWorkers = proto.Int32(int32(s.cfg.Workers))
	}

	response, err := cpmodel.SolveCpModelWithParameters(model, params)
	if err != nil {
		return nil, fmt.Errorf("solve cp model: %w", err)
	}

	return response, nil
}

func mapStatus(status cmpb.CpSolverStatus) solver.Status {
	switch status {
	case cmpb.CpSolverStatus_OPTIMAL:
		return solver.StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		return solver.StatusFeasible
	case cmpb.CpSolverStatus_INFEASIBLE:
		return solver.StatusInfeasible
	default:
		return solver.StatusUnknown
	}
}

func wallTime(response *cmpb.CpSolverResponse) time.Duration {
	return time.Duration(response.GetWallTime() * float64(time.Second))
}
