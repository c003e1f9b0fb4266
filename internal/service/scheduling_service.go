package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/operank/scheduling-api/internal/models"
	"github.com/operank/scheduling-api/internal/repository"
	appErrors "github.com/operank/scheduling-api/pkg/errors"
)

// availabilityHorizon bounds how far ahead surgeon windows are loaded.
const availabilityHorizon = 60 * 24 * time.Hour

// SchedulingService orchestrates the full pipeline and keeps the run's
// mutable schedule state for interactive suggestions and commits.
//
// Matching is strictly sequential; all reads and writes of room and
// surgeon state go through the service mutex.
type SchedulingService struct {
	distribution *DistributionService
	assignment   *AssignmentService
	metrics      *MetricsService
	log          *zap.Logger

	patientRepo repository.PatientRepository
	surgeryRepo repository.SurgeryRepository
	roomRepo    repository.RoomRepository
	surgeonRepo repository.SurgeonRepository
	catalogRepo repository.CatalogRepository
	runRepo     repository.RunRepository

	mu        sync.Mutex
	patients  []*models.Patient
	surgeries []*models.Surgery
	rooms     []*models.OperatingRoom
	surgeons  []*models.Surgeon
	latestRun *models.SchedulingRun
}

func NewSchedulingService(
	distribution *DistributionService,
	assignment *AssignmentService,
	metrics *MetricsService,
	log *zap.Logger,
	patientRepo repository.PatientRepository,
	surgeryRepo repository.SurgeryRepository,
	roomRepo repository.RoomRepository,
	surgeonRepo repository.SurgeonRepository,
	catalogRepo repository.CatalogRepository,
	runRepo repository.RunRepository,
) *SchedulingService {
	return &SchedulingService{
		distribution: distribution,
		assignment:   assignment,
		metrics:      metrics,
		log:          log,
		patientRepo:  patientRepo,
		surgeryRepo:  surgeryRepo,
		roomRepo:     roomRepo,
		surgeonRepo:  surgeonRepo,
		catalogRepo:  catalogRepo,
		runRepo:      runRepo,
	}
}

// Run executes one full scheduling pass: load inputs, distribute the
// timeslot pool across rooms and days, materialize calendars, then walk
// the patient queue in priority order committing the best candidate for
// each. Skipped patients are reported, not retried.
func (s *SchedulingService) Run(ctx context.Context, startDate time.Time) (*models.SchedulingRun, []models.PatientOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patients, surgeries, rooms, surgeons, err := s.loadInputs(ctx, startDate)
	if err != nil {
		return nil, nil, err
	}

	run := &models.SchedulingRun{
		ID:            uuid.New(),
		Status:        models.RunRunning,
		StartedAt:     time.Now().UTC(),
		TotalPatients: len(patients),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, nil, err
	}

	outcomes, runErr := s.executePipeline(ctx, run, startDate, patients, surgeries, rooms, surgeons)

	now := time.Now().UTC()
	run.CompletedAt = &now
	if runErr != nil {
		run.Status = models.RunFailed
		run.FailureReason = runErr.Error()
	} else {
		run.Status = models.RunCompleted
	}

	if err := s.runRepo.Update(ctx, run); err != nil {
		s.log.Error("persist run record", zap.Error(err), zap.String("run_id", run.ID.String()))
	}
	if err := s.runRepo.InsertOutcomes(ctx, run.ID, outcomes); err != nil {
		s.log.Error("persist run outcomes", zap.Error(err), zap.String("run_id", run.ID.String()))
	}

	s.metrics.ObserveRun(string(run.Status))

	if runErr != nil {
		return run, outcomes, runErr
	}

	// Keep the run state for interactive suggestions and commits.
	s.patients = patients
	s.surgeries = surgeries
	s.rooms = rooms
	s.surgeons = surgeons
	s.latestRun = run

	return run, outcomes, nil
}

func (s *SchedulingService) loadInputs(ctx context.Context, startDate time.Time) ([]*models.Patient, []*models.Surgery, []*models.OperatingRoom, []*models.Surgeon, error) {
	patients, err := s.patientRepo.ListUnscheduledByPriority(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	surgeries, err := s.surgeryRepo.ListPending(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	rooms, err := s.roomRepo.ListRooms(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	surgeons, err := s.surgeonRepo.ListWithAvailability(ctx, startDate, startDate.Add(availabilityHorizon))
	if err != nil {
		return nil, nil, nil, nil, err
	}

	catalog, err := s.catalogRepo.LoadCatalog(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	// Fill eligibility gaps from the catalog for surgeries ingested
	// without team or ward tags.
	for _, surgery := range surgeries {
		if len(surgery.SuitableTeams) == 0 && len(surgery.SuitableWards) == 0 {
			if info, ok := catalog.Lookup(surgery.Name); ok {
				surgery.SuitableTeams = info.Teams
				surgery.SuitableWards = info.Wards
			}
		}
	}

	return patients, surgeries, rooms, surgeons, nil
}

func (s *SchedulingService) executePipeline(
	ctx context.Context,
	run *models.SchedulingRun,
	startDate time.Time,
	patients []*models.Patient,
	surgeries []*models.Surgery,
	rooms []*models.OperatingRoom,
	surgeons []*models.Surgeon,
) ([]models.PatientOutcome, error) {
	timeslots, err := s.distribution.BuildTimeslots(surgeries)
	if err != nil {
		return nil, err
	}
	run.TimeslotsPlanned = len(timeslots)

	var solverWall time.Duration

	wall, err := s.distribution.DistributeRooms(ctx, timeslots, rooms)
	solverWall += wall
	s.metrics.ObserveSolve("room_assignment", wall)
	if err != nil {
		// An infeasible distribution aborts only this stage; the patient
		// loop below will find nothing to match against.
		if !appErrors.Is(err, appErrors.ErrSolverInfeasible) {
			return nil, err
		}
		s.log.Warn("continuing run with empty room assignments", zap.String("run_id", run.ID.String()))
	}

	roomsUsed := 0
	for _, room := range rooms {
		if len(room.TimeslotsToSchedule) == 0 {
			continue
		}
		roomsUsed++
		s.metrics.SetRoomMinutes(room.ID, room.TotalAssignedMinutes())

		wall, err := s.distribution.DistributeDays(ctx, room)
		solverWall += wall
		s.metrics.ObserveSolve("day_packing", wall)
		if err != nil {
			if !appErrors.Is(err, appErrors.ErrSolverInfeasible) {
				return nil, err
			}
			s.log.Warn("room left unscheduled after day packing failure", zap.String("room_id", room.ID))
		}
	}
	run.RoomsUsed = roomsUsed
	run.SolverWallTimeMS = solverWall.Milliseconds()

	s.distribution.Materialize(rooms, startDate)

	outcomes := make([]models.PatientOutcome, 0, len(patients))
	for _, patient := range patients {
		outcome, err := s.matchPatient(ctx, patient, surgeries, rooms, surgeons)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, *outcome)

		switch outcome.Status {
		case models.PatientScheduled:
			run.ScheduledCount++
			s.metrics.ObservePatientScheduled()
		case models.PatientSkipped:
			run.SkippedCount++
			s.metrics.ObservePatientSkipped()
		}
	}

	s.log.Info("scheduling run finished",
		zap.String("run_id", run.ID.String()),
		zap.Int("total", run.TotalPatients),
		zap.Int("scheduled", run.ScheduledCount),
		zap.Int("skipped", run.SkippedCount))

	return outcomes, nil
}

func (s *SchedulingService) matchPatient(
	ctx context.Context,
	patient *models.Patient,
	surgeries []*models.Surgery,
	rooms []*models.OperatingRoom,
	surgeons []*models.Surgeon,
) (*models.PatientOutcome, error) {
	outcome := &models.PatientOutcome{
		PatientUUID: patient.UUID,
		PatientName: patient.Name,
	}

	candidates, err := s.assignment.SuggestFeasibleDates(patient, surgeries, rooms, surgeons)
	if err != nil {
		// A missing surgery is a data integrity failure and aborts the run.
		if appErrors.Is(err, appErrors.ErrSurgeryNotFound) {
			return nil, err
		}

		patient.MarkSkipped()
		outcome.Status = models.PatientSkipped
		outcome.Reason = "no feasible slot"
		if persistErr := s.patientRepo.UpdateStatus(ctx, patient.UUID, models.PatientSkipped); persistErr != nil {
			s.log.Error("persist skipped status", zap.Error(persistErr), zap.String("patient_uuid", patient.UUID.String()))
		}
		return outcome, nil
	}

	chosen := candidates[0]
	if chosen.FallbackSurgeon {
		s.metrics.ObserveSurgeonFallback()
	}

	surgery, err := s.assignment.ResolveSurgery(patient, surgeries)
	if err != nil {
		return nil, err
	}

	if err := s.assignment.Commit(chosen, patient, surgery, surgeons); err != nil {
		return nil, err
	}

	if err := s.persistCommit(ctx, patient, surgery); err != nil {
		s.log.Error("persist commit", zap.Error(err), zap.String("patient_uuid", patient.UUID.String()))
	}

	outcome.Status = models.PatientScheduled
	outcome.RoomID = chosen.RoomID
	outcome.Start = surgery.ScheduledTime
	outcome.SurgeonName = chosen.SurgeonName

	return outcome, nil
}

func (s *SchedulingService) persistCommit(ctx context.Context, patient *models.Patient, surgery *models.Surgery) error {
	if err := s.patientRepo.UpdateStatus(ctx, patient.UUID, models.PatientScheduled); err != nil {
		return err
	}
	return s.surgeryRepo.MarkScheduled(ctx, surgery.UUID, surgery.RoomID, surgery.Surgeon, *surgery.ScheduledTime)
}

// Suggest returns ranked candidates for one patient against the current
// run state without mutating it.
func (s *SchedulingService) Suggest(ctx context.Context, patientUUID uuid.UUID) ([]*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latestRun == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no scheduling run loaded")
	}

	patient := s.findPatient(patientUUID)
	if patient == nil {
		p, err := s.patientRepo.GetByUUID(ctx, patientUUID)
		if err != nil {
			return nil, err
		}
		patient = p
	}

	return s.assignment.SuggestFeasibleDates(patient, s.surgeries, s.rooms, s.surgeons)
}

// CommitCandidate finalizes a previously suggested candidate identified by
// its room, date, start and surgeon.
func (s *SchedulingService) CommitCandidate(ctx context.Context, patientUUID uuid.UUID, roomID, dateKey string, start time.Time, surgeonName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latestRun == nil {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "no scheduling run loaded")
	}

	candidate, patient, surgery, err := s.assignment.FindCandidate(
		patientUUID, roomID, dateKey, start, surgeonName,
		s.patients, s.surgeries, s.rooms, s.surgeons,
	)
	if err != nil {
		return err
	}

	if err := s.assignment.Commit(candidate, patient, surgery, s.surgeons); err != nil {
		return err
	}

	if err := s.persistCommit(ctx, patient, surgery); err != nil {
		s.log.Error("persist commit", zap.Error(err), zap.String("patient_uuid", patient.UUID.String()))
	}

	s.metrics.ObservePatientScheduled()
	return nil
}

// RoomSchedule returns a snapshot of one room's materialized schedule.
// Handlers serialize the snapshot after the lock is released, so the live
// room is never handed out.
func (s *SchedulingService) RoomSchedule(roomID string) (*models.OperatingRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, room := range s.rooms {
		if room.ID == roomID {
			return room.Clone(), nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
}

// Rooms returns a snapshot of the current run's rooms.
func (s *SchedulingService) Rooms() []*models.OperatingRoom {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms := make([]*models.OperatingRoom, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room.Clone())
	}
	return rooms
}

// LatestRun returns the most recent completed run, if any.
func (s *SchedulingService) LatestRun() *models.SchedulingRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestRun
}

// RunReport loads a persisted run with its outcomes.
func (s *SchedulingService) RunReport(ctx context.Context, runID uuid.UUID) (*models.SchedulingRun, []models.PatientOutcome, error) {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, nil, err
	}

	outcomes, err := s.runRepo.ListOutcomes(ctx, runID)
	if err != nil {
		return nil, nil, err
	}

	return run, outcomes, nil
}

func (s *SchedulingService) findPatient(id uuid.UUID) *models.Patient {
	for _, p := range s.patients {
		if p.UUID == id {
			return p
		}
	}
	return nil
}
