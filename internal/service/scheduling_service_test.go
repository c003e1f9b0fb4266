package service

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/operank/scheduling-api/internal/models"
	appErrors "github.com/operank/scheduling-api/pkg/errors"
)

type memPatientRepo struct {
	patients []*models.Patient
}

func (r *memPatientRepo) ListUnscheduledByPriority(context.Context) ([]*models.Patient, error) {
	var out []*models.Patient
	for _, p := range r.patients {
		if p.Status == models.PatientUnscheduled {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (r *memPatientRepo) GetByUUID(_ context.Context, id uuid.UUID) (*models.Patient, error) {
	for _, p := range r.patients {
		if p.UUID == id {
			return p, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
}

func (r *memPatientRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.PatientStatus) error {
	for _, p := range r.patients {
		if p.UUID == id {
			p.Status = status
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "patient not found")
}

type memSurgeryRepo struct {
	surgeries []*models.Surgery
	scheduled map[uuid.UUID]string
}

func (r *memSurgeryRepo) ListPending(context.Context) ([]*models.Surgery, error) {
	return r.surgeries, nil
}

func (r *memSurgeryRepo) MarkScheduled(_ context.Context, id uuid.UUID, roomID, surgeon string, _ time.Time) error {
	if r.scheduled == nil {
		r.scheduled = make(map[uuid.UUID]string)
	}
	r.scheduled[id] = roomID + "/" + surgeon
	return nil
}

type memRoomRepo struct {
	rooms []*models.OperatingRoom
}

func (r *memRoomRepo) ListRooms(context.Context) ([]*models.OperatingRoom, error) {
	return r.rooms, nil
}

type memSurgeonRepo struct {
	surgeons []*models.Surgeon
}

func (r *memSurgeonRepo) ListWithAvailability(context.Context, time.Time, time.Time) ([]*models.Surgeon, error) {
	return r.surgeons, nil
}

type memCatalogRepo struct {
	catalog *models.ProcedureCatalog
}

func (r *memCatalogRepo) LoadCatalog(context.Context) (*models.ProcedureCatalog, error) {
	if r.catalog == nil {
		return models.NewProcedureCatalog(nil), nil
	}
	return r.catalog, nil
}

type memRunRepo struct {
	runs     map[uuid.UUID]*models.SchedulingRun
	outcomes map[uuid.UUID][]models.PatientOutcome
}

func newMemRunRepo() *memRunRepo {
	return &memRunRepo{
		runs:     make(map[uuid.UUID]*models.SchedulingRun),
		outcomes: make(map[uuid.UUID][]models.PatientOutcome),
	}
}

func (r *memRunRepo) Create(_ context.Context, run *models.SchedulingRun) error {
	clone := *run
	r.runs[run.ID] = &clone
	return nil
}

func (r *memRunRepo) Update(_ context.Context, run *models.SchedulingRun) error {
	clone := *run
	r.runs[run.ID] = &clone
	return nil
}

func (r *memRunRepo) GetByID(_ context.Context, id uuid.UUID) (*models.SchedulingRun, error) {
	run, ok := r.runs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "scheduling run not found")
	}
	return run, nil
}

func (r *memRunRepo) InsertOutcomes(_ context.Context, runID uuid.UUID, outcomes []models.PatientOutcome) error {
	r.outcomes[runID] = outcomes
	return nil
}

func (r *memRunRepo) ListOutcomes(_ context.Context, runID uuid.UUID) ([]models.PatientOutcome, error) {
	return r.outcomes[runID], nil
}

type schedulingFixture struct {
	svc         *SchedulingService
	patientRepo *memPatientRepo
	surgeryRepo *memSurgeryRepo
	runRepo     *memRunRepo
	patients    []*models.Patient
}

func newSchedulingFixture(t *testing.T) *schedulingFixture {
	t.Helper()

	mondayKey := models.DateKey(testMonday)

	makePair := func(name string, priority, duration int, requirements []string) (*models.Patient, *models.Surgery) {
		id := uuid.New()
		return &models.Patient{
				UUID:            id,
				Name:            name,
				DurationMinutes: duration,
				Priority:        priority,
				Status:          models.PatientUnscheduled,
			}, &models.Surgery{
				UUID:          id,
				Name:          "TEST PROCEDURE",
				Duration:      duration,
				Requirements:  requirements,
				SuitableTeams: []string{"ortho"},
			}
	}

	p1, s1 := makePair("p1", 1, 60, nil)
	p2, s2 := makePair("p2", 2, 120, nil)
	p3, s3 := makePair("p3", 3, 60, nil)
	p4, s4 := makePair("p4", 4, 90, []string{"robot"})

	surgeon := models.NewSurgeon("dr-a", "ortho", "b")
	surgeon.AddAvailability(mondayKey, models.TimeWindow{
		Start: testMonday.Add(8 * time.Hour),
		End:   testMonday.Add(16 * time.Hour),
	})

	patientRepo := &memPatientRepo{patients: []*models.Patient{p1, p2, p3, p4}}
	surgeryRepo := &memSurgeryRepo{surgeries: []*models.Surgery{s1, s2, s3, s4}}
	roomRepo := &memRoomRepo{rooms: []*models.OperatingRoom{
		models.NewOperatingRoom("or-1", nil, nil),
		models.NewOperatingRoom("or-2", nil, nil),
	}}
	surgeonRepo := &memSurgeonRepo{surgeons: []*models.Surgeon{surgeon}}
	runRepo := newMemRunRepo()

	distribution := newDistributionService(&leastLoadedRoomSolver{}, firstFitDaySolver{})
	assignment := NewAssignmentService(zap.NewNop(), rand.New(rand.NewSource(1)), 3)

	svc := NewSchedulingService(
		distribution, assignment, nil, zap.NewNop(),
		patientRepo, surgeryRepo, roomRepo, surgeonRepo, &memCatalogRepo{}, runRepo,
	)

	return &schedulingFixture{
		svc:         svc,
		patientRepo: patientRepo,
		surgeryRepo: surgeryRepo,
		runRepo:     runRepo,
		patients:    []*models.Patient{p1, p2, p3, p4},
	}
}

func TestRunSchedulesPatientsInPriorityOrder(t *testing.T) {
	f := newSchedulingFixture(t)

	run, outcomes, err := f.svc.Run(context.Background(), testMonday)
	require.NoError(t, err)

	assert.Equal(t, models.RunCompleted, run.Status)
	assert.Equal(t, 4, run.TotalPatients)
	assert.Equal(t, 3, run.ScheduledCount)
	assert.Equal(t, 1, run.SkippedCount)
	assert.Equal(t, 4, run.TimeslotsPlanned)
	assert.Equal(t, 2, run.RoomsUsed)

	require.Len(t, outcomes, 4)
	assert.Equal(t, models.PatientScheduled, outcomes[0].Status)
	assert.Equal(t, models.PatientScheduled, outcomes[1].Status)
	assert.Equal(t, models.PatientScheduled, outcomes[2].Status)

	// The robot surgery has no capable room.
	assert.Equal(t, models.PatientSkipped, outcomes[3].Status)
	assert.Equal(t, "p4", outcomes[3].PatientName)

	// Statuses were persisted.
	assert.Equal(t, models.PatientScheduled, f.patients[0].Status)
	assert.Equal(t, models.PatientSkipped, f.patients[3].Status)
	assert.Len(t, f.surgeryRepo.scheduled, 3)

	// The run record and outcomes landed in the repository.
	stored, err := f.runRepo.GetByID(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, stored.Status)
	assert.Len(t, f.runRepo.outcomes[run.ID], 4)
}

func TestRunCommitsShareSurgeonSequentially(t *testing.T) {
	f := newSchedulingFixture(t)

	_, outcomes, err := f.svc.Run(context.Background(), testMonday)
	require.NoError(t, err)

	// One surgeon serves every scheduled patient, so start times never
	// overlap.
	type span struct{ start, end time.Time }
	var spans []span
	for i, o := range outcomes {
		if o.Status != models.PatientScheduled {
			continue
		}
		require.NotNil(t, o.Start)
		spans = append(spans, span{
			start: *o.Start,
			end:   o.Start.Add(time.Duration(f.patients[i].DurationMinutes) * time.Minute),
		})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })
	for i := 1; i < len(spans); i++ {
		assert.False(t, spans[i].start.Before(spans[i-1].end),
			"surgeon double booked: %v starts before %v ends", spans[i].start, spans[i-1].end)
	}
}

func TestSuggestAndCommitAfterRun(t *testing.T) {
	f := newSchedulingFixture(t)

	_, _, err := f.svc.Run(context.Background(), testMonday)
	require.NoError(t, err)

	// p4 stayed unscheduled; suggesting for it still fails the same way.
	_, err = f.svc.Suggest(context.Background(), f.patients[3].UUID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNoFeasibleSlot))
}

func TestSuggestBeforeRunFails(t *testing.T) {
	f := newSchedulingFixture(t)

	_, err := f.svc.Suggest(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestCommitCandidateRejectsScheduledPatient(t *testing.T) {
	f := newSchedulingFixture(t)

	_, outcomes, err := f.svc.Run(context.Background(), testMonday)
	require.NoError(t, err)

	scheduled := outcomes[0]
	require.Equal(t, models.PatientScheduled, scheduled.Status)
	require.NotNil(t, scheduled.Start)

	// Committing again for an already placed patient is a conflict, even
	// when open slots remain.
	err = f.svc.CommitCandidate(context.Background(), scheduled.PatientUUID,
		scheduled.RoomID, models.DateKey(*scheduled.Start), *scheduled.Start, scheduled.SurgeonName)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	placements := 0
	for _, room := range f.svc.Rooms() {
		for _, entries := range room.Schedule {
			for _, entry := range entries {
				if entry.Surgery != nil && entry.Surgery.UUID == scheduled.PatientUUID {
					placements++
				}
			}
		}
	}
	assert.Equal(t, 1, placements)
}

func TestRoomScheduleIsDetachedFromRunState(t *testing.T) {
	f := newSchedulingFixture(t)

	_, _, err := f.svc.Run(context.Background(), testMonday)
	require.NoError(t, err)

	snap, err := f.svc.RoomSchedule("or-1")
	require.NoError(t, err)
	dates := snap.ScheduledDates()
	require.NotEmpty(t, dates)

	// Scribbling on the snapshot must not leak into the run state.
	delete(snap.Schedule, dates[0])
	snap.AvailableTime[dates[0]] = time.Time{}

	fresh, err := f.svc.RoomSchedule("or-1")
	require.NoError(t, err)
	assert.Contains(t, fresh.Schedule, dates[0])
	assert.False(t, fresh.AvailableTime[dates[0]].IsZero())
}

func TestRoomScheduleAfterRun(t *testing.T) {
	f := newSchedulingFixture(t)

	_, _, err := f.svc.Run(context.Background(), testMonday)
	require.NoError(t, err)

	room, err := f.svc.RoomSchedule("or-1")
	require.NoError(t, err)
	assert.NotEmpty(t, room.Schedule)

	_, err = f.svc.RoomSchedule("or-9")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
