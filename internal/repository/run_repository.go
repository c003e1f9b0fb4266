package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/operank/scheduling-api/internal/models"
	appErrors "github.com/operank/scheduling-api/pkg/errors"
)

// RunRepository persists scheduling run records and their outcomes.
type RunRepository interface {
	Create(ctx context.Context, run *models.SchedulingRun) error
	Update(ctx context.Context, run *models.SchedulingRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SchedulingRun, error)
	InsertOutcomes(ctx context.Context, runID uuid.UUID, outcomes []models.PatientOutcome) error
	ListOutcomes(ctx context.Context, runID uuid.UUID) ([]models.PatientOutcome, error)
}

type runRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(ctx context.Context, run *models.SchedulingRun) error {
	query := `
		INSERT INTO scheduling_runs (id, status, started_at, total_patients)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, run.ID, run.Status, run.StartedAt, run.TotalPatients); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create scheduling run")
	}

	return nil
}

func (r *runRepository) Update(ctx context.Context, run *models.SchedulingRun) error {
	query := `
		UPDATE scheduling_runs
		SET status = $1, completed_at = $2, total_patients = $3,
		    scheduled_count = $4, skipped_count = $5, rooms_used = $6,
		    timeslots_planned = $7, solver_wall_time_ms = $8, failure_reason = $9
		WHERE id = $10`

	result, err := r.db.ExecContext(ctx, query,
		run.Status, run.CompletedAt, run.TotalPatients,
		run.ScheduledCount, run.SkippedCount, run.RoomsUsed,
		run.TimeslotsPlanned, run.SolverWallTimeMS, run.FailureReason,
		run.ID,
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update scheduling run")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update scheduling run")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "scheduling run not found")
	}

	return nil
}

func (r *runRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SchedulingRun, error) {
	query := `
		SELECT id, status, started_at, completed_at, total_patients,
		       scheduled_count, skipped_count, rooms_used, timeslots_planned,
		       solver_wall_time_ms, COALESCE(failure_reason, '') AS failure_reason
		FROM scheduling_runs
		WHERE id = $1`

	var run models.SchedulingRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scheduling run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "get scheduling run")
	}

	return &run, nil
}

func (r *runRepository) InsertOutcomes(ctx context.Context, runID uuid.UUID, outcomes []models.PatientOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	query := `
		INSERT INTO scheduling_run_outcomes
			(run_id, patient_uuid, patient_name, status, room_id, start, surgeon, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "begin outcomes tx")
	}

	for _, o := range outcomes {
		if _, err := tx.ExecContext(ctx, query,
			runID, o.PatientUUID, o.PatientName, o.Status, o.RoomID, o.Start, o.SurgeonName, o.Reason,
		); err != nil {
			_ = tx.Rollback()
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "insert run outcome")
		}
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "commit outcomes tx")
	}

	return nil
}

func (r *runRepository) ListOutcomes(ctx context.Context, runID uuid.UUID) ([]models.PatientOutcome, error) {
	query := `
		SELECT patient_uuid, patient_name, status,
		       COALESCE(room_id, '') AS room_id, start,
		       COALESCE(surgeon, '') AS surgeon, COALESCE(reason, '') AS reason
		FROM scheduling_run_outcomes
		WHERE run_id = $1
		ORDER BY patient_name ASC`

	var outcomes []models.PatientOutcome
	if err := r.db.SelectContext(ctx, &outcomes, query, runID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list run outcomes")
	}

	return outcomes, nil
}
