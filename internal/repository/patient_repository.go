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

// PatientRepository loads and updates the patient waiting list.
type PatientRepository interface {
	ListUnscheduledByPriority(ctx context.Context) ([]*models.Patient, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*models.Patient, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PatientStatus) error
}

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) ListUnscheduledByPriority(ctx context.Context) ([]*models.Patient, error) {
	query := `
		SELECT uuid, name, patient_id, surgery_name, referrer,
		       estimated_duration_m, priority, phone_number, status
		FROM patients
		WHERE status = $1
		ORDER BY priority ASC, uuid ASC`

	var patients []*models.Patient
	if err := r.db.SelectContext(ctx, &patients, query, models.PatientUnscheduled); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list unscheduled patients")
	}

	return patients, nil
}

func (r *patientRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	query := `
		SELECT uuid, name, patient_id, surgery_name, referrer,
		       estimated_duration_m, priority, phone_number, status
		FROM patients
		WHERE uuid = $1`

	var patient models.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "get patient")
	}

	return &patient, nil
}

func (r *patientRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PatientStatus) error {
	query := `UPDATE patients SET status = $1, updated_at = NOW() WHERE uuid = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update patient status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update patient status")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "patient not found")
	}

	return nil
}
