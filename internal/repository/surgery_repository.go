package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/operank/scheduling-api/internal/models"
	appErrors "github.com/operank/scheduling-api/pkg/errors"
)

// SurgeryRepository loads pending surgeries and records placements.
type SurgeryRepository interface {
	ListPending(ctx context.Context) ([]*models.Surgery, error)
	MarkScheduled(ctx context.Context, id uuid.UUID, roomID, surgeon string, scheduledTime time.Time) error
}

type surgeryRepository struct {
	db *sqlx.DB
}

func NewSurgeryRepository(db *sqlx.DB) SurgeryRepository {
	return &surgeryRepository{db: db}
}

type surgeryRow struct {
	UUID          uuid.UUID      `db:"uuid"`
	Name          string         `db:"name"`
	Duration      int            `db:"duration_m"`
	Requirements  pq.StringArray `db:"requirements"`
	SuitableTeams pq.StringArray `db:"suitable_teams"`
	SuitableWards pq.StringArray `db:"suitable_wards"`
}

func (r *surgeryRepository) ListPending(ctx context.Context) ([]*models.Surgery, error) {
	query := `
		SELECT uuid, name, duration_m, requirements, suitable_teams, suitable_wards
		FROM surgeries
		WHERE scheduled_time IS NULL
		ORDER BY uuid ASC`

	var rows []surgeryRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list pending surgeries")
	}

	surgeries := make([]*models.Surgery, 0, len(rows))
	for _, row := range rows {
		surgeries = append(surgeries, &models.Surgery{
			UUID:          row.UUID,
			Name:          strings.ToUpper(row.Name),
			Duration:      row.Duration,
			Requirements:  row.Requirements,
			SuitableTeams: row.SuitableTeams,
			SuitableWards: row.SuitableWards,
		})
	}

	return surgeries, nil
}

func (r *surgeryRepository) MarkScheduled(ctx context.Context, id uuid.UUID, roomID, surgeon string, scheduledTime time.Time) error {
	query := `
		UPDATE surgeries
		SET room_id = $1, surgeon = $2, scheduled_time = $3, updated_at = NOW()
		WHERE uuid = $4`

	result, err := r.db.ExecContext(ctx, query, roomID, surgeon, scheduledTime, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "mark surgery scheduled")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "mark surgery scheduled")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrSurgeryNotFound, "")
	}

	return nil
}
