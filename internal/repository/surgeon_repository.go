package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/operank/scheduling-api/internal/models"
	appErrors "github.com/operank/scheduling-api/pkg/errors"
)

// SurgeonRepository loads the surgeon roster with availability windows.
type SurgeonRepository interface {
	ListWithAvailability(ctx context.Context, from, to time.Time) ([]*models.Surgeon, error)
}

type surgeonRepository struct {
	db *sqlx.DB
}

func NewSurgeonRepository(db *sqlx.DB) SurgeonRepository {
	return &surgeonRepository{db: db}
}

type surgeonRow struct {
	Name string `db:"name"`
	Team string `db:"team"`
	Ward string `db:"ward"`
}

type availabilityRow struct {
	SurgeonName string    `db:"surgeon_name"`
	Start       time.Time `db:"window_start"`
	End         time.Time `db:"window_end"`
}

func (r *surgeonRepository) ListWithAvailability(ctx context.Context, from, to time.Time) ([]*models.Surgeon, error) {
	rosterQuery := `SELECT name, team, ward FROM surgeons ORDER BY name ASC`

	var roster []surgeonRow
	if err := r.db.SelectContext(ctx, &roster, rosterQuery); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list surgeons")
	}

	windowQuery := `
		SELECT surgeon_name, window_start, window_end
		FROM surgeon_availability
		WHERE window_start >= $1 AND window_end <= $2
		ORDER BY surgeon_name ASC, window_start ASC`

	var windows []availabilityRow
	if err := r.db.SelectContext(ctx, &windows, windowQuery, from, to); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list surgeon availability")
	}

	byName := make(map[string]*models.Surgeon, len(roster))
	surgeons := make([]*models.Surgeon, 0, len(roster))
	for _, row := range roster {
		s := models.NewSurgeon(row.Name, row.Team, row.Ward)
		byName[row.Name] = s
		surgeons = append(surgeons, s)
	}

	for _, w := range windows {
		s, ok := byName[w.SurgeonName]
		if !ok {
			continue
		}
		s.AddAvailability(models.DateKey(w.Start), models.TimeWindow{Start: w.Start, End: w.End})
	}

	return surgeons, nil
}
