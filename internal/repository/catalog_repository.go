package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/operank/scheduling-api/internal/models"
	appErrors "github.com/operank/scheduling-api/pkg/errors"
)

// CatalogRepository loads the static procedure eligibility table.
type CatalogRepository interface {
	LoadCatalog(ctx context.Context) (*models.ProcedureCatalog, error)
}

type catalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

type catalogRow struct {
	Name  string         `db:"name"`
	Teams pq.StringArray `db:"teams"`
	Wards pq.StringArray `db:"wards"`
}

func (r *catalogRepository) LoadCatalog(ctx context.Context) (*models.ProcedureCatalog, error) {
	query := `SELECT name, teams, wards FROM procedure_catalog`

	var rows []catalogRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load procedure catalog")
	}

	entries := make(map[string]models.ProcedureInfo, len(rows))
	for _, row := range rows {
		entries[row.Name] = models.ProcedureInfo{Teams: row.Teams, Wards: row.Wards}
	}

	return models.NewProcedureCatalog(entries), nil
}
