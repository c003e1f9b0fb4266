package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/operank/scheduling-api/internal/models"
	appErrors "github.com/operank/scheduling-api/pkg/errors"
)

// RoomRepository loads operating room definitions.
type RoomRepository interface {
	ListRooms(ctx context.Context) ([]*models.OperatingRoom, error)
}

type roomRepository struct {
	db *sqlx.DB

	// defaultNonWorking applies to rooms stored without explicit
	// non-working days. Nil falls through to the model default.
	defaultNonWorking map[time.Weekday]struct{}
}

func NewRoomRepository(db *sqlx.DB, defaultNonWorking map[time.Weekday]struct{}) RoomRepository {
	return &roomRepository{db: db, defaultNonWorking: defaultNonWorking}
}

type roomRow struct {
	ID             string         `db:"id"`
	Properties     pq.StringArray `db:"properties"`
	NonWorkingDays pq.StringArray `db:"non_working_days"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekdays converts lower case weekday names into a weekday set.
// Unknown names are ignored.
func ParseWeekdays(names []string) map[time.Weekday]struct{} {
	if len(names) == 0 {
		return nil
	}

	set := make(map[time.Weekday]struct{}, len(names))
	for _, name := range names {
		if day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]; ok {
			set[day] = struct{}{}
		}
	}

	if len(set) == 0 {
		return nil
	}
	return set
}

func (r *roomRepository) ListRooms(ctx context.Context) ([]*models.OperatingRoom, error) {
	query := `
		SELECT id, properties, non_working_days
		FROM operating_rooms
		ORDER BY id ASC`

	var rows []roomRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list operating rooms")
	}

	rooms := make([]*models.OperatingRoom, 0, len(rows))
	for _, row := range rows {
		nonWorking := ParseWeekdays(row.NonWorkingDays)
		if nonWorking == nil {
			nonWorking = r.defaultNonWorking
		}
		rooms = append(rooms, models.NewOperatingRoom(row.ID, row.Properties, nonWorking))
	}

	return rooms, nil
}
