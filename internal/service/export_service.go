package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/operank/scheduling-api/internal/models"
	appErrors "github.com/operank/scheduling-api/pkg/errors"
	"github.com/operank/scheduling-api/pkg/export"
)

// Exporter renders a tabular dataset into a downloadable document.
type Exporter interface {
	Export(ds *export.Dataset) ([]byte, error)
	ContentType() string
	FileExtension() string
}

// ExportService flattens materialized room schedules into exportable
// documents.
type ExportService struct {
	log       *zap.Logger
	exporters map[string]Exporter
}

func NewExportService(log *zap.Logger) *ExportService {
	return &ExportService{
		log: log,
		exporters: map[string]Exporter{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
	}
}

// ExportSchedule renders every room's schedule in the requested format.
// It returns the document, its content type and a suggested filename.
func (s *ExportService) ExportSchedule(rooms []*models.OperatingRoom, format string) ([]byte, string, string, error) {
	exporter, ok := s.exporters[strings.ToLower(format)]
	if !ok {
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	ds := BuildScheduleDataset(rooms)

	doc, err := exporter.Export(ds)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render schedule export")
	}

	filename := fmt.Sprintf("operating-room-schedule.%s", exporter.FileExtension())
	s.log.Info("schedule exported",
		zap.String("format", format),
		zap.Int("rows", len(ds.Rows)))

	return doc, exporter.ContentType(), filename, nil
}

// BuildScheduleDataset flattens room schedules into one table, rooms in
// input order and dates ascending within a room.
func BuildScheduleDataset(rooms []*models.OperatingRoom) *export.Dataset {
	ds := &export.Dataset{
		Title:   "Operating Room Schedule",
		Headers: []string{"Room", "Date", "Slot Minutes", "Status", "Surgery", "Surgeon", "Start"},
	}

	for _, room := range rooms {
		for _, dateKey := range room.ScheduledDates() {
			for _, entry := range room.Schedule[dateKey] {
				row := []string{room.ID, dateKey}

				if entry.Open() {
					row = append(row,
						fmt.Sprintf("%d", entry.Timeslot.Duration),
						"open", "", "", "")
				} else {
					surgery := entry.Surgery
					start := ""
					if surgery.ScheduledTime != nil {
						start = surgery.ScheduledTime.Format("15:04")
					}
					row = append(row,
						fmt.Sprintf("%d", surgery.Duration),
						"booked", surgery.Name, surgery.Surgeon, start)
				}

				ds.Rows = append(ds.Rows, row)
			}
		}
	}

	return ds
}
