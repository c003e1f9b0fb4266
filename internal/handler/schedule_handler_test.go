package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/operank/scheduling-api/internal/models"
	"github.com/operank/scheduling-api/pkg/export"
)

type stubScheduleProvider struct {
	rooms []*models.OperatingRoom
}

func (s *stubScheduleProvider) RoomSchedule(roomID string) (*models.OperatingRoom, error) {
	for _, room := range s.rooms {
		if room.ID == roomID {
			return room, nil
		}
	}
	return nil, assert.AnError
}

func (s *stubScheduleProvider) Rooms() []*models.OperatingRoom { return s.rooms }

type stubScheduleExporter struct{}

func (stubScheduleExporter) ExportSchedule(rooms []*models.OperatingRoom, format string) ([]byte, string, string, error) {
	ds := &export.Dataset{Headers: []string{"Room"}, Rows: [][]string{{"or-1"}}}
	doc, err := export.NewCSVExporter().Export(ds)
	return doc, "text/csv", "schedule.csv", err
}

func scheduleTestRouter() (*gin.Engine, *stubScheduleProvider) {
	gin.SetMode(gin.TestMode)

	room := models.NewOperatingRoom("or-1", nil, nil)
	room.TimeslotsByDay = [][]*models.Timeslot{{{Duration: 60}}}
	room.MaterializeSchedule(time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), 8)

	provider := &stubScheduleProvider{rooms: []*models.OperatingRoom{room}}
	h := NewScheduleHandler(provider, stubScheduleExporter{}, nil, time.Minute, zap.NewNop())

	router := gin.New()
	router.GET("/rooms/:id/schedule", h.RoomSchedule)
	router.GET("/schedule/export", h.ExportSchedule)
	return router, provider
}

func TestRoomScheduleWithoutCache(t *testing.T) {
	router, _ := scheduleTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/rooms/or-1/schedule", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2026-09-07")
}

func TestExportScheduleSetsDisposition(t *testing.T) {
	router, _ := scheduleTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/schedule/export?format=csv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "schedule.csv")
}
