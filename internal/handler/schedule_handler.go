package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/operank/scheduling-api/internal/dto"
	"github.com/operank/scheduling-api/internal/models"
	appErrors "github.com/operank/scheduling-api/pkg/errors"
	"github.com/operank/scheduling-api/pkg/response"
)

// ScheduleProvider exposes the materialized schedules of the current run.
type ScheduleProvider interface {
	RoomSchedule(roomID string) (*models.OperatingRoom, error)
	Rooms() []*models.OperatingRoom
}

// ScheduleExporter renders the full schedule into a document.
type ScheduleExporter interface {
	ExportSchedule(rooms []*models.OperatingRoom, format string) (doc []byte, contentType, filename string, err error)
}

// ScheduleHandler serves room schedules and schedule exports. Room
// schedule reads go through a short lived Redis cache; commits do not
// invalidate it, so staleness is bounded by the TTL.
type ScheduleHandler struct {
	provider ScheduleProvider
	exporter ScheduleExporter
	cache    *redis.Client
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewScheduleHandler(provider ScheduleProvider, exporter ScheduleExporter, cache *redis.Client, cacheTTL time.Duration, log *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		provider: provider,
		exporter: exporter,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// RoomSchedule godoc
// @Summary Get a room's materialized schedule
// @Tags schedule
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope{data=dto.RoomScheduleResponse}
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /rooms/{id}/schedule [get]
func (h *ScheduleHandler) RoomSchedule(c *gin.Context) {
	roomID := c.Param("id")
	cacheKey := fmt.Sprintf("schedule:room:%s", roomID)

	if cached, err := h.readCache(c.Request.Context(), cacheKey); err == nil {
		response.OK(c, http.StatusOK, cached)
		return
	}

	room, err := h.provider.RoomSchedule(roomID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	resp := dto.NewRoomScheduleResponse(room)
	h.writeCache(c.Request.Context(), cacheKey, resp)

	response.OK(c, http.StatusOK, resp)
}

// ExportSchedule godoc
// @Summary Download the full schedule
// @Tags schedule
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /schedule/export [get]
func (h *ScheduleHandler) ExportSchedule(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	doc, contentType, filename, err := h.exporter.ExportSchedule(h.provider.Rooms(), format)
	if err != nil {
		response.Fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, doc)
}

func (h *ScheduleHandler) readCache(ctx context.Context, key string) (dto.RoomScheduleResponse, error) {
	var resp dto.RoomScheduleResponse

	if h.cache == nil {
		return resp, appErrors.ErrCacheMiss
	}

	raw, err := h.cache.Get(ctx, key).Bytes()
	if err != nil {
		return resp, appErrors.ErrCacheMiss
	}

	if err := json.Unmarshal(raw, &resp); err != nil {
		return resp, appErrors.ErrCacheMiss
	}

	return resp, nil
}

func (h *ScheduleHandler) writeCache(ctx context.Context, key string, resp dto.RoomScheduleResponse) {
	if h.cache == nil {
		return
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}

	if err := h.cache.Set(ctx, key, raw, h.cacheTTL).Err(); err != nil {
		h.log.Debug("schedule cache write failed", zap.Error(err), zap.String("key", key))
	}
}
