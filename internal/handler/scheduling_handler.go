package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/operank/scheduling-api/internal/dto"
	"github.com/operank/scheduling-api/internal/models"
	appErrors "github.com/operank/scheduling-api/pkg/errors"
	"github.com/operank/scheduling-api/pkg/response"
)

// SchedulingService is the slice of the scheduling engine the handler
// needs.
type SchedulingService interface {
	Run(ctx context.Context, startDate time.Time) (*models.SchedulingRun, []models.PatientOutcome, error)
	Suggest(ctx context.Context, patientUUID uuid.UUID) ([]*models.Candidate, error)
	CommitCandidate(ctx context.Context, patientUUID uuid.UUID, roomID, dateKey string, start time.Time, surgeonName string) error
	RunReport(ctx context.Context, runID uuid.UUID) (*models.SchedulingRun, []models.PatientOutcome, error)
}

// SchedulingHandler exposes the pipeline and the interactive matcher.
type SchedulingHandler struct {
	service SchedulingService
}

func NewSchedulingHandler(service SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{service: service}
}

// RunSchedule godoc
// @Summary Execute a full scheduling run
// @Description Distributes pending surgeries across rooms and days, then matches patients in priority order.
// @Tags scheduling
// @Accept json
// @Produce json
// @Param request body dto.RunScheduleRequest true "Run parameters"
// @Success 200 {object} response.Envelope{data=dto.RunSummaryResponse}
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /scheduling/runs [post]
func (h *SchedulingHandler) RunSchedule(c *gin.Context) {
	var req dto.RunScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	startDate, err := time.Parse(models.DateKeyLayout, req.StartDate)
	if err != nil {
		response.Fail(c, appErrors.Clone(appErrors.ErrValidation, "start_date must be formatted 2006-01-02"))
		return
	}

	run, outcomes, err := h.service.Run(c.Request.Context(), startDate)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, http.StatusOK, buildRunSummary(run, outcomes))
}

// Suggest godoc
// @Summary Suggest feasible dates for a patient
// @Description Returns up to three ranked (room, start, surgeon) candidates without reserving anything.
// @Tags scheduling
// @Accept json
// @Produce json
// @Param request body dto.SuggestRequest true "Patient reference"
// @Success 200 {object} response.Envelope{data=dto.SuggestResponse}
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /scheduling/suggestions [post]
func (h *SchedulingHandler) Suggest(c *gin.Context) {
	var req dto.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	patientUUID, err := uuid.Parse(req.PatientUUID)
	if err != nil {
		response.Fail(c, appErrors.Clone(appErrors.ErrValidation, "patient_uuid must be a valid uuid"))
		return
	}

	candidates, err := h.service.Suggest(c.Request.Context(), patientUUID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, http.StatusOK, dto.SuggestResponse{
		PatientUUID: req.PatientUUID,
		Candidates:  dto.NewCandidateResponses(candidates),
	})
}

// Commit godoc
// @Summary Commit a suggested candidate
// @Description Finalizes a candidate: books the timeslot, the surgeon window and marks the patient scheduled. Irreversible.
// @Tags scheduling
// @Accept json
// @Produce json
// @Param request body dto.CommitRequest true "Chosen candidate"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /scheduling/commitments [post]
func (h *SchedulingHandler) Commit(c *gin.Context) {
	var req dto.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	patientUUID, err := uuid.Parse(req.PatientUUID)
	if err != nil {
		response.Fail(c, appErrors.Clone(appErrors.ErrValidation, "patient_uuid must be a valid uuid"))
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		response.Fail(c, appErrors.Clone(appErrors.ErrValidation, "start must be RFC3339"))
		return
	}

	if err := h.service.CommitCandidate(c.Request.Context(), patientUUID, req.RoomID, req.Date, start, req.SurgeonName); err != nil {
		response.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RunReport godoc
// @Summary Fetch a persisted run report
// @Tags scheduling
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope{data=dto.RunSummaryResponse}
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /scheduling/runs/{id} [get]
func (h *SchedulingHandler) RunReport(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, appErrors.Clone(appErrors.ErrValidation, "id must be a valid uuid"))
		return
	}

	run, outcomes, err := h.service.RunReport(c.Request.Context(), runID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, http.StatusOK, buildRunSummary(run, outcomes))
}

func buildRunSummary(run *models.SchedulingRun, outcomes []models.PatientOutcome) dto.RunSummaryResponse {
	resp := dto.RunSummaryResponse{
		RunID:            run.ID.String(),
		Status:           string(run.Status),
		StartedAt:        run.StartedAt,
		CompletedAt:      run.CompletedAt,
		TotalPatients:    run.TotalPatients,
		ScheduledCount:   run.ScheduledCount,
		SkippedCount:     run.SkippedCount,
		RoomsUsed:        run.RoomsUsed,
		TimeslotsPlanned: run.TimeslotsPlanned,
		SolverWallTimeMS: run.SolverWallTimeMS,
		Outcomes:         make([]dto.PatientOutcomeResponse, 0, len(outcomes)),
	}

	for _, o := range outcomes {
		resp.Outcomes = append(resp.Outcomes, dto.PatientOutcomeResponse{
			PatientUUID: o.PatientUUID.String(),
			PatientName: o.PatientName,
			Status:      string(o.Status),
			RoomID:      o.RoomID,
			Start:       o.Start,
			SurgeonName: o.SurgeonName,
			Reason:      o.Reason,
		})
	}

	return resp
}
