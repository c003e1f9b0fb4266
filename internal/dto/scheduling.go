package dto

import (
	"time"

	"github.com/operank/scheduling-api/internal/models"
)

// RunScheduleRequest starts a full scheduling pipeline pass.
type RunScheduleRequest struct {
	// StartDate is the first calendar day considered, formatted 2006-01-02.
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
}

// SuggestRequest asks for ranked candidates for one patient.
type SuggestRequest struct {
	PatientUUID string `json:"patient_uuid" binding:"required,uuid"`
}

// CommitRequest finalizes a previously suggested candidate.
type CommitRequest struct {
	PatientUUID string `json:"patient_uuid" binding:"required,uuid"`
	RoomID      string `json:"room_id" binding:"required"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	Start       string `json:"start" binding:"required,rfc3339"`
	SurgeonName string `json:"surgeon" binding:"required"`
}

// CandidateResponse is one schedulable option for a patient.
type CandidateResponse struct {
	RoomID          string    `json:"room_id"`
	Date            string    `json:"date"`
	Start           time.Time `json:"start"`
	TimeslotMinutes int       `json:"timeslot_minutes"`
	SurgeonName     string    `json:"surgeon"`
	FallbackSurgeon bool      `json:"fallback_surgeon,omitempty"`
}

// SuggestResponse wraps the ranked candidate list for one patient.
type SuggestResponse struct {
	PatientUUID string              `json:"patient_uuid"`
	Candidates  []CandidateResponse `json:"candidates"`
}

// PatientOutcomeResponse is the per patient line in a run report.
type PatientOutcomeResponse struct {
	PatientUUID string     `json:"patient_uuid"`
	PatientName string     `json:"patient_name"`
	Status      string     `json:"status"`
	RoomID      string     `json:"room_id,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	SurgeonName string     `json:"surgeon,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

// RunSummaryResponse reports the result of a pipeline pass.
type RunSummaryResponse struct {
	RunID            string                   `json:"run_id"`
	Status           string                   `json:"status"`
	StartedAt        time.Time                `json:"started_at"`
	CompletedAt      *time.Time               `json:"completed_at,omitempty"`
	TotalPatients    int                      `json:"total_patients"`
	ScheduledCount   int                      `json:"scheduled_count"`
	SkippedCount     int                      `json:"skipped_count"`
	RoomsUsed        int                      `json:"rooms_used"`
	TimeslotsPlanned int                      `json:"timeslots_planned"`
	SolverWallTimeMS int64                    `json:"solver_wall_time_ms"`
	Outcomes         []PatientOutcomeResponse `json:"outcomes"`
}

// ScheduleEntryResponse is one slot in a room's daily schedule.
type ScheduleEntryResponse struct {
	Open            bool       `json:"open"`
	TimeslotMinutes int        `json:"timeslot_minutes"`
	SurgeryName     string     `json:"surgery_name,omitempty"`
	SurgeonName     string     `json:"surgeon,omitempty"`
	ScheduledTime   *time.Time `json:"scheduled_time,omitempty"`
}

// RoomScheduleResponse is a room's materialized schedule.
type RoomScheduleResponse struct {
	RoomID string                             `json:"room_id"`
	Days   map[string][]ScheduleEntryResponse `json:"days"`
}

// NewRoomScheduleResponse flattens a room's schedule state for transport.
func NewRoomScheduleResponse(room *models.OperatingRoom) RoomScheduleResponse {
	resp := RoomScheduleResponse{
		RoomID: room.ID,
		Days:   make(map[string][]ScheduleEntryResponse, len(room.Schedule)),
	}

	for date, entries := range room.Schedule {
		day := make([]ScheduleEntryResponse, 0, len(entries))
		for _, entry := range entries {
			item := ScheduleEntryResponse{Open: entry.Open()}
			if entry.Timeslot != nil {
				item.TimeslotMinutes = entry.Timeslot.Duration
			}
			if entry.Surgery != nil {
				item.SurgeryName = entry.Surgery.Name
				item.SurgeonName = entry.Surgery.Surgeon
				item.ScheduledTime = entry.Surgery.ScheduledTime
			}
			day = append(day, item)
		}
		resp.Days[date] = day
	}

	return resp
}

// NewCandidateResponses converts matcher candidates for transport.
func NewCandidateResponses(candidates []*models.Candidate) []CandidateResponse {
	out := make([]CandidateResponse, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, CandidateResponse{
			RoomID:          c.RoomID,
			Date:            c.DateKey,
			Start:           c.Start,
			TimeslotMinutes: c.Timeslot.Duration,
			SurgeonName:     c.SurgeonName,
			FallbackSurgeon: c.FallbackSurgeon,
		})
	}
	return out
}
