package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus tracks the lifecycle of one scheduling run.
type RunStatus string

const (
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// SchedulingRun is the persisted record of one end to end pipeline pass.
type SchedulingRun struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Status      RunStatus  `json:"status" db:"status"`
	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	TotalPatients    int `json:"total_patients" db:"total_patients"`
	ScheduledCount   int `json:"scheduled_count" db:"scheduled_count"`
	SkippedCount     int `json:"skipped_count" db:"skipped_count"`
	RoomsUsed        int `json:"rooms_used" db:"rooms_used"`
	TimeslotsPlanned int `json:"timeslots_planned" db:"timeslots_planned"`

	SolverWallTimeMS int64  `json:"solver_wall_time_ms" db:"solver_wall_time_ms"`
	FailureReason    string `json:"failure_reason,omitempty" db:"failure_reason"`
}

// PatientOutcome is the per patient result line of a run report.
type PatientOutcome struct {
	PatientUUID uuid.UUID     `json:"patient_uuid" db:"patient_uuid"`
	PatientName string        `json:"patient_name" db:"patient_name"`
	Status      PatientStatus `json:"status" db:"status"`
	RoomID      string        `json:"room_id,omitempty" db:"room_id"`
	Start       *time.Time    `json:"start,omitempty" db:"start"`
	SurgeonName string        `json:"surgeon,omitempty" db:"surgeon"`
	Reason      string        `json:"reason,omitempty" db:"reason"`
}
