package models

import (
	"github.com/google/uuid"
)

// PatientStatus tracks a patient's progress through a scheduling run.
type PatientStatus string

const (
	PatientUnscheduled PatientStatus = "UNSCHEDULED"
	PatientScheduled   PatientStatus = "SCHEDULED"
	PatientSkipped     PatientStatus = "SKIPPED"
)

// Patient is a person waiting for a procedure. Lower priority value means
// more urgent.
type Patient struct {
	UUID            uuid.UUID     `json:"uuid" db:"uuid"`
	Name            string        `json:"name" db:"name"`
	PatientID       string        `json:"patient_id" db:"patient_id"`
	SurgeryName     string        `json:"surgery_name" db:"surgery_name"`
	Referrer        string        `json:"referrer" db:"referrer"`
	DurationMinutes int           `json:"estimated_duration_m" db:"estimated_duration_m"`
	Priority        int           `json:"priority" db:"priority"`
	PhoneNumber     string        `json:"phone_number" db:"phone_number"`
	Status          PatientStatus `json:"status" db:"status"`
}

// Unscheduled reports whether the patient is still awaiting placement.
// An empty status counts as UNSCHEDULED for rows ingested without one.
func (p *Patient) Unscheduled() bool {
	return p.Status == PatientUnscheduled || p.Status == ""
}

// MarkScheduled transitions the patient to SCHEDULED. The transition is
// one way; later calls are no-ops.
func (p *Patient) MarkScheduled() {
	if p.Unscheduled() {
		p.Status = PatientScheduled
	}
}

// MarkSkipped transitions an unscheduled patient to SKIPPED.
func (p *Patient) MarkSkipped() {
	if p.Unscheduled() {
		p.Status = PatientSkipped
	}
}
