package models

import (
	"time"
)

// Candidate is one schedulable option returned by the matcher: a specific
// open timeslot in a room on a date, with a surgeon who can start then.
type Candidate struct {
	Room        *OperatingRoom `json:"-"`
	RoomID      string         `json:"room_id"`
	DateKey     string         `json:"date"`
	Start       time.Time      `json:"start"`
	Timeslot    *Timeslot      `json:"timeslot"`
	SurgeonName string         `json:"surgeon"`

	// FallbackSurgeon marks candidates produced by the random surgeon
	// fallback rather than team or ward eligibility.
	FallbackSurgeon bool `json:"fallback_surgeon,omitempty"`
}
