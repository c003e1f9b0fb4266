package models

import (
	"time"

	"github.com/google/uuid"
)

// Surgery is a single procedure instance awaiting placement.
//
// Exactly one Surgery and one Patient share a UUID; it is the join key
// between the two lists.
type Surgery struct {
	UUID          uuid.UUID  `json:"uuid" db:"uuid"`
	Name          string     `json:"name" db:"name"`
	Duration      int        `json:"duration_m" db:"duration_m"`
	Requirements  []string   `json:"requirements" db:"-"`
	SuitableTeams []string   `json:"suitable_teams" db:"-"`
	SuitableWards []string   `json:"suitable_wards" db:"-"`
	Surgeon       string     `json:"surgeon,omitempty" db:"surgeon"`
	RoomID        string     `json:"room_id,omitempty" db:"room_id"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty" db:"scheduled_time"`
}

// CanFitIn reports whether this surgery fits in the given timeslot.
func (s *Surgery) CanFitIn(ts *Timeslot) bool {
	return ts != nil && ts.Fits(s.Duration)
}

// TeamBased reports whether eligibility is decided by team rather than ward.
func (s *Surgery) TeamBased() bool {
	return len(s.SuitableTeams) > 0
}
