package models

import (
	"fmt"

	appErrors "github.com/operank/scheduling-api/pkg/errors"
)

// TimeslotBuckets are the allowed timeslot durations in minutes, ascending.
var TimeslotBuckets = []int{30, 60, 120, 180, 360, 480}

// Timeslot is a quantized block of bookable operating room time.
type Timeslot struct {
	Duration int `json:"duration"`
}

// NewTimeslot rounds a raw duration up to the smallest bucket that holds it.
// Durations above the largest bucket are rejected.
func NewTimeslot(rawMinutes int) (*Timeslot, error) {
	for _, bucket := range TimeslotBuckets {
		if rawMinutes <= bucket {
			return &Timeslot{Duration: bucket}, nil
		}
	}

	return nil, appErrors.Clone(appErrors.ErrDurationTooLong,
		fmt.Sprintf("duration %dm exceeds the largest timeslot bucket", rawMinutes))
}

// Fits reports whether a procedure of the given duration fits in this slot.
func (t *Timeslot) Fits(durationMinutes int) bool {
	return durationMinutes <= t.Duration
}
