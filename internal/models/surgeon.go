package models

import (
	"time"
)

// TimeWindow is a half open [Start, End) span of surgeon availability.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Minutes returns the window length in whole minutes.
func (w TimeWindow) Minutes() int {
	return int(w.End.Sub(w.Start) / time.Minute)
}

// EarliestFit returns the earliest start inside the window, no earlier than
// notBefore, that leaves room for durationMinutes. The second return value
// is false when the window cannot host the procedure.
func (w TimeWindow) EarliestFit(notBefore time.Time, durationMinutes int) (time.Time, bool) {
	start := w.Start
	if notBefore.After(start) {
		start = notBefore
	}

	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	if end.After(w.End) {
		return time.Time{}, false
	}

	return start, true
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// OccupiedSlot records a surgery a surgeon has been booked for.
type OccupiedSlot struct {
	SurgeryName string    `json:"surgery_name"`
	Start       time.Time `json:"start"`
}

// Surgeon holds identity, affiliation and mutable per-date availability.
type Surgeon struct {
	Name string `json:"name" db:"name"`
	Team string `json:"team" db:"team"`
	Ward string `json:"ward" db:"ward"`

	// Availability maps a date key to the surgeon's open windows that day.
	Availability map[string][]TimeWindow `json:"availability" db:"-"`

	// Occupied logs booked surgeries per date key.
	Occupied map[string][]OccupiedSlot `json:"occupied" db:"-"`
}

// NewSurgeon builds a surgeon with empty availability maps.
func NewSurgeon(name, team, ward string) *Surgeon {
	return &Surgeon{
		Name:         name,
		Team:         team,
		Ward:         ward,
		Availability: make(map[string][]TimeWindow),
		Occupied:     make(map[string][]OccupiedSlot),
	}
}

// AddAvailability appends an open window for the given date.
func (s *Surgeon) AddAvailability(dateKey string, window TimeWindow) {
	if s.Availability == nil {
		s.Availability = make(map[string][]TimeWindow)
	}
	s.Availability[dateKey] = append(s.Availability[dateKey], window)
}

// Book shrinks the availability window containing start past the surgery's
// end and logs the booking. Windows that collapse to nothing are dropped.
func (s *Surgeon) Book(dateKey, surgeryName string, start time.Time, durationMinutes int) {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	windows := s.Availability[dateKey]
	for i, w := range windows {
		if !w.Contains(start) {
			continue
		}

		if end.Before(w.End) {
			windows[i].Start = end
		} else {
			windows = append(windows[:i], windows[i+1:]...)
		}
		s.Availability[dateKey] = windows
		break
	}

	if s.Occupied == nil {
		s.Occupied = make(map[string][]OccupiedSlot)
	}
	s.Occupied[dateKey] = append(s.Occupied[dateKey], OccupiedSlot{
		SurgeryName: surgeryName,
		Start:       start,
	})
}
