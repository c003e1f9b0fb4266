package models

import (
	"sort"
	"time"
)

// DateKeyLayout is the canonical format for schedule date keys.
const DateKeyLayout = "2006-01-02"

// DateKey renders a calendar date as a schedule map key.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ScheduleEntry is one slot in a room's daily schedule. It starts life as an
// open Timeslot and is replaced in place by a Surgery on commit.
type ScheduleEntry struct {
	Timeslot *Timeslot `json:"timeslot,omitempty"`
	Surgery  *Surgery  `json:"surgery,omitempty"`
}

// Open reports whether the entry is still bookable.
func (e *ScheduleEntry) Open() bool {
	return e.Surgery == nil
}

// OperatingRoom holds a room's capabilities and its evolving schedule state
// across a scheduling run.
type OperatingRoom struct {
	ID         string   `json:"id" db:"id"`
	Properties []string `json:"properties" db:"-"`

	// TimeslotsToSchedule is the raw pool assigned by room-load distribution.
	TimeslotsToSchedule []*Timeslot `json:"-"`

	// TimeslotsByDay groups the pool into per-day buckets after day
	// distribution. Order is day order; no empty buckets.
	TimeslotsByDay [][]*Timeslot `json:"-"`

	// Schedule maps a date key to that day's ordered entries.
	Schedule map[string][]*ScheduleEntry `json:"schedule"`

	// AvailableTime is the next free wall clock time per scheduled date.
	AvailableTime map[string]time.Time `json:"available_time"`

	NonWorkingDays map[time.Weekday]struct{} `json:"-"`
}

// NewOperatingRoom builds a room with empty schedule state. nonWorking may
// be nil, in which case Friday and Saturday are used.
func NewOperatingRoom(id string, properties []string, nonWorking map[time.Weekday]struct{}) *OperatingRoom {
	if nonWorking == nil {
		nonWorking = map[time.Weekday]struct{}{
			time.Friday:   {},
			time.Saturday: {},
		}
	}

	return &OperatingRoom{
		ID:             id,
		Properties:     properties,
		Schedule:       make(map[string][]*ScheduleEntry),
		AvailableTime:  make(map[string]time.Time),
		NonWorkingDays: nonWorking,
	}
}

// CanPerform reports whether every required tag is among the room's
// properties. An empty requirement set matches any room.
func (r *OperatingRoom) CanPerform(requirements []string) bool {
	if len(requirements) == 0 {
		return true
	}

	props := make(map[string]struct{}, len(r.Properties))
	for _, p := range r.Properties {
		props[p] = struct{}{}
	}

	for _, req := range requirements {
		if _, ok := props[req]; !ok {
			return false
		}
	}

	return true
}

// IsWorkingDay reports whether the room operates on the given weekday.
func (r *OperatingRoom) IsWorkingDay(day time.Weekday) bool {
	_, off := r.NonWorkingDays[day]
	return !off
}

// MaterializeSchedule walks forward from startDate, skipping non working
// weekdays, and pins each day bucket from TimeslotsByDay to a calendar
// date. Slots within a day are ordered longest first and the day's open
// time cursor is initialized to dayStartHour.
func (r *OperatingRoom) MaterializeSchedule(startDate time.Time, dayStartHour int) {
	day := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())

	for _, bucket := range r.TimeslotsByDay {
		for !r.IsWorkingDay(day.Weekday()) {
			day = day.AddDate(0, 0, 1)
		}

		sorted := make([]*Timeslot, len(bucket))
		copy(sorted, bucket)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Duration > sorted[j].Duration
		})

		entries := make([]*ScheduleEntry, 0, len(sorted))
		for _, ts := range sorted {
			entries = append(entries, &ScheduleEntry{Timeslot: ts})
		}

		key := DateKey(day)
		r.Schedule[key] = entries
		r.AvailableTime[key] = time.Date(day.Year(), day.Month(), day.Day(), dayStartHour, 0, 0, 0, day.Location())

		day = day.AddDate(0, 0, 1)
	}
}

// Clone returns a deep copy of the room's schedule state. Callers may read
// the copy after releasing whatever lock guards the original; later commits
// against the original do not show through. Timeslot values are immutable
// and stay shared.
func (r *OperatingRoom) Clone() *OperatingRoom {
	clone := &OperatingRoom{
		ID:             r.ID,
		Properties:     append([]string(nil), r.Properties...),
		Schedule:       make(map[string][]*ScheduleEntry, len(r.Schedule)),
		AvailableTime:  make(map[string]time.Time, len(r.AvailableTime)),
		NonWorkingDays: make(map[time.Weekday]struct{}, len(r.NonWorkingDays)),
	}

	for key, entries := range r.Schedule {
		copied := make([]*ScheduleEntry, 0, len(entries))
		for _, entry := range entries {
			e := &ScheduleEntry{Timeslot: entry.Timeslot}
			if entry.Surgery != nil {
				surgery := *entry.Surgery
				if entry.Surgery.ScheduledTime != nil {
					at := *entry.Surgery.ScheduledTime
					surgery.ScheduledTime = &at
				}
				e.Surgery = &surgery
			}
			copied = append(copied, e)
		}
		clone.Schedule[key] = copied
	}

	for key, at := range r.AvailableTime {
		clone.AvailableTime[key] = at
	}
	for day := range r.NonWorkingDays {
		clone.NonWorkingDays[day] = struct{}{}
	}

	return clone
}

// ScheduledDates returns the room's schedule dates in ascending order.
func (r *OperatingRoom) ScheduledDates() []string {
	dates := make([]string, 0, len(r.Schedule))
	for key := range r.Schedule {
		dates = append(dates, key)
	}
	sort.Strings(dates)
	return dates
}

// TotalAssignedMinutes sums the raw timeslot pool assigned to the room.
func (r *OperatingRoom) TotalAssignedMinutes() int {
	total := 0
	for _, ts := range r.TimeslotsToSchedule {
		total += ts.Duration
	}
	return total
}
