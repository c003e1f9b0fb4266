package service

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/operank/scheduling-api/internal/models"
	appErrors "github.com/operank/scheduling-api/pkg/errors"
)

// AssignmentService matches patients to concrete room, date, timeslot and
// surgeon combinations. Searching never mutates schedule state; only
// Commit does.
type AssignmentService struct {
	log            *zap.Logger
	rng            *rand.Rand
	maxSuggestions int
}

func NewAssignmentService(log *zap.Logger, rng *rand.Rand, maxSuggestions int) *AssignmentService {
	if maxSuggestions <= 0 {
		maxSuggestions = 3
	}
	return &AssignmentService{log: log, rng: rng, maxSuggestions: maxSuggestions}
}

// ResolveSurgery finds the surgery sharing the patient's UUID. A miss is a
// data integrity failure upstream, not a schedulable condition.
func (s *AssignmentService) ResolveSurgery(patient *models.Patient, surgeries []*models.Surgery) (*models.Surgery, error) {
	for _, surgery := range surgeries {
		if surgery.UUID == patient.UUID {
			return surgery, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrSurgeryNotFound, "")
}

// FindSuitableRooms keeps rooms whose capability set covers every surgery
// requirement.
func (s *AssignmentService) FindSuitableRooms(surgery *models.Surgery, rooms []*models.OperatingRoom) []*models.OperatingRoom {
	suitable := make([]*models.OperatingRoom, 0, len(rooms))
	for _, room := range rooms {
		if room.CanPerform(surgery.Requirements) {
			suitable = append(suitable, room)
		}
	}
	return suitable
}

// FindEligibleSurgeons filters by team when the surgery names teams, by
// ward otherwise. When nobody matches, one surgeon is drawn at random from
// the full roster as a logged degraded fallback.
func (s *AssignmentService) FindEligibleSurgeons(surgery *models.Surgery, surgeons []*models.Surgeon) ([]*models.Surgeon, bool) {
	var eligible []*models.Surgeon

	if surgery.TeamBased() {
		teams := toSet(surgery.SuitableTeams)
		for _, surgeon := range surgeons {
			if _, ok := teams[surgeon.Team]; ok {
				eligible = append(eligible, surgeon)
			}
		}
	} else {
		wards := toSet(surgery.SuitableWards)
		for _, surgeon := range surgeons {
			if _, ok := wards[surgeon.Ward]; ok {
				eligible = append(eligible, surgeon)
			}
		}
	}

	if len(eligible) > 0 {
		return eligible, false
	}

	if len(surgeons) == 0 {
		return nil, false
	}

	pick := surgeons[s.rng.Intn(len(surgeons))]
	s.log.Warn("no eligible surgeon, falling back to random pick",
		zap.String("surgery", surgery.Name),
		zap.String("surgeon", pick.Name))

	return []*models.Surgeon{pick}, true
}

// SuggestFeasibleDates returns up to maxSuggestions ranked candidates for
// the patient, or a no feasible slot error. The search is read only;
// calling it twice without a commit yields the same result.
func (s *AssignmentService) SuggestFeasibleDates(
	patient *models.Patient,
	surgeries []*models.Surgery,
	rooms []*models.OperatingRoom,
	surgeons []*models.Surgeon,
) ([]*models.Candidate, error) {
	surgery, err := s.ResolveSurgery(patient, surgeries)
	if err != nil {
		return nil, err
	}

	suitableRooms := s.FindSuitableRooms(surgery, rooms)
	eligibleSurgeons, fallback := s.FindEligibleSurgeons(surgery, surgeons)

	candidates := s.collectCandidates(surgery, suitableRooms, eligibleSurgeons, fallback)
	if len(candidates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoFeasibleSlot, "")
	}

	return s.rank(candidates), nil
}

func (s *AssignmentService) collectCandidates(
	surgery *models.Surgery,
	rooms []*models.OperatingRoom,
	surgeons []*models.Surgeon,
	fallback bool,
) []*models.Candidate {
	var candidates []*models.Candidate

	for _, room := range rooms {
		for _, dateKey := range room.ScheduledDates() {
			cursor := room.AvailableTime[dateKey]

			for _, entry := range room.Schedule[dateKey] {
				if !entry.Open() || !surgery.CanFitIn(entry.Timeslot) {
					continue
				}

				for _, surgeon := range surgeons {
					windows := surgeon.Availability[dateKey]
					for _, window := range windows {
						start, ok := window.EarliestFit(cursor, surgery.Duration)
						if !ok {
							continue
						}

						candidates = append(candidates, &models.Candidate{
							Room:            room,
							RoomID:          room.ID,
							DateKey:         dateKey,
							Start:           start,
							Timeslot:        entry.Timeslot,
							SurgeonName:     surgeon.Name,
							FallbackSurgeon: fallback,
						})
						break
					}
				}
			}
		}
	}

	return candidates
}

// rank prefers the tightest fitting timeslots. When at least three
// candidates share the minimal timeslot duration, the first three of
// those win; otherwise the first three overall. Both orderings are by
// ascending start time.
func (s *AssignmentService) rank(candidates []*models.Candidate) []*models.Candidate {
	minDuration := candidates[0].Timeslot.Duration
	for _, c := range candidates[1:] {
		if c.Timeslot.Duration < minDuration {
			minDuration = c.Timeslot.Duration
		}
	}

	var minimal []*models.Candidate
	for _, c := range candidates {
		if c.Timeslot.Duration == minDuration {
			minimal = append(minimal, c)
		}
	}

	pool := candidates
	if len(minimal) > 2 {
		pool = minimal
	}

	ranked := make([]*models.Candidate, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Start.Before(ranked[j].Start)
	})

	if len(ranked) > s.maxSuggestions {
		ranked = ranked[:s.maxSuggestions]
	}

	return ranked
}

// Commit finalizes a chosen candidate: the timeslot entry becomes the
// concrete surgery, the room's open time cursor advances, the surgeon's
// window shrinks past the surgery end and the patient is marked
// scheduled. There is no undo within a run.
func (s *AssignmentService) Commit(
	candidate *models.Candidate,
	patient *models.Patient,
	surgery *models.Surgery,
	surgeons []*models.Surgeon,
) error {
	if !patient.Unscheduled() {
		return appErrors.Clone(appErrors.ErrConflict, "patient already "+string(patient.Status))
	}

	room := candidate.Room
	entries := room.Schedule[candidate.DateKey]

	var entry *models.ScheduleEntry
	for _, e := range entries {
		if e.Open() && e.Timeslot == candidate.Timeslot {
			entry = e
			break
		}
	}
	if entry == nil {
		return appErrors.Clone(appErrors.ErrConflict, "timeslot no longer open")
	}

	start := candidate.Start
	surgery.ScheduledTime = &start
	surgery.Surgeon = candidate.SurgeonName
	surgery.RoomID = room.ID

	entry.Surgery = surgery
	entry.Timeslot = nil

	room.AvailableTime[candidate.DateKey] = start.Add(time.Duration(surgery.Duration) * time.Minute)

	for _, surgeon := range surgeons {
		if surgeon.Name == candidate.SurgeonName {
			surgeon.Book(candidate.DateKey, surgery.Name, start, surgery.Duration)
			break
		}
	}

	patient.MarkScheduled()

	s.log.Info("surgery committed",
		zap.String("patient_uuid", patient.UUID.String()),
		zap.String("room_id", room.ID),
		zap.String("date", candidate.DateKey),
		zap.Time("start", start),
		zap.String("surgeon", candidate.SurgeonName))

	return nil
}

// FindCandidate rebuilds a candidate from its identifying fields, for
// commits arriving over the API after an earlier suggestion.
func (s *AssignmentService) FindCandidate(
	patientUUID uuid.UUID,
	roomID, dateKey string,
	start time.Time,
	surgeonName string,
	patients []*models.Patient,
	surgeries []*models.Surgery,
	rooms []*models.OperatingRoom,
	surgeons []*models.Surgeon,
) (*models.Candidate, *models.Patient, *models.Surgery, error) {
	var patient *models.Patient
	for _, p := range patients {
		if p.UUID == patientUUID {
			patient = p
			break
		}
	}
	if patient == nil {
		return nil, nil, nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
	}
	if !patient.Unscheduled() {
		return nil, nil, nil, appErrors.Clone(appErrors.ErrConflict, "patient already "+string(patient.Status))
	}

	surgery, err := s.ResolveSurgery(patient, surgeries)
	if err != nil {
		return nil, nil, nil, err
	}

	candidates, err := s.SuggestFeasibleDates(patient, surgeries, rooms, surgeons)
	if err != nil {
		return nil, nil, nil, err
	}

	for _, c := range candidates {
		if c.RoomID == roomID && c.DateKey == dateKey && c.Start.Equal(start) && c.SurgeonName == surgeonName {
			return c, patient, surgery, nil
		}
	}

	return nil, nil, nil, appErrors.Clone(appErrors.ErrConflict, "candidate no longer available")
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
