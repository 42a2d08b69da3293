// internal/models/activity.go
package models

// Activity is one extracurricular offering held by the registry.
// Name, Description, Schedule and MaxParticipants never change after seeding.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// ActivitySnapshot is the read-only view of an activity returned to callers.
// It is also the exact JSON shape of each entry in GET /activities.
type ActivitySnapshot struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Snapshot copies the activity so the caller can't alias the roster.
func (a *Activity) Snapshot() ActivitySnapshot {
	participants := make([]string, len(a.Participants))
	copy(participants, a.Participants)
	return ActivitySnapshot{
		Description:     a.Description,
		Schedule:        a.Schedule,
		MaxParticipants: a.MaxParticipants,
		Participants:    participants,
	}
}

// Has reports whether participant is on the roster.
func (a *Activity) Has(participant string) bool {
	return a.indexOf(participant) >= 0
}

func (a *Activity) indexOf(participant string) int {
	for i, p := range a.Participants {
		if p == participant {
			return i
		}
	}
	return -1
}

// WithParticipant returns a new roster with participant appended.
func (a *Activity) WithParticipant(participant string) []string {
	next := make([]string, len(a.Participants), len(a.Participants)+1)
	copy(next, a.Participants)
	return append(next, participant)
}

// WithoutParticipant returns a new roster with participant removed, keeping order.
// The second result is false when participant was not enrolled.
func (a *Activity) WithoutParticipant(participant string) ([]string, bool) {
	idx := a.indexOf(participant)
	if idx < 0 {
		return nil, false
	}
	next := make([]string, 0, len(a.Participants)-1)
	next = append(next, a.Participants[:idx]...)
	next = append(next, a.Participants[idx+1:]...)
	return next, true
}
