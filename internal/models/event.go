// internal/models/event.go
package models

import "time"

type EventType string

const (
	EventParticipantEnrolled   EventType = "participant.enrolled"
	EventParticipantUnenrolled EventType = "participant.unenrolled"
)

// EnrollmentEvent is emitted after a successful roster change.
type EnrollmentEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Activity    string    `json:"activity"`
	Participant string    `json:"participant"`
	RosterSize  int       `json:"rosterSize"`
	Capacity    int       `json:"capacity"`
	OccurredAt  time.Time `json:"occurredAt"`
}
