// internal/events/sink.go
package events

import (
	"context"

	"mergington-activities/internal/models"
)

// Sink delivers enrollment events to one downstream system.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event models.EnrollmentEvent) error
}
