// internal/events/fanout.go
package events

import (
	"context"

	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/models"

	"go.uber.org/multierr"
)

// Fanout delivers each event to every sink. One failing sink does not stop
// the others; all failures are combined into the returned error.
type Fanout struct {
	sinks []Sink
}

// NewFanout ignores nil sinks.
func NewFanout(sinks ...Sink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

func (f *Fanout) Name() string { return "fanout" }

func (f *Fanout) Len() int { return len(f.sinks) }

func (f *Fanout) Publish(ctx context.Context, event models.EnrollmentEvent) error {
	var err error
	for _, sink := range f.sinks {
		if perr := sink.Publish(ctx, event); perr != nil {
			metrics.EventsPublished.WithLabelValues(sink.Name(), "error").Inc()
			err = multierr.Append(err, apperrors.NewEventPublishFailedError(sink.Name(), perr))
			continue
		}
		metrics.EventsPublished.WithLabelValues(sink.Name(), "success").Inc()
	}
	return err
}
