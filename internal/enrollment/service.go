// internal/enrollment/service.go
package enrollment

import (
	"context"
	"fmt"
	"time"

	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	OperationList     = "list"
	OperationEnroll   = "enroll"
	OperationUnenroll = "unenroll"

	outcomeSuccess = "success"
)

// Registry is the part of registry.Registry the service drives.
type Registry interface {
	List() map[string]models.ActivitySnapshot
	Enroll(name, participant string) (models.ActivitySnapshot, error)
	Unenroll(name, participant string) (models.ActivitySnapshot, error)
}

// Publisher accepts events for asynchronous delivery. events.Dispatcher
// satisfies it.
type Publisher interface {
	Enqueue(event models.EnrollmentEvent) bool
}

// Result is the acknowledgement returned for a successful roster change.
type Result struct {
	Message string `json:"message"`
}

type Option func(*Service)

func WithObservability(obs *observability.Observability) Option {
	return func(s *Service) {
		if obs != nil {
			s.obs = obs
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

type Service struct {
	registry  Registry
	publisher Publisher
	logger    logger.Logger
	obs       *observability.Observability
	now       func() time.Time
	newID     func() string
}

// NewService wires the registry to its side effects. publisher may be nil,
// in which case no events are emitted.
func NewService(reg Registry, publisher Publisher, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		registry:  reg,
		publisher: publisher,
		logger:    log.WithFields(map[string]interface{}{"component": "enrollment"}),
		obs:       observability.NewNoop(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) map[string]models.ActivitySnapshot {
	_, span := s.obs.StartSpan(ctx, "enrollment.list")
	defer span.End()

	start := time.Now()
	activities := s.registry.List()
	s.record(ctx, OperationList, outcomeSuccess, time.Since(start))

	span.SetAttributes(attribute.Int("activities.count", len(activities)))
	return activities
}

func (s *Service) Enroll(ctx context.Context, activity, email string) (Result, error) {
	snap, err := s.mutate(ctx, OperationEnroll, activity, email, s.registry.Enroll)
	if err != nil {
		return Result{}, err
	}
	s.emit(models.EventParticipantEnrolled, activity, email, snap)
	return Result{Message: fmt.Sprintf("Signed up %s for %s", email, activity)}, nil
}

func (s *Service) Unenroll(ctx context.Context, activity, email string) (Result, error) {
	snap, err := s.mutate(ctx, OperationUnenroll, activity, email, s.registry.Unenroll)
	if err != nil {
		return Result{}, err
	}
	s.emit(models.EventParticipantUnenrolled, activity, email, snap)
	return Result{Message: fmt.Sprintf("Unregistered %s from %s", email, activity)}, nil
}

func (s *Service) mutate(
	ctx context.Context,
	operation, activity, email string,
	apply func(name, participant string) (models.ActivitySnapshot, error),
) (models.ActivitySnapshot, error) {
	ctx, span := s.obs.StartSpan(ctx, "enrollment."+operation,
		attribute.String("activity", activity),
	)
	defer span.End()

	start := time.Now()
	snap, err := apply(activity, email)
	elapsed := time.Since(start)

	fields := map[string]interface{}{
		"operation":   operation,
		"activity":    activity,
		"participant": email,
		"durationMs":  elapsed.Milliseconds(),
	}

	if err != nil {
		code := string(apperrors.Normalize(err).Code)
		s.record(ctx, operation, code, elapsed)
		span.SetStatus(codes.Error, code)
		span.SetAttributes(attribute.String("error.code", code))

		fields["errorCode"] = code
		s.logger.Warn("roster change rejected", fields)
		return models.ActivitySnapshot{}, err
	}

	s.record(ctx, operation, outcomeSuccess, elapsed)
	span.SetAttributes(attribute.Int("roster.size", len(snap.Participants)))

	fields["rosterSize"] = len(snap.Participants)
	s.logger.Info("roster changed", fields)
	return snap, nil
}

func (s *Service) record(ctx context.Context, operation, outcome string, elapsed time.Duration) {
	metrics.RegistryOperations.WithLabelValues(operation, outcome).Inc()
	metrics.RegistryOperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	s.obs.RecordOperation(ctx, operation, outcome, elapsed)
}

func (s *Service) emit(eventType models.EventType, activity, email string, snap models.ActivitySnapshot) {
	if s.publisher == nil {
		return
	}
	event := models.EnrollmentEvent{
		ID:          s.newID(),
		Type:        eventType,
		Activity:    activity,
		Participant: email,
		RosterSize:  len(snap.Participants),
		Capacity:    snap.MaxParticipants,
		OccurredAt:  s.now(),
	}
	if !s.publisher.Enqueue(event) {
		s.logger.Debug("event not queued", map[string]interface{}{"eventId": event.ID})
	}
}
