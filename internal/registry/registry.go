// Package registry holds the in-memory activity registry: every activity,
// its fixed metadata and its mutable roster.
//
// A Registry is constructed once from a seed catalog and handed to whatever
// serves requests. All methods are safe for concurrent use; readers never
// observe a half-updated roster because mutations publish a fresh slice.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/common/validation"
	"mergington-activities/internal/models"
	"mergington-activities/pkg/catalog"
)

var (
	ErrActivityNotFound    = apperrors.ErrActivityNotFound
	ErrAlreadyEnrolled     = apperrors.ErrAlreadyEnrolled
	ErrParticipantNotFound = apperrors.ErrParticipantNotFound
	ErrCapacityExceeded    = apperrors.ErrCapacityExceeded
	ErrInvalidParticipant  = apperrors.ErrInvalidParticipant
)

// ParticipantValidator rejects participant identifiers before they reach a roster.
type ParticipantValidator func(participant string) error

// Option customizes a Registry.
type Option func(*Registry)

// WithCapacityEnforcement makes Enroll reject participants once the roster
// reaches max_participants. Off by default.
func WithCapacityEnforcement(enabled bool) Option {
	return func(r *Registry) {
		r.enforceCapacity = enabled
	}
}

// WithParticipantValidator replaces the default non-empty check.
func WithParticipantValidator(v ParticipantValidator) Option {
	return func(r *Registry) {
		if v != nil {
			r.validate = v
		}
	}
}

type Registry struct {
	mu              sync.RWMutex
	activities      map[string]*models.Activity
	enforceCapacity bool
	validate        ParticipantValidator
}

// NonEmpty is the default participant validator. Any other string, including
// one made of spaces, is accepted as an identifier.
func NonEmpty(participant string) error {
	if participant == "" {
		return apperrors.NewInvalidParticipantError("participant identifier is empty")
	}
	return nil
}

// EmailAddress rejects identifiers that are not well-formed email addresses.
func EmailAddress(participant string) error {
	if err := NonEmpty(participant); err != nil {
		return err
	}
	if !validation.ValidateEmail(participant) {
		return apperrors.NewInvalidEmailError(participant)
	}
	return nil
}

// New builds a registry from seed specs. The specs are copied.
func New(specs []catalog.ActivitySpec, opts ...Option) (*Registry, error) {
	r := &Registry{
		activities: make(map[string]*models.Activity, len(specs)),
		validate:   NonEmpty,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	for _, spec := range specs {
		if strings.TrimSpace(spec.Name) == "" {
			return nil, apperrors.NewCatalogInvalidError(fmt.Errorf("activity name must not be blank"))
		}
		if _, dup := r.activities[spec.Name]; dup {
			return nil, apperrors.NewCatalogInvalidError(fmt.Errorf("duplicate activity %q", spec.Name))
		}
		if spec.MaxParticipants <= 0 {
			return nil, apperrors.NewCatalogInvalidError(fmt.Errorf("activity %q: max_participants must be positive", spec.Name))
		}

		roster := make([]string, 0, len(spec.Participants))
		seen := make(map[string]struct{}, len(spec.Participants))
		for _, p := range spec.Participants {
			if _, dup := seen[p]; dup {
				return nil, apperrors.NewCatalogInvalidError(fmt.Errorf("activity %q: duplicate participant %q", spec.Name, p))
			}
			seen[p] = struct{}{}
			roster = append(roster, p)
		}

		r.activities[spec.Name] = &models.Activity{
			Name:            spec.Name,
			Description:     spec.Description,
			Schedule:        spec.Schedule,
			MaxParticipants: spec.MaxParticipants,
			Participants:    roster,
		}
	}

	for name, a := range r.activities {
		metrics.RosterSize.WithLabelValues(name).Set(float64(len(a.Participants)))
	}
	return r, nil
}

// FromCatalog is shorthand for New(cat.Activities, opts...).
func FromCatalog(cat *catalog.Catalog, opts ...Option) (*Registry, error) {
	if cat == nil {
		return nil, apperrors.NewCatalogInvalidError(fmt.Errorf("catalog is nil"))
	}
	return New(cat.Activities, opts...)
}

// List returns every activity keyed by name.
func (r *Registry) List() map[string]models.ActivitySnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]models.ActivitySnapshot, len(r.activities))
	for name, a := range r.activities {
		out[name] = a.Snapshot()
	}
	return out
}

// Get returns a single activity.
func (r *Registry) Get(name string) (models.ActivitySnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.activities[name]
	if !ok {
		return models.ActivitySnapshot{}, apperrors.NewActivityNotFoundError(name)
	}
	return a.Snapshot(), nil
}

// Names returns the activity names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.activities))
	for name := range r.activities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of activities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activities)
}

// Enroll appends participant to the named activity's roster.
func (r *Registry) Enroll(name, participant string) (models.ActivitySnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	if !ok {
		return models.ActivitySnapshot{}, apperrors.NewActivityNotFoundError(name)
	}
	if err := r.validate(participant); err != nil {
		return models.ActivitySnapshot{}, err
	}
	if a.Has(participant) {
		return models.ActivitySnapshot{}, apperrors.NewAlreadyEnrolledError(name, participant)
	}
	if r.enforceCapacity && len(a.Participants) >= a.MaxParticipants {
		return models.ActivitySnapshot{}, apperrors.NewCapacityExceededError(name, a.MaxParticipants)
	}

	a.Participants = a.WithParticipant(participant)
	metrics.RosterSize.WithLabelValues(name).Set(float64(len(a.Participants)))
	return a.Snapshot(), nil
}

// Unenroll removes participant from the named activity's roster.
// A missing activity is reported before a missing participant.
func (r *Registry) Unenroll(name, participant string) (models.ActivitySnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	if !ok {
		return models.ActivitySnapshot{}, apperrors.NewActivityNotFoundError(name)
	}
	if err := r.validate(participant); err != nil {
		return models.ActivitySnapshot{}, err
	}
	next, removed := a.WithoutParticipant(participant)
	if !removed {
		return models.ActivitySnapshot{}, apperrors.NewParticipantNotFoundError(name, participant)
	}

	a.Participants = next
	metrics.RosterSize.WithLabelValues(name).Set(float64(len(a.Participants)))
	return a.Snapshot(), nil
}
