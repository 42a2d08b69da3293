// internal/events/postgres.go
package events

import (
	"context"
	"database/sql"
	"fmt"

	"mergington-activities/internal/models"
)

const PostgresSinkName = "postgres"

// PostgresSink appends events to the audit table created by database.Migrate.
type PostgresSink struct {
	db    *sql.DB
	query string
}

func NewPostgresSink(db *sql.DB, table string) *PostgresSink {
	return &PostgresSink{
		db: db,
		query: fmt.Sprintf(`INSERT INTO %s
			(event_id, event_type, activity, participant, roster_size, capacity, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (event_id) DO NOTHING`, table),
	}
}

func (s *PostgresSink) Name() string { return PostgresSinkName }

func (s *PostgresSink) Publish(ctx context.Context, event models.EnrollmentEvent) error {
	_, err := s.db.ExecContext(ctx, s.query,
		event.ID,
		string(event.Type),
		event.Activity,
		event.Participant,
		event.RosterSize,
		event.Capacity,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit row: %w", err)
	}
	return nil
}
