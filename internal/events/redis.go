// internal/events/redis.go
package events

import (
	"context"
	"fmt"
	"time"

	"mergington-activities/internal/models"

	"github.com/redis/go-redis/v9"
)

const RedisSinkName = "redis"

// RedisStreamSink appends events to a capped Redis stream.
type RedisStreamSink struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

func NewRedisStreamSink(client redis.Cmdable, stream string, maxLen int64) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisStreamSink) Name() string { return RedisSinkName }

func (s *RedisStreamSink) Publish(ctx context.Context, event models.EnrollmentEvent) error {
	args := &redis.XAddArgs{Stream: s.stream, Values: streamValues(event)}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

// streamValues is the field set written for each stream entry.
func streamValues(event models.EnrollmentEvent) map[string]interface{} {
	return map[string]interface{}{
		"id":          event.ID,
		"type":        string(event.Type),
		"activity":    event.Activity,
		"participant": event.Participant,
		"roster_size": event.RosterSize,
		"capacity":    event.Capacity,
		"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}
