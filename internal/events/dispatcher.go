// internal/events/dispatcher.go
package events

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/models"

	"go.uber.org/multierr"
)

// Dispatcher moves events off the request path. Enqueue never blocks: when
// the queue is full the event is dropped and counted.
//
// Each activity is pinned to one worker, so events for the same activity are
// delivered in the order they were enqueued. Events for different activities
// may interleave.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	logger  logger.Logger

	queues []chan models.EnrollmentEvent
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewDispatcher splits queueSize evenly across workers, rounding up.
func NewDispatcher(sink Sink, workers, queueSize int, timeout time.Duration, log logger.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	perWorker := (queueSize + workers - 1) / workers

	d := &Dispatcher{
		sink:    sink,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "event-dispatcher"}),
		queues:  make([]chan models.EnrollmentEvent, workers),
	}

	d.wg.Add(workers)
	for i := range d.queues {
		d.queues[i] = make(chan models.EnrollmentEvent, perWorker)
		go d.run(d.queues[i])
	}
	return d
}

// Enqueue reports whether the event was accepted.
func (d *Dispatcher) Enqueue(event models.EnrollmentEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(event, "dispatcher closed")
		return false
	}

	select {
	case d.queues[d.route(event.Activity)] <- event:
		return true
	default:
		d.drop(event, "queue full")
		return false
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, q := range d.queues {
			close(q)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) route(activity string) int {
	if len(d.queues) == 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(activity))
	return int(h.Sum32() % uint32(len(d.queues)))
}

func (d *Dispatcher) run(queue <-chan models.EnrollmentEvent) {
	defer d.wg.Done()
	for event := range queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event models.EnrollmentEvent) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.sink.Publish(ctx, event); err != nil {
		for _, e := range multierr.Errors(err) {
			d.logger.Error("event delivery failed", map[string]interface{}{
				"eventId":  event.ID,
				"activity": event.Activity,
				"error":    e,
			})
		}
	}
}

func (d *Dispatcher) drop(event models.EnrollmentEvent, reason string) {
	metrics.EventsDropped.Inc()
	d.logger.Warn("event dropped", map[string]interface{}{
		"eventId":  event.ID,
		"type":     string(event.Type),
		"activity": event.Activity,
		"reason":   reason,
	})
}
