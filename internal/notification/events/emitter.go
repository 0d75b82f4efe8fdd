package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
	Name: "addiscares_notification_events_dropped_total",
	Help: "Lifecycle events dropped because the emitter buffer was full",
})

// Emitter decouples producers from the sink with a buffered channel and a
// single worker goroutine, so a slow broker never backs up into request
// handling.
type Emitter struct {
	sink   Sink
	logger *slog.Logger
	inbox  chan Event
}

func NewEmitter(sink Sink, logger *slog.Logger, buffer int) *Emitter {
	if buffer <= 0 {
		buffer = 256
	}
	return &Emitter{sink: sink, logger: logger, inbox: make(chan Event, buffer)}
}

// Emit queues an event without blocking. Stamps At when unset.
func (e *Emitter) Emit(_ context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	select {
	case e.inbox <- event:
	default:
		droppedEvents.Inc()
		e.logger.Warn("event buffer full, dropping lifecycle event",
			"action", string(event.Action),
			"notification_id", event.NotificationID.String(),
		)
	}
}

// Run consumes the inbox until ctx is cancelled, then drains what is already
// buffered before returning.
func (e *Emitter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			e.drain()
			return ctx.Err()
		case event := <-e.inbox:
			e.publish(ctx, event)
		}
	}
}

func (e *Emitter) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-e.inbox:
			e.publish(ctx, event)
		default:
			return
		}
	}
}

func (e *Emitter) publish(ctx context.Context, event Event) {
	if err := e.sink.Publish(ctx, event); err != nil {
		e.logger.ErrorContext(ctx, "failed to publish lifecycle event",
			"action", string(event.Action),
			"notification_id", event.NotificationID.String(),
			"error", err.Error(),
		)
	}
}
