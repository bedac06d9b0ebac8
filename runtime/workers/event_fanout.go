package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fractal-bot/contract"
	"fractal-bot/domain/event"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout broadcasts domain events to the permanent sinks (archive,
// notifications, projections).
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker.
// A slow sink is cut off by the timeout instead of stalling the pipeline.
type EventFanout struct {
	log         *slog.Logger
	events      chan event.DomainEvent
	sinkTimeout time.Duration
	sinks       []contract.EventSink
}

func NewEventFanout(log *slog.Logger, events chan event.DomainEvent,
	sinkTimeout time.Duration, sinks ...contract.EventSink) *EventFanout {
	return &EventFanout{
		log:         log,
		events:      events,
		sinkTimeout: sinkTimeout,
		sinks:       sinks,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return ctx.Err()
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(evt)
		}
	}
}

// Fanout One sink for each event, each with its own deadline.
func (w *EventFanout) Fanout(evt event.DomainEvent) {
	for _, sink := range w.sinks {
		go func(s contract.EventSink) {
			ctx, cancel := context.WithTimeout(context.Background(), w.sinkTimeout)
			defer cancel()

			if err := s.Consume(ctx, evt); err != nil {
				w.log.Warn(fmt.Sprintf("Sink %T failed on %s : %v", s, evt.Name(), err))
			}
		}(sink)
	}
}
