package workers

import (
	"context"
	"log/slog"

	"fractal-bot/contract"
	"fractal-bot/domain/event"
)

var _ contract.Worker = (*TelemetryWorker)(nil)

// TelemetryWorker drains technical events into the registered handlers.
// Handlers are cheap counters and log lines; an event no handler claims is
// simply dropped.
type TelemetryWorker struct {
	log       *slog.Logger
	telemetry chan event.Event
	handlers  []event.Handler
}

func NewTelemetryWorker(log *slog.Logger, telemetry chan event.Event,
	handlers []event.Handler) *TelemetryWorker {
	return &TelemetryWorker{
		log:       log,
		telemetry: telemetry,
		handlers:  handlers,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case evt, ok := <-w.telemetry:
			if !ok {
				return nil
			}
			w.handle(evt)
		}
	}
}

func (w *TelemetryWorker) handle(evt event.Event) {
	for _, h := range w.handlers {
		h.Handle(evt)
	}
}
