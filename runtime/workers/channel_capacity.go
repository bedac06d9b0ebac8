package workers

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"github.com/jonboulle/clockwork"

	"fractal-bot/contract"
	"fractal-bot/domain/event"
)

var _ contract.Worker = (*ChannelCapacityWorker)(nil)

type NamedChannel struct {
	Name    string
	Channel any
}

// ChannelCapacityWorker periodically reports the current channel capacity
// and length. Reading len(channel) and cap(channel) is non-blocking, so it
// never interferes with the pipeline. It's okay if a sample is dropped
// occasionally because metrics are taken periodically anyway.
type ChannelCapacityWorker struct {
	log            *slog.Logger
	channels       []NamedChannel
	telemetry      chan<- event.Event
	clock          clockwork.Clock
	metricInterval time.Duration
}

func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	telemetry chan<- event.Event, clock clockwork.Clock,
	metricInterval time.Duration) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:            log,
		channels:       channels,
		telemetry:      telemetry,
		clock:          clock,
		metricInterval: metricInterval,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := w.clock.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case <-ticker.Chan():
			w.sample()
		}
	}
}

func (w *ChannelCapacityWorker) sample() {
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		// Verify if this is a channel
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}

		select {
		case w.telemetry <- toCapacityEvent(nc.Name, v.Cap(), v.Len()):
		default:
			w.log.Debug("Observability telemetry event lost")
		}
	}
}

func toCapacityEvent(name string, capacity, length int) event.Event {
	return event.Event{
		Type:      event.ChannelCapacityType,
		CreatedAt: time.Now().UTC(),
		Payload: event.ChannelCapacity{
			ChannelName: name,
			Capacity:    capacity,
			Length:      length,
		},
	}
}
