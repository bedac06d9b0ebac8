// Package runtime moves commands and events through the system. It owns
// dispatch, session supervision and the event pipeline, without containing
// business logic or domain rules.
package runtime

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"fractal-bot/contract"
	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/errors"
	"fractal-bot/gateway"
	"fractal-bot/moderation"
	"fractal-bot/runtime/workers"
)

//go:embed scams/*
var scamsFolder embed.FS

const busyReplyTimeout = 5 * time.Second

// Options are the runtime tuning knobs, filled from configuration.
type Options struct {
	SinkTimeout    time.Duration
	MetricInterval time.Duration
	MaskChar       rune
	RateLimit      int
	RateWindow     time.Duration
}

// Channels ties the pipeline together: gateway commands in, raw messages
// through moderation, domain events out to the sinks, telemetry on the
// side. One set per process, owned here, passed around explicitly.
type Channels struct {
	Commands     chan domain.Command
	RawEvents    chan event.DomainEvent
	DomainEvents chan event.DomainEvent
	Telemetry    chan event.Event
}

func NewChannels(bufferSize int) Channels {
	return Channels{
		Commands:     make(chan domain.Command, bufferSize),
		RawEvents:    make(chan event.DomainEvent, bufferSize),
		DomainEvents: make(chan event.DomainEvent, bufferSize),
		Telemetry:    make(chan event.Event, bufferSize),
	}
}

// Orchestrator owns the worker fleet. Everything that runs in the
// background is prepared here and handed to the supervisor; once started,
// the only entry points are Dispatch and Observe.
type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     contract.ISupervisor
	registry       contract.IRegistry
	responder      gateway.Responder
	clock          clockwork.Clock
	channels       Channels
	handlers       []event.Handler
	permanentSinks []contract.EventSink
	extraWorkers   []contract.Worker
	opts           Options
	runDone        chan struct{}
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, responder gateway.Responder,
	clock clockwork.Clock, channels Channels, handlers []event.Handler,
	opts Options) *Orchestrator {
	return &Orchestrator{
		log:        log,
		supervisor: supervisor,
		registry:   registry,
		responder:  responder,
		clock:      clock,
		channels:   channels,
		handlers:   handlers,
		opts:       opts,
	}
}

// RegisterSinks adds permanent consumers for domain events. Must be called
// before Start.
func (o *Orchestrator) RegisterSinks(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// Supervise adds workers built outside the orchestrator (timer ticker,
// cleanup, heartbeat) to the fleet. Must be called before Start.
func (o *Orchestrator) Supervise(extra ...contract.Worker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.extraWorkers = append(o.extraWorkers, extra...)
}

// Dispatch hands a command to the pipeline. It never blocks the caller: a
// full channel means the whole system is behind, and the user gets a busy
// answer instead of a hanging gateway.
func (o *Orchestrator) Dispatch(cmd domain.Command) {
	select {
	case o.channels.Commands <- cmd:
	default:
		o.log.Warn(fmt.Sprintf("Command channel full, dropping %s from %s",
			workers.CommandKind(cmd), cmd.From().User))
		go o.replyBusy(cmd)
	}
}

// Observe feeds a raw gateway event to the moderation pipeline. Plain
// chatter is droppable under load, losing an archive line is better than
// stalling the feed.
func (o *Orchestrator) Observe(e event.DomainEvent) {
	select {
	case o.channels.RawEvents <- e:
	default:
		o.log.Warn(fmt.Sprintf("Raw event channel full, dropping %s", e.Name()))
	}
}

func (o *Orchestrator) replyBusy(cmd domain.Command) {
	ctx, cancel := context.WithTimeout(context.Background(), busyReplyTimeout)
	defer cancel()

	err := fmt.Errorf("%w, try again shortly", errors.ErrQueueSaturated)
	if rErr := o.responder.Reply(ctx, cmd.From(), gateway.ErrorReply(err)); rErr != nil {
		o.log.Warn(fmt.Sprintf("Failed to reply to %s : %v", cmd.From().User, rErr))
	}
}

// Start initiates the orchestrator by preparing all components (workers,
// moderation, pipeline) and then launching the supervisor. It uses a
// preparation pattern to minimize mutex locking time.
func (o *Orchestrator) Start(ctx context.Context) error {
	// 1. Preparation phase (No Lock)
	// Heavy tasks like I/O (loading files) and CPU (Aho-Corasick build) are done here.
	moderationWorker, err := o.prepareModeration(o.opts.MaskChar)
	if err != nil {
		return err
	}

	dispatchWorker := workers.NewDispatchWorker(o.channels.Commands, o.registry,
		o.responder, o.channels.Telemetry, o.clock,
		o.opts.RateLimit, o.opts.RateWindow, o.log)

	telemetryWorker := workers.NewTelemetryWorker(o.log, o.channels.Telemetry, o.handlers)

	capacityWorker := workers.NewChannelCapacityWorker(o.log, o.namedChannels(),
		o.channels.Telemetry, o.clock, o.opts.MetricInterval)

	// 2. Critical Section (Short Lock)
	// We only lock to snapshot the registered sinks and workers.
	o.mu.Lock()
	fanoutWorker := workers.NewEventFanout(o.log, o.channels.DomainEvents,
		o.opts.SinkTimeout, o.permanentSinks...)

	o.supervisor.Add(dispatchWorker, moderationWorker, fanoutWorker,
		telemetryWorker, capacityWorker)
	o.supervisor.Add(o.extraWorkers...)
	o.mu.Unlock()

	// 3. Execution phase (No Lock)
	o.log.Info("Starting orchestrator and all supervised workers")
	o.runDone = make(chan struct{})
	go func() {
		defer close(o.runDone)
		o.supervisor.Run(ctx)
	}()
	return nil
}

// prepareModeration loads the scam dictionaries and builds the Aho-Corasick automaton.
func (o *Orchestrator) prepareModeration(maskChar rune) (contract.Worker, error) {
	data, err := ScamPhrases()
	if err != nil {
		return nil, err
	}

	o.log.Info(fmt.Sprintf("%d scam dictionaries loaded [%s]",
		len(data.Languages), strings.Join(data.Languages, ",")))
	o.log.Info(fmt.Sprintf("%d unique scam phrases loaded", len(data.Phrases)))

	moderator, err := moderation.NewModerator(data.Phrases, maskChar, o.log)
	if err != nil {
		return nil, err
	}

	return workers.NewModerationWorker(&moderator, o.channels.RawEvents,
		o.channels.DomainEvents, o.channels.Telemetry, o.log), nil
}

func (o *Orchestrator) namedChannels() []workers.NamedChannel {
	return []workers.NamedChannel{
		{Name: "commands", Channel: o.channels.Commands},
		{Name: "rawEvents", Channel: o.channels.RawEvents},
		{Name: "domainEvents", Channel: o.channels.DomainEvents},
		{Name: "telemetry", Channel: o.channels.Telemetry},
	}
}

// Stop initiates a graceful shutdown. It cancels the supervision context
// and waits until every worker has drained, so the stores behind them can
// be closed safely afterwards.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")

	o.supervisor.Stop()
	if o.runDone != nil {
		<-o.runDone
	}
	o.log.Debug("All workers drained")
}
