package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"

	"fractal-bot/contract"
	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/errors"
	"fractal-bot/gateway"
)

var _ contract.Worker = (*DispatchWorker)(nil)

// DispatchWorker is the single consumer of the global command channel. It
// enforces the per-user rate limit and hands each command to the session
// registry. A saturated inbox or an exceeded limit turns into a busy reply
// for the caller, never into backpressure on the gateway feed.
type DispatchWorker struct {
	commands  chan domain.Command
	registry  contract.IRegistry
	responder gateway.Responder
	telemetry chan<- event.Event
	clock     clockwork.Clock
	limit     int
	window    time.Duration
	recent    map[domain.UserID][]time.Time
	log       *slog.Logger
}

func NewDispatchWorker(commands chan domain.Command, registry contract.IRegistry,
	responder gateway.Responder, telemetry chan<- event.Event,
	clock clockwork.Clock, limit int, window time.Duration, log *slog.Logger) *DispatchWorker {
	return &DispatchWorker{
		commands:  commands,
		registry:  registry,
		responder: responder,
		telemetry: telemetry,
		clock:     clock,
		limit:     limit,
		window:    window,
		recent:    make(map[domain.UserID][]time.Time),
		log:       log,
	}
}

func (w *DispatchWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.dispatch(ctx, cmd)
		}
	}
}

func (w *DispatchWorker) dispatch(ctx context.Context, cmd domain.Command) {
	if !w.admit(cmd) {
		w.reject(ctx, cmd, fmt.Errorf("%w: at most %d commands per %s",
			errors.ErrRateLimited, w.limit, domain.FormatDuration(w.window)))
		return
	}

	if err := w.registry.Deliver(ctx, cmd); err != nil {
		w.reject(ctx, cmd, fmt.Errorf("%w, try again shortly", err))
	}
}

// admit applies the rolling per-user window. Voice presence changes are
// produced by the platform, not typed by a user, so they bypass the limit.
func (w *DispatchWorker) admit(cmd domain.Command) bool {
	switch cmd.(type) {
	case domain.VoiceJoinedCommand, domain.VoiceLeftCommand:
		return true
	}

	user := cmd.From().User
	now := w.clock.Now()
	cutoff := now.Add(-w.window)

	kept := lo.Filter(w.recent[user], func(t time.Time, _ int) bool {
		return t.After(cutoff)
	})
	if len(kept) >= w.limit {
		w.recent[user] = kept
		return false
	}
	w.recent[user] = append(kept, now)
	return true
}

func (w *DispatchWorker) reject(ctx context.Context, cmd domain.Command, err error) {
	w.log.Debug(fmt.Sprintf("Command %s from %s turned away : %v",
		CommandKind(cmd), cmd.From().User, err))

	select {
	case w.telemetry <- event.Event{
		Type:      event.CommandRejectedType,
		CreatedAt: time.Now().UTC(),
		Payload:   event.CommandRejected{Kind: CommandKind(cmd), Reason: err.Error()},
	}:
	default:
	}

	if rErr := w.responder.Reply(ctx, cmd.From(), gateway.ErrorReply(err)); rErr != nil {
		w.log.Warn(fmt.Sprintf("Failed to reply to %s : %v", cmd.From().User, rErr))
	}
}
