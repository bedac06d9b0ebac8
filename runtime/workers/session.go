package workers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fractal-bot/contract"
	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/gateway"
)

// Ensure *SessionWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*SessionWorker)(nil)

// SessionWorker drains the inbox of one state key. Commands sharing a key
// are handled strictly one after another, which keeps a group's vote round
// or a user's timers free of interleaving without any locking inside the
// services.
type SessionWorker struct {
	key          domain.StateKey
	inbox        chan domain.Command
	engine       contract.IEngine
	responder    gateway.Responder
	domainEvents chan<- event.DomainEvent
	telemetry    chan<- event.Event
	log          *slog.Logger
}

func NewSessionWorker(key domain.StateKey, inbox chan domain.Command,
	engine contract.IEngine, responder gateway.Responder,
	domainEvents chan<- event.DomainEvent, telemetry chan<- event.Event,
	log *slog.Logger) *SessionWorker {
	return &SessionWorker{
		key:          key,
		inbox:        inbox,
		engine:       engine,
		responder:    responder,
		domainEvents: domainEvents,
		telemetry:    telemetry,
		log:          log,
	}
}

func (w *SessionWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping session", "key", w.key)
			return ctx.Err()
		case cmd, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.handle(ctx, cmd)
		}
	}
}

// handle runs one command to completion: engine, reply, events, telemetry.
func (w *SessionWorker) handle(ctx context.Context, cmd domain.Command) {
	kind := CommandKind(cmd)

	reply, events, err := w.engine.Handle(ctx, cmd)
	if err != nil {
		w.log.Debug(fmt.Sprintf("Command %s rejected : %v", kind, err))
		w.emit(event.CommandRejectedType, event.CommandRejected{Kind: kind, Reason: err.Error()})
		w.reply(ctx, cmd, gateway.ErrorReply(err))
		return
	}

	// Replies with no text stay silent. Voice presence commands are the
	// main producers of those.
	if reply.Text != "" {
		w.reply(ctx, cmd, reply)
	}

	for _, evt := range events {
		select {
		case <-ctx.Done():
			return
		case w.domainEvents <- evt:
		}
	}

	w.emit(event.CommandHandledType, event.CommandHandled{Kind: kind})
}

func (w *SessionWorker) reply(ctx context.Context, cmd domain.Command, reply domain.Reply) {
	if err := w.responder.Reply(ctx, cmd.From(), reply); err != nil {
		w.log.Warn(fmt.Sprintf("Failed to reply to %s : %v", cmd.From().User, err))
	}
}

// emit forwards telemetry without ever blocking command handling.
func (w *SessionWorker) emit(t event.Type, payload any) {
	select {
	case w.telemetry <- event.Event{Type: t, CreatedAt: time.Now().UTC(), Payload: payload}:
	default:
		w.log.Debug("Observability telemetry event lost")
	}
}

// CommandKind names a command for telemetry, e.g. "StartTimerCommand".
func CommandKind(cmd domain.Command) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", cmd), "domain.")
}
