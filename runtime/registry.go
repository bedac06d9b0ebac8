package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"fractal-bot/contract"
	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/errors"
	"fractal-bot/gateway"
	"fractal-bot/runtime/workers"
)

type session struct {
	inbox    chan domain.Command
	cancel   context.CancelFunc
	lastSeen time.Time
}

// Registry spawns and tracks one session worker per state key.
// A key's commands always land in the same inbox, so the worker behind it
// is the only goroutine ever touching that group or user. Idle sessions
// are swept away and respawned on the next command.
type Registry struct {
	mu           sync.Mutex
	log          *slog.Logger
	supervisor   contract.ISupervisor
	engine       contract.IEngine
	responder    gateway.Responder
	domainEvents chan<- event.DomainEvent
	telemetry    chan<- event.Event
	clock        clockwork.Clock
	inboxSize    int
	sessions     map[domain.StateKey]*session
}

func NewRegistry(log *slog.Logger, supervisor contract.ISupervisor,
	engine contract.IEngine, responder gateway.Responder,
	domainEvents chan<- event.DomainEvent, telemetry chan<- event.Event,
	clock clockwork.Clock, inboxSize int) *Registry {
	return &Registry{
		log:          log,
		supervisor:   supervisor,
		engine:       engine,
		responder:    responder,
		domainEvents: domainEvents,
		telemetry:    telemetry,
		clock:        clock,
		inboxSize:    inboxSize,
		sessions:     make(map[domain.StateKey]*session),
	}
}

// Deliver routes the command to the live session of its key, spawning the
// session on first use. The send never blocks: a full inbox means the key
// is overloaded and the caller gets the saturation error back.
func (r *Registry) Deliver(ctx context.Context, cmd domain.Command) error {
	key := cmd.Key()

	r.mu.Lock()
	s, ok := r.sessions[key]
	if !ok {
		s = r.spawn(ctx, key)
		r.sessions[key] = s
	}
	s.lastSeen = r.clock.Now()
	r.mu.Unlock()

	select {
	case s.inbox <- cmd:
		return nil
	default:
		r.log.Warn(fmt.Sprintf("Inbox full for %s, dropping %s", key, workers.CommandKind(cmd)))
		return errors.ErrQueueSaturated
	}
}

// spawn starts a supervised worker for the key. The session context hangs
// off the delivery context, so a canceled runtime takes every session down
// with it.
func (r *Registry) spawn(ctx context.Context, key domain.StateKey) *session {
	sessionCtx, cancel := context.WithCancel(ctx)
	inbox := make(chan domain.Command, r.inboxSize)

	worker := workers.NewSessionWorker(key, inbox, r.engine, r.responder,
		r.domainEvents, r.telemetry, r.log)
	r.supervisor.Start(sessionCtx, worker)

	r.log.Debug(fmt.Sprintf("Session spawned for %s", key))
	return &session{inbox: inbox, cancel: cancel}
}

// Sweep tears down sessions without a delivery since the idle cutoff.
// State lives in the repositories, so killing a session loses nothing.
func (r *Registry) Sweep(now time.Time, idle time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	swept := 0
	for key, s := range r.sessions {
		if now.Sub(s.lastSeen) < idle {
			continue
		}
		s.cancel()
		delete(r.sessions, key)
		swept++
	}

	if swept > 0 {
		r.log.Debug(fmt.Sprintf("%d idle sessions swept, %d left", swept, len(r.sessions)))
	}
}

// Active counts the live sessions.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
