package runtime_test

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"fractal-bot/contract"
	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/runtime"
	"fractal-bot/runtime/workers"
)

var (
	_ contract.IRegistry = (*captureRegistry)(nil)
	_ contract.EventSink = (*captureSink)(nil)
)

// captureRegistry hands every delivered command to the test.
type captureRegistry struct {
	delivered chan domain.Command
}

func (r *captureRegistry) Deliver(_ context.Context, cmd domain.Command) error {
	r.delivered <- cmd
	return nil
}

func (r *captureRegistry) Sweep(time.Time, time.Duration) {}
func (r *captureRegistry) Active() int                    { return 0 }

type captureSink struct {
	consumed chan event.DomainEvent
}

func (s *captureSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.consumed <- e
	return nil
}

// threadSafeResponder records replies arriving from worker goroutines.
type threadSafeResponder struct {
	mu      sync.Mutex
	replies []domain.Reply
}

func (r *threadSafeResponder) Reply(_ context.Context, _ domain.Origin, reply domain.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, reply)
	return nil
}

func (r *threadSafeResponder) Notify(context.Context, domain.ThreadRef, string) error { return nil }

func (r *threadSafeResponder) DirectMessage(context.Context, domain.UserID, string) error { return nil }

func (r *threadSafeResponder) ArchiveThread(context.Context, domain.ThreadRef) error { return nil }

func (r *threadSafeResponder) Replies() []domain.Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Reply(nil), r.replies...)
}

func testOptions() runtime.Options {
	return runtime.Options{
		SinkTimeout:    time.Second,
		MetricInterval: time.Hour,
		MaskChar:       '*',
		RateLimit:      100,
		RateWindow:     time.Minute,
	}
}

func TestOrchestrator_DispatchOverflowAnswersBusy(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	responder := &threadSafeResponder{}
	channels := runtime.NewChannels(1)
	supervisor := workers.NewSupervisor(log, channels.Telemetry)

	orchestrator := runtime.NewOrchestrator(log, supervisor, &captureRegistry{},
		responder, clockwork.NewRealClock(), channels, nil, testOptions())

	// Given the command channel already holds its one slot
	channels.Commands <- domain.SyncCommand{Origin: domain.Origin{User: "alice"}}

	// When another command arrives with nobody draining
	orchestrator.Dispatch(domain.SyncCommand{Origin: domain.Origin{User: "bob"}})

	// Then the caller hears busy instead of the gateway hanging
	req.Eventually(func() bool {
		replies := responder.Replies()
		return len(replies) == 1 &&
			replies[0].Private &&
			replies[0].Text == "⚠️ command queue saturated, try again shortly"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOrchestrator_StartRunsTheWholePipeline(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	responder := &threadSafeResponder{}
	registry := &captureRegistry{delivered: make(chan domain.Command, 8)}
	sink := &captureSink{consumed: make(chan event.DomainEvent, 8)}
	channels := runtime.NewChannels(16)
	supervisor := workers.NewSupervisor(log, channels.Telemetry)

	orchestrator := runtime.NewOrchestrator(log, supervisor, registry, responder,
		clockwork.NewRealClock(), channels, nil, testOptions())
	orchestrator.RegisterSinks(sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req.NoError(orchestrator.Start(ctx))
	defer orchestrator.Stop()

	// A dispatched command travels through the rate limit to the registry.
	orchestrator.Dispatch(domain.SyncCommand{Origin: domain.Origin{User: "alice"}})
	select {
	case cmd := <-registry.delivered:
		req.IsType(domain.SyncCommand{}, cmd)
	case <-time.After(2 * time.Second):
		req.Fail("Command never reached the registry")
	}

	// An observed message is moderated with the embedded dictionaries and
	// fanned out to the sinks.
	orchestrator.Observe(event.MessageSeen{
		ID:      uuid.New(),
		Thread:  "thread-1",
		Author:  "scammer",
		Content: "dm me for free nitro",
		At:      time.Now().UTC(),
	})

	select {
	case evt := <-sink.consumed:
		archived, ok := evt.(event.MessageArchived)
		req.True(ok)
		req.False(strings.Contains(archived.Content, "free nitro"))
		req.Contains(archived.Content, "**********")
		req.Equal([]string{"freenitro"}, archived.MaskedPhrases)
	case <-time.After(2 * time.Second):
		req.Fail("Message never reached the sink")
	}
}
