package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"fractal-bot/contract"
	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/gateway"
)

var (
	_ gateway.Responder  = (*recordingResponder)(nil)
	_ contract.IEngine   = (*scriptedEngine)(nil)
	_ contract.IRegistry = (*fakeRegistry)(nil)
	_ contract.EventSink = (*recordingSink)(nil)
	_ contract.EventSink = (*blockingSink)(nil)
)

func testLogger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelError)
}

func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func origin(user domain.UserID) domain.Origin {
	return domain.Origin{Interaction: "interaction-1", Thread: "thread-1", User: user}
}

type recordedReply struct {
	Origin domain.Origin
	Reply  domain.Reply
}

// recordingResponder keeps every outbound reply for assertions.
type recordingResponder struct {
	mu      sync.Mutex
	replies []recordedReply
}

func (r *recordingResponder) Reply(_ context.Context, origin domain.Origin, reply domain.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, recordedReply{Origin: origin, Reply: reply})
	return nil
}

func (r *recordingResponder) Notify(_ context.Context, _ domain.ThreadRef, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, recordedReply{Reply: domain.Reply{Text: text}})
	return nil
}

func (r *recordingResponder) DirectMessage(_ context.Context, user domain.UserID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, recordedReply{Origin: domain.Origin{User: user}, Reply: domain.Reply{Text: text, Private: true}})
	return nil
}

func (r *recordingResponder) ArchiveThread(context.Context, domain.ThreadRef) error { return nil }

func (r *recordingResponder) Replies() []recordedReply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedReply(nil), r.replies...)
}

// scriptedEngine replays one fixed outcome for every command.
type scriptedEngine struct {
	reply  domain.Reply
	events []event.DomainEvent
	err    error

	mu      sync.Mutex
	handled []domain.Command
}

func (e *scriptedEngine) Handle(_ context.Context, cmd domain.Command) (domain.Reply, []event.DomainEvent, error) {
	e.mu.Lock()
	e.handled = append(e.handled, cmd)
	e.mu.Unlock()
	return e.reply, e.events, e.err
}

func (e *scriptedEngine) Handled() []domain.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Command(nil), e.handled...)
}

// fakeRegistry records deliveries, or turns every one away when err is set.
type fakeRegistry struct {
	err error

	mu        sync.Mutex
	delivered []domain.Command
	sweeps    int
}

func (r *fakeRegistry) Deliver(_ context.Context, cmd domain.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.delivered = append(r.delivered, cmd)
	return nil
}

func (r *fakeRegistry) Sweep(time.Time, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweeps++
}

func (r *fakeRegistry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.delivered)
}

func (r *fakeRegistry) Delivered() []domain.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Command(nil), r.delivered...)
}

func (r *fakeRegistry) Sweeps() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweeps
}

// recordingSink hands every consumed event to the test through a channel.
type recordingSink struct {
	consumed chan event.DomainEvent
}

func newRecordingSink() *recordingSink {
	return &recordingSink{consumed: make(chan event.DomainEvent, 16)}
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.consumed <- e
	return nil
}

// blockingSink never finishes on its own; it reports the error that
// released it.
type blockingSink struct {
	errs chan error
}

func newBlockingSink() *blockingSink {
	return &blockingSink{errs: make(chan error, 1)}
}

func (s *blockingSink) Consume(ctx context.Context, _ event.DomainEvent) error {
	<-ctx.Done()
	s.errs <- ctx.Err()
	return ctx.Err()
}
