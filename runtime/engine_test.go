package runtime_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/jonboulle/clockwork"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"fractal-bot/ai"
	"fractal-bot/chain"
	"fractal-bot/domain"
	"fractal-bot/errors"
	"fractal-bot/gateway"
	"fractal-bot/moderation"
	"fractal-bot/projection"
	"fractal-bot/repositories"
	"fractal-bot/runtime"
	"fractal-bot/services"
)

// bogusCommand is a command no service claims.
type bogusCommand struct{}

func (bogusCommand) Key() domain.StateKey { return "bogus" }
func (bogusCommand) From() domain.Origin  { return domain.Origin{} }

// newTestEngine wires every service against throwaway stores, the same
// shape main builds, minus the platform connection.
func newTestEngine(t *testing.T) *runtime.Engine {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	clock := clockwork.NewFakeClock()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	index, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { _ = index.Close() })

	moderator, err := moderation.NewModerator([]string{"free nitro"}, '*', log)
	req.NoError(err)

	groups := repositories.NewGroupRepository(db)
	votes := repositories.NewVoteRepository(db)
	fractals := repositories.NewFractalRepository(db)
	members := repositories.NewMemberRepository(db)
	transcripts := repositories.NewTranscriptRepository(db, index, log, nil)

	// The endpoint is unreachable on purpose, treasury lookups degrade
	// instead of hanging.
	client := chain.NewClient(chain.Config{Endpoint: "http://127.0.0.1:1", Timeout: time.Second}, log)
	resolver := chain.NewResolver(client, chain.NewCache(time.Minute, clock), log)
	token := chain.NewToken(client, "", log)

	return runtime.NewEngine(
		services.NewGroupService(groups, votes, fractals, &moderator, "alice", clock, log),
		services.NewVoteService(groups, votes, clock, log),
		services.NewFractalService(groups, fractals, clock, log),
		services.NewTimerService(repositories.NewTimerRepository(db), "alice", clock, log),
		services.NewRespectService(repositories.NewRespectRepository(db), &moderator, clock, log),
		services.NewMemberService(members, projection.NewActivityFeed(0), &moderator, clock, log),
		services.NewTreasuryService(members, resolver, token, log),
		services.NewSummaryService(transcripts, ai.LocalDigester{}, t.TempDir(), clock, log),
		services.NewPresenceService(repositories.NewPresenceRepository(db), gateway.NewLogMover(log), "alice", clock, log),
		services.NewAdminService(gateway.NewLogRegistrar(log), "alice", log),
	)
}

func TestEngine_RoutesCommandsToTheirService(t *testing.T) {
	req := require.New(t)
	engine := newTestEngine(t)
	ctx := context.Background()
	origin := domain.Origin{Interaction: "interaction-1", Thread: "thread-1", User: "alice"}

	// A group command lands in the group service.
	reply, events, err := engine.Handle(ctx, domain.CreateGroupCommand{
		Origin:  origin,
		Name:    "alpha",
		Members: []domain.UserID{"bob"},
		Thread:  "thread-1",
	})
	req.NoError(err)
	req.Contains(reply.Text, "**alpha** created")
	req.NotEmpty(events)

	// A timer command lands in the timer service.
	reply, events, err = engine.Handle(ctx, domain.StartTimerCommand{
		Origin:   origin,
		Duration: 5 * time.Minute,
		Label:    "tea",
	})
	req.NoError(err)
	req.Contains(reply.Text, "tea")
	req.NotEmpty(events)

	// Service errors surface unchanged.
	_, _, err = engine.Handle(ctx, domain.StartTimerCommand{Origin: origin, Duration: 2 * time.Hour})
	req.ErrorIs(err, errors.ErrDurationOutOfRange)
}

func TestEngine_UnknownCommandsAreRejected(t *testing.T) {
	req := require.New(t)
	engine := newTestEngine(t)

	_, _, err := engine.Handle(context.Background(), bogusCommand{})
	req.ErrorIs(err, errors.ErrUnknownCommand)
}
