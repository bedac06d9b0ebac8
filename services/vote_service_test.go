package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/errors"
	"fractal-bot/repositories"

	"github.com/jonboulle/clockwork"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newVoteService(t *testing.T) (IVoteService, *repositories.GroupRepository, *clockwork.FakeClock) {
	t.Helper()
	req := require.New(t)
	db := newTestDB(t)
	groups := repositories.NewGroupRepository(db)
	votes := repositories.NewVoteRepository(db)
	clock := clockwork.NewFakeClock()
	log := logs.GetLoggerFromLevel(slog.LevelError)

	group, err := domain.NewGroup("genesis", "alice", []domain.UserID{"alice", "bob", "carol"}, "thread-1", clock.Now())
	req.NoError(err)
	req.NoError(groups.Create(*group))

	return NewVoteService(groups, votes, clock, log), groups, clock
}

func TestVoteService_FullRound(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newVoteService(t)
	ctx := context.Background()

	reply, _, err := svc.Start(ctx, domain.StartVoteCommand{Origin: from("alice"), Group: "genesis"})
	req.NoError(err)
	req.Contains(reply.Text, "alice votes first")

	// The order is enforced, bob cannot jump the queue.
	_, _, err = svc.Cast(ctx, domain.CastVoteCommand{Origin: from("bob"), Group: "genesis", Target: "carol"})
	req.ErrorIs(err, errors.ErrNotYourTurn)

	_, _, err = svc.Cast(ctx, domain.CastVoteCommand{Origin: from("alice"), Group: "genesis", Target: "alice"})
	req.ErrorIs(err, errors.ErrSelfVote)

	reply, events, err := svc.Cast(ctx, domain.CastVoteCommand{Origin: from("alice"), Group: "genesis", Target: "bob"})
	req.NoError(err)
	req.Contains(reply.Text, "Next up: bob")
	req.Empty(events)

	_, _, err = svc.Results(ctx, domain.VoteResultsCommand{Origin: from("alice"), Group: "genesis"})
	req.ErrorIs(err, errors.ErrVoteIncomplete)

	_, _, err = svc.Cast(ctx, domain.CastVoteCommand{Origin: from("bob"), Group: "genesis", Target: "carol"})
	req.NoError(err)

	reply, events, err = svc.Cast(ctx, domain.CastVoteCommand{Origin: from("carol"), Group: "genesis", Target: "bob"})
	req.NoError(err)
	req.Contains(reply.Text, "All votes are in")
	req.Contains(reply.Text, "1. bob — 2 votes")

	req.Len(events, 1)
	completed, ok := events[0].(event.VoteCompleted)
	req.True(ok)
	req.Equal("genesis", completed.Group)
	req.Equal(domain.UserID("bob"), completed.Tallies[0].Member)
	req.Equal(2, completed.Tallies[0].Count)
}

func TestVoteService_Start_RejectsSecondRound(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newVoteService(t)
	ctx := context.Background()

	_, _, err := svc.Start(ctx, domain.StartVoteCommand{Origin: from("alice"), Group: "genesis"})
	req.NoError(err)

	_, _, err = svc.Start(ctx, domain.StartVoteCommand{Origin: from("bob"), Group: "genesis"})
	req.ErrorIs(err, errors.ErrVoteInProgress)
}

func TestVoteService_Start_UnknownGroup(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newVoteService(t)

	_, _, err := svc.Start(context.Background(), domain.StartVoteCommand{Origin: from("alice"), Group: "nope"})
	req.ErrorIs(err, errors.ErrGroupNotFound)
}

func TestVoteService_ResultsStableAcrossReads(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newVoteService(t)
	ctx := context.Background()

	_, _, err := svc.Start(ctx, domain.StartVoteCommand{Origin: from("alice"), Group: "genesis"})
	req.NoError(err)
	for _, cast := range []struct {
		voter  domain.UserID
		target domain.UserID
	}{
		{"alice", "bob"}, {"bob", "carol"}, {"carol", "bob"},
	} {
		_, _, err = svc.Cast(ctx, domain.CastVoteCommand{Origin: from(cast.voter), Group: "genesis", Target: cast.target})
		req.NoError(err)
	}

	first, _, err := svc.Results(ctx, domain.VoteResultsCommand{Origin: from("alice"), Group: "genesis"})
	req.NoError(err)
	second, _, err := svc.Results(ctx, domain.VoteResultsCommand{Origin: from("bob"), Group: "genesis"})
	req.NoError(err)
	req.Equal(first.Text, second.Text)
}

func TestVoteService_BallotKeepsIdleGroupAlive(t *testing.T) {
	req := require.New(t)
	svc, groups, clock := newVoteService(t)

	before, err := groups.Get("genesis")
	req.NoError(err)

	clock.Advance(30 * time.Minute)
	_, _, err = svc.Start(context.Background(), domain.StartVoteCommand{Origin: from("alice"), Group: "genesis"})
	req.NoError(err)

	after, err := groups.Get("genesis")
	req.NoError(err)
	req.True(after.LastSeen.After(before.LastSeen))
}
