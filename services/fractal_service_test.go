package services

import (
	"context"
	"log/slog"
	"testing"

	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/errors"
	"fractal-bot/repositories"

	"github.com/jonboulle/clockwork"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newFractalService(t *testing.T) IFractalService {
	t.Helper()
	req := require.New(t)
	db := newTestDB(t)
	groups := repositories.NewGroupRepository(db)
	fractals := repositories.NewFractalRepository(db)
	clock := clockwork.NewFakeClock()
	log := logs.GetLoggerFromLevel(slog.LevelError)

	group, err := domain.NewGroup("genesis", "alice", []domain.UserID{"alice", "bob", "carol"}, "thread-1", clock.Now())
	req.NoError(err)
	req.NoError(groups.Create(*group))

	return NewFractalService(groups, fractals, clock, log)
}

func TestFractalService_RoundToCompletion(t *testing.T) {
	req := require.New(t)
	svc := newFractalService(t)
	ctx := context.Background()

	reply, _, err := svc.Start(ctx, domain.StartFractalCommand{Origin: from("alice"), Group: "genesis"})
	req.NoError(err)
	req.Contains(reply.Text, "Level 6")

	// Three members put the threshold at one vote, the first ballot crowns.
	reply, events, err := svc.Cast(ctx, domain.CastFractalVoteCommand{Origin: from("alice"), Group: "genesis", Candidate: "bob"})
	req.NoError(err)
	req.Contains(reply.Text, "Level 6 goes to **bob**")
	req.Contains(reply.Text, "Level 5 is up next")
	req.Len(events, 1)
	won, ok := events[0].(event.LevelWon)
	req.True(ok)
	req.Equal(6, won.Level)
	req.Equal(domain.UserID("bob"), won.Member)

	// A crowned member is out of the candidate pool.
	_, _, err = svc.Cast(ctx, domain.CastFractalVoteCommand{Origin: from("carol"), Group: "genesis", Candidate: "bob"})
	req.ErrorIs(err, errors.ErrNotACandidate)

	// Crowning carol leaves alice alone, who takes the next level without
	// a ballot and the session completes.
	reply, events, err = svc.Cast(ctx, domain.CastFractalVoteCommand{Origin: from("alice"), Group: "genesis", Candidate: "carol"})
	req.NoError(err)
	req.Contains(reply.Text, "Level 5 goes to **carol**")
	req.Contains(reply.Text, "Level 4 goes to **alice**")
	req.Contains(reply.Text, "complete")

	req.Len(events, 3)
	req.IsType(event.LevelWon{}, events[0])
	req.IsType(event.LevelWon{}, events[1])
	finished, ok := events[2].(event.FractalCompleted)
	req.True(ok)
	req.Len(finished.Winners, 3)

	// The finished round stays readable.
	reply, _, err = svc.Standings(ctx, domain.FractalStandingsCommand{Origin: from("bob"), Group: "genesis"})
	req.NoError(err)
	req.Contains(reply.Text, "Level 6: bob")
	req.Contains(reply.Text, "Round complete.")

	_, _, err = svc.Cast(ctx, domain.CastFractalVoteCommand{Origin: from("alice"), Group: "genesis", Candidate: "carol"})
	req.ErrorIs(err, errors.ErrVoteClosed)
}

func TestFractalService_Start_RejectsLiveRound(t *testing.T) {
	req := require.New(t)
	svc := newFractalService(t)
	ctx := context.Background()

	_, _, err := svc.Start(ctx, domain.StartFractalCommand{Origin: from("alice"), Group: "genesis"})
	req.NoError(err)

	_, _, err = svc.Start(ctx, domain.StartFractalCommand{Origin: from("bob"), Group: "genesis"})
	req.ErrorIs(err, errors.ErrVoteInProgress)
}

func TestFractalService_Standings_NoSession(t *testing.T) {
	req := require.New(t)
	svc := newFractalService(t)

	_, _, err := svc.Standings(context.Background(), domain.FractalStandingsCommand{Origin: from("alice"), Group: "genesis"})
	req.ErrorIs(err, errors.ErrNoFractalSession)
}
