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

func newGroupService(t *testing.T) (IGroupService, *repositories.GroupRepository, *repositories.VoteRepository, *clockwork.FakeClock) {
	t.Helper()
	db := newTestDB(t)
	groups := repositories.NewGroupRepository(db)
	votes := repositories.NewVoteRepository(db)
	fractals := repositories.NewFractalRepository(db)
	clock := clockwork.NewFakeClock()
	log := logs.GetLoggerFromLevel(slog.LevelError)

	svc := NewGroupService(groups, votes, fractals, newTestModerator(t), "admin", clock, log)
	return svc, groups, votes, clock
}

func TestGroupService_Create(t *testing.T) {
	req := require.New(t)
	svc, groups, _, clock := newGroupService(t)

	reply, events, err := svc.Create(context.Background(), domain.CreateGroupCommand{
		Origin:  from("alice"),
		Name:    "genesis",
		Members: []domain.UserID{"bob", "carol"},
		Thread:  "thread-1",
	})
	req.NoError(err)
	req.Contains(reply.Text, "genesis")
	req.Contains(reply.Text, "3 members")

	group, err := groups.Get("genesis")
	req.NoError(err)
	req.Equal(domain.UserID("alice"), group.Owner)
	req.Equal([]domain.UserID{"alice", "bob", "carol"}, group.Members)

	req.Len(events, 1)
	created, ok := events[0].(event.GroupCreated)
	req.True(ok)
	req.Equal("genesis", created.Group)
	req.Equal(domain.ThreadRef("thread-1"), created.Thread)
	req.WithinDuration(clock.Now(), created.At, time.Second)
}

func TestGroupService_Create_CreatorListedTwiceCountsOnce(t *testing.T) {
	req := require.New(t)
	svc, groups, _, _ := newGroupService(t)

	_, _, err := svc.Create(context.Background(), domain.CreateGroupCommand{
		Origin:  from("alice"),
		Name:    "genesis",
		Members: []domain.UserID{"alice", "bob"},
		Thread:  "thread-1",
	})
	req.NoError(err)

	group, err := groups.Get("genesis")
	req.NoError(err)
	req.Equal([]domain.UserID{"alice", "bob"}, group.Members)
}

func TestGroupService_Create_RejectsBusyMember(t *testing.T) {
	req := require.New(t)
	svc, _, _, _ := newGroupService(t)

	_, _, err := svc.Create(context.Background(), domain.CreateGroupCommand{
		Origin:  from("alice"),
		Name:    "genesis",
		Members: []domain.UserID{"bob"},
		Thread:  "thread-1",
	})
	req.NoError(err)

	_, _, err = svc.Create(context.Background(), domain.CreateGroupCommand{
		Origin:  from("carol"),
		Name:    "second",
		Members: []domain.UserID{"bob"},
		Thread:  "thread-2",
	})
	req.ErrorIs(err, errors.ErrMemberBusy)
	req.ErrorContains(err, "bob")
}

func TestGroupService_Create_RejectsFlaggedName(t *testing.T) {
	req := require.New(t)
	svc, _, _, _ := newGroupService(t)

	_, _, err := svc.Create(context.Background(), domain.CreateGroupCommand{
		Origin:  from("alice"),
		Name:    "free nitro",
		Members: []domain.UserID{"bob"},
		Thread:  "thread-1",
	})
	req.ErrorIs(err, errors.ErrBadName)
}

func TestGroupService_Disband(t *testing.T) {
	req := require.New(t)
	svc, groups, votes, _ := newGroupService(t)
	ctx := context.Background()

	_, _, err := svc.Create(ctx, domain.CreateGroupCommand{
		Origin:  from("alice"),
		Name:    "genesis",
		Members: []domain.UserID{"bob", "carol"},
		Thread:  "thread-1",
	})
	req.NoError(err)

	// A live ballot must not survive its group.
	group, err := groups.Get("genesis")
	req.NoError(err)
	round, err := domain.NewVoteRound(&group, time.Now().UTC())
	req.NoError(err)
	req.NoError(votes.Save(*round))

	_, _, err = svc.Disband(ctx, domain.DisbandGroupCommand{Origin: from("bob"), Name: "genesis"})
	req.ErrorIs(err, errors.ErrNotGroupOwner)

	reply, events, err := svc.Disband(ctx, domain.DisbandGroupCommand{Origin: from("alice"), Name: "genesis"})
	req.NoError(err)
	req.Contains(reply.Text, "disbanded")

	_, err = groups.Get("genesis")
	req.ErrorIs(err, errors.ErrGroupNotFound)
	_, err = votes.Get("genesis")
	req.ErrorIs(err, errors.ErrNoActiveVote)

	req.Len(events, 1)
	disbanded, ok := events[0].(event.GroupDisbanded)
	req.True(ok)
	req.Equal("owner", disbanded.Cause)
	req.Equal(domain.UserID("alice"), disbanded.Owner)
}

func TestGroupService_Disband_BotOwnerOverride(t *testing.T) {
	req := require.New(t)
	svc, groups, _, _ := newGroupService(t)
	ctx := context.Background()

	_, _, err := svc.Create(ctx, domain.CreateGroupCommand{
		Origin:  from("alice"),
		Name:    "genesis",
		Members: []domain.UserID{"bob"},
		Thread:  "thread-1",
	})
	req.NoError(err)

	reply, _, err := svc.Disband(ctx, domain.DisbandGroupCommand{Origin: from("admin"), Name: "genesis"})
	req.NoError(err)
	req.Contains(reply.Text, "disbanded")

	_, err = groups.Get("genesis")
	req.ErrorIs(err, errors.ErrGroupNotFound)
}

func TestGroupService_List(t *testing.T) {
	req := require.New(t)
	svc, _, _, _ := newGroupService(t)
	ctx := context.Background()

	reply, _, err := svc.List(ctx, domain.ListGroupsCommand{Origin: from("alice")})
	req.NoError(err)
	req.Contains(reply.Text, "No fractal groups")
	req.True(reply.Private)

	_, _, err = svc.Create(ctx, domain.CreateGroupCommand{
		Origin:  from("alice"),
		Name:    "genesis",
		Members: []domain.UserID{"bob"},
		Thread:  "thread-1",
	})
	req.NoError(err)

	reply, _, err = svc.List(ctx, domain.ListGroupsCommand{Origin: from("alice")})
	req.NoError(err)
	req.Contains(reply.Text, "genesis")
	req.Contains(reply.Text, "(2/6)")
}
