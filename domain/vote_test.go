package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fractal-bot/errors"
)

func newTestGroup(t *testing.T, members ...UserID) *Group {
	t.Helper()
	g, err := NewGroup("harvest", members[0], members, "thread-1", time.Now())
	require.NoError(t, err)
	return g
}

func TestVoteRound_FollowsRegistrationOrder(t *testing.T) {
	req := require.New(t)
	round, err := NewVoteRound(newTestGroup(t, "a", "b", "c"), time.Now())
	req.NoError(err)

	// Given: a is first in registration order
	req.Equal(UserID("a"), round.CurrentVoter())

	// When: b tries to jump the queue
	err = round.Cast("b", "c")

	// Then: the turn is enforced
	req.ErrorIs(err, errors.ErrNotYourTurn)
}

func TestVoteRound_RejectsSelfVote(t *testing.T) {
	req := require.New(t)
	round, err := NewVoteRound(newTestGroup(t, "a", "b", "c"), time.Now())
	req.NoError(err)

	err = round.Cast("a", "a")

	req.ErrorIs(err, errors.ErrSelfVote)
}

func TestVoteRound_RejectsOutsideTarget(t *testing.T) {
	req := require.New(t)
	round, err := NewVoteRound(newTestGroup(t, "a", "b", "c"), time.Now())
	req.NoError(err)

	err = round.Cast("a", "stranger")

	req.ErrorIs(err, errors.ErrUnknownMember)
}

func TestVoteRound_ResultsUnavailableWhileOpen(t *testing.T) {
	req := require.New(t)
	round, err := NewVoteRound(newTestGroup(t, "a", "b", "c"), time.Now())
	req.NoError(err)

	req.NoError(round.Cast("a", "b"))

	_, err = round.Results()
	req.ErrorIs(err, errors.ErrVoteIncomplete)
}

func TestVoteRound_FullCycleTalliesInRegistrationOrder(t *testing.T) {
	req := require.New(t)
	round, err := NewVoteRound(newTestGroup(t, "a", "b", "c"), time.Now())
	req.NoError(err)

	// Given: a votes b, b votes c, c votes a
	req.NoError(round.Cast("a", "b"))
	req.NoError(round.Cast("b", "c"))
	req.NoError(round.Cast("c", "a"))
	req.True(round.Completed)

	// Then: everyone holds one vote, displayed in registration order
	tallies, err := round.Results()
	req.NoError(err)
	req.Equal([]Tally{
		{Member: "a", Count: 1},
		{Member: "b", Count: 1},
		{Member: "c", Count: 1},
	}, tallies)
}

func TestVoteRound_ResultsAreStableAcrossReads(t *testing.T) {
	req := require.New(t)
	round, err := NewVoteRound(newTestGroup(t, "a", "b", "c"), time.Now())
	req.NoError(err)

	req.NoError(round.Cast("a", "c"))
	req.NoError(round.Cast("b", "c"))
	req.NoError(round.Cast("c", "a"))

	first, err := round.Results()
	req.NoError(err)
	second, err := round.Results()
	req.NoError(err)
	req.Equal(first, second)
	req.Equal(UserID("c"), first[0].Member)
	req.Equal(2, first[0].Count)
}

func TestVoteRound_ClosedRoundRejectsBallots(t *testing.T) {
	req := require.New(t)
	round, err := NewVoteRound(newTestGroup(t, "a", "b"), time.Now())
	req.NoError(err)

	req.NoError(round.Cast("a", "b"))
	req.NoError(round.Cast("b", "a"))

	err = round.Cast("a", "b")
	req.ErrorIs(err, errors.ErrVoteClosed)
}

func TestVoteRound_TallyOrderBreaksTiesByRegistration(t *testing.T) {
	req := require.New(t)
	round, err := NewVoteRound(newTestGroup(t, "c", "a", "b"), time.Now())
	req.NoError(err)

	// c votes a, a votes c, b votes c: c=2, a=1, b=0
	req.NoError(round.Cast("c", "a"))
	req.NoError(round.Cast("a", "c"))
	req.NoError(round.Cast("b", "c"))

	tallies, err := round.Results()
	req.NoError(err)
	req.Equal(UserID("c"), tallies[0].Member)
	req.Equal(UserID("a"), tallies[1].Member)
	req.Equal(UserID("b"), tallies[2].Member)
}
