package domain

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"fractal-bot/errors"
)

// VoteRound is the sequential respect ballot of one group.
// Members vote one after another in registration order; a member who already
// voted is skipped when the turn advances. The round closes once every
// member has voted, and its results stay readable until a new round starts.
type VoteRound struct {
	Group     string
	Members   []UserID // registration order snapshot at start
	Turn      int      // index of the member expected to vote next
	Votes     map[UserID]UserID
	StartedAt time.Time
	Completed bool
}

func NewVoteRound(group *Group, now time.Time) (*VoteRound, error) {
	if len(group.Members) < MinGroupSize {
		return nil, errors.ErrGroupTooSmall
	}
	return &VoteRound{
		Group:     group.Name,
		Members:   append([]UserID(nil), group.Members...),
		Votes:     make(map[UserID]UserID),
		StartedAt: now,
	}, nil
}

// CurrentVoter returns the member whose turn it is, or "" once closed.
func (r *VoteRound) CurrentVoter() UserID {
	if r.Completed || r.Turn >= len(r.Members) {
		return ""
	}
	return r.Members[r.Turn]
}

// Cast records voter's ballot for target and advances the turn,
// skipping members who already voted.
func (r *VoteRound) Cast(voter, target UserID) error {
	if r.Completed {
		return errors.ErrVoteClosed
	}
	if voter == target {
		return errors.ErrSelfVote
	}
	if !lo.Contains(r.Members, target) {
		return errors.ErrUnknownMember
	}
	if r.CurrentVoter() != voter {
		return errors.ErrNotYourTurn
	}

	r.Votes[voter] = target
	r.advance()
	return nil
}

func (r *VoteRound) advance() {
	for r.Turn < len(r.Members) {
		if _, voted := r.Votes[r.Members[r.Turn]]; !voted {
			return
		}
		r.Turn++
	}
	r.Completed = true
}

// Tally is one line of the final results.
type Tally struct {
	Member UserID
	Count  int
}

// Results returns per-member tallies ordered by descending count,
// ties broken by registration order. It fails until the round completes
// and is stable across repeated reads.
func (r *VoteRound) Results() ([]Tally, error) {
	if !r.Completed {
		return nil, errors.ErrVoteIncomplete
	}

	counts := make(map[UserID]int, len(r.Members))
	for _, target := range r.Votes {
		counts[target]++
	}

	order := make(map[UserID]int, len(r.Members))
	for i, m := range r.Members {
		order[m] = i
	}

	tallies := lo.Map(r.Members, func(m UserID, _ int) Tally {
		return Tally{Member: m, Count: counts[m]}
	})
	sort.SliceStable(tallies, func(i, j int) bool {
		if tallies[i].Count != tallies[j].Count {
			return tallies[i].Count > tallies[j].Count
		}
		return order[tallies[i].Member] < order[tallies[j].Member]
	})
	return tallies, nil
}
